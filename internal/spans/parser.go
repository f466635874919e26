// Package spans reads mapped-read span files: the (read name, start, end)
// output of an external aligner, one row per read. Alignment itself is
// out of scope; this package only consumes its coordinates.
package spans

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Required span file column names.
const (
	ColReadName = "Read_name"
	ColStart    = "Start"
	ColEnd      = "End"
)

// Span is one read's mapped reference interval, 0-based half-open.
type Span struct {
	Name  string
	Start int64
	End   int64
}

// Source is the interface for span readers.
type Source interface {
	// Next reads the next span. Returns nil, nil when there are no more.
	Next() (*Span, error)

	// Close closes the source and releases resources.
	Close() error
}

// ParseError is a span file parse failure with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("span parse error at line %d: %s", e.Line, e.Message)
}

// columnIndices holds the positions of the required span columns.
type columnIndices struct {
	readName int
	start    int
	end      int
}

// Parser reads spans from a tab-separated file with a header row.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	columns    columnIndices
}

// NewParser creates a span parser for the given file. Use "-" for stdin.
// Plain and gzipped files are accepted.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open span file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes, then rewind.
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read span header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek span file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g. stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{reader: bufio.NewReader(r)}
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	return p, nil
}

// parseHeader locates the required columns, skipping comment lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF && line == "" {
				return &ParseError{Line: p.lineNumber, Message: "no header line found"}
			}
			if err != io.EOF {
				return fmt.Errorf("read header: %w", err)
			}
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices parses the header row. Every missing required column
// is reported, together with the columns that were found.
func (p *Parser) parseColumnIndices(header string) error {
	columns := strings.Split(header, "\t")
	p.columns = columnIndices{readName: -1, start: -1, end: -1}

	for i, col := range columns {
		switch col {
		case ColReadName:
			p.columns.readName = i
		case ColStart:
			p.columns.start = i
		case ColEnd:
			p.columns.end = i
		}
	}

	var missing []string
	if p.columns.readName == -1 {
		missing = append(missing, ColReadName)
	}
	if p.columns.start == -1 {
		missing = append(missing, ColStart)
	}
	if p.columns.end == -1 {
		missing = append(missing, ColEnd)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ParseError{
			Line: p.lineNumber,
			Message: fmt.Sprintf("missing required columns: %s (found: %s)",
				strings.Join(missing, ","), header),
		}
	}

	return nil
}

// Next reads the next span. Returns nil, nil when there are no more.
func (p *Parser) Next() (*Span, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read span line: %w", err)
		}
		atEOF := err == io.EOF
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line != "" && !strings.HasPrefix(line, "#") {
			return p.parseLine(line)
		}
		if atEOF {
			return nil, nil
		}
	}
}

// parseLine parses a single data row into a Span.
func (p *Parser) parseLine(line string) (*Span, error) {
	fields := strings.Split(line, "\t")

	minCols := p.columns.readName
	if p.columns.start > minCols {
		minCols = p.columns.start
	}
	if p.columns.end > minCols {
		minCols = p.columns.end
	}
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	start, err := strconv.ParseInt(fields[p.columns.start], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid start: %s", fields[p.columns.start]),
		}
	}
	end, err := strconv.ParseInt(fields[p.columns.end], 10, 64)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid end: %s", fields[p.columns.end]),
		}
	}
	if start >= end {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("span start %d is not before end %d", start, end),
		}
	}

	return &Span{Name: fields[p.columns.readName], Start: start, End: end}, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
