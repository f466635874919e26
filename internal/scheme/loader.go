package scheme

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

// Required scheme TSV column names.
const (
	ColAmpliconName = "Amplicon_name"
	ColPrimerName   = "Primer_name"
	ColLeftOrRight  = "Left_or_right"
	ColSequence     = "Sequence"
	ColPosition     = "Position"
)

// columnIndices holds the positions of the required scheme columns.
type columnIndices struct {
	ampliconName int
	primerName   int
	leftOrRight  int
	sequence     int
	position     int
}

// ParseError is a scheme file parse failure with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("scheme parse error at line %d: %s", e.Line, e.Message)
}

// FromTSV reads a scheme description file and builds an AmpliconSet named
// after the file, with the default tolerance and a derived shortname.
// Plain and gzipped files are accepted.
func FromTSV(path string) (*AmpliconSet, error) {
	return FromTSVWithOptions(path, "", DefaultTolerance, 0)
}

// FromTSVWithOptions reads a scheme description file and builds an
// AmpliconSet. An empty name defaults to the file path; a zero shortname
// is derived from the name.
func FromTSVWithOptions(path, name string, tolerance int64, shortname rune) (*AmpliconSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scheme file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	amplicons, err := ParseAmplicons(reader)
	if err != nil {
		return nil, fmt.Errorf("scheme file %s: %w", path, err)
	}

	if name == "" {
		name = path
	}
	return NewWithOptions(name, amplicons, tolerance, shortname)
}

// ParseAmplicons parses a tab-separated scheme description, one row per
// primer, and folds the rows into amplicons. Amplicon shortnames are
// assigned in first-seen row order. A Left_or_right value of "left"
// (case-insensitive) marks a left/forward primer; any other value marks a
// right/reverse primer.
func ParseAmplicons(r io.Reader) (map[string]*Amplicon, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, &ParseError{Line: line, Message: "no header line found"}
	}
	line++

	header := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")
	cols, err := parseColumnIndices(header, line)
	if err != nil {
		return nil, err
	}

	minCols := maxInt(cols.ampliconName, cols.primerName, cols.leftOrRight, cols.sequence, cols.position)

	amplicons := make(map[string]*Amplicon)
	nextShortname := 0
	for scanner.Scan() {
		line++
		row := strings.TrimRight(scanner.Text(), "\r\n")
		if row == "" {
			continue
		}

		fields := strings.Split(row, "\t")
		if len(fields) <= minCols {
			return nil, &ParseError{
				Line:    line,
				Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
			}
		}

		pos, err := strconv.ParseInt(fields[cols.position], 10, 64)
		if err != nil {
			return nil, &ParseError{
				Line:    line,
				Message: fmt.Sprintf("invalid position: %s", fields[cols.position]),
			}
		}

		ampliconName := fields[cols.ampliconName]
		a, ok := amplicons[ampliconName]
		if !ok {
			a = NewAmplicon(ampliconName, nextShortname)
			nextShortname++
			amplicons[ampliconName] = a
		}

		a.Add(Primer{
			Name: fields[cols.primerName],
			Seq:  fields[cols.sequence],
			Left: strings.EqualFold(fields[cols.leftOrRight], "left"),
			Pos:  pos,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read scheme rows: %w", err)
	}

	return amplicons, nil
}

// parseColumnIndices locates the required columns in the header row.
// Every missing column is reported, together with the columns that were
// actually found.
func parseColumnIndices(header []string, line int) (columnIndices, error) {
	cols := columnIndices{
		ampliconName: -1,
		primerName:   -1,
		leftOrRight:  -1,
		sequence:     -1,
		position:     -1,
	}

	for i, col := range header {
		switch col {
		case ColAmpliconName:
			cols.ampliconName = i
		case ColPrimerName:
			cols.primerName = i
		case ColLeftOrRight:
			cols.leftOrRight = i
		case ColSequence:
			cols.sequence = i
		case ColPosition:
			cols.position = i
		}
	}

	var missing []string
	if cols.ampliconName == -1 {
		missing = append(missing, ColAmpliconName)
	}
	if cols.primerName == -1 {
		missing = append(missing, ColPrimerName)
	}
	if cols.leftOrRight == -1 {
		missing = append(missing, ColLeftOrRight)
	}
	if cols.sequence == -1 {
		missing = append(missing, ColSequence)
	}
	if cols.position == -1 {
		missing = append(missing, ColPosition)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return cols, &ParseError{
			Line: line,
			Message: fmt.Sprintf("missing required columns: %s (found: %s)",
				strings.Join(missing, ","), strings.Join(header, ",")),
		}
	}

	return cols, nil
}

// LoadSchemes builds one AmpliconSet per scheme file, assigning the
// deterministic shortnames "a", "b", "c", ... in input order. Sets are
// returned in input order.
func LoadSchemes(paths []string, tolerance int64) ([]*AmpliconSet, error) {
	if len(paths) > 26 {
		return nil, fmt.Errorf("too many scheme files: %d (max 26)", len(paths))
	}

	sets := make([]*AmpliconSet, 0, len(paths))
	for i, path := range paths {
		set, err := FromTSVWithOptions(path, "", tolerance, rune('a'+i))
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// maxInt returns the maximum of the provided integers.
func maxInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
