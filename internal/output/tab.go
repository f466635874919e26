// Package output provides classification result formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/amplitag/amplitag/internal/scheme"
	"github.com/amplitag/amplitag/internal/spans"
	"github.com/amplitag/amplitag/internal/tags"
)

// TabWriter writes one tab-delimited row per read per configured scheme.
type TabWriter struct {
	w       *bufio.Writer
	sets    []*scheme.AmpliconSet
	columns []string
}

// NewTabWriter creates a tab-delimited writer reporting against the given
// amplicon sets.
func NewTabWriter(w io.Writer, sets []*scheme.AmpliconSet) *TabWriter {
	return &TabWriter{
		w:    bufio.NewWriter(w),
		sets: sets,
		columns: []string{
			"#Read_name",
			"Scheme",
			"Status",
			"Amplicons",
			"Amplicon_ids",
			"Start_in_primer",
			"End_in_primer",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes the classification rows for one read span.
func (tw *TabWriter) Write(sp *spans.Span, m tags.Matches) error {
	for _, set := range tw.sets {
		hits := m[set.SchemeID()]

		status := "match"
		names := "-"
		ids := "-"
		startInPrimer := "-"
		endInPrimer := "-"

		if len(hits) == 0 {
			status = "no_match"
		} else {
			nameList := make([]string, len(hits))
			idList := make([]string, len(hits))
			inStart, inEnd := false, false
			for i, a := range hits {
				nameList[i] = a.Name
				idList[i] = strconv.Itoa(a.Shortname)
				if a.PositionInPrimer(sp.Start) {
					inStart = true
				}
				if a.PositionInPrimer(sp.End) {
					inEnd = true
				}
			}
			names = strings.Join(nameList, ",")
			ids = strings.Join(idList, ",")
			startInPrimer = yesNo(inStart)
			endInPrimer = yesNo(inEnd)
		}

		row := []string{
			sp.Name,
			set.Name(),
			status,
			names,
			ids,
			startInPrimer,
			endInPrimer,
		}
		if _, err := tw.w.WriteString(strings.Join(row, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
