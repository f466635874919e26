package duckdb

import (
	"github.com/amplitag/amplitag/internal/scheme"
	"github.com/amplitag/amplitag/internal/spans"
	"github.com/amplitag/amplitag/internal/tags"
)

// ResultWriter adapts a Store to the classification pipeline's writer
// interface, recording one row batch per read per configured scheme.
type ResultWriter struct {
	store *Store
	sets  []*scheme.AmpliconSet
}

// NewResultWriter creates a writer recording results for the given sets.
func NewResultWriter(store *Store, sets []*scheme.AmpliconSet) *ResultWriter {
	return &ResultWriter{store: store, sets: sets}
}

// WriteHeader is a no-op; the schema is created when the store opens.
func (w *ResultWriter) WriteHeader() error { return nil }

// Write records the classification rows for one read span.
func (w *ResultWriter) Write(sp *spans.Span, m tags.Matches) error {
	for _, set := range w.sets {
		hits := m[set.SchemeID()]
		refs := make([]AmpliconRef, len(hits))
		for i, a := range hits {
			refs[i] = AmpliconRef{Name: a.Name, ID: a.Shortname}
		}
		if err := w.store.InsertClassification(sp.Name, set.Name(), sp.Start, sp.End, refs); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op; inserts are committed as they happen.
func (w *ResultWriter) Flush() error { return nil }
