// Package classify runs per-read amplicon classification across one or
// more configured primer schemes.
package classify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/amplitag/amplitag/internal/scheme"
	"github.com/amplitag/amplitag/internal/spans"
	"github.com/amplitag/amplitag/internal/tags"
)

// Classifier classifies mapped read spans against every configured
// amplicon set. Sets are read-only after construction, so one Classifier
// may be shared by any number of goroutines.
type Classifier struct {
	sets   []*scheme.AmpliconSet
	logger *zap.Logger
}

// New creates a classifier over the given amplicon sets. Shortnames must
// be pairwise distinct; a duplicate is a configuration error, caught here
// before any per-read processing starts.
func New(sets []*scheme.AmpliconSet) (*Classifier, error) {
	seen := make(map[rune]string, len(sets))
	for _, set := range sets {
		if prev, dup := seen[set.Shortname()]; dup {
			return nil, fmt.Errorf("amplicon sets %q and %q both use shortname %q: %w",
				prev, set.Name(), string(set.Shortname()), tags.ErrDuplicateShortname)
		}
		seen[set.Shortname()] = set.Name()
	}

	return &Classifier{
		sets:   sets,
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for warning and info messages.
func (c *Classifier) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Sets returns the configured amplicon sets in configuration order.
func (c *Classifier) Sets() []*scheme.AmpliconSet {
	return c.sets
}

// Classify matches one read span against every configured set. The result
// maps scheme ids to matched amplicons; a scheme with no match gets an
// entry with an empty list. A returned error is a scheme integrity
// failure, not a property of the read, and is not recoverable per read.
func (c *Classifier) Classify(start, end int64) (tags.Matches, error) {
	m := make(tags.Matches, len(c.sets))
	for _, set := range c.sets {
		hits, err := set.Match(start, end)
		if err != nil {
			return nil, err
		}
		m[set.SchemeID()] = hits
	}
	return m, nil
}

// ClassifyAll classifies every span from src using a pool of workers and
// writes each result, in input order, to every writer. If workers is 0,
// one worker per CPU is used.
func (c *Classifier) ClassifyAll(src spans.Source, workers int, writers ...ResultWriter) error {
	for _, w := range writers {
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	items := make(chan WorkItem, 64)
	var readErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			sp, err := src.Next()
			if err != nil {
				readErr = fmt.Errorf("read span: %w", err)
				return
			}
			if sp == nil {
				return
			}
			items <- WorkItem{Seq: seq, Span: sp}
			seq++
		}
	}()

	results := c.ParallelClassify(items, workers)

	var reads, matched int
	if err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			c.logger.Error("failed to classify read span",
				zap.String("read", r.Span.Name),
				zap.Int64("start", r.Span.Start),
				zap.Int64("end", r.Span.End),
				zap.Error(r.Err))
			return r.Err
		}
		reads++
		for _, hits := range r.Matches {
			if len(hits) > 0 {
				matched++
				break
			}
		}
		for _, w := range writers {
			if err := w.Write(r.Span, r.Matches); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if readErr != nil {
		return readErr
	}

	for _, w := range writers {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush results: %w", err)
		}
	}

	c.logger.Info("classified reads",
		zap.Int("reads", reads),
		zap.Int("matched", matched))
	return nil
}

// ResultWriter receives per-read classification results.
type ResultWriter interface {
	WriteHeader() error
	Write(sp *spans.Span, m tags.Matches) error
	Flush() error
}
