package classify

import (
	"runtime"
	"sync"

	"github.com/amplitag/amplitag/internal/spans"
	"github.com/amplitag/amplitag/internal/tags"
)

// WorkItem holds a parsed read span ready for classification.
type WorkItem struct {
	Seq  int
	Span *spans.Span
}

// WorkResult holds the classification output for a single read span.
type WorkResult struct {
	Seq     int
	Span    *spans.Span
	Matches tags.Matches
	Err     error
}

// ParallelClassify classifies work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence
// order). Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (c *Classifier) ParallelClassify(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				m, err := c.Classify(item.Span.Start, item.Span.End)
				results <- WorkResult{
					Seq:     item.Seq,
					Span:    item.Span,
					Matches: m,
					Err:     err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect invokes fn once per result, in ascending sequence
// order regardless of worker completion order. Results that arrive
// early are parked until the gap before them fills. Returns when the
// results channel closes, or on the first fn error.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Workers block on a full channel; drain so they
				// can exit before we do.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
