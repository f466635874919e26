package scheme

import "sort"

// intervalIndex provides O(log n + k) point-containment queries over the
// padded amplicon spans of one scheme, using a sorted-slice representation.
// Spans are half-open [start, end). Built once, never modified after.
type intervalIndex struct {
	spans  []paddedSpan
	maxEnd []int64 // maxEnd[i] = max(end) for spans[:i+1]
}

type paddedSpan struct {
	start    int64
	end      int64
	amplicon *Amplicon
}

// buildIntervalIndex creates an index from padded amplicon spans.
func buildIntervalIndex(spans []paddedSpan) *intervalIndex {
	if len(spans) == 0 {
		return &intervalIndex{}
	}

	sorted := make([]paddedSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	// Prefix-max array: maxEnd[i] = max(end) for spans[:i+1], so a
	// backwards scan can stop as soon as no earlier span reaches pos.
	maxEnd := make([]int64, len(sorted))
	maxEnd[0] = sorted[0].end
	for i := 1; i < len(sorted); i++ {
		maxEnd[i] = sorted[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &intervalIndex{spans: sorted, maxEnd: maxEnd}
}

// containing returns the amplicons whose padded span contains pos,
// with half-open semantics: start <= pos < end.
func (ix *intervalIndex) containing(pos int64) []*Amplicon {
	if len(ix.spans) == 0 {
		return nil
	}

	// First index with start > pos; candidates are spans[:hi].
	hi := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].start > pos
	})

	var result []*Amplicon
	for i := hi - 1; i >= 0; i-- {
		if ix.maxEnd[i] <= pos {
			break
		}
		if ix.spans[i].end > pos {
			result = append(result, ix.spans[i].amplicon)
		}
	}
	return result
}

// envelopedBy returns the amplicons whose padded span lies entirely
// within [start, end).
func (ix *intervalIndex) envelopedBy(start, end int64) []*Amplicon {
	// First index with span start >= start.
	lo := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].start >= start
	})

	var result []*Amplicon
	for i := lo; i < len(ix.spans) && ix.spans[i].start < end; i++ {
		if ix.spans[i].end <= end {
			result = append(result, ix.spans[i].amplicon)
		}
	}
	return result
}

// maxCoverage returns the deepest overlap among the indexed spans and a
// position where that depth occurs. Used as a build-time integrity check:
// the match algorithm assumes no point is covered more than twice.
func (ix *intervalIndex) maxCoverage() (pos int64, depth int) {
	type event struct {
		pos   int64
		delta int
	}
	events := make([]event, 0, 2*len(ix.spans))
	for _, s := range ix.spans {
		events = append(events, event{s.start, +1}, event{s.end, -1})
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].pos != events[j].pos {
			return events[i].pos < events[j].pos
		}
		// Close before open at the same position: spans are half-open,
		// so [a,b) and [b,c) do not overlap at b.
		return events[i].delta < events[j].delta
	})

	cur := 0
	for _, e := range events {
		cur += e.delta
		if cur > depth {
			depth = cur
			pos = e.pos
		}
	}
	return pos, depth
}
