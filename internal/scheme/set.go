package scheme

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultTolerance is the padding, in reference bases, added to both ends
// of every amplicon span before indexing. It absorbs soft-clipped or
// otherwise inexact read-boundary alignment near primer sites.
const DefaultTolerance = 5

var (
	// ErrNoAmplicons is returned when a set is built from an empty
	// amplicon collection.
	ErrNoAmplicons = errors.New("amplicon scheme contains no amplicons")

	// ErrAmbiguousMatch is returned by Match when more than two amplicons
	// contain both read endpoints. The build-time coverage check makes
	// this unreachable for a well-formed scheme, so hitting it means the
	// scheme data is corrupted, not that the read is bad.
	ErrAmbiguousMatch = errors.New("more than two amplicons match read endpoints")

	// ErrCoverageTooDeep is returned at build time when some reference
	// position is covered by more than two padded amplicon spans.
	ErrCoverageTooDeep = errors.New("padded amplicon spans overlap more than two deep")
)

// AmpliconSet indexes the amplicons of one primer scheme and answers the
// per-read classification query. It is built once and read-only for the
// rest of its lifetime; any number of goroutines may call Match
// concurrently against the same instance.
type AmpliconSet struct {
	name      string
	shortname rune
	tolerance int64

	amplicons   map[string]*Amplicon
	ampliconIDs map[int]*Amplicon

	// seqs maps a primer-sequence prefix, truncated to the shortest
	// primer length in the set, to the owning amplicon. Collisions on a
	// truncated prefix are resolved last-write-wins in amplicon
	// shortname order; see the package notes on this known limitation.
	seqs            map[string]*Amplicon
	minPrimerLength int

	index *intervalIndex
}

// New builds an AmpliconSet with the default tolerance and a shortname
// derived from the name.
func New(name string, amplicons map[string]*Amplicon) (*AmpliconSet, error) {
	return NewWithOptions(name, amplicons, DefaultTolerance, 0)
}

// NewWithOptions builds an AmpliconSet. All primers must already have been
// added to their amplicons. A zero shortname derives one from the name via
// DeriveShortname. Construction fails if the collection is empty or if any
// reference position is covered by more than two padded amplicon spans.
func NewWithOptions(name string, amplicons map[string]*Amplicon, tolerance int64, shortname rune) (*AmpliconSet, error) {
	if len(amplicons) == 0 {
		return nil, fmt.Errorf("scheme %q: %w", name, ErrNoAmplicons)
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("scheme %q: negative tolerance %d", name, tolerance)
	}
	if shortname == 0 {
		shortname = DeriveShortname(name)
	}

	s := &AmpliconSet{
		name:        name,
		shortname:   shortname,
		tolerance:   tolerance,
		amplicons:   amplicons,
		ampliconIDs: make(map[int]*Amplicon, len(amplicons)),
	}

	// Walk amplicons in shortname (first-seen parse) order so that
	// sequence-table collisions resolve the same way on every run.
	ordered := make([]*Amplicon, 0, len(amplicons))
	for _, a := range amplicons {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Shortname < ordered[j].Shortname
	})

	sequences := make(map[string]*Amplicon)
	spans := make([]paddedSpan, 0, len(ordered))
	minLen := 0
	for _, a := range ordered {
		if prev, dup := s.ampliconIDs[a.Shortname]; dup {
			return nil, fmt.Errorf("scheme %q: amplicons %q and %q share shortname %d",
				name, prev.Name, a.Name, a.Shortname)
		}
		s.ampliconIDs[a.Shortname] = a

		for _, p := range a.Left {
			sequences[p.Seq] = a
			if minLen == 0 || len(p.Seq) < minLen {
				minLen = len(p.Seq)
			}
		}
		// Right primer sequences are indexed as given, not
		// reverse-complemented.
		for _, p := range a.Right {
			sequences[p.Seq] = a
			if minLen == 0 || len(p.Seq) < minLen {
				minLen = len(p.Seq)
			}
		}

		spans = append(spans, paddedSpan{
			start:    a.Start - tolerance,
			end:      a.End + tolerance,
			amplicon: a,
		})
	}

	// A uniform truncation length lets primers of differing lengths be
	// matched by common prefix. Last write wins on a colliding prefix.
	s.minPrimerLength = minLen
	s.seqs = make(map[string]*Amplicon, len(sequences))
	seqKeys := make([]string, 0, len(sequences))
	for k := range sequences {
		seqKeys = append(seqKeys, k)
	}
	sort.Slice(seqKeys, func(i, j int) bool {
		a, b := sequences[seqKeys[i]], sequences[seqKeys[j]]
		if a.Shortname != b.Shortname {
			return a.Shortname < b.Shortname
		}
		return seqKeys[i] < seqKeys[j]
	})
	for _, k := range seqKeys {
		s.seqs[k[:minLen]] = sequences[k]
	}

	s.index = buildIntervalIndex(spans)

	// The match algorithm assumes at most 2-way overlap; verify it here
	// rather than deferring to per-read queries.
	if pos, depth := s.index.maxCoverage(); depth > 2 {
		return nil, fmt.Errorf("scheme %q: position %d covered by %d spans: %w",
			name, pos, depth, ErrCoverageTooDeep)
	}

	return s, nil
}

// Name returns the declared scheme name.
func (s *AmpliconSet) Name() string { return s.name }

// SchemeID returns the stable identity of this scheme, used wherever a
// hashable handle is needed. It is the declared name; use ContentEquals
// for structural comparison.
func (s *AmpliconSet) SchemeID() string { return s.name }

// Shortname returns the single-character scheme id used in read tags.
func (s *AmpliconSet) Shortname() rune { return s.shortname }

// Tolerance returns the span padding used when the index was built.
func (s *AmpliconSet) Tolerance() int64 { return s.tolerance }

// MinPrimerLength returns the uniform truncation length of the primer
// sequence table.
func (s *AmpliconSet) MinPrimerLength() int { return s.minPrimerLength }

// Len returns the number of amplicons in the set.
func (s *AmpliconSet) Len() int { return len(s.amplicons) }

// Amplicon returns the amplicon with the given name, or nil.
func (s *AmpliconSet) Amplicon(name string) *Amplicon {
	return s.amplicons[name]
}

// AmpliconByID resolves an amplicon shortname back to the amplicon, or nil.
func (s *AmpliconSet) AmpliconByID(shortname int) *Amplicon {
	return s.ampliconIDs[shortname]
}

// Amplicons returns the set's amplicons ordered by shortname.
func (s *AmpliconSet) Amplicons() []*Amplicon {
	out := make([]*Amplicon, 0, len(s.amplicons))
	for _, a := range s.amplicons {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Shortname < out[j].Shortname
	})
	return out
}

// LookupPrimerSeq resolves a primer sequence to its owning amplicon using
// the first MinPrimerLength bases. Sequences shorter than the truncation
// length never match.
func (s *AmpliconSet) LookupPrimerSeq(seq string) (*Amplicon, bool) {
	if len(seq) < s.minPrimerLength {
		return nil, false
	}
	a, ok := s.seqs[seq[:s.minPrimerLength]]
	return a, ok
}

// Match classifies a read's mapped genomic span [start, end).
//
// A read is attributable to an amplicon only if both endpoints fall
// inside that amplicon's padded span. If the read envelops any amplicon's
// padded span it is classified as no match unconditionally: in a tiled
// design no single read spans and exceeds an entire amplicon, so this
// indicates chimeric or mis-mapped input. No containment at all is an
// off-target read, also no match.
//
// Returns nil, nil for no match. One amplicon is the common case; two is
// the legitimate outcome for a read spanning the tiling overlap between
// adjacent amplicons, returned in span order. More than two returns
// ErrAmbiguousMatch.
func (s *AmpliconSet) Match(start, end int64) ([]*Amplicon, error) {
	hits := intersectAmplicons(s.index.containing(start), s.index.containing(end))

	if len(s.index.envelopedBy(start, end)) > 0 {
		return nil, nil
	}
	if len(hits) == 0 {
		return nil, nil
	}
	if len(hits) > 2 {
		return nil, fmt.Errorf("scheme %q: span [%d,%d) hit %d amplicons: %w",
			s.name, start, end, len(hits), ErrAmbiguousMatch)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Start != hits[j].Start {
			return hits[i].Start < hits[j].Start
		}
		return hits[i].Name < hits[j].Name
	})
	return hits, nil
}

// ContentEquals reports structural equality with another set, independent
// of object identity: same name, shortname, tolerance, amplicon contents,
// and derived tables.
func (s *AmpliconSet) ContentEquals(o *AmpliconSet) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.name != o.name || s.shortname != o.shortname ||
		s.tolerance != o.tolerance || s.minPrimerLength != o.minPrimerLength {
		return false
	}
	if len(s.amplicons) != len(o.amplicons) || len(s.seqs) != len(o.seqs) {
		return false
	}
	for name, a := range s.amplicons {
		if !a.ContentEquals(o.amplicons[name]) {
			return false
		}
	}
	for prefix, a := range s.seqs {
		b, ok := o.seqs[prefix]
		if !ok || a.Name != b.Name {
			return false
		}
	}
	return true
}

// intersectAmplicons returns the amplicons present in both slices.
// Slices are tiny (tolerance-sized overlap, at most a handful of hits),
// so a nested scan beats building maps.
func intersectAmplicons(a, b []*Amplicon) []*Amplicon {
	var out []*Amplicon
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}
