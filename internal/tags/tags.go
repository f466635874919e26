// Package tags propagates classification results onto per-read tag
// storage and back. The storage itself is owned by an external record
// layer; this package only defines the key/value convention and the typed
// association used inside the pipeline.
package tags

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/amplitag/amplitag/internal/scheme"
)

// TypeInt is the tag type code for integer-valued tags, following the SAM
// auxiliary field convention.
const TypeInt = "i"

// keyPrefix marks classification tags; the scheme shortname follows it.
const keyPrefix = "Z"

// ErrDuplicateShortname is returned when two configured amplicon sets
// share a shortname. This is a configuration error, reported before any
// tag is written.
var ErrDuplicateShortname = errors.New("duplicate amplicon set shortname")

// Tag is one (key, value, type) triple of a read's tag storage.
type Tag struct {
	Key   string
	Value string
	Type  string
}

// Read is the external read-record contract: an opaque store of tag
// triples. GetTags returns the triples in storage order; SetTags attaches
// a batch of triples without removing existing ones under other keys.
type Read interface {
	GetTags() []Tag
	SetTags([]Tag)
}

// Matches associates a scheme id (see AmpliconSet.SchemeID) with the
// amplicons matched for one read. An absent key means the read was not
// classified against that scheme; an empty list means no match.
type Matches map[string][]*scheme.Amplicon

// Key returns the tag key under which a set's classifications are stored.
func Key(set *scheme.AmpliconSet) string {
	return keyPrefix + string(set.Shortname())
}

// SetMatches attaches one tag per matched amplicon to the read, keyed by
// the owning set's shortname and valued by the amplicon's shortname. All
// tags are written in a single batch. Configured sets must have pairwise
// distinct shortnames.
func SetMatches(sets []*scheme.AmpliconSet, r Read, m Matches) error {
	seen := make(map[rune]string, len(sets))
	var batch []Tag
	for _, set := range sets {
		if prev, dup := seen[set.Shortname()]; dup {
			return fmt.Errorf("amplicon sets %q and %q both use shortname %q: %w",
				prev, set.Name(), string(set.Shortname()), ErrDuplicateShortname)
		}
		seen[set.Shortname()] = set.Name()

		amplicons, ok := m[set.SchemeID()]
		if !ok {
			continue
		}
		key := Key(set)
		for _, a := range amplicons {
			batch = append(batch, Tag{
				Key:   key,
				Value: strconv.Itoa(a.Shortname),
				Type:  TypeInt,
			})
		}
	}
	r.SetTags(batch)
	return nil
}

// GetMatches scans the read's tags for the given set's key and resolves
// each value back to an amplicon through the set's id table. The returned
// order follows the read's tag storage order.
func GetMatches(set *scheme.AmpliconSet, r Read) ([]*scheme.Amplicon, error) {
	key := Key(set)
	var matches []*scheme.Amplicon
	for _, t := range r.GetTags() {
		if t.Key != key {
			continue
		}
		id, err := strconv.Atoi(t.Value)
		if err != nil {
			return nil, fmt.Errorf("tag %s has non-integer value %q", t.Key, t.Value)
		}
		a := set.AmpliconByID(id)
		if a == nil {
			return nil, fmt.Errorf("tag %s refers to unknown amplicon id %d in scheme %q",
				t.Key, id, set.Name())
		}
		matches = append(matches, a)
	}
	return matches, nil
}

// MemoryRead is an in-memory Read implementation, used in tests and
// wherever no real record layer is attached.
type MemoryRead struct {
	Name string
	tags []Tag
}

// GetTags returns the attached tags in insertion order.
func (r *MemoryRead) GetTags() []Tag { return r.tags }

// SetTags appends a batch of tags, leaving existing tags in place.
func (r *MemoryRead) SetTags(batch []Tag) {
	r.tags = append(r.tags, batch...)
}
