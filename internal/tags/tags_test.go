package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplitag/amplitag/internal/scheme"
)

func seqOf(length int) string {
	const alphabet = "ACGT"
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[i%len(alphabet)]
	}
	return string(b)
}

func buildSet(t *testing.T, name string, shortname rune) *scheme.AmpliconSet {
	t.Helper()

	a := scheme.NewAmplicon("amp_A", 0)
	a.Add(scheme.Primer{Name: "A_L", Seq: seqOf(20), Left: true, Pos: 100})
	a.Add(scheme.Primer{Name: "A_R", Seq: seqOf(22), Left: false, Pos: 180})

	b := scheme.NewAmplicon("amp_B", 1)
	b.Add(scheme.Primer{Name: "B_L", Seq: seqOf(24), Left: true, Pos: 195})
	b.Add(scheme.Primer{Name: "B_R", Seq: seqOf(26), Left: false, Pos: 280})

	set, err := scheme.NewWithOptions(name,
		map[string]*scheme.Amplicon{a.Name: a, b.Name: b},
		scheme.DefaultTolerance, shortname)
	require.NoError(t, err)
	return set
}

func TestSetGetMatches_RoundTrip(t *testing.T) {
	set := buildSet(t, "scheme1", 'a')
	read := &MemoryRead{Name: "read1"}

	want := []*scheme.Amplicon{set.Amplicon("amp_A"), set.Amplicon("amp_B")}
	m := Matches{set.SchemeID(): want}

	require.NoError(t, SetMatches([]*scheme.AmpliconSet{set}, read, m))

	got, err := GetMatches(set, read)
	require.NoError(t, err)
	assert.Equal(t, want, got, "round trip preserves the match list and its order")
}

func TestSetMatches_TagShape(t *testing.T) {
	set := buildSet(t, "scheme1", 'a')
	read := &MemoryRead{Name: "read1"}
	m := Matches{set.SchemeID(): {set.Amplicon("amp_B")}}

	require.NoError(t, SetMatches([]*scheme.AmpliconSet{set}, read, m))

	stored := read.GetTags()
	require.Len(t, stored, 1)
	assert.Equal(t, "Za", stored[0].Key)
	assert.Equal(t, "1", stored[0].Value)
	assert.Equal(t, TypeInt, stored[0].Type)
}

func TestSetMatches_DuplicateShortname(t *testing.T) {
	s1 := buildSet(t, "scheme1", 'a')
	s2 := buildSet(t, "scheme2", 'a')
	read := &MemoryRead{Name: "read1"}

	err := SetMatches([]*scheme.AmpliconSet{s1, s2}, read, Matches{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateShortname)
	assert.Empty(t, read.GetTags(), "nothing written on a configuration error")
}

func TestSetMatches_PreservesForeignTags(t *testing.T) {
	set := buildSet(t, "scheme1", 'a')
	read := &MemoryRead{Name: "read1"}
	read.SetTags([]Tag{{Key: "NM", Value: "3", Type: TypeInt}})

	m := Matches{set.SchemeID(): {set.Amplicon("amp_A")}}
	require.NoError(t, SetMatches([]*scheme.AmpliconSet{set}, read, m))

	stored := read.GetTags()
	require.Len(t, stored, 2)
	assert.Equal(t, "NM", stored[0].Key, "pre-existing tags stay in place")

	got, err := GetMatches(set, read)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "amp_A", got[0].Name)
}

func TestSetMatches_SkipsSchemesWithoutResults(t *testing.T) {
	s1 := buildSet(t, "scheme1", 'a')
	s2 := buildSet(t, "scheme2", 'b')
	read := &MemoryRead{Name: "read1"}

	m := Matches{s1.SchemeID(): {s1.Amplicon("amp_A")}}
	require.NoError(t, SetMatches([]*scheme.AmpliconSet{s1, s2}, read, m))

	require.Len(t, read.GetTags(), 1)

	got, err := GetMatches(s2, read)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetMatches_TwoSchemesSameRead(t *testing.T) {
	s1 := buildSet(t, "scheme1", 'a')
	s2 := buildSet(t, "scheme2", 'b')
	read := &MemoryRead{Name: "read1"}

	m := Matches{
		s1.SchemeID(): {s1.Amplicon("amp_A")},
		s2.SchemeID(): {s2.Amplicon("amp_B")},
	}
	require.NoError(t, SetMatches([]*scheme.AmpliconSet{s1, s2}, read, m))

	got1, err := GetMatches(s1, read)
	require.NoError(t, err)
	require.Len(t, got1, 1)
	assert.Equal(t, "amp_A", got1[0].Name)

	got2, err := GetMatches(s2, read)
	require.NoError(t, err)
	require.Len(t, got2, 1)
	assert.Equal(t, "amp_B", got2[0].Name)
}

func TestGetMatches_BadValues(t *testing.T) {
	set := buildSet(t, "scheme1", 'a')

	read := &MemoryRead{Name: "read1"}
	read.SetTags([]Tag{{Key: "Za", Value: "notanint", Type: TypeInt}})
	_, err := GetMatches(set, read)
	assert.Error(t, err)

	read = &MemoryRead{Name: "read2"}
	read.SetTags([]Tag{{Key: "Za", Value: "99", Type: TypeInt}})
	_, err = GetMatches(set, read)
	assert.Error(t, err, "unknown amplicon id")
}
