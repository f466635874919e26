package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amplitag/amplitag/internal/scheme"
	"github.com/amplitag/amplitag/internal/spans"
	"github.com/amplitag/amplitag/internal/tags"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestInsertAndCount(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.InsertClassification("read1", "scheme1", 100, 250,
		[]AmpliconRef{{Name: "amp_A", ID: 0}}))
	require.NoError(t, s.InsertClassification("read2", "scheme1", 198, 202,
		[]AmpliconRef{{Name: "amp_A", ID: 0}, {Name: "amp_B", ID: 1}}))
	require.NoError(t, s.InsertClassification("read3", "scheme1", 9000, 9100, nil))

	counts, err := s.AmpliconCounts("scheme1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"amp_A": 2, "amp_B": 1}, counts)

	unmatched, err := s.UnmatchedCount("scheme1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unmatched)

	counts, err = s.AmpliconCounts("other_scheme")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func seqOf(length int) string {
	const alphabet = "ACGT"
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[i%len(alphabet)]
	}
	return string(b)
}

func TestResultWriter_RecordsRows(t *testing.T) {
	a := scheme.NewAmplicon("amp_A", 0)
	a.Add(scheme.Primer{Name: "A_L", Seq: seqOf(20), Left: true, Pos: 100})
	a.Add(scheme.Primer{Name: "A_R", Seq: seqOf(20), Left: false, Pos: 180})

	set, err := scheme.NewWithOptions("scheme1",
		map[string]*scheme.Amplicon{a.Name: a}, scheme.DefaultTolerance, 'a')
	require.NoError(t, err)

	s := openInMemory(t)
	w := NewResultWriter(s, []*scheme.AmpliconSet{set})

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Write(
		&spans.Span{Name: "read1", Start: 120, End: 180},
		tags.Matches{"scheme1": {a}},
	))
	require.NoError(t, w.Write(
		&spans.Span{Name: "read2", Start: 5000, End: 5100},
		tags.Matches{"scheme1": nil},
	))
	require.NoError(t, w.Flush())

	counts, err := s.AmpliconCounts("scheme1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"amp_A": 1}, counts)

	unmatched, err := s.UnmatchedCount("scheme1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unmatched)
}
