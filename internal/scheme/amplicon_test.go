package scheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leftPrimer(name string, pos int64, length int) Primer {
	return Primer{Name: name, Seq: mockSeq(length), Left: true, Pos: pos}
}

func rightPrimer(name string, pos int64, length int) Primer {
	return Primer{Name: name, Seq: mockSeq(length), Left: false, Pos: pos}
}

// mockSeq builds a deterministic sequence of the given length.
func mockSeq(length int) string {
	const alphabet = "ACGT"
	b := make([]byte, length)
	for i := range b {
		b[i] = alphabet[i%len(alphabet)]
	}
	return string(b)
}

func TestAmplicon_Add_FirstPrimersInitializeRegions(t *testing.T) {
	a := NewAmplicon("amp1", 0)

	a.Add(leftPrimer("amp1_L", 100, 20))
	start, end, ok := a.LeftPrimerRegion()
	require.True(t, ok)
	assert.Equal(t, int64(100), start)
	assert.Equal(t, int64(120), end)
	assert.Equal(t, int64(100), a.Start)

	_, _, ok = a.RightPrimerRegion()
	assert.False(t, ok, "no right primer added yet")

	a.Add(rightPrimer("amp1_R", 280, 20))
	start, end, ok = a.RightPrimerRegion()
	require.True(t, ok)
	assert.Equal(t, int64(280), start)
	assert.Equal(t, int64(300), end)
	assert.Equal(t, int64(300), a.End)
}

func TestAmplicon_Add_RegionsNeverShrink(t *testing.T) {
	a := NewAmplicon("amp1", 0)
	a.Add(leftPrimer("amp1_L", 100, 20))
	a.Add(leftPrimer("amp1_L_alt", 95, 18)) // alt primer starting earlier

	start, end, ok := a.LeftPrimerRegion()
	require.True(t, ok)
	assert.Equal(t, int64(95), start, "region extends to the earlier start")
	assert.Equal(t, int64(120), end, "region keeps the later end")
	assert.Equal(t, int64(95), a.Start)

	// A primer nested inside the region changes nothing.
	a.Add(leftPrimer("amp1_L_nested", 101, 10))
	start, end, _ = a.LeftPrimerRegion()
	assert.Equal(t, int64(95), start)
	assert.Equal(t, int64(120), end)
}

func TestAmplicon_Add_OrderIndependent(t *testing.T) {
	primers := []Primer{
		leftPrimer("L1", 100, 20),
		leftPrimer("L2", 95, 22),
		rightPrimer("R1", 280, 20),
		rightPrimer("R2", 285, 25),
	}

	ref := NewAmplicon("amp1", 0)
	for _, p := range primers {
		ref.Add(p)
	}

	for _, perm := range permutations(len(primers)) {
		a := NewAmplicon("amp1", 0)
		for _, i := range perm {
			a.Add(primers[i])
		}

		assert.Equal(t, ref.Start, a.Start, "perm %v", perm)
		assert.Equal(t, ref.End, a.End, "perm %v", perm)
		assert.Equal(t, ref.MaxPrimerLength, a.MaxPrimerLength, "perm %v", perm)

		ls, le, _ := a.LeftPrimerRegion()
		rls, rle, _ := ref.LeftPrimerRegion()
		assert.Equal(t, rls, ls, "perm %v", perm)
		assert.Equal(t, rle, le, "perm %v", perm)

		rs, re, _ := a.RightPrimerRegion()
		rrs, rre, _ := ref.RightPrimerRegion()
		assert.Equal(t, rrs, rs, "perm %v", perm)
		assert.Equal(t, rre, re, "perm %v", perm)
	}
}

// permutations returns every permutation of 0..n-1.
func permutations(n int) [][]int {
	var out [][]int
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	var recurse func(k int)
	recurse = func(k int) {
		if k == n {
			p := make([]int, n)
			copy(p, idx)
			out = append(out, p)
			return
		}
		for i := k; i < n; i++ {
			idx[k], idx[i] = idx[i], idx[k]
			recurse(k + 1)
			idx[k], idx[i] = idx[i], idx[k]
		}
	}
	recurse(0)
	return out
}

func TestAmplicon_StartNotAfterEnd(t *testing.T) {
	a := NewAmplicon("amp1", 0)
	a.Add(leftPrimer("L", 100, 20))
	a.Add(rightPrimer("R", 180, 20))

	assert.LessOrEqual(t, a.Start, a.End)
}

func TestAmplicon_PositionInPrimer_ExclusiveBounds(t *testing.T) {
	a := NewAmplicon("amp1", 0)
	a.Add(leftPrimer("L", 100, 10))  // region [100,110)
	a.Add(rightPrimer("R", 280, 10)) // region [280,290)

	assert.False(t, a.PositionInPrimer(100), "left region start is exclusive")
	assert.True(t, a.PositionInPrimer(101))
	assert.True(t, a.PositionInPrimer(109))
	assert.False(t, a.PositionInPrimer(110), "left region end is exclusive")

	assert.False(t, a.PositionInPrimer(280), "right region start is exclusive")
	assert.True(t, a.PositionInPrimer(285))
	assert.False(t, a.PositionInPrimer(290), "right region end is exclusive")

	assert.False(t, a.PositionInPrimer(150), "between the regions")
}

func TestAmplicon_PositionInPrimer_NoPrimers(t *testing.T) {
	a := NewAmplicon("empty", 0)
	assert.False(t, a.PositionInPrimer(100))
}

func TestAmplicon_ContentEquals(t *testing.T) {
	build := func() *Amplicon {
		a := NewAmplicon("amp1", 3)
		a.Add(leftPrimer("L", 100, 20))
		a.Add(rightPrimer("R", 280, 20))
		return a
	}

	a, b := build(), build()
	assert.True(t, a.ContentEquals(b), "independently built copies are equal")
	assert.True(t, b.ContentEquals(a))

	b.Add(rightPrimer("R2", 290, 20))
	assert.False(t, a.ContentEquals(b))

	c := build()
	c.Shortname = 4
	assert.False(t, a.ContentEquals(c))

	assert.False(t, a.ContentEquals(nil))
}
