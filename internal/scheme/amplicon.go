package scheme

import (
	"fmt"
	"strings"
)

// region is a half-open [Start, End) span on the reference.
type region struct {
	Start int64
	End   int64
}

// inRange reports whether pos lies strictly between the region bounds.
// Both bounds are exclusive: a position exactly on a boundary is not
// considered primer-derived.
func (r region) inRange(pos int64) bool {
	return pos > r.Start && pos < r.End
}

// Amplicon aggregates the primers belonging to one amplicon of a tiled
// scheme and incrementally derives its genomic span and primer-footprint
// regions. Amplicons are mutated only through Add during scheme
// construction and are read-only afterwards.
type Amplicon struct {
	Name string
	// Shortname is a dense integer id, unique within one scheme and
	// assigned in first-seen order during parsing. It is the value
	// written to read tags in place of the full name.
	Shortname int

	Left  []Primer
	Right []Primer

	// Start is the minimum left-primer position seen; End is the maximum
	// right-primer footprint end. Valid once the respective side has at
	// least one primer.
	Start int64
	End   int64

	// leftRegion and rightRegion are the monotonic unions of all primer
	// footprints added so far on each side. Nil until the first primer
	// of that side arrives.
	leftRegion  *region
	rightRegion *region

	// MaxPrimerLength is the longest primer sequence seen on either side.
	MaxPrimerLength int
}

// NewAmplicon creates an empty amplicon with the given name and shortname.
func NewAmplicon(name string, shortname int) *Amplicon {
	return &Amplicon{Name: name, Shortname: shortname}
}

// Add folds one primer into the amplicon. The first primer of a side
// initializes that side's footprint region; later primers of the same side
// extend it to the union (min of starts, max of ends) — the region never
// shrinks. Start and End are updated symmetrically. Add is
// order-independent over a fixed set of primers.
func (a *Amplicon) Add(p Primer) {
	if len(p.Seq) > a.MaxPrimerLength {
		a.MaxPrimerLength = len(p.Seq)
	}

	end := p.End()
	if p.Left {
		a.Left = append(a.Left, p)
		if a.leftRegion == nil {
			a.leftRegion = &region{Start: p.Pos, End: end}
			a.Start = p.Pos
			return
		}
		if p.Pos < a.leftRegion.Start {
			a.leftRegion.Start = p.Pos
		}
		if end > a.leftRegion.End {
			a.leftRegion.End = end
		}
		if p.Pos < a.Start {
			a.Start = p.Pos
		}
		return
	}

	a.Right = append(a.Right, p)
	if a.rightRegion == nil {
		a.rightRegion = &region{Start: p.Pos, End: end}
		a.End = end
		return
	}
	if p.Pos < a.rightRegion.Start {
		a.rightRegion.Start = p.Pos
	}
	if end > a.rightRegion.End {
		a.rightRegion.End = end
	}
	if end > a.End {
		a.End = end
	}
}

// PositionInPrimer reports whether a reference position falls inside
// either primer region of the amplicon. Such positions carry primer
// sequence rather than biological signal and are candidates for masking.
func (a *Amplicon) PositionInPrimer(pos int64) bool {
	if a.leftRegion != nil && a.leftRegion.inRange(pos) {
		return true
	}
	return a.rightRegion != nil && a.rightRegion.inRange(pos)
}

// LeftPrimerRegion returns the union footprint of the left primers.
// ok is false if no left primer has been added.
func (a *Amplicon) LeftPrimerRegion() (start, end int64, ok bool) {
	if a.leftRegion == nil {
		return 0, 0, false
	}
	return a.leftRegion.Start, a.leftRegion.End, true
}

// RightPrimerRegion returns the union footprint of the right primers.
// ok is false if no right primer has been added.
func (a *Amplicon) RightPrimerRegion() (start, end int64, ok bool) {
	if a.rightRegion == nil {
		return 0, 0, false
	}
	return a.rightRegion.Start, a.rightRegion.End, true
}

// ContentEquals reports structural equality with another amplicon:
// same name, shortname, primers in order, span and regions.
func (a *Amplicon) ContentEquals(b *Amplicon) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Shortname != b.Shortname ||
		a.Start != b.Start || a.End != b.End ||
		a.MaxPrimerLength != b.MaxPrimerLength {
		return false
	}
	if len(a.Left) != len(b.Left) || len(a.Right) != len(b.Right) {
		return false
	}
	for i := range a.Left {
		if a.Left[i] != b.Left[i] {
			return false
		}
	}
	for i := range a.Right {
		if a.Right[i] != b.Right[i] {
			return false
		}
	}
	return regionEqual(a.leftRegion, b.leftRegion) &&
		regionEqual(a.rightRegion, b.rightRegion)
}

func regionEqual(x, y *region) bool {
	if x == nil || y == nil {
		return x == y
	}
	return *x == *y
}

// String renders the amplicon for log and error messages.
func (a *Amplicon) String() string {
	left := make([]string, len(a.Left))
	for i, p := range a.Left {
		left[i] = p.Name
	}
	right := make([]string, len(a.Right))
	for i, p := range a.Right {
		right[i] = p.Name
	}
	return fmt.Sprintf("%s [%d,%d) left=%s right=%s",
		a.Name, a.Start, a.End,
		strings.Join(left, "+"), strings.Join(right, "+"))
}
