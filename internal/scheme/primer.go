// Package scheme models tiled-amplicon primer schemes: the primers and
// amplicons described by a scheme file, and the queryable index used to
// attribute a mapped read span to the amplicon(s) that produced it.
package scheme

// Primer describes one PCR primer from a scheme.
// Left primers are forward-strand and right primers reverse-strand by
// construction of tiled schemes, so no separate strand field is kept.
type Primer struct {
	Name string
	Seq  string
	Left bool
	// Pos is the 0-based reference coordinate of the primer's leftmost base.
	Pos int64
}

// End returns the reference coordinate one past the primer's last base.
func (p Primer) End() int64 {
	return p.Pos + int64(len(p.Seq))
}
