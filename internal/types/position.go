// internal/types/position.go
package types

// Location is a structured position inside a document tree.
// Path holds the block index followed by the leaf index within that block.
// Offset is the 0-based rune offset inside the addressed leaf.
type Location struct {
	Path   []int
	Offset int
}

// Block returns the block index of the location, or -1 if the path is empty.
func (l Location) Block() int {
	if len(l.Path) == 0 {
		return -1
	}
	return l.Path[0]
}

// Leaf returns the leaf index of the location, or -1 if the path is too short.
func (l Location) Leaf() int {
	if len(l.Path) < 2 {
		return -1
	}
	return l.Path[1]
}

// Range is a half-open span [Start, End) of flat rune offsets in a composed document.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered by the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}
