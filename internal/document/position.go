package document

import (
	"github.com/bethropolis/strata/internal/types"
	"github.com/bethropolis/strata/internal/utils"
)

// PointFromOffset converts a flat rune offset (block separators not counted) to a
// location. Leaf spans are half-open, except the last leaf of each block which
// also accepts an offset equal to its end, so that the end of the document resolves.
func PointFromOffset(t Tree, offset int) (types.Location, bool) {
	if offset < 0 {
		return types.Location{}, false
	}
	consumed := 0
	for bi := range t {
		if loc, ok := pointInLeaves(t[bi].Leaves, offset-consumed); ok {
			loc.Path = append([]int{bi}, loc.Path...)
			return loc, true
		}
		consumed += t[bi].Len()
	}
	return types.Location{}, false
}

// PointInBlock resolves a rune offset local to one block, with the same
// closed-end rule as PointFromOffset.
func PointInBlock(t Tree, block, offset int) (types.Location, bool) {
	if block < 0 || block >= len(t) || offset < 0 {
		return types.Location{}, false
	}
	loc, ok := pointInLeaves(t[block].Leaves, offset)
	if !ok {
		return types.Location{}, false
	}
	loc.Path = append([]int{block}, loc.Path...)
	return loc, true
}

func pointInLeaves(leaves []Leaf, offset int) (types.Location, bool) {
	if offset < 0 {
		return types.Location{}, false
	}
	start := 0
	for i, leaf := range leaves {
		end := start + utils.RuneLen(leaf.Text)
		isLast := i == len(leaves)-1
		if end > offset || (isLast && end >= offset) {
			return types.Location{Path: []int{i}, Offset: offset - start}, true
		}
		start = end
	}
	return types.Location{}, false
}

// OffsetFromPoint sums the text length of every leaf preceding the location's leaf
// and adds the local offset.
func OffsetFromPoint(t Tree, loc types.Location) int {
	bi, li := loc.Block(), loc.Leaf()
	offset := 0
	for i := 0; i < bi && i < len(t); i++ {
		offset += t[i].Len()
	}
	if bi >= 0 && bi < len(t) {
		for j := 0; j < li && j < len(t[bi].Leaves); j++ {
			offset += utils.RuneLen(t[bi].Leaves[j].Text)
		}
	}
	return offset + loc.Offset
}

// IsLocationValid reports whether every path index is in range and the offset
// does not exceed the addressed node's text length. A one-element path addresses
// a whole block.
func IsLocationValid(t Tree, loc types.Location) bool {
	if len(loc.Path) == 0 || len(loc.Path) > 2 || loc.Offset < 0 {
		return false
	}
	bi := loc.Path[0]
	if bi < 0 || bi >= len(t) {
		return false
	}
	if len(loc.Path) == 1 {
		return loc.Offset <= t[bi].Len()
	}
	li := loc.Path[1]
	if li < 0 || li >= len(t[bi].Leaves) {
		return false
	}
	return loc.Offset <= utils.RuneLen(t[bi].Leaves[li].Text)
}

// LocateText converts an offset in Text() (block separators counted) into a
// block index and a rune offset local to that block.
func LocateText(t Tree, textOffset int) (block, offset int, ok bool) {
	if textOffset < 0 {
		return 0, 0, false
	}
	start := 0
	for bi, b := range t {
		end := start + b.Len()
		if textOffset <= end {
			return bi, textOffset - start, true
		}
		start = end + 1
	}
	return 0, 0, false
}
