package document

import (
	"github.com/bethropolis/strata/internal/utils"
)

// ReplaceRange replaces the runes between two offsets of Text() with text, the way
// an editor applies a typed or pasted replacement to the composed document.
//
// The inserted text lands in the leaf holding the first replaced rune; a pure
// insertion at a leaf boundary extends the preceding leaf of the block. Deleting
// across a block separator merges the blocks. Anchor leaves are never dropped, even
// when all their text is deleted, so the reconciler can still attribute the change.
func ReplaceRange(t Tree, start, end int, text string) (Tree, bool) {
	if start > end {
		start, end = end, start
	}
	b0, o0, ok := LocateText(t, start)
	if !ok {
		return t, false
	}
	b1, o1, ok := LocateText(t, end)
	if !ok {
		return t, false
	}

	target := targetLeaf(t[b0].Leaves, o0, start == end)

	var merged []Leaf
	for bi := b0; bi <= b1; bi++ {
		pos := 0
		for li, leaf := range t[bi].Leaves {
			n := utils.RuneLen(leaf.Text)
			s, e := pos, pos+n
			pos = e

			// Runes of this leaf kept before and after the replaced range.
			keepBefore, keepAfter := 0, 0
			if bi == b0 {
				keepBefore = clamp(o0-s, 0, n)
			}
			if bi == b1 {
				keepAfter = clamp(e-o1, 0, n)
			}

			next := leaf
			next.Text = utils.SliceRunes(leaf.Text, 0, keepBefore)
			if bi == b0 && li == target {
				next.Text += text
			}
			if keepAfter > 0 {
				next.Text += utils.SliceRunes(leaf.Text, n-keepAfter, n)
			}

			if next.Text == "" && !leaf.HasAnchor() && !(bi == b0 && li == target) {
				continue
			}
			merged = append(merged, next)
		}
	}
	block := Tree{{Leaves: merged}}
	Compact(block)

	out := make(Tree, 0, len(t)-(b1-b0))
	out = append(out, t[:b0].Clone()...)
	out = append(out, block[0])
	out = append(out, t[b1+1:].Clone()...)
	return out, true
}

// targetLeaf picks the leaf receiving inserted text at a block-local offset.
func targetLeaf(leaves []Leaf, offset int, insertion bool) int {
	pos := 0
	candidate := -1
	for i, leaf := range leaves {
		s, e := pos, pos+utils.RuneLen(leaf.Text)
		pos = e
		if insertion && e == offset && s < e {
			return i
		}
		if s <= offset && offset < e {
			return i
		}
		if s <= offset && offset <= e && candidate < 0 {
			candidate = i
		}
	}
	if candidate < 0 && len(leaves) > 0 {
		candidate = len(leaves) - 1
	}
	return candidate
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
