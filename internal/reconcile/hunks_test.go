package reconcile

import (
	"testing"

	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
)

func eq(s string) diffmatchpatch.Diff {
	return diffmatchpatch.Diff{Type: diffmatchpatch.DiffEqual, Text: s}
}

func del(s string) diffmatchpatch.Diff {
	return diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: s}
}

func ins(s string) diffmatchpatch.Diff {
	return diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: s}
}

func TestCoarsen(t *testing.T) {
	diffs := []diffmatchpatch.Diff{
		eq("ab"), del("x"), eq("cd"), ins("y"), eq("0123456789AB"), del("z"), eq("end"),
	}
	got := coarsen(diffs, 10)
	assert.Equal(t, []diffmatchpatch.Diff{
		eq("ab"), del("xcd"), ins("cdy"), eq("0123456789AB"), del("z"), eq("end"),
	}, got)

	var before, after string
	for _, d := range got {
		if d.Type != diffmatchpatch.DiffInsert {
			before += d.Text
		}
		if d.Type != diffmatchpatch.DiffDelete {
			after += d.Text
		}
	}
	assert.Equal(t, "abxcd0123456789ABzend", before)
	assert.Equal(t, "abcdy0123456789ABend", after)
}

func TestBlockHunks(t *testing.T) {
	got := blockHunks(2, []diffmatchpatch.Diff{eq("ab"), del("cd"), ins("X"), eq("e"), ins("Y")})
	assert.Equal(t, []hunk{
		{kind: hunkRemoved, block: 2, start: 2, end: 4, text: "cd"},
		{kind: hunkAdded, block: 2, start: 4, end: 4, text: "X"},
		{kind: hunkAdded, block: 2, start: 5, end: 5, text: "Y"},
	}, got)
}

func TestTextHunksSplitAcrossBlocks(t *testing.T) {
	state := document.New("abc\ndef")
	got := textHunks(state, []diffmatchpatch.Diff{eq("a"), del("bc\nde"), ins("Z"), eq("f")})
	assert.Equal(t, []hunk{
		{kind: hunkRemoved, block: 0, start: 1, end: 3, text: "bc"},
		{kind: hunkRemoved, block: 1, start: 0, end: 2, text: "de"},
		{kind: hunkAdded, block: 1, start: 2, end: 2, text: "Z"},
	}, got)
}

func TestInsertAnchor(t *testing.T) {
	anchor := document.Leaf{Text: "\x00", Anchor: 9}
	leaves := []document.Leaf{{Text: "ab"}, {Text: "cd", Anchor: 1}, {Text: "ef"}}

	assert.Equal(t, []document.Leaf{{Text: "a"}, anchor, {Text: "b"}, {Text: "cd", Anchor: 1}, {Text: "ef"}},
		insertAnchor(leaves, 1, anchor))
	assert.Equal(t, []document.Leaf{{Text: "ab"}, anchor, {Text: "cd", Anchor: 1}, {Text: "ef"}},
		insertAnchor(leaves, 2, anchor))
	assert.Equal(t, []document.Leaf{{Text: "ab"}, {Text: "cd", Anchor: 1}, anchor, {Text: "ef"}},
		insertAnchor(leaves, 3, anchor))
	assert.Equal(t, []document.Leaf{{Text: "ab"}, {Text: "cd", Anchor: 1}, {Text: "ef"}, anchor},
		insertAnchor(leaves, 6, anchor))
	assert.Equal(t, []document.Leaf{anchor}, insertAnchor([]document.Leaf{{}}, 0, anchor))
}

func TestRemoveRangeSkipsAnchors(t *testing.T) {
	active := layer.NewLayer("active", "red")
	block := document.Block{Leaves: []document.Leaf{{Text: "abc"}, {Text: "X", Anchor: 1}, {Text: "def"}}}

	tg := target{active: active, present: map[int]string{1: "X"}}
	next := removeRange(&block, tg, 1, 6, 10)
	assert.Equal(t, 12, next)
	assert.Equal(t, []document.Leaf{
		{Text: "a"},
		{Text: "bc", Anchor: 10},
		{Text: "X", Anchor: 1},
		{Text: "de", Anchor: 11},
		{Text: "f"},
	}, block.Leaves)
	assert.Equal(t, map[int]string{10: "", 11: ""}, active.Modifications)
}

func TestRemoveRangeHidesDroppedAnchors(t *testing.T) {
	active := layer.NewLayer("active", "red")
	block := document.Block{Leaves: []document.Leaf{{Text: "abc"}, {Text: "X", Anchor: 1}, {Text: "def"}}}

	tg := target{active: active, present: map[int]string{}, shared: map[int]bool{1: true}}
	next := removeRange(&block, tg, 2, 4, 10)
	assert.Equal(t, 11, next)
	assert.Equal(t, []document.Leaf{
		{Text: "ab"},
		{Text: "c", Anchor: 10},
		{Text: "X", Anchor: 1},
		{Text: "def"},
	}, block.Leaves)
	assert.Equal(t, map[int]string{1: "", 10: ""}, active.Modifications)
}

func TestRemoveRangeMergesOnlyIntoOwnAnchors(t *testing.T) {
	active := layer.NewLayer("active", "red")
	active.Modifications[1] = ""
	active.Modifications[2] = ""
	block := document.Block{Leaves: []document.Leaf{
		{Text: "a"}, {Text: "X", Anchor: 1}, {Text: "bc"}, {Text: "Y", Anchor: 2}, {Text: "d"},
	}}

	tg := target{active: active, present: map[int]string{1: "", 2: ""}, shared: map[int]bool{1: true}}
	next := removeRange(&block, tg, 2, 4, 10)
	assert.Equal(t, 10, next, "the removal joins anchor 2, which no other layer holds")
	assert.Equal(t, []document.Leaf{
		{Text: "a"}, {Text: "X", Anchor: 1}, {Text: "bcY", Anchor: 2}, {Text: "d"},
	}, block.Leaves)
}
