package document

import (
	"testing"

	"github.com/bethropolis/strata/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointFromOffset(t *testing.T) {
	tree := anchored() // "Hello world" | "second \x00 line"

	tests := []struct {
		name   string
		offset int
		path   []int
		local  int
	}{
		{"start", 0, []int{0, 0}, 0},
		{"inside first leaf", 3, []int{0, 0}, 3},
		{"leaf boundary resolves forward", 6, []int{0, 1}, 0},
		{"end of block is closed", 11, []int{0, 1}, 5},
		{"second block", 12, []int{1, 0}, 1},
		{"anchor leaf", 18, []int{1, 1}, 0},
		{"end of document", 24, []int{1, 2}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, ok := PointFromOffset(tree, tt.offset)
			require.True(t, ok)
			assert.Equal(t, tt.path, loc.Path)
			assert.Equal(t, tt.local, loc.Offset)
			assert.Equal(t, tt.offset, OffsetFromPoint(tree, loc))
		})
	}

	_, ok := PointFromOffset(tree, 25)
	assert.False(t, ok)
	_, ok = PointFromOffset(tree, -1)
	assert.False(t, ok)
}

func TestPointInBlock(t *testing.T) {
	tree := anchored()
	loc, ok := PointInBlock(tree, 1, 0)
	require.True(t, ok)
	assert.Equal(t, []int{1, 0}, loc.Path)

	_, ok = PointInBlock(tree, 2, 0)
	assert.False(t, ok)
}

func TestPointOnEmptyTree(t *testing.T) {
	tree := New("")
	loc, ok := PointFromOffset(tree, 0)
	require.True(t, ok)
	assert.Equal(t, []int{0, 0}, loc.Path)
}

func TestIsLocationValid(t *testing.T) {
	tree := anchored()
	assert.True(t, IsLocationValid(tree, types.Location{Path: []int{0, 1}, Offset: 5}))
	assert.True(t, IsLocationValid(tree, types.Location{Path: []int{1}, Offset: 13}))
	assert.False(t, IsLocationValid(tree, types.Location{Path: []int{0, 1}, Offset: 6}))
	assert.False(t, IsLocationValid(tree, types.Location{Path: []int{2, 0}, Offset: 0}))
	assert.False(t, IsLocationValid(tree, types.Location{Path: []int{0, 3}, Offset: 0}))
	assert.False(t, IsLocationValid(tree, types.Location{}))
}

func TestLocateText(t *testing.T) {
	tree := anchored()
	bi, off, ok := LocateText(tree, 11)
	require.True(t, ok)
	assert.Equal(t, 0, bi)
	assert.Equal(t, 11, off)

	bi, off, ok = LocateText(tree, 12)
	require.True(t, ok)
	assert.Equal(t, 1, bi)
	assert.Equal(t, 0, off)

	_, _, ok = LocateText(tree, 100)
	assert.False(t, ok)
}
