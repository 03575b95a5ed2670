package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuneIndexToByteOffset(t *testing.T) {
	s := "héllo"
	assert.Equal(t, 0, RuneIndexToByteOffset(s, 0))
	assert.Equal(t, 1, RuneIndexToByteOffset(s, 1))
	assert.Equal(t, 3, RuneIndexToByteOffset(s, 2))
	assert.Equal(t, len(s), RuneIndexToByteOffset(s, 5))
	assert.Equal(t, -1, RuneIndexToByteOffset(s, 6))
}

func TestSliceRunes(t *testing.T) {
	assert.Equal(t, "él", SliceRunes("héllo", 1, 3))
	assert.Equal(t, "", SliceRunes("héllo", 3, 2))
	assert.Equal(t, "llo", SliceRunes("héllo", 2, 99))
}

func TestSplitAtRune(t *testing.T) {
	before, after := SplitAtRune("héllo", 2)
	assert.Equal(t, "hé", before)
	assert.Equal(t, "llo", after)
}
