package utils

import (
	"unicode/utf8"
)

// RuneIndexToByteOffset converts a rune index to a byte offset in a string.
// Returns -1 if runeIndex is out of bounds.
func RuneIndexToByteOffset(s string, runeIndex int) int {
	if runeIndex <= 0 {
		return 0
	}
	byteOffset := 0
	currentRune := 0
	for byteOffset < len(s) {
		if currentRune == runeIndex {
			return byteOffset
		}
		_, size := utf8.DecodeRuneInString(s[byteOffset:])
		byteOffset += size
		currentRune++
	}
	if currentRune == runeIndex {
		return len(s)
	} // Allow index at the very end
	return -1 // Index out of bounds
}

// SliceRunes returns s[start:end] with start and end expressed in runes.
// Indices are clamped to the string.
func SliceRunes(s string, start, end int) string {
	n := utf8.RuneCountInString(s)
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start >= end {
		return ""
	}
	return s[RuneIndexToByteOffset(s, start):RuneIndexToByteOffset(s, end)]
}

// SplitAtRune splits s into the text before and after the given rune index.
func SplitAtRune(s string, runeIndex int) (string, string) {
	off := RuneIndexToByteOffset(s, runeIndex)
	if off < 0 {
		return s, ""
	}
	return s[:off], s[off:]
}

// RuneLen is a shorthand for utf8.RuneCountInString.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
