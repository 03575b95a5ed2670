package tool

import "strings"

const (
	clauseStart = ".(\n;):"
	clauseEnd   = ".\n;:"
)

// SentenceRange widens the rune range [start, end) of text to the clause around
// it: back to just after the previous delimiter and forward to just before the
// next one. Reaching either end of the text stops there. A clause opened by a
// parenthesis extends to the closing parenthesis.
func SentenceRange(text string, start, end int) (int, int) {
	r := []rune(text)
	if start < 0 || end > len(r) || start >= end {
		return start, end
	}

	s := start
	hitStart := false
	for !strings.ContainsRune(clauseStart, r[s]) {
		if s == 0 {
			hitStart = true
			break
		}
		s--
	}
	stops := clauseEnd
	if r[s] == '(' {
		stops = ")"
	}
	if !hitStart && s != start {
		s++
	}

	e := end
	hitEnd := false
	for !strings.ContainsRune(stops, r[e-1]) {
		if e == len(r) {
			hitEnd = true
			break
		}
		e++
	}
	if !hitEnd && e != end {
		e--
	}
	return s, e
}
