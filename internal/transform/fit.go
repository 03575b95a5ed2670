package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const punctuation = ".,;:!?()[]{}<>\"'"

func isPunctuation(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// Fit adapts a model answer so it can stand where model stood: the leading letter
// follows model's case, trailing and leading punctuation follow model's, and
// model's surrounding whitespace is restored. Models tend to answer with full
// sentences even for fragments, which this undoes.
func Fit(result, model string) string {
	if utf8.RuneCountInString(result) <= 1 {
		return result
	}

	trimmed := strings.TrimLeftFunc(model, unicode.IsSpace)
	before := model[:len(model)-len(trimmed)]
	core := strings.TrimRightFunc(trimmed, unicode.IsSpace)
	after := trimmed[len(core):]

	out := []rune(strings.TrimSpace(result))
	m := []rune(core)
	if len(m) == 0 || len(out) == 0 {
		return before + string(out) + after
	}

	first, last := m[0], m[len(m)-1]
	firstResult, lastResult := out[0], out[len(out)-1]

	if first == unicode.ToUpper(first) {
		out[0] = unicode.ToUpper(out[0])
	} else {
		out[0] = unicode.ToLower(out[0])
	}

	if last != lastResult {
		if isPunctuation(lastResult) {
			out = out[:len(out)-1]
		}
		if isPunctuation(last) {
			out = append(out, last)
		}
	}

	if first != firstResult && len(out) > 0 {
		if isPunctuation(firstResult) {
			out = out[1:]
		}
		if isPunctuation(first) {
			out = append([]rune{first}, out...)
		}
	}

	return before + string(out) + after
}
