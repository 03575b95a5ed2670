// Package highlight computes the transient word-level difference shown after a
// document changes, for example after a tool rewrote part of it.
package highlight

import (
	"strings"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/document"
	"github.com/rivo/uniseg"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a highlighted segment.
type Kind int

const (
	Equal Kind = iota
	Added
	Removed
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "equal"
	}
}

// Segment is a run of words sharing one kind.
type Segment struct {
	Text string
	Kind Kind
}

// firstToken is where word tokens start in the rune alphabet handed to the
// differ; everything from here on is outside the surrogate range.
const firstToken = 0x10000

// Diff compares the text of two composed documents word by word. Placeholders are
// removed first. It returns nil when the texts are equal.
func Diff(previous, next document.Tree) []Segment {
	return Text(previous.Text(), next.Text())
}

// Text compares two strings word by word, ignoring placeholders.
func Text(previous, next string) []Segment {
	previous = strings.ReplaceAll(previous, config.Placeholder, "")
	next = strings.ReplaceAll(next, config.Placeholder, "")
	if previous == next {
		return nil
	}

	var words []string
	index := make(map[string]rune)
	encode := func(s string) []rune {
		var out []rune
		state := -1
		for len(s) > 0 {
			var word string
			word, s, state = uniseg.FirstWordInString(s, state)
			r, ok := index[word]
			if !ok {
				r = rune(firstToken + len(words))
				index[word] = r
				words = append(words, word)
			}
			out = append(out, r)
		}
		return out
	}
	a, b := encode(previous), encode(next)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(a, b, false)

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var sb strings.Builder
		for _, r := range d.Text {
			sb.WriteString(words[r-firstToken])
		}
		kind := Equal
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = Added
		case diffmatchpatch.DiffDelete:
			kind = Removed
		}
		segments = append(segments, Segment{Text: sb.String(), Kind: kind})
	}
	return segments
}

// Previous rebuilds the older text from the segments.
func Previous(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Kind != Added {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// Next rebuilds the newer text from the segments.
func Next(segments []Segment) string {
	var sb strings.Builder
	for _, s := range segments {
		if s.Kind != Removed {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}
