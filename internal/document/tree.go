// Package document models the rich-text tree shared by every layer: ordered blocks
// of leaves, where a leaf may carry an anchor id marking text controlled by a layer.
package document

import (
	"strings"

	"github.com/bethropolis/strata/internal/utils"
)

// Leaf is a run of text. Anchor is 0 for plain text.
type Leaf struct {
	Text   string `yaml:"text"`
	Anchor int    `yaml:"anchor,omitempty"`
}

// HasAnchor reports whether the leaf is an anchor leaf.
func (l Leaf) HasAnchor() bool {
	return l.Anchor > 0
}

// Block is an ordered sequence of leaves, typically a paragraph.
type Block struct {
	Leaves []Leaf `yaml:"leaves"`
}

// Text returns the concatenated text of the block's leaves.
func (b Block) Text() string {
	var sb strings.Builder
	for _, leaf := range b.Leaves {
		sb.WriteString(leaf.Text)
	}
	return sb.String()
}

// Len returns the rune length of the block.
func (b Block) Len() int {
	n := 0
	for _, leaf := range b.Leaves {
		n += utils.RuneLen(leaf.Text)
	}
	return n
}

// Tree is a document: an ordered sequence of blocks.
type Tree []Block

// New builds a tree from plain text, one block per line.
func New(text string) Tree {
	lines := strings.Split(text, "\n")
	t := make(Tree, len(lines))
	for i, line := range lines {
		t[i] = Block{Leaves: []Leaf{{Text: line}}}
	}
	return t
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, b := range t {
		out[i] = Block{Leaves: append([]Leaf(nil), b.Leaves...)}
	}
	return out
}

// Text returns the flattened text of the tree, blocks joined with "\n".
func (t Tree) Text() string {
	parts := make([]string, len(t))
	for i, b := range t {
		parts[i] = b.Text()
	}
	return strings.Join(parts, "\n")
}

// Len returns the number of runes held by all leaves, block separators excluded.
func (t Tree) Len() int {
	n := 0
	for _, b := range t {
		n += b.Len()
	}
	return n
}

// Equal reports whether two trees have the same blocks and leaves.
func Equal(a, b Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i].Leaves) != len(b[i].Leaves) {
			return false
		}
		for j := range a[i].Leaves {
			if a[i].Leaves[j] != b[i].Leaves[j] {
				return false
			}
		}
	}
	return true
}

// AnchorValues returns the text currently held by every anchor leaf.
func (t Tree) AnchorValues() map[int]string {
	values := make(map[int]string)
	for _, b := range t {
		for _, leaf := range b.Leaves {
			if leaf.HasAnchor() {
				values[leaf.Anchor] = leaf.Text
			}
		}
	}
	return values
}

// Anchors returns every anchor id of the tree in document order.
func (t Tree) Anchors() []int {
	var ids []int
	for _, b := range t {
		for _, leaf := range b.Leaves {
			if leaf.HasAnchor() {
				ids = append(ids, leaf.Anchor)
			}
		}
	}
	return ids
}

// FindAnchor returns the block and leaf index of the leaf carrying the anchor.
func (t Tree) FindAnchor(id int) (block, leaf int, ok bool) {
	for i, b := range t {
		for j, l := range b.Leaves {
			if l.Anchor == id && id > 0 {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// ReplaceAnchor swaps the leaf carrying the anchor for the given leaves.
// It reports whether the anchor was found.
func (t Tree) ReplaceAnchor(id int, leaves []Leaf) bool {
	bi, li, ok := t.FindAnchor(id)
	if !ok {
		return false
	}
	old := t[bi].Leaves
	next := make([]Leaf, 0, len(old)-1+len(leaves))
	next = append(next, old[:li]...)
	next = append(next, leaves...)
	next = append(next, old[li+1:]...)
	if len(next) == 0 {
		next = []Leaf{{}}
	}
	t[bi].Leaves = next
	return true
}

// StripUnanchored removes every leaf lacking an anchor. Blocks left empty receive
// a single empty leaf so the tree stays well formed.
func (t Tree) StripUnanchored() {
	for i := range t {
		kept := t[i].Leaves[:0]
		for _, leaf := range t[i].Leaves {
			if leaf.HasAnchor() {
				kept = append(kept, leaf)
			}
		}
		if len(kept) == 0 {
			kept = append(kept, Leaf{})
		}
		t[i].Leaves = kept
	}
}

// Normalize merges all blocks into one, separating former blocks with "\n" leaves.
func Normalize(t Tree) Tree {
	if len(t) <= 1 {
		return t.Clone()
	}
	var leaves []Leaf
	for i, b := range t {
		leaves = append(leaves, b.Leaves...)
		if i < len(t)-1 {
			leaves = append(leaves, Leaf{Text: "\n"})
		}
	}
	return Tree{{Leaves: leaves}}
}

// Compact merges adjacent plain leaves and drops empty plain leaves, keeping at
// least one leaf per block.
func Compact(t Tree) {
	for i := range t {
		var out []Leaf
		for _, leaf := range t[i].Leaves {
			if !leaf.HasAnchor() {
				if leaf.Text == "" {
					continue
				}
				if n := len(out); n > 0 && !out[n-1].HasAnchor() {
					out[n-1].Text += leaf.Text
					continue
				}
			}
			out = append(out, leaf)
		}
		if len(out) == 0 {
			out = []Leaf{{}}
		}
		t[i].Leaves = out
	}
}
