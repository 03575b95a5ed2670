package reconcile

import (
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/utils"
)

// pendingAnchor marks a freshly split leaf awaiting an anchor id.
const pendingAnchor = -1

// target is the layer receiving an edit, seen against the rest of the forest.
type target struct {
	active *layer.Layer
	// present holds the anchors still found in the edited document.
	present map[int]string
	// shared holds the anchors some layer other than active also modifies.
	shared map[int]bool
}

func newTarget(layers []*layer.Layer, activeID int, edited document.Tree) target {
	t := target{active: layers[activeID], present: edited.AnchorValues(), shared: map[int]bool{}}
	for i, l := range layers[1:] {
		if i+1 == activeID {
			continue
		}
		for id := range l.Modifications {
			t.shared[id] = true
		}
	}
	return t
}

// hides reports whether the active layer alone hides the anchor of leaf.
func (t target) hides(leaf document.Leaf) bool {
	if !leaf.HasAnchor() || t.shared[leaf.Anchor] {
		return false
	}
	text, ok := t.active.Modifications[leaf.Anchor]
	return ok && text == ""
}

// apply records one hunk in the base state and the active layer and returns the
// advanced anchor counter.
func (r *Reconciler) apply(base *layer.Layer, t target, h hunk, next int) int {
	active := t.active
	if h.block < 0 || h.block >= len(base.State) {
		return next
	}
	switch h.kind {
	case hunkAdded:
		id := next
		next++
		base.State[h.block].Leaves = insertAnchor(base.State[h.block].Leaves, h.start, document.Leaf{Text: r.opts.Placeholder, Anchor: id})
		active.Modifications[id] = h.text
		logger.DebugTagf("reconcile", "Anchor %d inserted at %d:%d for %q", id, h.block, h.start, h.text)
	case hunkRemoved:
		next = removeRange(&base.State[h.block], t, h.start, h.end, next)
	}
	return next
}

// insertAnchor places an anchor leaf at a block-local offset. A plain leaf spanning
// the offset is split; an anchor leaf spanning it is kept whole and the new leaf
// follows it.
func insertAnchor(leaves []document.Leaf, offset int, anchor document.Leaf) []document.Leaf {
	out := make([]document.Leaf, 0, len(leaves)+2)
	pos := 0
	inserted := false
	for _, leaf := range leaves {
		n := utils.RuneLen(leaf.Text)
		s, e := pos, pos+n
		pos = e
		switch {
		case inserted:
			out = append(out, leaf)
		case offset == s:
			out = append(out, anchor, leaf)
			inserted = true
		case offset > s && offset < e && leaf.HasAnchor():
			out = append(out, leaf, anchor)
			inserted = true
		case offset > s && offset < e:
			before, after := utils.SplitAtRune(leaf.Text, offset-s)
			out = append(out, document.Leaf{Text: before}, anchor, document.Leaf{Text: after})
			inserted = true
		default:
			out = append(out, leaf)
		}
	}
	if !inserted {
		out = append(out, anchor)
	}
	return dropEmptyPlain(out)
}

// removeRange turns the plain text between two block-local offsets into anchors
// hidden by the active layer. An anchor leaf lying wholly inside the range is hidden
// by the active layer when the edited document no longer holds it; other anchor
// leaves are left alone. A segment touching an anchor that only the active layer
// hides is merged into it.
func removeRange(block *document.Block, t target, start, end, next int) int {
	active := t.active
	var out []document.Leaf
	pos := 0
	for _, leaf := range block.Leaves {
		n := utils.RuneLen(leaf.Text)
		s, e := pos, pos+n
		pos = e
		if n == 0 || e <= start || s >= end {
			out = append(out, leaf)
			continue
		}
		if leaf.HasAnchor() {
			if _, kept := t.present[leaf.Anchor]; !kept && s >= start && e <= end {
				active.Modifications[leaf.Anchor] = ""
				logger.DebugTagf("reconcile", "Anchor %d dropped from the document, hidden", leaf.Anchor)
			}
			out = append(out, leaf)
			continue
		}
		a, b := max(start, s)-s, min(end, e)-s
		if before := utils.SliceRunes(leaf.Text, 0, a); before != "" {
			out = append(out, document.Leaf{Text: before})
		}
		out = append(out, document.Leaf{Text: utils.SliceRunes(leaf.Text, a, b), Anchor: pendingAnchor})
		if after := utils.SliceRunes(leaf.Text, b, n); after != "" {
			out = append(out, document.Leaf{Text: after})
		}
	}

	merged := make([]document.Leaf, 0, len(out))
	for i := 0; i < len(out); i++ {
		leaf := out[i]
		if leaf.Anchor != pendingAnchor {
			merged = append(merged, leaf)
			continue
		}
		if n := len(merged); n > 0 && t.hides(merged[n-1]) {
			merged[n-1].Text += leaf.Text
			logger.DebugTagf("reconcile", "Removal merged into anchor %d", merged[n-1].Anchor)
			continue
		}
		if i+1 < len(out) && t.hides(out[i+1]) {
			out[i+1].Text = leaf.Text + out[i+1].Text
			logger.DebugTagf("reconcile", "Removal merged into anchor %d", out[i+1].Anchor)
			continue
		}
		leaf.Anchor = next
		next++
		active.Modifications[leaf.Anchor] = ""
		logger.DebugTagf("reconcile", "Anchor %d hides %q", leaf.Anchor, leaf.Text)
		merged = append(merged, leaf)
	}
	block.Leaves = merged
	return next
}

func dropEmptyPlain(leaves []document.Leaf) []document.Leaf {
	out := leaves[:0]
	for _, leaf := range leaves {
		if leaf.Text == "" && !leaf.HasAnchor() {
			continue
		}
		out = append(out, leaf)
	}
	return out
}
