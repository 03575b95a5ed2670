package reconcile

import (
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/utils"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type hunkKind int

const (
	hunkAdded hunkKind = iota
	hunkRemoved
)

// hunk is a change to apply to the base state. Offsets are runes local to block;
// for an added hunk start == end is the insertion point.
type hunk struct {
	kind  hunkKind
	block int
	start int
	end   int
	text  string
}

// hunks diffs the base state against the recovered document and returns the
// changes in document order.
func (r *Reconciler) hunks(state, recovered document.Tree) []hunk {
	if len(state) == len(recovered) {
		groups := make([][]diffmatchpatch.Diff, len(state))
		total := 0
		for i := range state {
			groups[i] = r.diff(state[i].Text(), recovered[i].Text())
			total += len(groups[i])
		}
		var out []hunk
		for i, diffs := range groups {
			if total > r.opts.HunkThreshold {
				diffs = coarsen(diffs, r.opts.MergeGap)
			}
			out = append(out, blockHunks(i, diffs)...)
		}
		return out
	}

	diffs := r.diff(state.Text(), recovered.Text())
	if len(diffs) > r.opts.HunkThreshold {
		diffs = coarsen(diffs, r.opts.MergeGap)
	}
	return textHunks(state, diffs)
}

// blockHunks converts the diff of one block into hunks.
func blockHunks(block int, diffs []diffmatchpatch.Diff) []hunk {
	var out []hunk
	pos := 0
	for _, d := range diffs {
		n := utils.RuneLen(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			out = append(out, hunk{kind: hunkRemoved, block: block, start: pos, end: pos + n, text: d.Text})
			pos += n
		case diffmatchpatch.DiffInsert:
			out = append(out, hunk{kind: hunkAdded, block: block, start: pos, end: pos, text: d.Text})
		}
	}
	return out
}

// textHunks converts a whole-document diff, whose offsets count block separators,
// into block-local hunks. Removals crossing a separator are split per block and
// the separator itself is kept.
func textHunks(state document.Tree, diffs []diffmatchpatch.Diff) []hunk {
	var out []hunk
	pos := 0
	for _, d := range diffs {
		n := utils.RuneLen(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			out = append(out, splitRemoval(state, pos, pos+n)...)
			pos += n
		case diffmatchpatch.DiffInsert:
			if bi, off, ok := document.LocateText(state, pos); ok {
				out = append(out, hunk{kind: hunkAdded, block: bi, start: off, end: off, text: d.Text})
			}
		}
	}
	return out
}

func splitRemoval(state document.Tree, start, end int) []hunk {
	var out []hunk
	blockStart := 0
	for bi, b := range state {
		blockEnd := blockStart + b.Len()
		s, e := max(start, blockStart), min(end, blockEnd)
		if s < e {
			text := utils.SliceRunes(b.Text(), s-blockStart, e-blockStart)
			out = append(out, hunk{kind: hunkRemoved, block: bi, start: s - blockStart, end: e - blockStart, text: text})
		}
		blockStart = blockEnd + 1
	}
	return out
}

// coarsen merges runs of changes separated by unchanged spans of at most gap runes
// into one removal followed by one insertion. Absorbed unchanged text is counted on
// both sides so offsets stay aligned with the base text. Longer unchanged spans, as
// well as unchanged text before the first change or at the very end, are kept.
func coarsen(diffs []diffmatchpatch.Diff, gap int) []diffmatchpatch.Diff {
	var out []diffmatchpatch.Diff
	var removed, added string
	pending := false

	flush := func() {
		if removed != "" {
			out = append(out, diffmatchpatch.Diff{Type: diffmatchpatch.DiffDelete, Text: removed})
		}
		if added != "" {
			out = append(out, diffmatchpatch.Diff{Type: diffmatchpatch.DiffInsert, Text: added})
		}
		removed, added, pending = "", "", false
	}

	for i, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			removed += d.Text
			pending = true
		case diffmatchpatch.DiffInsert:
			added += d.Text
			pending = true
		case diffmatchpatch.DiffEqual:
			if pending && i < len(diffs)-1 && utils.RuneLen(d.Text) <= gap {
				removed += d.Text
				added += d.Text
				continue
			}
			flush()
			out = append(out, d)
		}
	}
	flush()
	return out
}
