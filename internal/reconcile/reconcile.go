// Package reconcile decomposes an edit of the composed document back into base
// document changes and per-layer modifications.
//
// The entry point is Reconciler.Reconcile, which handles three situations:
//
//   - the base layer is active and no visible overlay has modifications: the
//     edited document becomes the new base state;
//   - the base layer is active and overlays are visible: the overlay text is
//     replaced by the anchors' own base text and the result becomes the state;
//   - another layer is active: edits outside anchors become new anchors owned by
//     the active layer, and edits inside anchors owned by lower layers are split
//     so that the lower layer keeps authorship of what it wrote.
package reconcile

import (
	"fmt"
	"sort"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Options tunes the reconciler.
type Options struct {
	// HunkThreshold is the number of diff segments above which hunks are coarsened.
	HunkThreshold int
	// MergeGap is the longest unchanged span absorbed while coarsening.
	MergeGap int
	// Placeholder is the base text of anchors created for inserted text.
	Placeholder string
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		HunkThreshold: config.DefaultHunkThreshold,
		MergeGap:      config.DefaultMergeGap,
		Placeholder:   config.Placeholder,
	}
}

// OptionsFromConfig reads the reconciler options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		HunkThreshold: cfg.Reconcile.HunkThreshold,
		MergeGap:      cfg.Reconcile.MergeGap,
		Placeholder:   cfg.Reconcile.Placeholder,
	}
}

// Reconciler attributes edits of the composed document to layers. It performs no
// I/O and keeps no state between calls, so one value can be shared.
type Reconciler struct {
	opts Options
	dmp  *diffmatchpatch.DiffMatchPatch
}

// Result is the outcome of one reconciliation.
type Result struct {
	// Forest is the new authoritative forest. It shares nothing with the input.
	Forest layer.Forest
	// Next is the next free anchor id.
	Next int
	// Skipped is set when the edit was ignored because the active layer is hidden.
	Skipped bool
}

// New creates a reconciler. Zero option fields take their default values.
func New(opts Options) *Reconciler {
	def := DefaultOptions()
	if opts.HunkThreshold <= 0 {
		opts.HunkThreshold = def.HunkThreshold
	}
	if opts.MergeGap < 0 {
		opts.MergeGap = def.MergeGap
	}
	if opts.Placeholder == "" {
		opts.Placeholder = def.Placeholder
	}
	return &Reconciler{opts: opts, dmp: diffmatchpatch.New()}
}

// Options returns the options in effect.
func (r *Reconciler) Options() Options {
	return r.opts
}

// Reconcile folds the edited composed document into the forest while activeID has
// focus. next is the caller's anchor counter; the counter is raised to cover every
// anchor already present in the forest before any allocation. The input forest is
// never modified.
func (r *Reconciler) Reconcile(f layer.Forest, activeID int, edited document.Tree, next int) (Result, error) {
	layers := layer.FlattenLayers(f)
	if activeID < 0 || activeID >= len(layers) {
		return Result{}, fmt.Errorf("reconcile with active layer %d: %w", activeID, layer.ErrNotFound)
	}
	next = max(next, layer.NextAnchorID(f))

	if !layers[activeID].Visible {
		logger.DebugTagf("reconcile", "Active layer %d is hidden, ignoring edit", activeID)
		return Result{Forest: f, Next: next, Skipped: true}, nil
	}

	out := f.Clone()
	layers = layer.FlattenLayers(out)
	base := layers[0]

	if activeID == 0 {
		if !overlaysModified(layers) {
			logger.DebugTagf("reconcile", "Base edit without overlays, adopting edited document")
			base.State = edited.Clone()
		} else {
			logger.DebugTagf("reconcile", "Base edit under visible overlays, recovering base text")
			base.State = recoverBase(edited, base.State)
		}
		return Result{Forest: out, Next: next}, nil
	}

	if base.Visible {
		t := newTarget(layers, activeID, edited)
		recovered := recoverBase(edited, base.State)
		ops := r.hunks(base.State, recovered)
		logger.DebugTagf("reconcile", "Layer %d edit produced %d hunks", activeID, len(ops))
		for i := len(ops) - 1; i >= 0; i-- {
			next = r.apply(base, t, ops[i], next)
		}
	}
	next = r.attribute(out, activeID, edited, next)
	return Result{Forest: out, Next: next}, nil
}

// overlaysModified reports whether any visible non-base layer holds modifications.
func overlaysModified(layers []*layer.Layer) bool {
	for _, l := range layers[1:] {
		if l.Visible && len(l.Modifications) > 0 {
			return true
		}
	}
	return false
}

// recoverBase returns a copy of edited where every leaf carrying an anchor known to
// state shows that anchor's text from state instead of the substituted overlay text.
func recoverBase(edited, state document.Tree) document.Tree {
	values := state.AnchorValues()
	out := edited.Clone()
	for bi := range out {
		for li := range out[bi].Leaves {
			leaf := &out[bi].Leaves[li]
			if !leaf.HasAnchor() {
				continue
			}
			if text, ok := values[leaf.Anchor]; ok {
				leaf.Text = text
			}
		}
	}
	return out
}

// attribute folds edits made inside existing anchors into the layers owning them.
// Anchors of the active layer are overwritten; anchors of visible lower layers are
// re-segmented so the lower layer keeps its unchanged and deleted text while the
// active layer receives insertions and hides deletions.
func (r *Reconciler) attribute(f layer.Forest, activeID int, edited document.Tree, next int) int {
	layers := layer.FlattenLayers(f)
	base, active := layers[0], layers[activeID]
	owners := layer.OwnerIndex(f, activeID-1, true)

	values := edited.AnchorValues()
	ids := make([]int, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		value := values[id]
		if _, ok := active.Modifications[id]; ok {
			active.Modifications[id] = value
			continue
		}
		ownerID, ok := owners[id]
		if !ok {
			continue
		}
		owner := layers[ownerID]
		old := owner.Modifications[id]
		if old == value {
			continue
		}
		bi, li, found := base.State.FindAnchor(id)
		if !found {
			continue
		}
		baseText := base.State[bi].Leaves[li].Text

		// Only a piece the owner still controls carries the base text.
		diffs := r.diff(old, value)
		leaves := make([]document.Leaf, 0, len(diffs)+1)
		placed := false
		for _, d := range diffs {
			newID := next
			next++
			text := r.opts.Placeholder
			if !placed && d.Type != diffmatchpatch.DiffInsert {
				text, placed = baseText, true
			}
			leaves = append(leaves, document.Leaf{Text: text, Anchor: newID})
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				owner.Modifications[newID] = d.Text
			case diffmatchpatch.DiffDelete:
				owner.Modifications[newID] = d.Text
				active.Modifications[newID] = ""
			case diffmatchpatch.DiffInsert:
				active.Modifications[newID] = d.Text
			}
		}
		if !placed {
			// An owner that hid the base text keeps hiding it.
			leaves = append([]document.Leaf{{Text: baseText, Anchor: next}}, leaves...)
			owner.Modifications[next] = ""
			next++
		}
		base.State.ReplaceAnchor(id, leaves)
		delete(owner.Modifications, id)
		logger.DebugTagf("reconcile", "Split anchor %d of layer %d into %d anchors", id, ownerID, len(leaves))
	}
	return next
}

// diff runs a character diff and merges trivial equalities so hunks follow words
// rather than scattered characters.
func (r *Reconciler) diff(a, b string) []diffmatchpatch.Diff {
	diffs := r.dmp.DiffMain(a, b, false)
	return r.dmp.DiffCleanupSemantic(diffs)
}
