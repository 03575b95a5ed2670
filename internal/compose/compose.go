// Package compose overlays the visible layers of a stack onto the base document.
package compose

import (
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
)

// Compose builds the document shown to the user from the flattened layers, base
// layer first. The input layers are not modified.
func Compose(layers []*layer.Layer) document.Tree {
	if len(layers) == 0 {
		return document.Tree{{Leaves: []document.Leaf{{}}}}
	}
	base := layers[0]
	tree := base.State.Clone()
	if len(tree) == 0 {
		tree = document.Tree{{Leaves: []document.Leaf{{}}}}
	}
	if !base.Visible {
		tree.StripUnanchored()
	}

	for i, l := range layers[1:] {
		if !l.Visible {
			continue
		}
		for anchor, text := range l.Modifications {
			bi, li, ok := tree.FindAnchor(anchor)
			if !ok {
				logger.DebugTagf("compose", "Skipping orphaned anchor %d of layer %d (%s)", anchor, i+1, l.Name)
				continue
			}
			tree[bi].Leaves[li].Text = text
		}
	}
	return tree
}

// Forest composes every layer of a forest.
func Forest(f layer.Forest) document.Tree {
	return Compose(layer.FlattenLayers(f))
}
