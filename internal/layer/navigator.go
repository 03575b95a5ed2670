package layer

import "github.com/bethropolis/strata/internal/logger"

// Entry records a node together with its parent and its index among its siblings.
type Entry struct {
	Node              *Node
	Parent            *Entry
	IndexWithinParent int
}

// FlattenNodes lists the nodes in depth-first pre-order.
func FlattenNodes(f Forest) []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range f {
		walk(n)
	}
	return out
}

// FlattenLayers lists the layers in depth-first pre-order; index 0 is the base layer.
func FlattenLayers(f Forest) []*Layer {
	nodes := FlattenNodes(f)
	out := make([]*Layer, len(nodes))
	for i, n := range nodes {
		out[i] = n.Layer
	}
	return out
}

// FlattenWithParent lists the nodes in depth-first pre-order with parent links.
func FlattenWithParent(f Forest) []*Entry {
	var out []*Entry
	var walk func(parent *Entry, idx int, n *Node)
	walk = func(parent *Entry, idx int, n *Node) {
		e := &Entry{Node: n, Parent: parent, IndexWithinParent: idx}
		out = append(out, e)
		for i, c := range n.Children {
			walk(e, i, c)
		}
	}
	for i, n := range f {
		walk(nil, i, n)
	}
	return out
}

// NextAnchorID returns one more than the largest anchor id observed in any
// modifications map or in the base state, or 1 when there is none.
func NextAnchorID(f Forest) int {
	maxID := 0
	for _, l := range FlattenLayers(f) {
		for id := range l.Modifications {
			maxID = max(maxID, id)
		}
	}
	if base := f.Base(); base != nil {
		for _, id := range base.State.Anchors() {
			maxID = max(maxID, id)
		}
	}
	return maxID + 1
}

// OwnerIndex maps every anchor id to the flattened position of the layer owning it,
// scanning non-base layers up to and including horizon. With visibleOnly set,
// hidden layers are skipped.
func OwnerIndex(f Forest, horizon int, visibleOnly bool) map[int]int {
	owners := make(map[int]int)
	layers := FlattenLayers(f)
	for i := 1; i <= horizon && i < len(layers); i++ {
		if visibleOnly && !layers[i].Visible {
			continue
		}
		for id := range layers[i].Modifications {
			owners[id] = i
		}
	}
	return owners
}

// SetVisibility shows or hides a layer. Hiding hides every descendant; showing
// shows every ancestor.
func SetVisibility(f Forest, id int, visible bool) error {
	entries := FlattenWithParent(f)
	if id < 0 || id >= len(entries) {
		return ErrNotFound
	}
	entry := entries[id]
	if visible {
		for p := entry.Parent; p != nil; p = p.Parent {
			p.Node.Layer.Visible = true
		}
	} else {
		queue := append([]*Node(nil), entry.Node.Children...)
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			current.Layer.Visible = false
			queue = append(queue, current.Children...)
		}
	}
	entry.Node.Layer.Visible = visible
	logger.DebugTagf("layer", "Layer %d (%s) visibility set to %v", id, entry.Node.Layer.Name, visible)
	return nil
}
