package layer

import (
	"fmt"
	"strconv"

	"github.com/bethropolis/strata/internal/logger"
)

// Properties holds the editable presentation attributes of a layer.
// Nil fields are left unchanged.
type Properties struct {
	Name  *string
	Color *string
}

// SetProperties updates the name and/or colour of a layer.
func SetProperties(f Forest, id int, props Properties) error {
	l, err := f.Layer(id)
	if err != nil {
		return err
	}
	if props.Name != nil {
		l.Name = *props.Name
	}
	if props.Color != nil {
		l.Color = *props.Color
	}
	return nil
}

// AddLayer inserts a node under the layer with flattened position parentID, or among
// the roots when parentID is negative, at index within the parent's children. The
// ids of all nodes are refreshed from their flattened positions, which is returned.
func AddLayer(f Forest, node *Node, parentID, index int) (Forest, int, error) {
	if node == nil || node.Layer == nil {
		return f, -1, fmt.Errorf("add layer: %w", ErrNotFound)
	}
	if parentID < 0 {
		// Roots before the base would renumber it away from position 0.
		index = clampIndex(index, 1, len(f))
		f = insertAt(f, index, node)
	} else {
		nodes := FlattenNodes(f)
		if parentID >= len(nodes) {
			return f, -1, fmt.Errorf("add layer under %d: %w", parentID, ErrNotFound)
		}
		parent := nodes[parentID]
		index = clampIndex(index, 0, len(parent.Children))
		parent.Children = insertAt(parent.Children, index, node)
	}

	renumber(f)
	id := indexOf(f, node)
	logger.DebugTagf("layer", "Added layer %q at position %d", node.Layer.Name, id)
	return f, id, nil
}

// RemoveLayer removes the layer at a flattened position along with its subtree and
// returns the removed node.
func RemoveLayer(f Forest, id int) (Forest, *Node, error) {
	if id == 0 {
		return f, nil, ErrBaseLayer
	}
	entries := FlattenWithParent(f)
	if id < 0 || id >= len(entries) {
		return f, nil, ErrNotFound
	}
	entry := entries[id]
	if entry.Parent != nil {
		parent := entry.Parent.Node
		parent.Children = removeAt(parent.Children, entry.IndexWithinParent)
	} else {
		f = removeAt(f, entry.IndexWithinParent)
	}
	renumber(f)
	logger.DebugTagf("layer", "Removed layer %q from position %d", entry.Node.Layer.Name, id)
	return f, entry.Node, nil
}

// MoveLayer detaches a layer with its subtree and reinserts it under targetParentID
// (negative for the roots) at index. It returns the layer's new flattened position.
func MoveLayer(f Forest, id, targetParentID, index int) (Forest, int, error) {
	if id == 0 {
		return f, -1, ErrBaseLayer
	}
	nodes := FlattenNodes(f)
	if id < 0 || id >= len(nodes) {
		return f, -1, ErrNotFound
	}
	moving := nodes[id]

	var target *Node
	if targetParentID >= 0 {
		if targetParentID >= len(nodes) {
			return f, -1, ErrNotFound
		}
		target = nodes[targetParentID]
		if target == moving || contains(moving, target) {
			return f, -1, ErrCycle
		}
	}

	f, _, err := RemoveLayer(f, id)
	if err != nil {
		return f, -1, err
	}

	if target == nil {
		return AddLayer(f, moving, -1, index)
	}
	targetID := indexOf(f, target)
	return AddLayer(f, moving, targetID, index)
}

// SubtreeSize returns the number of layers in the subtree rooted at a flattened position.
func SubtreeSize(f Forest, id int) int {
	nodes := FlattenNodes(f)
	if id < 0 || id >= len(nodes) {
		return 0
	}
	return len(FlattenNodes(Forest{nodes[id]}))
}

// renumber refreshes every node id from its flattened position.
func renumber(f Forest) {
	for i, n := range FlattenNodes(f) {
		n.ID = strconv.Itoa(i)
	}
}

func contains(root, n *Node) bool {
	for _, c := range root.Children {
		if c == n || contains(c, n) {
			return true
		}
	}
	return false
}

func indexOf(f Forest, n *Node) int {
	for i, candidate := range FlattenNodes(f) {
		if candidate == n {
			return i
		}
	}
	return -1
}

func clampIndex(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func removeAt[T any](s []T, i int) []T {
	return append(s[:i], s[i+1:]...)
}
