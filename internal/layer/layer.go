// Package layer holds the layer stack: named layers arranged in a forest whose
// depth-first order gives each layer its external id (0 is the base layer).
package layer

import (
	"errors"
	"maps"

	"github.com/bethropolis/strata/internal/document"
)

var (
	// ErrNotFound is returned when a layer id is outside the flattened stack.
	ErrNotFound = errors.New("layer not found")
	// ErrBaseLayer is returned for structural edits that would touch the base layer.
	ErrBaseLayer = errors.New("the base layer cannot be removed or moved")
	// ErrCycle is returned when a layer would be moved into its own subtree.
	ErrCycle = errors.New("a layer cannot be moved into its own subtree")
)

// Palette holds the default colours handed out to new layers.
var Palette = []string{"#f94144", "#f3722c", "#f8961e", "#43aa8b", "#577590", "#9b5de5", "#00bbf9"}

// BaseColor is the colour of the base layer.
const BaseColor = "white"

// Layer is one modification layer. Only the base layer uses State.
type Layer struct {
	Name          string         `yaml:"name"`
	Color         string         `yaml:"color"`
	Visible       bool           `yaml:"visible"`
	Modifications map[int]string `yaml:"modifications,omitempty"`
	State         document.Tree  `yaml:"state,omitempty"`
}

// NewLayer creates a visible layer with no modifications.
func NewLayer(name, color string) *Layer {
	return &Layer{Name: name, Color: color, Visible: true, Modifications: map[int]string{}}
}

// NewBase creates the base layer owning the given document.
func NewBase(name string, state document.Tree) *Layer {
	l := NewLayer(name, BaseColor)
	l.State = state
	return l
}

// Clone returns a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	if l == nil {
		return nil
	}
	c := *l
	c.Modifications = maps.Clone(l.Modifications)
	if c.Modifications == nil {
		c.Modifications = map[int]string{}
	}
	c.State = l.State.Clone()
	return &c
}

// Node places a layer in the hierarchy.
type Node struct {
	ID       string  `yaml:"id"`
	Layer    *Layer  `yaml:"layer"`
	Children []*Node `yaml:"children,omitempty"`
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{ID: n.ID, Layer: n.Layer.Clone()}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Forest is the list of root nodes; the first root holds the base layer.
type Forest []*Node

// NewForest creates a forest holding only a base layer over the given document.
func NewForest(name string, state document.Tree) Forest {
	return Forest{{ID: "0", Layer: NewBase(name, state)}}
}

// Clone returns a deep copy of the forest with value semantics.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, len(f))
	for i, n := range f {
		out[i] = n.Clone()
	}
	return out
}

// Base returns the base layer, or nil for an empty forest.
func (f Forest) Base() *Layer {
	if len(f) == 0 {
		return nil
	}
	return f[0].Layer
}

// Layer returns the layer at a flattened position.
func (f Forest) Layer(id int) (*Layer, error) {
	layers := FlattenLayers(f)
	if id < 0 || id >= len(layers) {
		return nil, ErrNotFound
	}
	return layers[id], nil
}

// Len returns the number of layers in the stack.
func (f Forest) Len() int {
	return len(FlattenNodes(f))
}
