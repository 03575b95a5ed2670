package session

import (
	"github.com/bethropolis/strata/internal/event"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
)

// SelectLayer makes a layer active. Hidden layers can be selected, but edits
// made while they are active are ignored.
func (s *Session) SelectLayer(id int) error {
	s.mu.Lock()
	if id < 0 || id >= s.forest.Len() {
		s.mu.Unlock()
		return layer.ErrNotFound
	}
	prev := s.active
	s.active = id
	s.mu.Unlock()

	logger.DebugTagf("session", "Active layer %d -> %d", prev, id)
	s.events.Dispatch(event.TypeLayerSelected, event.LayerSelectedData{LayerID: id, Previous: prev})
	return nil
}

// SetVisibility shows or hides a layer, cascading to descendants or ancestors.
func (s *Session) SetVisibility(id int, visible bool) error {
	s.mu.Lock()
	before := s.snapshot()
	next := s.forest.Clone()
	if err := layer.SetVisibility(next, id, visible); err != nil {
		s.mu.Unlock()
		return err
	}
	s.history.Store(before)
	s.forest = next
	s.mu.Unlock()

	s.events.Dispatch(event.TypeVisibilityChanged, event.VisibilityChangedData{LayerID: id, Visible: visible})
	return nil
}

// SetProperties renames or recolours a layer.
func (s *Session) SetProperties(id int, props layer.Properties) error {
	return s.structural("rename", func(f layer.Forest) (layer.Forest, int, error) {
		return f, id, layer.SetProperties(f, id, props)
	})
}

// AddLayer inserts a copy of l under parentID (negative for a root) at index and
// returns its position. A layer without colour receives one from the palette.
func (s *Session) AddLayer(l *layer.Layer, parentID, index int) (int, error) {
	if l == nil {
		return -1, layer.ErrNotFound
	}
	var id int
	l = l.Clone()
	err := s.structural("add", func(f layer.Forest) (layer.Forest, int, error) {
		if l.Color == "" {
			l.Color = layer.Palette[(f.Len()-1)%len(layer.Palette)]
		}
		if l.Modifications == nil {
			l.Modifications = map[int]string{}
		}
		var err error
		f, id, err = layer.AddLayer(f, &layer.Node{Layer: l}, parentID, index)
		return f, id, err
	})
	return id, err
}

// RemoveLayer deletes a layer and its subtree. When the active layer goes with
// it, the layer just before the removed one becomes active.
func (s *Session) RemoveLayer(id int) error {
	return s.structural("remove", func(f layer.Forest) (layer.Forest, int, error) {
		f, _, err := layer.RemoveLayer(f, id)
		return f, id, err
	})
}

// MoveLayer moves a layer with its subtree under targetParentID (negative for
// the roots) at index and returns its new position.
func (s *Session) MoveLayer(id, targetParentID, index int) (int, error) {
	var newID int
	err := s.structural("move", func(f layer.Forest) (layer.Forest, int, error) {
		var err error
		f, newID, err = layer.MoveLayer(f, id, targetParentID, index)
		return f, newID, err
	})
	return newID, err
}

// structural runs a change of the layer stack on a copy of the forest, keeps the
// same layer active when it survives, records history and notifies subscribers.
func (s *Session) structural(action string, fn func(layer.Forest) (layer.Forest, int, error)) error {
	s.mu.Lock()
	before := s.snapshot()
	f := s.forest.Clone()
	activeNode := layer.FlattenNodes(f)[s.active]

	f, id, err := fn(f)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	active := -1
	for i, n := range layer.FlattenNodes(f) {
		if n == activeNode {
			active = i
			break
		}
	}
	if active < 0 {
		active = max(id-1, 0)
	}

	s.history.Store(before)
	s.forest = f
	s.active = active
	count := f.Len()
	s.mu.Unlock()

	logger.DebugTagf("session", "Layer %s at %d, %d layers, active %d", action, id, count, active)
	s.events.Dispatch(event.TypeLayersChanged, event.LayersChangedData{Action: action, LayerID: id, Count: count})
	return nil
}
