// Package history provides undo/redo over snapshots of the layer stack.
package history

import (
	"reflect"
	"time"

	"github.com/bethropolis/strata/internal/layer"
	"github.com/google/uuid"
)

// Snapshot is a deep copy of the session state at one point in time.
type Snapshot struct {
	ID     string       `yaml:"id"`
	Forest layer.Forest `yaml:"forest"`
	Active int          `yaml:"active"`
	Next   int          `yaml:"next"`
	Taken  time.Time    `yaml:"taken"`
}

// NewSnapshot copies the forest so later edits cannot reach the snapshot.
func NewSnapshot(f layer.Forest, active, next int) Snapshot {
	return Snapshot{
		ID:     uuid.NewString(),
		Forest: f.Clone(),
		Active: active,
		Next:   next,
		Taken:  time.Now(),
	}
}

// Clone returns a copy sharing nothing with s.
func (s Snapshot) Clone() Snapshot {
	s.Forest = s.Forest.Clone()
	return s
}

// SameState reports whether two snapshots hold the same forest and active layer,
// regardless of when they were taken.
func (s Snapshot) SameState(o Snapshot) bool {
	return s.Active == o.Active && reflect.DeepEqual(s.Forest, o.Forest)
}
