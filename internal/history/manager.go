package history

import (
	"sync"
	"time"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/logger"
)

// Manager handles the undo and redo stacks.
type Manager struct {
	undo       []Snapshot
	redo       []Snapshot
	maxHistory int
	debounce   time.Duration
	lastStored time.Time
	now        func() time.Time
	mutex      sync.Mutex
}

// NewManager creates a history manager keeping at most maxHistory undo states.
func NewManager(maxHistory int, debounce time.Duration) *Manager {
	if maxHistory <= 0 {
		maxHistory = config.DefaultMaxHistory
	}
	if debounce <= 0 {
		debounce = config.DefaultDebounce
	}
	return &Manager{
		undo:       make([]Snapshot, 0, maxHistory),
		maxHistory: maxHistory,
		debounce:   debounce,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for debouncing.
func (m *Manager) SetClock(now func() time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.now = now
}

// Store pushes a state to undo to and clears the redo history.
func (m *Manager) Store(s Snapshot) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.push(s.Clone())
}

// StoreDebounced stores the state only when the previous call is older than the
// debounce window and the state differs from the top of the undo stack. Calls
// inside the window extend it. It reports whether a snapshot was stored.
func (m *Manager) StoreDebounced(s Snapshot) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	now := m.now()
	if now.Sub(m.lastStored) <= m.debounce {
		m.lastStored = now
		return false
	}
	if n := len(m.undo); n > 0 && m.undo[n-1].SameState(s) {
		return false
	}
	m.push(s.Clone())
	return true
}

func (m *Manager) push(s Snapshot) {
	m.undo = append(m.undo, s)
	m.redo = m.redo[:0]
	if len(m.undo) > m.maxHistory {
		// Oldest states are evicted first.
		m.undo = m.undo[len(m.undo)-m.maxHistory:]
	}
	m.lastStored = m.now()
	logger.DebugTagf("history", "Stored snapshot %s. Undo: %d", s.ID, len(m.undo))
}

// Undo returns the previous state and saves current for Redo. The bool is false
// when there is nothing to undo.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.undo) == 0 {
		logger.DebugTagf("history", "Nothing to undo.")
		return Snapshot{}, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, current.Clone())
	logger.DebugTagf("history", "Undo to %s. Undo: %d, Redo: %d", prev.ID, len(m.undo), len(m.redo))
	return prev.Clone(), true
}

// Redo returns the state most recently undone and saves current for Undo.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.redo) == 0 {
		logger.DebugTagf("history", "Nothing to redo.")
		return Snapshot{}, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, current.Clone())
	logger.DebugTagf("history", "Redo to %s. Undo: %d, Redo: %d", next.ID, len(m.undo), len(m.redo))
	return next.Clone(), true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.undo = m.undo[:0]
	m.redo = m.redo[:0]
	m.lastStored = time.Time{}
	logger.DebugTagf("history", "Cleared.")
}

// CanUndo returns true if there are states that can be restored.
func (m *Manager) CanUndo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.undo) > 0
}

// CanRedo returns true if there are undone states that can be reapplied.
func (m *Manager) CanRedo() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.redo) > 0
}

// Snapshots returns copies of the undo stack, oldest first.
func (m *Manager) Snapshots() []Snapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]Snapshot, len(m.undo))
	for i, s := range m.undo {
		out[i] = s.Clone()
	}
	return out
}

// RedoSnapshots returns copies of the redo stack, oldest first.
func (m *Manager) RedoSnapshots() []Snapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	out := make([]Snapshot, len(m.redo))
	for i, s := range m.redo {
		out[i] = s.Clone()
	}
	return out
}

// Restore replaces both stacks, for example with snapshots read from disk.
func (m *Manager) Restore(undo, redo []Snapshot) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.undo = m.undo[:0]
	m.redo = m.redo[:0]
	for _, s := range undo {
		m.undo = append(m.undo, s.Clone())
	}
	if len(m.undo) > m.maxHistory {
		m.undo = m.undo[len(m.undo)-m.maxHistory:]
	}
	for _, s := range redo {
		m.redo = append(m.redo, s.Clone())
	}
}
