// Package session owns one layered document: the forest, the active layer, the
// anchor counter, the undo history and the event bus. Every mutation goes through
// a Session, which serialises them.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bethropolis/strata/internal/compose"
	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/event"
	"github.com/bethropolis/strata/internal/history"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/reconcile"
	"github.com/bethropolis/strata/internal/store"
)

var (
	// ErrInvalidRange is returned for offsets outside the composed document.
	ErrInvalidRange = errors.New("range outside the document")
	// ErrStaleSelection is returned when the document changed under a running tool.
	ErrStaleSelection = errors.New("selection changed while the tool was running")
	// ErrInvisibleLayer is returned when a tool targets a hidden active layer.
	ErrInvisibleLayer = errors.New("active layer is hidden")
)

// Options configures a session.
type Options struct {
	Reconcile  reconcile.Options
	MaxHistory int
	Debounce   time.Duration
	// Events receives session events. A private manager is created when nil.
	Events *event.Manager
}

// OptionsFromConfig builds session options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Reconcile:  reconcile.OptionsFromConfig(cfg),
		MaxHistory: cfg.History.MaxSnapshots,
		Debounce:   cfg.History.Debounce(),
	}
}

// Session is the owning context of a layered document.
type Session struct {
	mu         sync.Mutex
	forest     layer.Forest
	active     int
	next       int
	reconciler *reconcile.Reconciler
	history    *history.Manager
	events     *event.Manager
}

// New creates a session over a forest. The forest is copied.
func New(f layer.Forest, active, next int, opts Options) (*Session, error) {
	if f.Base() == nil {
		return nil, store.ErrNoBase
	}
	if active < 0 || active >= f.Len() {
		return nil, fmt.Errorf("active layer %d: %w", active, layer.ErrNotFound)
	}
	events := opts.Events
	if events == nil {
		events = event.NewManager()
	}
	return &Session{
		forest:     f.Clone(),
		active:     active,
		next:       max(next, layer.NextAnchorID(f)),
		reconciler: reconcile.New(opts.Reconcile),
		history:    history.NewManager(opts.MaxHistory, opts.Debounce),
		events:     events,
	}, nil
}

// NewDocument starts a session with only a base layer holding text.
func NewDocument(text string, opts Options) *Session {
	s, _ := New(layer.NewForest("Base", document.New(text)), 0, 1, opts)
	return s
}

// FromFile creates a session from a loaded layer file, including its history.
func FromFile(f *store.File, opts Options) (*Session, error) {
	s, err := New(f.Forest, f.Active, f.Next, opts)
	if err != nil {
		return nil, err
	}
	s.history.Restore(f.History, f.Redo)
	return s, nil
}

// File captures the session for saving. With withHistory set the undo and redo
// stacks are included.
func (s *Session) File(withHistory bool) *store.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := &store.File{
		Version: store.Version,
		Active:  s.active,
		Next:    s.next,
		Forest:  s.forest.Clone(),
	}
	if withHistory {
		f.History = s.history.Snapshots()
		f.Redo = s.history.RedoSnapshots()
	}
	return f
}

// Events returns the event bus.
func (s *Session) Events() *event.Manager {
	return s.events
}

// History returns the undo/redo manager.
func (s *Session) History() *history.Manager {
	return s.history
}

// Forest returns a copy of the current forest.
func (s *Session) Forest() layer.Forest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forest.Clone()
}

// Active returns the flattened position of the active layer.
func (s *Session) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Next returns the next free anchor id.
func (s *Session) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// Editable reports whether edits currently reach the active layer.
func (s *Session) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.forest.Layer(s.active)
	return err == nil && l.Visible
}

// Composed returns the document shown to the user.
func (s *Session) Composed() document.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return compose.Forest(s.forest)
}

func (s *Session) snapshot() history.Snapshot {
	return history.NewSnapshot(s.forest, s.active, s.next)
}

// Edit folds an edited copy of the composed document into the active layer and
// returns the recomposed document. Editing while the active layer is hidden
// changes nothing.
func (s *Session) Edit(edited document.Tree) (document.Tree, error) {
	s.mu.Lock()
	data, err := s.edit(edited, true)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.events.Dispatch(event.TypeDocumentComposed, data)
	return s.Composed(), nil
}

// edit runs one reconciliation. The caller holds the lock.
func (s *Session) edit(edited document.Tree, debounced bool) (event.DocumentComposedData, error) {
	before := s.snapshot()
	res, err := s.reconciler.Reconcile(s.forest, s.active, edited, s.next)
	if err != nil {
		return event.DocumentComposedData{}, err
	}
	if res.Skipped {
		logger.Infof("Layer %d is hidden, edit ignored", s.active)
		return event.DocumentComposedData{ActiveID: s.active, Skipped: true, Text: compose.Forest(s.forest).Text()}, nil
	}
	if debounced {
		s.history.StoreDebounced(before)
	}
	s.forest, s.next = res.Forest, res.Next
	return event.DocumentComposedData{ActiveID: s.active, Text: compose.Forest(s.forest).Text()}, nil
}

// Replace replaces the runes [start, end) of the composed text, block separators
// counted, as if typed while the active layer has focus.
func (s *Session) Replace(start, end int, text string) (document.Tree, error) {
	s.mu.Lock()
	edited, ok := document.ReplaceRange(compose.Forest(s.forest), start, end, text)
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("replace %d-%d: %w", start, end, ErrInvalidRange)
	}
	data, err := s.edit(edited, true)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	s.events.Dispatch(event.TypeDocumentComposed, data)
	return s.Composed(), nil
}

// Undo restores the previous state. It reports false when there is none.
func (s *Session) Undo() bool {
	s.mu.Lock()
	prev, ok := s.history.Undo(s.snapshot())
	if ok {
		s.restore(prev)
	}
	s.mu.Unlock()
	if ok {
		s.events.Dispatch(event.TypeUndo, event.HistoryData{SnapshotID: prev.ID, ActiveID: prev.Active})
	}
	return ok
}

// Redo reapplies the state most recently undone.
func (s *Session) Redo() bool {
	s.mu.Lock()
	next, ok := s.history.Redo(s.snapshot())
	if ok {
		s.restore(next)
	}
	s.mu.Unlock()
	if ok {
		s.events.Dispatch(event.TypeRedo, event.HistoryData{SnapshotID: next.ID, ActiveID: next.Active})
	}
	return ok
}

// restore installs a snapshot. The anchor counter never moves backwards so ids
// handed out before the undo are not reused.
func (s *Session) restore(snap history.Snapshot) {
	s.forest = snap.Forest
	s.active = snap.Active
	if s.active >= s.forest.Len() {
		s.active = 0
	}
	s.next = max(s.next, snap.Next)
}
