package session

import (
	"context"
	"fmt"

	"github.com/bethropolis/strata/internal/compose"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/event"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/tool"
	"github.com/bethropolis/strata/internal/utils"
)

// ApplyTool runs a tool over the runes [start, end) of the composed text. The
// transformer is called without holding the session lock; its answer is only
// applied if the replaced text is still unchanged, and then goes through the same
// reconciliation as typing.
func (s *Session) ApplyTool(ctx context.Context, t tool.Tool, start, end int) (document.Tree, error) {
	s.mu.Lock()
	activeID := s.active
	l, err := s.forest.Layer(activeID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if !l.Visible {
		s.mu.Unlock()
		return nil, ErrInvisibleLayer
	}
	text := compose.Forest(s.forest).Text()
	s.mu.Unlock()

	n := utils.RuneLen(text)
	if start < 0 || end > n || start > end {
		return nil, fmt.Errorf("tool %v on %d-%d: %w", t.Kind(), start, end, ErrInvalidRange)
	}
	from, to := start, end
	if t.Scope() == tool.ScopeSentence {
		from, to = tool.SentenceRange(text, start, end)
	}
	sel := tool.Selection{
		Before: utils.SliceRunes(text, from, start),
		Text:   utils.SliceRunes(text, start, end),
		After:  utils.SliceRunes(text, end, to),
	}
	expected := utils.SliceRunes(text, from, to)

	result, err := t.Apply(ctx, sel)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.active != activeID {
		s.mu.Unlock()
		logger.Warnf("Discarding %v result: the active layer changed", t.Kind())
		return nil, ErrStaleSelection
	}
	if l, err := s.forest.Layer(activeID); err != nil || !l.Visible {
		s.mu.Unlock()
		logger.Warnf("Discarding %v result: layer %d was hidden", t.Kind(), activeID)
		return nil, ErrInvisibleLayer
	}
	composed := compose.Forest(s.forest)
	if utils.SliceRunes(composed.Text(), from, to) != expected {
		s.mu.Unlock()
		logger.Warnf("Discarding %v result: the selection changed", t.Kind())
		return nil, ErrStaleSelection
	}
	edited, ok := document.ReplaceRange(composed, from, to, result)
	if !ok {
		s.mu.Unlock()
		return nil, ErrStaleSelection
	}
	before := s.snapshot()
	data, err := s.edit(edited, false)
	if err == nil && !data.Skipped {
		s.history.Store(before)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.events.Dispatch(event.TypeTransformApplied, event.TransformAppliedData{
		Tool:   t.Kind().String(),
		Start:  from,
		End:    to,
		Result: result,
	})
	s.events.Dispatch(event.TypeDocumentComposed, data)
	return s.Composed(), nil
}
