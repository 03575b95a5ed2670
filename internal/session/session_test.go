package session

import (
	"context"
	"testing"
	"time"

	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/event"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/reconcile"
	"github.com/bethropolis/strata/internal/tool"
	"github.com/bethropolis/strata/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{Reconcile: reconcile.DefaultOptions(), MaxHistory: 50}
}

func helloSession(t *testing.T) *Session {
	t.Helper()
	state := document.Tree{{Leaves: []document.Leaf{
		{Text: "Hello "},
		{Text: "world", Anchor: 1},
	}}}
	f := layer.NewForest("Base", state)
	bold := layer.NewLayer("Bold", "red")
	bold.Modifications[1] = "earth"
	f, _, err := layer.AddLayer(f, &layer.Node{Layer: bold}, 0, 0)
	require.NoError(t, err)
	s, err := New(f, 0, 0, testOptions())
	require.NoError(t, err)
	return s
}

func TestNewValidates(t *testing.T) {
	_, err := New(layer.Forest{}, 0, 0, testOptions())
	assert.Error(t, err)
	_, err = New(layer.NewForest("b", document.New("x")), 3, 0, testOptions())
	assert.ErrorIs(t, err, layer.ErrNotFound)

	s := NewDocument("text", testOptions())
	assert.Equal(t, "text", s.Composed().Text())
	assert.Equal(t, 1, s.Next())
}

func TestEditActiveLayer(t *testing.T) {
	s := helloSession(t)
	assert.Equal(t, "Hello earth", s.Composed().Text())
	assert.Equal(t, 2, s.Next())

	require.NoError(t, s.SelectLayer(1))
	doc, err := s.Replace(6, 11, "planet")
	require.NoError(t, err)
	assert.Equal(t, "Hello planet", doc.Text())

	f := s.Forest()
	bold, err := f.Layer(1)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "planet"}, bold.Modifications)
	assert.Equal(t, "Hello world", f.Base().State.Text())
}

func TestEditWholeTree(t *testing.T) {
	s := NewDocument("one", testOptions())
	doc, err := s.Edit(document.New("two"))
	require.NoError(t, err)
	assert.Equal(t, "two", doc.Text())
}

func TestReplaceInvalidRange(t *testing.T) {
	s := NewDocument("short", testOptions())
	_, err := s.Replace(2, 40, "x")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestHiddenLayerEditIsIgnored(t *testing.T) {
	s := helloSession(t)
	var composed []event.DocumentComposedData
	s.Events().Subscribe(event.TypeDocumentComposed, func(e event.Event) bool {
		composed = append(composed, e.Data.(event.DocumentComposedData))
		return false
	})

	require.NoError(t, s.SetVisibility(1, false))
	require.NoError(t, s.SelectLayer(1))
	assert.False(t, s.Editable())

	doc, err := s.Replace(0, 5, "Bye")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", doc.Text())
	require.Len(t, composed, 1)
	assert.True(t, composed[0].Skipped)
}

func TestVisibilityCascadeThroughSession(t *testing.T) {
	s := helloSession(t)
	require.NoError(t, s.SetVisibility(0, false))
	f := s.Forest()
	for _, l := range layer.FlattenLayers(f) {
		assert.False(t, l.Visible, l.Name)
	}
	require.NoError(t, s.SetVisibility(1, true))
	f = s.Forest()
	assert.True(t, f.Base().Visible)

	assert.ErrorIs(t, s.SetVisibility(9, true), layer.ErrNotFound)
}

func TestLayerEvents(t *testing.T) {
	s := helloSession(t)
	var got []event.Type
	record := func(e event.Event) bool {
		got = append(got, e.Type)
		return false
	}
	for _, typ := range []event.Type{event.TypeLayersChanged, event.TypeLayerSelected, event.TypeVisibilityChanged, event.TypeUndo, event.TypeRedo} {
		s.Events().Subscribe(typ, record)
	}

	_, err := s.AddLayer(layer.NewLayer("Notes", ""), -1, 5)
	require.NoError(t, err)
	require.NoError(t, s.SelectLayer(2))
	require.NoError(t, s.SetVisibility(2, false))
	require.True(t, s.Undo())
	require.True(t, s.Redo())

	assert.Equal(t, []event.Type{
		event.TypeLayersChanged,
		event.TypeLayerSelected,
		event.TypeVisibilityChanged,
		event.TypeUndo,
		event.TypeRedo,
	}, got)
}

func TestAddLayerAssignsPaletteColour(t *testing.T) {
	s := helloSession(t)
	l := layer.NewLayer("Notes", "")
	id, err := s.AddLayer(l, -1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	added, err := s.Forest().Layer(id)
	require.NoError(t, err)
	assert.Equal(t, layer.Palette[1], added.Color)
	assert.Empty(t, l.Color, "the caller's layer is copied, not adopted")

	l.Name = "renamed outside"
	l.Modifications[99] = "leak"
	added, err = s.Forest().Layer(id)
	require.NoError(t, err)
	assert.Equal(t, "Notes", added.Name)
	assert.Empty(t, added.Modifications)
}

func TestRemoveLayerAdjustsActive(t *testing.T) {
	s := NewDocument("text", testOptions())
	for _, name := range []string{"A", "B", "C"} {
		_, err := s.AddLayer(layer.NewLayer(name, "red"), -1, 10)
		require.NoError(t, err)
	}
	require.NoError(t, s.SelectLayer(3))

	require.NoError(t, s.RemoveLayer(1))
	assert.Equal(t, 2, s.Active(), "C moved up")
	active, err := s.Forest().Layer(s.Active())
	require.NoError(t, err)
	assert.Equal(t, "C", active.Name)

	require.NoError(t, s.RemoveLayer(2))
	assert.Equal(t, 1, s.Active(), "the layer before C becomes active")

	assert.ErrorIs(t, s.RemoveLayer(0), layer.ErrBaseLayer)
}

func TestMoveLayerKeepsActive(t *testing.T) {
	s := NewDocument("text", testOptions())
	for _, name := range []string{"A", "B"} {
		_, err := s.AddLayer(layer.NewLayer(name, "red"), -1, 10)
		require.NoError(t, err)
	}
	require.NoError(t, s.SelectLayer(1))

	id, err := s.MoveLayer(1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Equal(t, 2, s.Active())

	_, err = s.MoveLayer(1, 2, 0)
	assert.ErrorIs(t, err, layer.ErrCycle)
}

func TestSetProperties(t *testing.T) {
	s := helloSession(t)
	name := "Strong"
	require.NoError(t, s.SetProperties(1, layer.Properties{Name: &name}))
	l, err := s.Forest().Layer(1)
	require.NoError(t, err)
	assert.Equal(t, "Strong", l.Name)
}

func TestUndoRedo(t *testing.T) {
	s := NewDocument("Hello world", testOptions())
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.History().SetClock(func() time.Time { return clock })

	_, err := s.AddLayer(layer.NewLayer("extra", "red"), -1, 1)
	require.NoError(t, err)
	require.NoError(t, s.SelectLayer(1))
	clock = clock.Add(2 * time.Second)

	_, err = s.Replace(6, 6, "big ")
	require.NoError(t, err)
	assert.Equal(t, "Hello big world", s.Composed().Text())
	next := s.Next()

	require.True(t, s.Undo())
	assert.Equal(t, "Hello world", s.Composed().Text())
	assert.Equal(t, next, s.Next(), "the counter never goes back")

	require.True(t, s.Redo())
	assert.Equal(t, "Hello big world", s.Composed().Text())

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.Equal(t, 1, s.Forest().Len())
	assert.False(t, s.Undo())
}

func TestTypingRightAfterStructuralChangeIsFolded(t *testing.T) {
	s := NewDocument("Hello world", testOptions())
	_, err := s.AddLayer(layer.NewLayer("extra", "red"), -1, 1)
	require.NoError(t, err)
	require.NoError(t, s.SelectLayer(1))
	_, err = s.Replace(6, 6, "big ")
	require.NoError(t, err)

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.Forest().Len())
	assert.Equal(t, "Hello world", s.Composed().Text())
}

func TestApplyTool(t *testing.T) {
	s := NewDocument("The cat sat. Bye", testOptions())
	var prompts []string
	tr := transform.Func(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "The cats sat.", nil
	})
	tl, err := tool.New(tool.Pluralize, tr, "")
	require.NoError(t, err)

	var applied []event.TransformAppliedData
	s.Events().Subscribe(event.TypeTransformApplied, func(e event.Event) bool {
		applied = append(applied, e.Data.(event.TransformAppliedData))
		return false
	})

	doc, err := s.ApplyTool(context.Background(), tl, 4, 7)
	require.NoError(t, err)
	assert.Equal(t, "The cats sat. Bye", doc.Text())
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "PART_TO_PLURAL: cat")
	require.Len(t, applied, 1)
	assert.Equal(t, event.TransformAppliedData{Tool: "pluralize", Start: 0, End: 11, Result: "The cats sat"}, applied[0])

	require.True(t, s.Undo())
	assert.Equal(t, "The cat sat. Bye", s.Composed().Text())
}

func TestApplyToolStaleSelection(t *testing.T) {
	s := NewDocument("The cat sat.", testOptions())
	tr := transform.Func(func(context.Context, string) (string, error) {
		_, err := s.Replace(0, 3, "A")
		return "ignored", err
	})
	tl, err := tool.New(tool.Repair, tr, "")
	require.NoError(t, err)

	_, err = s.ApplyTool(context.Background(), tl, 0, 7)
	assert.ErrorIs(t, err, ErrStaleSelection)
	assert.Equal(t, "A cat sat.", s.Composed().Text())
}

func TestApplyToolRevalidatesActiveLayer(t *testing.T) {
	s := helloSession(t)
	require.NoError(t, s.SelectLayer(1))
	before := s.Forest()

	switchLayer := transform.Func(func(context.Context, string) (string, error) {
		return "Planet", s.SelectLayer(0)
	})
	tl, err := tool.New(tool.Repair, switchLayer, "")
	require.NoError(t, err)
	_, err = s.ApplyTool(context.Background(), tl, 6, 11)
	assert.ErrorIs(t, err, ErrStaleSelection)

	require.NoError(t, s.SelectLayer(1))
	hideLayer := transform.Func(func(context.Context, string) (string, error) {
		return "Planet", s.SetVisibility(1, false)
	})
	tl, err = tool.New(tool.Repair, hideLayer, "")
	require.NoError(t, err)
	_, err = s.ApplyTool(context.Background(), tl, 6, 11)
	assert.ErrorIs(t, err, ErrInvisibleLayer)

	// Only the visibility change was recorded.
	require.True(t, s.Undo())
	assert.Equal(t, before, s.Forest())
	assert.False(t, s.History().CanUndo())
}

func TestApplyToolOnHiddenLayer(t *testing.T) {
	s := helloSession(t)
	require.NoError(t, s.SelectLayer(1))
	require.NoError(t, s.SetVisibility(1, false))
	tl, err := tool.New(tool.Repair, transform.Func(func(context.Context, string) (string, error) {
		t.Fatal("transformer must not run")
		return "", nil
	}), "")
	require.NoError(t, err)

	_, err = s.ApplyTool(context.Background(), tl, 0, 5)
	assert.ErrorIs(t, err, ErrInvisibleLayer)
	_, err = NewDocument("abc", testOptions()).ApplyTool(context.Background(), tl, 2, 9)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFileRoundTrip(t *testing.T) {
	s := helloSession(t)
	require.NoError(t, s.SelectLayer(1))
	_, err := s.Replace(6, 11, "planet")
	require.NoError(t, err)

	f := s.File(true)
	assert.Equal(t, 1, f.Active)
	assert.NotEmpty(t, f.History)

	restored, err := FromFile(f, testOptions())
	require.NoError(t, err)
	assert.Equal(t, "Hello planet", restored.Composed().Text())
	assert.Equal(t, 1, restored.Active())
	assert.True(t, restored.History().CanUndo())
}
