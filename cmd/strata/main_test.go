package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t      *testing.T
	dir    string
	file   string
	answer string
}

func newHarness(t *testing.T) *harness {
	dir := t.TempDir()
	return &harness{t: t, dir: dir, file: filepath.Join(dir, "doc.yaml"), answer: "Planet."}
}

// run executes one CLI invocation against the harness file and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	a := newApp()
	a.newTransformer = func(config.TransformConfig) (transform.Transformer, error) {
		return transform.Func(func(context.Context, string) (string, error) {
			return h.answer, nil
		}), nil
	}
	root := newRootCmd(a)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("from stdin\n"))
	root.SetArgs(append([]string{
		"--file", h.file,
		"--config", filepath.Join(h.dir, "config.toml"),
		"--loglevel", "error",
		"--color=false",
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	out, err := h.run(args...)
	require.NoError(h.t, err, "strata %v", args)
	return out
}

func TestInitAndCompose(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.mustRun("init", "Hello world"), "created")
	assert.Equal(t, "Hello world\n", h.mustRun("compose"))

	_, err := h.run("init", "again")
	assert.ErrorIs(t, err, errFileExists)

	h.mustRun("init", "--force")
	assert.Equal(t, "from stdin\n", h.mustRun("compose"))
}

func TestInitFromFile(t *testing.T) {
	h := newHarness(t)
	src := filepath.Join(h.dir, "text.txt")
	require.NoError(t, os.WriteFile(src, []byte("one\ntwo\n"), 0o644))
	h.mustRun("init", "--from", src)
	assert.Equal(t, "one\ntwo\n", h.mustRun("compose"))
}

func TestLayerEditAndVisibility(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "Hello world")
	assert.Equal(t, "added layer 1 \"Bold\"\n", h.mustRun("layer", "add", "Bold", "--color", "red"))

	assert.Equal(t, "Hello earth\n", h.mustRun("edit", "6", "11", "earth"))
	assert.Equal(t, "Hello earth\n", h.mustRun("compose"))

	h.mustRun("layer", "hide", "1")
	assert.Equal(t, "Hello world\n", h.mustRun("compose"))
	h.mustRun("layer", "show", "1")
	assert.Equal(t, "Hello earth\n", h.mustRun("compose"))

	list := h.mustRun("layer", "list")
	assert.Contains(t, list, "*  1 + Bold (")
}

func TestEditDiff(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "The cat sat")
	h.mustRun("layer", "add", "Animals")
	assert.Equal(t, "The [-cat-]{+dog+} sat\n", h.mustRun("edit", "4", "7", "dog", "--diff"))
}

func TestEditSelectsLayer(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "Hello world")
	h.mustRun("layer", "add", "Bold")
	h.mustRun("edit", "--layer", "0", "0", "5", "Howdy")
	assert.Contains(t, h.mustRun("layer", "list"), "*  0 + Base (0)")
	assert.Equal(t, "Howdy world\n", h.mustRun("compose"))
}

func TestLayerStructure(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "text")
	h.mustRun("layer", "add", "A")
	h.mustRun("layer", "add", "B")
	assert.Equal(t, "moved layer 2 to 2\n", h.mustRun("layer", "move", "2", "--parent", "1"))
	h.mustRun("layer", "rename", "2", "Child", "--color", "blue")

	list := h.mustRun("layer", "list")
	assert.Contains(t, list, "   2 +   Child (0)")

	_, err := h.run("layer", "remove", "0")
	assert.ErrorIs(t, err, layer.ErrBaseLayer)

	h.mustRun("layer", "remove", "1")
	assert.NotContains(t, h.mustRun("layer", "list"), "Child")

	_, err = h.run("layer", "select", "7")
	assert.ErrorIs(t, err, layer.ErrNotFound)
	_, err = h.run("layer", "remove", "x")
	assert.ErrorIs(t, err, errNotANumber)
}

func TestUndoRedoAcrossInvocations(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "Hello world")
	h.mustRun("layer", "add", "Bold")
	h.mustRun("edit", "6", "11", "earth")

	assert.Equal(t, "Hello world\n", h.mustRun("undo"))
	assert.Equal(t, "Hello earth\n", h.mustRun("redo"))
	assert.Equal(t, "nothing to redo\n", h.mustRun("redo"))
}

func TestTransform(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "Hello world")
	h.mustRun("layer", "add", "Rewrite")

	out := h.mustRun("transform", "prompt", "6", "11", "--instruction", "another word", "--diff=false")
	assert.Equal(t, "Hello planet\n", out)

	_, err := h.run("transform", "prompt", "6", "12")
	assert.Error(t, err)
	_, err = h.run("transform", "sparkle", "0", "1")
	assert.Error(t, err)
}

func TestHighlightAgainstOtherFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("init", "The cat sat")
	before := filepath.Join(h.dir, "before.yaml")
	data, err := os.ReadFile(h.file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(before, data, 0o644))

	assert.Equal(t, "no changes\n", h.mustRun("highlight", before))
	h.mustRun("layer", "add", "Animals")
	h.mustRun("edit", "4", "7", "dog")
	assert.Equal(t, "The [-cat-]{+dog+} sat\n", h.mustRun("highlight", before))
}
