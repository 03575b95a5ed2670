package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bethropolis/strata/internal/compose"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/highlight"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/stretchr/testify/assert"
)

func colouredForest() layer.Forest {
	state := document.Tree{
		{Leaves: []document.Leaf{{Text: "Hello "}, {Text: "world", Anchor: 1}, {Text: "\x00", Anchor: 2}}},
		{Leaves: []document.Leaf{{Text: "second line"}}},
	}
	f := layer.NewForest("Base", state)
	bold := layer.NewLayer("Bold", "red")
	bold.Modifications[1] = "earth"
	notes := layer.NewLayer("Notes", "#00ff00")
	notes.Modifications[2] = "!"
	notes.Visible = false
	f[0].Children = []*layer.Node{{ID: "1", Layer: bold, Children: []*layer.Node{{ID: "2", Layer: notes}}}}
	return f
}

func TestNormalizeColor(t *testing.T) {
	assert.Equal(t, "#ff0000", NormalizeColor("red"))
	assert.Equal(t, "#ff0000", NormalizeColor(" Red "))
	assert.Equal(t, "#43aa8b", NormalizeColor("#43aa8b"))
	assert.Equal(t, "", NormalizeColor("not-a-colour"))
	assert.Equal(t, "", NormalizeColor(""))
}

func TestDocumentPlain(t *testing.T) {
	f := colouredForest()
	r := New(&bytes.Buffer{}, false)
	assert.Equal(t, "Hello earth\nsecond line", r.Document(f, compose.Forest(f)))
}

func TestDocumentColoursVisibleOwners(t *testing.T) {
	f := colouredForest()
	r := New(&bytes.Buffer{}, true)
	r.ForceColor()

	out := r.Document(f, compose.Forest(f))
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "earth")
	assert.True(t, strings.HasPrefix(out, "Hello "), "plain text stays unstyled")
	assert.NotContains(t, out, "\x00")
}

func TestLayers(t *testing.T) {
	f := colouredForest()
	r := New(&bytes.Buffer{}, false)
	out := r.Layers(f, 1)
	assert.Equal(t, "   0 + Base (0)\n*  1 +   Bold (1)\n   2 -     Notes (1)\n", out)
}

func TestHighlightPlainMarkers(t *testing.T) {
	r := New(&bytes.Buffer{}, false)
	out := r.Highlight(highlight.Text("The cat sat", "The dog sat"))
	assert.Equal(t, "The [-cat-]{+dog+} sat", out)
}

func TestHighlightColour(t *testing.T) {
	r := New(&bytes.Buffer{}, false)
	r.ForceColor()
	out := r.Highlight(highlight.Text("The cat sat", "The dog sat"))
	assert.Contains(t, out, "\x1b[")
	assert.NotContains(t, out, "{+")
}
