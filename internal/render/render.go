// Package render prints composed documents and layer stacks for the terminal.
// Text contributed by a visible layer is drawn in that layer's colour.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/highlight"
	"github.com/bethropolis/strata/internal/layer"
	"github.com/charmbracelet/lipgloss"
	"github.com/gdamore/tcell/v2"
	"github.com/muesli/termenv"
)

// Renderer turns trees into terminal text.
type Renderer struct {
	color bool
	lg    *lipgloss.Renderer
}

// New creates a renderer writing to w. With color off, or when w is not a
// terminal that supports colour, output is plain text.
func New(w io.Writer, color bool) *Renderer {
	return &Renderer{color: color, lg: lipgloss.NewRenderer(w)}
}

// ForceColor makes the renderer emit true colour sequences regardless of the
// output it was created for.
func (r *Renderer) ForceColor() {
	r.color = true
	r.lg.SetColorProfile(termenv.TrueColor)
}

// NormalizeColor maps a colour name or hex string to "#rrggbb" through the
// tcell colour table. Unknown names yield "".
func NormalizeColor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	c := tcell.GetColor(strings.ToLower(name))
	if c == tcell.ColorDefault {
		return ""
	}
	hex := c.Hex()
	if hex < 0 {
		return ""
	}
	return fmt.Sprintf("#%06x", hex)
}

func (r *Renderer) style(color string) lipgloss.Style {
	s := r.lg.NewStyle()
	if hex := NormalizeColor(color); hex != "" {
		s = s.Foreground(lipgloss.Color(hex))
	}
	return s
}

// Document renders a composed tree. Anchor leaves owned by a visible layer take
// that layer's colour; placeholders are never printed.
func (r *Renderer) Document(f layer.Forest, t document.Tree) string {
	layers := layer.FlattenLayers(f)
	owners := layer.OwnerIndex(f, len(layers)-1, true)

	var b strings.Builder
	for i, block := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, leaf := range block.Leaves {
			text := strings.ReplaceAll(leaf.Text, config.Placeholder, "")
			if text == "" {
				continue
			}
			owner, ok := owners[leaf.Anchor]
			if !r.color || !leaf.HasAnchor() || !ok {
				b.WriteString(text)
				continue
			}
			b.WriteString(r.style(layers[owner].Color).Render(text))
		}
	}
	return b.String()
}

// Layers renders the layer stack as an indented list. The active layer is
// marked with '*', hidden layers with '-'.
func (r *Renderer) Layers(f layer.Forest, active int) string {
	var b strings.Builder
	for id, e := range layer.FlattenWithParent(f) {
		depth := 0
		for p := e.Parent; p != nil; p = p.Parent {
			depth++
		}
		l := e.Node.Layer

		marker := " "
		if id == active {
			marker = "*"
		}
		visible := "+"
		if !l.Visible {
			visible = "-"
		}
		name := l.Name
		if r.color {
			name = r.style(l.Color).Render(name)
		}
		fmt.Fprintf(&b, "%s %2d %s %s%s (%d)\n", marker, id, visible, strings.Repeat("  ", depth), name, len(l.Modifications))
	}
	return b.String()
}

// Highlight renders a word diff. Added text is underlined, removed text struck
// through. Without colour the markers {+...+} and [-...-] are used.
func (r *Renderer) Highlight(segments []highlight.Segment) string {
	added := r.lg.NewStyle().Underline(true).Foreground(lipgloss.Color(NormalizeColor("green")))
	removed := r.lg.NewStyle().Strikethrough(true).Foreground(lipgloss.Color(NormalizeColor("red")))

	var b strings.Builder
	for _, s := range segments {
		switch {
		case s.Kind == highlight.Equal:
			b.WriteString(s.Text)
		case !r.color && s.Kind == highlight.Added:
			b.WriteString("{+" + s.Text + "+}")
		case !r.color:
			b.WriteString("[-" + s.Text + "-]")
		case s.Kind == highlight.Added:
			b.WriteString(added.Render(s.Text))
		default:
			b.WriteString(removed.Render(s.Text))
		}
	}
	return b.String()
}
