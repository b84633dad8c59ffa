// Package hud formats the one-line status and key help shown over the sky.
package hud

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tomz197/nightsky/internal/sky"
)

// Styles renders HUD lines for one output.
type Styles struct {
	label lipgloss.Style
	value lipgloss.Style
	key   lipgloss.Style
	dim   lipgloss.Style
}

// NewStyles creates the HUD styles for r. A nil r uses the default renderer.
func NewStyles(r *lipgloss.Renderer) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Styles{
		label: r.NewStyle().Foreground(lipgloss.Color("244")),
		value: r.NewStyle().Foreground(lipgloss.Color("#C8D7FF")).Bold(true),
		key:   r.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("60")),
	}
}

// Bindings lists the keys understood by the viewers.
var Bindings = []struct{ Key, Desc string }{
	{"m", "meteor"},
	{"t", "twinkle"},
	{"l", "lines"},
	{"p", "profile"},
	{"h", "hud"},
	{"q", "quit"},
}

// Status returns the status line, cut to width cells. Numbers are padded so a
// shrinking value does not leave stale characters behind.
func (s Styles) Status(name string, st sky.Stats, fps float64, width int) string {
	sep := s.dim.Render(" │ ")
	parts := []string{
		s.value.Render(fmt.Sprintf("%-11s", st.Profile)),
		s.label.Render("stars ") + s.value.Render(fmt.Sprintf("%-5d", st.Stars)),
		s.label.Render("meteors ") + s.value.Render(fmt.Sprintf("%-3d", st.Meteors)),
		s.label.Render("lines ") + s.value.Render(fmt.Sprintf("%-5d", st.Lines)),
		s.value.Render(fmt.Sprintf("%5.1f", fps)) + s.label.Render(" fps"),
	}
	if name != "" {
		parts = append([]string{s.key.Render(name)}, parts...)
	}
	return fit(" "+strings.Join(parts, sep)+" ", width)
}

// Help returns the key help line, cut to width cells.
func (s Styles) Help(width int) string {
	items := make([]string, len(Bindings))
	for i, b := range Bindings {
		items[i] = s.key.Render(b.Key) + " " + s.label.Render(b.Desc)
	}
	return fit(" "+strings.Join(items, s.dim.Render("  "))+" ", width)
}

// fit truncates a styled line to width visible cells.
func fit(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(line) <= width {
		return line
	}
	return ansi.Truncate(line, width, "")
}
