package hud

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/nightsky/internal/sky"
)

func plainStyles() Styles {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return NewStyles(r)
}

func TestStatus(t *testing.T) {
	s := plainStyles()
	st := sky.Stats{Profile: sky.ProfileRealistic, Stars: 812, Meteors: 2, Lines: 0}

	line := s.Status("alice", st, 29.7, 200)
	for _, want := range []string{"alice", "realistic", "stars 812", "meteors 2", "29.7 fps"} {
		if !strings.Contains(line, want) {
			t.Errorf("status %q missing %q", line, want)
		}
	}
	if strings.Contains(s.Status("", st, 0, 200), "│ realistic") {
		t.Error("empty name left a separator")
	}
}

func TestFitTruncates(t *testing.T) {
	s := plainStyles()
	for _, width := range []int{0, 5, 20} {
		if got := lipgloss.Width(s.Help(width)); got > width {
			t.Errorf("Help(%d) width = %d", width, got)
		}
	}
	if got := s.Help(200); !strings.Contains(got, "q quit") {
		t.Errorf("help = %q", got)
	}
}
