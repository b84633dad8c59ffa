package client

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/input"
	"github.com/tomz197/nightsky/internal/sky"
)

type fixedSize struct{ w, h int }

func (f *fixedSize) get() (int, int, error) { return f.w, f.h, nil }

func newTestSession(t *testing.T, r io.Reader, w io.Writer, size *fixedSize) *Session {
	t.Helper()
	s, err := New(bufio.NewReader(r), w, Options{
		TermSizeFunc: size.get,
		Sky:          sky.DefaultOptions(sky.ProfileClassic),
		Rand:         rand.New(rand.NewPCG(1, 2)),
		FPS:          200,
		Logger:       log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSessionQuits(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out bytes.Buffer
	s := newTestSession(t, pr, &out, &fixedSize{80, 24})

	go func() {
		time.Sleep(50 * time.Millisecond)
		pw.Write([]byte("q"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.state.Running {
		t.Error("state still running")
	}
	if !s.Renderer().Destroyed() {
		t.Error("renderer not destroyed")
	}
	if !strings.Contains(out.String(), "\033[?25h") {
		t.Error("cursor not restored")
	}
	if !strings.Contains(out.String(), "▀") {
		t.Error("no sky cells rendered")
	}
}

func TestSessionEndsOnClosedInput(t *testing.T) {
	var out bytes.Buffer
	s := newTestSession(t, strings.NewReader(""), &out, &fixedSize{40, 12})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestSessionResizeRegeneratesSky(t *testing.T) {
	size := &fixedSize{80, 24}
	s := newTestSession(t, strings.NewReader(""), io.Discard, size)

	w, h := s.Renderer().Size()
	if w != 80*config.CellUnit || h != 48*config.CellUnit {
		t.Fatalf("initial sky size %vx%v", w, h)
	}

	size.w, size.h = 120, 40
	s.updateScreen()
	w, h = s.Renderer().Size()
	if w != 120*config.CellUnit || h != 80*config.CellUnit {
		t.Errorf("sky size after resize %vx%v", w, h)
	}
	want := sky.EffectiveStarCount(200, w, h)
	if got := s.Renderer().Stats().Stars; got != want {
		t.Errorf("stars = %d, want %d", got, want)
	}
}

func TestSessionResizeFromConnection(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	s, err := New(bufio.NewReader(pr), io.Discard, Options{
		Width:  80,
		Height: 24,
		Sky:    sky.DefaultOptions(sky.ProfileClassic),
		Rand:   rand.New(rand.NewPCG(1, 2)),
		FPS:    200,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w, _ := s.Renderer().Size(); w != 80*config.CellUnit {
		t.Fatalf("initial width %v", w)
	}

	type size struct{ w, h float64 }
	got := make(chan size, 1)
	go func() {
		s.Resize(100, 30)
		s.loop.Post(func() {
			w, h := s.Renderer().Size()
			got <- size{w, h}
			s.stop()
		})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case sz := <-got:
		if sz.w != 100*config.CellUnit || sz.h != 60*config.CellUnit {
			t.Errorf("sky size after resize %vx%v", sz.w, sz.h)
		}
	default:
		t.Fatal("posted resize never ran")
	}
}

func TestSessionClampsLargeTerminal(t *testing.T) {
	size := &fixedSize{config.MaxTermWidth + 20, config.MaxTermHeight + 10}
	s := newTestSession(t, strings.NewReader(""), io.Discard, size)

	if s.canvas.TerminalWidth() != config.MaxTermWidth || s.canvas.OffsetCol() != 10 || s.canvas.OffsetRow() != 5 {
		t.Errorf("canvas %dx%d at +%d+%d", s.canvas.TerminalWidth(), s.canvas.TerminalHeight(),
			s.canvas.OffsetCol(), s.canvas.OffsetRow())
	}

	// Cells in the margin clear the pointer.
	s.pointAt(3, 3)
	if s.Renderer().Pointer().Active {
		t.Error("pointer active outside render area")
	}
	s.pointAt(11, 6)
	p := s.Renderer().Pointer()
	if !p.Active || p.X != 0.5*config.CellUnit || p.Y != config.CellUnit {
		t.Errorf("pointer = %+v", p)
	}
}

func TestPatchFor(t *testing.T) {
	opts := sky.DefaultOptions(sky.ProfileClassic)

	p := patchFor(input.Input{ToggleTwinkle: 1, ToggleLines: 2, NextProfile: 2}, opts)
	if p.EnableTwinkle == nil || *p.EnableTwinkle {
		t.Errorf("twinkle = %v", p.EnableTwinkle)
	}
	if p.ShowLines != nil {
		t.Error("double toggle should cancel out")
	}
	if p.Profile == nil || *p.Profile != sky.ProfileInteractive {
		t.Errorf("profile = %v", p.Profile)
	}

	if p := patchFor(input.Input{}, opts); p != (sky.Patch{}) {
		t.Errorf("empty input produced %+v", p)
	}
}

func TestClampTermSize(t *testing.T) {
	w, h, c, r := clampTermSize(80, 24)
	if w != 80 || h != 24 || c != 0 || r != 0 {
		t.Errorf("clampTermSize(80, 24) = %d %d %d %d", w, h, c, r)
	}
	w, h, _, _ = clampTermSize(-1, -1)
	if w != 0 || h != 0 {
		t.Errorf("negative size clamped to %dx%d", w, h)
	}
}
