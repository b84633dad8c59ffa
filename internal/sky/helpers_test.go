package sky

import (
	"math/rand/v2"
	"time"

	"github.com/tomz197/nightsky/internal/draw"
)

// recordingSurface records the kind of every drawing call.
type recordingSurface struct {
	w, h      float64
	calls     []string
	lines     []draw.Color // Colour at offset 0 of every line
	lineStops [][]draw.GradientStop
}

func (s *recordingSurface) Size() (float64, float64) { return s.w, s.h }

func (s *recordingSurface) Clear(draw.Color) { s.calls = append(s.calls, "clear") }

func (s *recordingSurface) FillCircle(x, y, r float64, c draw.Color) {
	s.calls = append(s.calls, "circle")
}

func (s *recordingSurface) FillRadial(x, y, r float64, stops []draw.GradientStop) {
	s.calls = append(s.calls, "radial")
}

func (s *recordingSurface) StrokeLine(x1, y1, x2, y2, width float64, stops []draw.GradientStop) {
	s.calls = append(s.calls, "line")
	s.lines = append(s.lines, stops[0].Color)
	s.lineStops = append(s.lineStops, append([]draw.GradientStop(nil), stops...))
}

func (s *recordingSurface) count(kind string) int {
	n := 0
	for _, c := range s.calls {
		if c == kind {
			n++
		}
	}
	return n
}

// stepScheduler holds at most one pending frame callback.
type stepScheduler struct {
	pending  FrameFunc
	requests int
	cancels  int
}

func (s *stepScheduler) schedule(fn FrameFunc) func() {
	s.pending = fn
	s.requests++
	id := s.requests
	return func() {
		if s.requests == id && s.pending != nil {
			s.pending = nil
			s.cancels++
		}
	}
}

// step runs the pending callback, if any, and reports whether one ran.
func (s *stepScheduler) step(now time.Duration) bool {
	fn := s.pending
	if fn == nil {
		return false
	}
	s.pending = nil
	fn(now)
	return true
}

// resizeHub is a minimal ResizeSource.
type resizeHub struct {
	handlers map[int]func()
	next     int
}

func (h *resizeHub) OnResize(fn func()) func() {
	if h.handlers == nil {
		h.handlers = make(map[int]func())
	}
	id := h.next
	h.next++
	h.handlers[id] = fn
	return func() { delete(h.handlers, id) }
}

func (h *resizeHub) notify() {
	for _, fn := range h.handlers {
		fn()
	}
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
