// Package sky renders an animated night sky: twinkling stars, proximity
// lines between nearby stars, pointer perturbation and meteors with fading
// trails. The package owns the simulation only; drawing, frame scheduling
// and resize notification are supplied by the caller through Host.
package sky

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/draw"
)

var (
	// ErrNoSurface is returned by New when the host has no drawing surface.
	ErrNoSurface = errors.New("sky: no drawing surface")
	// ErrNoScheduler is returned by New when the host has no frame scheduler.
	ErrNoScheduler = errors.New("sky: no frame scheduler")
)

// Surface is the drawing context a Renderer paints on. Coordinates are
// logical units with the origin at the top-left corner.
type Surface interface {
	// Size returns the current drawable dimensions.
	Size() (width, height float64)
	// Clear paints the whole surface with bg.
	Clear(bg draw.Color)
	// FillCircle fills a disc.
	FillCircle(x, y, radius float64, c draw.Color)
	// FillRadial fills a disc with a gradient from centre (offset 0) to rim (offset 1).
	FillRadial(x, y, radius float64, stops []draw.GradientStop)
	// StrokeLine strokes a segment with a gradient from (x1,y1) (offset 0)
	// to (x2,y2) (offset 1). Implementations must not keep stops.
	StrokeLine(x1, y1, x2, y2, width float64, stops []draw.GradientStop)
}

// FrameFunc is called once per frame with the time elapsed since the
// scheduler started.
type FrameFunc func(now time.Duration)

// Scheduler requests a single call of fn on the next frame and returns a
// handle that cancels the request. Cancelling an already-run request is a no-op.
type Scheduler func(fn FrameFunc) (cancel func())

// ResizeSource delivers surface resize notifications. By the time a
// handler runs the surface already reports its new size.
type ResizeSource interface {
	OnResize(fn func()) (unsubscribe func())
}

// Host bundles the collaborators a Renderer depends on.
type Host struct {
	Surface  Surface
	Schedule Scheduler
	Resizes  ResizeSource // Optional
	Rand     *rand.Rand   // Optional; seeded from the clock when nil
	Logger   *log.Logger  // Optional; log.Default() when nil
}

// Default viewport used when the surface reports a zero size.
const (
	DefaultWidth  = 1920
	DefaultHeight = 1080
)

func newRand() *rand.Rand {
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>17|1))
}
