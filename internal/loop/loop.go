// Package loop provides frame schedulers and resize notification for
// driving a sky.Renderer.
package loop

import (
	"context"
	"sync"
	"time"

	"github.com/tomz197/nightsky/internal/sky"
)

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 60

// FrameLoop runs frames at a fixed rate on the goroutine that calls Run.
// Each frame: posted work → before hooks → pending frame callback → after hooks.
type FrameLoop struct {
	frameTime time.Duration

	pending sky.FrameFunc
	seq     uint64 // Identifies the pending request for cancellation
	before  []func()
	after   []func()
	frames  uint64
	stopped bool

	mu     sync.Mutex
	posted []func()
}

// NewFrameLoop creates a loop ticking fps times per second.
func NewFrameLoop(fps int) *FrameLoop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &FrameLoop{frameTime: time.Second / time.Duration(fps)}
}

// FrameTime returns the target duration of one frame.
func (l *FrameLoop) FrameTime() time.Duration {
	return l.frameTime
}

// RequestFrame schedules fn for the next frame, replacing any earlier
// request. It satisfies sky.Scheduler and must be called from the loop
// goroutine.
func (l *FrameLoop) RequestFrame(fn sky.FrameFunc) (cancel func()) {
	l.seq++
	id := l.seq
	l.pending = fn
	return func() {
		if l.seq == id {
			l.pending = nil
		}
	}
}

// Pending reports whether a frame callback is scheduled.
func (l *FrameLoop) Pending() bool {
	return l.pending != nil
}

// BeforeFrame registers a hook run at the start of every frame.
func (l *FrameLoop) BeforeFrame(fn func()) {
	l.before = append(l.before, fn)
}

// AfterFrame registers a hook run at the end of every frame, e.g. to flush
// output.
func (l *FrameLoop) AfterFrame(fn func()) {
	l.after = append(l.after, fn)
}

// Post queues fn to run on the loop goroutine before the next frame. It is
// safe to call from any goroutine.
func (l *FrameLoop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Stop makes Run return after the current frame.
func (l *FrameLoop) Stop() {
	l.stopped = true
}

// Frames returns the number of frames run so far.
func (l *FrameLoop) Frames() uint64 {
	return l.frames
}

// Run ticks until Stop is called or ctx is done. Frame callbacks receive the
// time elapsed since Run started.
func (l *FrameLoop) Run(ctx context.Context) error {
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for !l.stopped {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frameStart := time.Now()
		l.step(frameStart.Sub(start))
		if l.stopped {
			break
		}

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < l.frameTime {
			timer.Reset(l.frameTime - elapsed)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return nil
}

func (l *FrameLoop) step(now time.Duration) {
	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	for _, fn := range l.before {
		fn()
	}

	if fn := l.pending; fn != nil {
		l.pending = nil
		fn(now)
	}
	l.frames++

	for _, fn := range l.after {
		fn()
	}
}

// Ensure FrameLoop.RequestFrame satisfies sky.Scheduler.
var _ sky.Scheduler = (*FrameLoop)(nil).RequestFrame
