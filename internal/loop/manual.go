package loop

import (
	"time"

	"github.com/tomz197/nightsky/internal/sky"
)

// Manual is a scheduler advanced explicitly by Step. It is used for offline
// rendering and in tests.
type Manual struct {
	pending sky.FrameFunc
	seq     uint64
	steps   int
}

// RequestFrame schedules fn for the next Step. It satisfies sky.Scheduler.
func (m *Manual) RequestFrame(fn sky.FrameFunc) (cancel func()) {
	m.seq++
	id := m.seq
	m.pending = fn
	return func() {
		if m.seq == id {
			m.pending = nil
		}
	}
}

// Pending reports whether a callback is waiting for Step.
func (m *Manual) Pending() bool {
	return m.pending != nil
}

// Steps returns the number of callbacks run.
func (m *Manual) Steps() int {
	return m.steps
}

// Step runs the pending callback with now. It reports false if nothing was
// scheduled.
func (m *Manual) Step(now time.Duration) bool {
	fn := m.pending
	if fn == nil {
		return false
	}
	m.pending = nil
	m.steps++
	fn(now)
	return true
}

// Run steps up to frames times, advancing the clock by interval each frame.
// It stops early once nothing is scheduled and returns the frames run.
func (m *Manual) Run(frames int, interval time.Duration) int {
	n := 0
	for i := 0; i < frames; i++ {
		if !m.Step(time.Duration(i) * interval) {
			break
		}
		n++
	}
	return n
}

var _ sky.Scheduler = (*Manual)(nil).RequestFrame
