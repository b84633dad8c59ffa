package raster

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/loop"
	"github.com/tomz197/nightsky/internal/sky"
)

// FrameStep is the simulated time between snapshot frames.
const FrameStep = 16 * time.Millisecond

// Limits for snapshot requests.
const (
	MaxSize   = 4096
	MaxFrames = 600
)

// meteorLead is how many frames before the end a snapshot launches its
// meteor, so the last frame shows it mid-flight.
const meteorLead = 20

// Snapshot renders frames frames of a sky seeded with seed and returns the
// surface holding the last one with the renderer's final counters. When
// meteors are enabled one is launched shortly before the last frame, since
// the spawn timer rarely fires within a snapshot. The same arguments always
// give the same image.
func Snapshot(opts sky.Options, width, height, frames int, seed uint64, logger *log.Logger) (*Surface, sky.Stats, error) {
	if width <= 0 || height <= 0 || width > MaxSize || height > MaxSize {
		return nil, sky.Stats{}, fmt.Errorf("snapshot size %dx%d out of range", width, height)
	}
	frames = min(max(frames, 1), MaxFrames)

	surf := New(width, height)
	var sched loop.Manual
	r, err := sky.New(sky.Host{
		Surface:  surf,
		Schedule: sched.RequestFrame,
		Rand:     rand.New(rand.NewPCG(seed, seed>>17|1)),
		Logger:   logger,
	}, opts)
	if err != nil {
		return nil, sky.Stats{}, fmt.Errorf("create sky: %w", err)
	}
	defer r.Destroy()

	launch := max(frames-meteorLead, 0)
	for i := range frames {
		if i == launch && opts.EnableMeteors {
			r.TriggerMeteor()
		}
		if !sched.Step(time.Duration(i) * FrameStep) {
			break
		}
	}
	return surf, r.Stats(), nil
}
