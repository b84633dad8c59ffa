package client

import (
	"time"
)

// fpsWindow is the span over which the displayed frame rate is averaged.
const fpsWindow = time.Second

// State holds per-session view state. The sky itself lives in the renderer.
type State struct {
	Running    bool
	ShowHUD    bool      // Status line and key help
	wasHUD     bool      // HUD visibility at the last draw
	lastInput  time.Time // Last key or mouse event
	frameCount int       // Frames since windowStart
	windowFrom time.Time
	fps        float64 // Measured frames per second
}

// NewState creates the initial session state.
func NewState() *State {
	now := time.Now()
	return &State{
		Running:    true,
		ShowHUD:    true,
		wasHUD:     true,
		lastInput:  now,
		windowFrom: now,
	}
}

// countFrame updates the measured frame rate.
func (s *State) countFrame(now time.Time) {
	s.frameCount++
	if d := now.Sub(s.windowFrom); d >= fpsWindow {
		s.fps = float64(s.frameCount) / d.Seconds()
		s.frameCount = 0
		s.windowFrom = now
	}
}

// FPS returns the measured frame rate.
func (s *State) FPS() float64 {
	return s.fps
}
