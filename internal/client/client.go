// Package client drives one sky on a raw terminal: it owns the canvas, the
// renderer, the frame loop and the input stream of a single connection.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/draw"
	"github.com/tomz197/nightsky/internal/hud"
	"github.com/tomz197/nightsky/internal/input"
	"github.com/tomz197/nightsky/internal/loop"
	"github.com/tomz197/nightsky/internal/sky"
)

// Session handles rendering and input for a single connection.
type Session struct {
	state        *State
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates frame output for chunked writes
	writer       io.Writer
	inputStream  *input.Stream
	termSizeFunc draw.TermSizeFunc // Nil when sizes arrive through Resize
	username     string
	idleTimeout  time.Duration

	loop     *loop.FrameLoop
	resizes  loop.ResizeNotifier
	renderer *sky.Renderer
	styles   hud.Styles
	logger   *log.Logger
	err      error // First output error; ends the session
}

// Options configures the session.
type Options struct {
	// TermSizeFunc is polled every frame. When it is nil and Width is set,
	// the session starts at Width x Height and later sizes come from Resize.
	// With neither, os.Stdout is polled.
	TermSizeFunc draw.TermSizeFunc
	Width        int
	Height       int
	Username     string
	Sky          sky.Options
	Rand         *rand.Rand      // Optional
	FPS          int             // Defaults to config.ClientTargetFPS
	ColorProfile termenv.Profile // Zero value is TrueColor
	IdleTimeout  time.Duration   // Zero disables the inactivity disconnect
	Logger       *log.Logger
}

// New creates a session reading keys from r and drawing to w.
func New(r *bufio.Reader, w io.Writer, opts Options) (*Session, error) {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil && opts.Width <= 0 {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = config.ClientTargetFPS
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	// Create canvas with clamped dimensions for max render resolution
	termWidth, termHeight := opts.Width, opts.Height
	if termSizeFunc != nil {
		termWidth, termHeight, _ = termSizeFunc()
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewUnitCanvas(renderWidth, renderHeight, config.CellUnit)
	canvas.SetOffset(offsetCol, offsetRow)
	canvas.SetProfile(opts.ColorProfile)

	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(opts.ColorProfile)

	s := &Session{
		state:        NewState(),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		writer:       w,
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		username:     opts.Username,
		idleTimeout:  opts.IdleTimeout,
		loop:         loop.NewFrameLoop(fps),
		styles:       hud.NewStyles(lr),
		logger:       logger,
	}

	renderer, err := sky.New(sky.Host{
		Surface:  canvas,
		Schedule: s.loop.RequestFrame,
		Resizes:  &s.resizes,
		Rand:     opts.Rand,
		Logger:   logger,
	}, opts.Sky)
	if err != nil {
		return nil, fmt.Errorf("create sky: %w", err)
	}
	s.renderer = renderer

	s.loop.BeforeFrame(s.processInput)
	s.loop.BeforeFrame(s.updateScreen)
	s.loop.AfterFrame(s.afterFrame)
	return s, nil
}

// Renderer returns the session's sky.
func (s *Session) Renderer() *sky.Renderer {
	return s.renderer
}

// Run starts the frame loop. Blocks until the user quits, the input closes,
// the session idles out or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	draw.HideCursor(s.writer)
	draw.EnableMouse(s.writer)
	defer func() {
		draw.DisableMouse(s.writer)
		draw.ShowCursor(s.writer)
	}()
	draw.ClearScreen(s.writer)

	err := s.loop.Run(ctx)
	s.renderer.Destroy()

	draw.ClearScreen(s.writer)
	if s.err != nil {
		return s.err
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// stop ends the session after the current frame.
func (s *Session) stop() {
	s.state.Running = false
	s.loop.Stop()
}

// processInput reads input and applies it to the renderer.
func (s *Session) processInput() {
	in := input.ReadInput(s.inputStream)
	now := time.Now()

	if len(in.Pressed) > 0 {
		s.state.lastInput = now
	} else if s.idleTimeout > 0 && now.Sub(s.state.lastInput) > s.idleTimeout {
		s.logger.Info("disconnecting idle session", "user", s.username)
		s.stop()
		return
	}

	if in.Quit {
		s.stop()
		return
	}

	if in.Meteor {
		s.renderer.TriggerMeteor()
	}
	if p := patchFor(in, s.renderer.Options()); p != (sky.Patch{}) {
		if err := s.renderer.SetOptions(p); err != nil {
			s.logger.Error("apply key", "err", err)
		}
	}
	if in.ToggleHUD%2 == 1 {
		s.state.ShowHUD = !s.state.ShowHUD
	}

	if in.PointerLeft {
		s.renderer.ClearPointer()
	}
	if m := in.Mouse; m != nil {
		s.pointAt(m.Col, m.Row)
	}
}

// patchFor turns toggle keys into an option update.
func patchFor(in input.Input, opts sky.Options) sky.Patch {
	var p sky.Patch
	if in.ToggleTwinkle%2 == 1 {
		p.EnableTwinkle = sky.Ptr(!opts.EnableTwinkle)
	}
	if in.ToggleLines%2 == 1 {
		p.ShowLines = sky.Ptr(!opts.ShowLines)
	}
	if in.NextProfile > 0 {
		next := opts.Profile
		for range in.NextProfile {
			next = next.Next()
		}
		p.Profile = &next
	}
	return p
}

// pointAt moves the sky's pointer to a terminal cell, or clears it when the
// cell is outside the render area.
func (s *Session) pointAt(col, row int) {
	c := col - s.canvas.OffsetCol()
	r := row - s.canvas.OffsetRow()
	if c < 1 || r < 1 || c > s.canvas.TerminalWidth() || r > s.canvas.TerminalHeight() {
		s.renderer.ClearPointer()
		return
	}
	s.renderer.SetPointer(s.canvas.TerminalToLogical(col, row))
}

// Resize applies a terminal size reported by the connection, such as an SSH
// window change. It is safe to call from any goroutine; the size takes
// effect before the next frame.
func (s *Session) Resize(width, height int) {
	s.loop.Post(func() { s.applySize(width, height) })
}

// updateScreen polls the terminal size when the session has a size function.
func (s *Session) updateScreen() {
	if s.termSizeFunc == nil {
		return
	}
	termWidth, termHeight, err := s.termSizeFunc()
	if err != nil {
		return
	}
	s.applySize(termWidth, termHeight)
}

// applySize clamps the terminal size to the max render resolution. On actual
// size changes it clears the terminal to remove residual pixels outside the
// new canvas area and regenerates the sky.
func (s *Session) applySize(termWidth, termHeight int) {
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	resized := renderWidth != s.canvas.TerminalWidth() || renderHeight != s.canvas.TerminalHeight()
	if resized || offsetCol != s.canvas.OffsetCol() || offsetRow != s.canvas.OffsetRow() {
		s.chunkWriter.WriteString("\033[H\033[2J")
		s.canvas.ForceRedraw()
	}

	s.canvas.Resize(renderWidth, renderHeight)
	s.canvas.SetOffset(offsetCol, offsetRow)
	s.chunkWriter.SetOffset(offsetCol, offsetRow)

	if resized {
		s.resizes.Notify()
	}
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = max(min(termWidth, config.MaxTermWidth), 0)
	renderHeight = max(min(termHeight, config.MaxTermHeight), 0)
	offsetCol = max((termWidth-renderWidth)/2, 0)
	offsetRow = max((termHeight-renderHeight)/2, 0)
	return
}

func (s *Session) afterFrame() {
	s.state.countFrame(time.Now())
	if err := s.drawFrame(); err != nil {
		s.err = err
		s.stop()
	}
}
