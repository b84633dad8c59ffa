// Package tui shows the sky in a local terminal using Bubble Tea. A tea tick
// is the frame clock: each frameMsg advances the renderer by one frame.
package tui

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/config"
	"github.com/tomz197/nightsky/internal/draw"
	"github.com/tomz197/nightsky/internal/hud"
	"github.com/tomz197/nightsky/internal/loop"
	"github.com/tomz197/nightsky/internal/sky"
)

// frameMsg triggers the next sky frame.
type frameMsg time.Time

// Options configures the model.
type Options struct {
	Sky           sky.Options
	FPS           int // Defaults to loop.DefaultFPS
	Width, Height int // Initial terminal size until the first WindowSizeMsg
	Rand          *rand.Rand
	Logger        *log.Logger
	Renderer      *lipgloss.Renderer // Optional; supplies the colour profile
}

// Model is the root Bubble Tea model.
type Model struct {
	canvas   *draw.Canvas
	sched    loop.Manual
	resizes  loop.ResizeNotifier
	renderer *sky.Renderer
	styles   hud.Styles
	logger   *log.Logger

	frameTime time.Duration
	start     time.Time
	showHUD   bool

	// Frame rate measurement
	frames     int
	windowFrom time.Time
	fps        float64
}

// New creates the model and its sky. The first frame runs on the first tick.
func New(opts Options) (*Model, error) {
	fps := opts.FPS
	if fps <= 0 {
		fps = loop.DefaultFPS
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	lr := opts.Renderer
	if lr == nil {
		lr = lipgloss.DefaultRenderer()
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = 80, 24
	}

	m := &Model{
		canvas:    draw.NewUnitCanvas(min(width, config.MaxTermWidth), min(height, config.MaxTermHeight), config.CellUnit),
		styles:    hud.NewStyles(lr),
		logger:    logger,
		frameTime: time.Second / time.Duration(fps),
		showHUD:   true,
	}
	m.canvas.SetProfile(lr.ColorProfile())

	r, err := sky.New(sky.Host{
		Surface:  m.canvas,
		Schedule: m.sched.RequestFrame,
		Resizes:  &m.resizes,
		Rand:     opts.Rand,
		Logger:   logger,
	}, opts.Sky)
	if err != nil {
		return nil, fmt.Errorf("create sky: %w", err)
	}
	m.renderer = r
	return m, nil
}

// Renderer returns the model's sky.
func (m *Model) Renderer() *sky.Renderer {
	return m.renderer
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.BlurMsg:
		m.renderer.ClearPointer()

	case frameMsg:
		now := time.Time(msg)
		if m.start.IsZero() {
			m.start = now
			m.windowFrom = now
		}
		if !m.sched.Step(now.Sub(m.start)) {
			// Destroyed: nothing left to animate.
			return m, nil
		}
		m.countFrame(now)
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	var p sky.Patch
	opts := m.renderer.Options()

	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		m.renderer.Destroy()
		return tea.Quit
	case "m":
		m.renderer.TriggerMeteor()
	case "t":
		p.EnableTwinkle = sky.Ptr(!opts.EnableTwinkle)
	case "l":
		p.ShowLines = sky.Ptr(!opts.ShowLines)
	case "p":
		p.Profile = sky.Ptr(opts.Profile.Next())
	case "h", "H", "?":
		m.showHUD = !m.showHUD
	}

	if p != (sky.Patch{}) {
		if err := m.renderer.SetOptions(p); err != nil {
			m.logger.Error("apply key", "key", msg.String(), "err", err)
		}
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if msg.X < 0 || msg.Y < 0 || msg.X >= m.canvas.TerminalWidth() || msg.Y >= m.canvas.TerminalHeight() {
		m.renderer.ClearPointer()
		return
	}
	// Bubble Tea reports 0-based cells.
	m.renderer.SetPointer(m.canvas.TerminalToLogical(msg.X+1, msg.Y+1))
}

// resize adopts a new terminal size, clamped to the max render resolution.
func (m *Model) resize(width, height int) {
	width = max(min(width, config.MaxTermWidth), 0)
	height = max(min(height, config.MaxTermHeight), 0)
	if width == m.canvas.TerminalWidth() && height == m.canvas.TerminalHeight() {
		return
	}
	m.canvas.Resize(width, height)
	m.resizes.Notify()
}

func (m *Model) countFrame(now time.Time) {
	m.frames++
	if d := now.Sub(m.windowFrom); d >= time.Second {
		m.fps = float64(m.frames) / d.Seconds()
		m.frames = 0
		m.windowFrom = now
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.frameTime, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// View implements tea.Model. The HUD replaces the first and last rows.
func (m *Model) View() string {
	if m.renderer.Destroyed() {
		return ""
	}
	view := m.canvas.String()
	if !m.showHUD || m.canvas.TerminalHeight() < 2 {
		return view
	}

	width := m.canvas.TerminalWidth()
	rows := strings.Split(view, "\n")
	rows[0] = pad(m.styles.Status("", m.renderer.Stats(), m.fps, width), width)
	rows[len(rows)-1] = pad(m.styles.Help(width), width)
	return strings.Join(rows, "\n")
}

// pad extends a styled line with spaces to width cells.
func pad(line string, width int) string {
	if n := width - lipgloss.Width(line); n > 0 {
		return line + strings.Repeat(" ", n)
	}
	return line
}
