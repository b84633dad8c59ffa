package sky

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/nightsky/internal/draw"
)

// Stats is a snapshot of renderer counters.
type Stats struct {
	Profile Profile
	Width   float64
	Height  float64
	Stars   int
	Meteors int
	Lines   int    // Lines drawn in the last frame
	Frames  uint64 // Frames rendered since construction
}

// Renderer owns one star field and its meteors, and draws them once per
// scheduled frame. All methods must be called from the goroutine that runs
// the scheduler's callbacks.
type Renderer struct {
	surf     Surface
	schedule Scheduler
	logger   *log.Logger

	opts Options
	pal  palette

	width, height float64
	stars         []Star
	meteors       []*Meteor
	pointer       Pointer

	gen     *Generator
	spawner *Spawner
	linker  Linker

	// Stable handler references, registered once and released on Destroy.
	frame       FrameFunc
	onResize    func()
	cancel      func()
	unsubscribe func()

	destroyed bool
	frames    uint64
	lines     int
	lineStops [2]draw.GradientStop // Reused by the line pass
}

// New creates a renderer on host's surface and requests its first frame.
func New(host Host, opts Options) (*Renderer, error) {
	if host.Surface == nil {
		return nil, ErrNoSurface
	}
	if host.Schedule == nil {
		return nil, ErrNoScheduler
	}
	resolved, pal, err := opts.resolve()
	if err != nil {
		return nil, err
	}

	rng := host.Rand
	if rng == nil {
		rng = newRand()
	}
	logger := host.Logger
	if logger == nil {
		logger = log.Default()
	}

	r := &Renderer{
		surf:     host.Surface,
		schedule: host.Schedule,
		logger:   logger.WithPrefix("sky"),
		opts:     resolved,
		pal:      pal,
		pointer:  idlePointer(),
		gen:      NewGenerator(rng),
		spawner:  NewSpawner(rng, resolved.MeteorInterval),
	}
	r.frame = r.tick
	r.onResize = r.Resize
	r.lineStops[1].Offset = 1

	r.measure()
	r.regenerate()

	if host.Resizes != nil {
		r.unsubscribe = host.Resizes.OnResize(r.onResize)
	}
	r.cancel = r.schedule(r.frame)

	r.logger.Debug("renderer started", "profile", r.opts.Profile, "width", r.width, "height", r.height, "stars", len(r.stars))
	return r, nil
}

// measure reads the surface size, falling back to the default viewport.
func (r *Renderer) measure() {
	w, h := r.surf.Size()
	if w <= 0 || h <= 0 {
		r.logger.Warn("surface has no size, using default viewport", "width", w, "height", h)
		w, h = DefaultWidth, DefaultHeight
	}
	r.width, r.height = w, h
}

// regenerate replaces the whole star field.
func (r *Renderer) regenerate() {
	r.stars = r.gen.Stars(r.opts.Profile, r.opts.StarCount, r.width, r.height)
}

// tick renders one frame and requests the next.
func (r *Renderer) tick(now time.Duration) {
	if r.destroyed {
		return
	}
	r.cancel = nil

	r.surf.Clear(r.pal.background)

	if r.opts.EnableMeteors && r.spawner.Check(now) {
		r.spawn()
	}

	r.drawStars(now)
	r.drawLines()
	r.drawMeteors()

	r.frames++
	r.cancel = r.schedule(r.frame)
}

func (r *Renderer) drawStars(now time.Duration) {
	for i := range r.stars {
		s := &r.stars[i]
		s.move(r.width, r.height, r.opts.EdgeMode)
		if r.opts.EnablePointer {
			r.pointer.Perturb(s, r.opts.MouseRadius, r.opts.PointerMode)
		}

		c := r.pal.star
		if r.opts.Profile == ProfileRealistic {
			c = s.Color
		}
		s.draw(r.surf, c, s.Alpha(now, r.opts.TwinkleIntensity, r.opts.EnableTwinkle))
	}
}

func (r *Renderer) drawLines() {
	r.lines = 0
	if !r.opts.ShowLines {
		return
	}
	r.linker.Pairs(r.stars, r.opts.MaxDistance, r.width, r.height, func(i, j int, d float64) {
		c := r.pal.line.WithAlpha(LineOpacity(d, r.opts.MaxDistance, r.pal.line.A))
		r.lineStops[0].Color, r.lineStops[1].Color = c, c
		a, b := &r.stars[i], &r.stars[j]
		r.surf.StrokeLine(a.X, a.Y, b.X, b.Y, lineWidth, r.lineStops[:])
		r.lines++
	})
}

// drawMeteors updates, prunes and draws meteors. Iterating backwards keeps
// removal in place safe.
func (r *Renderer) drawMeteors() {
	for i := len(r.meteors) - 1; i >= 0; i-- {
		m := r.meteors[i]
		if m.Update(r.width, r.height) {
			r.meteors = append(r.meteors[:i], r.meteors[i+1:]...)
			continue
		}
		m.Draw(r.surf)
	}
}

func (r *Renderer) spawn() {
	m := r.spawner.Spawn(r.opts.Profile, r.opts.MeteorAngle, r.width, r.height)
	r.meteors = append(r.meteors, m)
	r.logger.Debug("meteor", "class", m.Class, "x", m.X, "y", m.Y)
}

// Resize re-reads the surface size and regenerates the star field.
func (r *Renderer) Resize() {
	if r.destroyed {
		return
	}
	r.measure()
	r.regenerate()
	r.logger.Debug("resized", "width", r.width, "height", r.height, "stars", len(r.stars))
}

// SetOptions merges p into the live options. Stars are regenerated only when
// the star density or profile changed. An invalid patch leaves the renderer
// untouched.
func (r *Renderer) SetOptions(p Patch) error {
	next, pal, err := r.opts.Apply(p).resolve()
	if err != nil {
		return err
	}
	regen := r.opts.densityChanged(next)
	r.opts, r.pal = next, pal
	r.spawner.SetInterval(next.MeteorInterval)
	if !next.EnablePointer {
		r.pointer = idlePointer()
	}
	if regen && !r.destroyed {
		r.regenerate()
	}
	return nil
}

// TriggerMeteor spawns a meteor immediately, independent of the timer.
func (r *Renderer) TriggerMeteor() {
	if r.destroyed {
		return
	}
	r.spawn()
}

// Destroy cancels the pending frame and detaches from resize events. It is
// safe to call more than once.
func (r *Renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.unsubscribe != nil {
		r.unsubscribe()
		r.unsubscribe = nil
	}
	r.logger.Debug("renderer destroyed", "frames", r.frames)
}

// Destroyed reports whether Destroy has been called.
func (r *Renderer) Destroyed() bool {
	return r.destroyed
}

// SetPointer records the pointer position in surface coordinates.
func (r *Renderer) SetPointer(x, y float64) {
	r.pointer = Pointer{X: x, Y: y, Active: true}
}

// ClearPointer marks the pointer as absent.
func (r *Renderer) ClearPointer() {
	r.pointer = idlePointer()
}

// Pointer returns the current pointer state.
func (r *Renderer) Pointer() Pointer {
	return r.pointer
}

// Options returns the live options.
func (r *Renderer) Options() Options {
	return r.opts
}

// Size returns the dimensions the star field was generated for.
func (r *Renderer) Size() (width, height float64) {
	return r.width, r.height
}

// Stars returns a copy of the star field.
func (r *Renderer) Stars() []Star {
	out := make([]Star, len(r.stars))
	copy(out, r.stars)
	return out
}

// Meteors returns copies of the live meteors. Trails are shared with the
// renderer and must not be modified.
func (r *Renderer) Meteors() []Meteor {
	out := make([]Meteor, len(r.meteors))
	for i, m := range r.meteors {
		out[i] = *m
	}
	return out
}

// Stats returns the current counters.
func (r *Renderer) Stats() Stats {
	return Stats{
		Profile: r.opts.Profile,
		Width:   r.width,
		Height:  r.height,
		Stars:   len(r.stars),
		Meteors: len(r.meteors),
		Lines:   r.lines,
		Frames:  r.frames,
	}
}
