package sky

import (
	"math"

	"github.com/tomz197/nightsky/internal/draw"
)

// Meteors are removed once they travel this far past the right or bottom edge.
const meteorMargin = 100

// Meteor head and trail appearance.
const (
	headRadius      = 4.0
	trailWidth      = 2.0
	classicTrailLen = 20
	classicFadeRate = 0.005
)

var (
	headColor = draw.RGB(255, 255, 255)
	haloColor = draw.RGB(200, 220, 255)
	tailColor = draw.RGB(150, 180, 255)
)

// SpeedClass is the categorical speed tag of a realistic meteor.
type SpeedClass int

const (
	SpeedSlow SpeedClass = iota
	SpeedMedium
	SpeedFast
)

func (c SpeedClass) String() string {
	switch c {
	case SpeedSlow:
		return "slow"
	case SpeedMedium:
		return "medium"
	case SpeedFast:
		return "fast"
	default:
		return "unknown"
	}
}

// speedSpec holds the appearance parameters of one speed class.
type speedSpec struct {
	class               SpeedClass
	weight              float64
	minSpeed, maxSpeed  float64
	trailLength         int
	thickness, fadeRate float64
}

var speedClasses = []speedSpec{
	{SpeedSlow, 0.4, 2.0, 3.5, 80, 1.2, 0.001},
	{SpeedMedium, 0.4, 4.0, 6.0, 60, 1.0, 0.002},
	{SpeedFast, 0.2, 8.0, 12.0, 40, 0.8, 0.004},
}

func specFor(c SpeedClass) speedSpec {
	for _, s := range speedClasses {
		if s.class == c {
			return s
		}
	}
	return speedClasses[SpeedMedium]
}

// Trail is a fixed-capacity history of positions, newest first.
type Trail struct {
	points []draw.Point // Ring storage
	head   int          // Index of the newest point
	n      int
}

// NewTrail creates an empty trail holding at most capacity points.
func NewTrail(capacity int) Trail {
	if capacity < 1 {
		capacity = 1
	}
	return Trail{points: make([]draw.Point, capacity)}
}

// Push inserts p at the front, evicting the eldest point when full.
func (t *Trail) Push(p draw.Point) {
	if len(t.points) == 0 {
		*t = NewTrail(1)
	}
	t.head = (t.head - 1 + len(t.points)) % len(t.points)
	t.points[t.head] = p
	if t.n < len(t.points) {
		t.n++
	}
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	return t.n
}

// Cap returns the maximum number of points.
func (t *Trail) Cap() int {
	return len(t.points)
}

// At returns the i-th point, 0 being the newest.
func (t *Trail) At(i int) draw.Point {
	return t.points[(t.head+i)%len(t.points)]
}

// Meteor is a transient streak with a fading trail.
type Meteor struct {
	X, Y      float64
	VX, VY    float64 // Units per frame
	Opacity   float64 // Starts at 1, only decreases
	FadeRate  float64 // Opacity lost per frame
	Thickness float64 // Scales trail width and head radius
	Class     SpeedClass
	Trail     Trail
}

// NewMeteor creates a meteor moving at speed along angle (radians from
// vertical, positive towards +x).
func NewMeteor(x, y, angle, speed float64, class SpeedClass) *Meteor {
	spec := specFor(class)
	return newMeteor(x, y, angle, speed, spec.trailLength, spec.thickness, spec.fadeRate, class)
}

func newMeteor(x, y, angle, speed float64, trailLen int, thickness, fade float64, class SpeedClass) *Meteor {
	return &Meteor{
		X:         x,
		Y:         y,
		VX:        math.Sin(angle) * speed,
		VY:        math.Cos(angle) * speed,
		Opacity:   1,
		FadeRate:  fade,
		Thickness: thickness,
		Class:     class,
		Trail:     NewTrail(trailLen),
	}
}

// Update advances the meteor by one frame. It returns true when the meteor
// has faded out or left the surface and must be removed.
func (m *Meteor) Update(width, height float64) (remove bool) {
	m.X += m.VX
	m.Y += m.VY
	m.Opacity = math.Max(0, m.Opacity-m.FadeRate)
	m.Trail.Push(draw.Point{X: m.X, Y: m.Y})

	return m.Opacity <= 0 || m.X > width+meteorMargin || m.Y > height+meteorMargin
}

// Draw paints the trail segments and the glowing head.
func (m *Meteor) Draw(surf Surface) {
	n := m.Trail.Len()
	for j := 0; j+1 < n; j++ {
		p, next := m.Trail.At(j), m.Trail.At(j+1)
		fade := 1 - float64(j)/float64(n)
		a := m.SegmentAlpha(j)
		surf.StrokeLine(p.X, p.Y, next.X, next.Y, trailWidth*fade*m.Thickness, []draw.GradientStop{
			{Offset: 0, Color: headColor.WithAlpha(a * 0.8)},
			{Offset: 0.5, Color: haloColor.WithAlpha(a * 0.4)},
			{Offset: 1, Color: tailColor.WithAlpha(0)},
		})
	}

	surf.FillRadial(m.X, m.Y, headRadius*m.Thickness, []draw.GradientStop{
		{Offset: 0, Color: headColor.WithAlpha(m.Opacity)},
		{Offset: 0.5, Color: haloColor.WithAlpha(m.Opacity * 0.5)},
		{Offset: 1, Color: tailColor.WithAlpha(0)},
	})
}

// SegmentAlpha returns the peak alpha of trail segment j (0 = newest).
func (m *Meteor) SegmentAlpha(j int) float64 {
	n := m.Trail.Len()
	if n == 0 || j < 0 || j >= n {
		return 0
	}
	return m.Opacity * (1 - float64(j)/float64(n))
}
