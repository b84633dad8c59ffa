package sky

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tomz197/nightsky/internal/draw"
)

// Reference area the StarCount option is calibrated for.
const (
	referenceWidth  = 1920
	referenceHeight = 1080
)

// Twinkle and drawing constants.
const (
	minStarAlpha    = 0.05 // Dimmest a star is ever drawn
	glowScale       = 4.0  // Halo radius relative to the star radius
	glowAlpha       = 0.6  // Halo alpha at its centre
	minTwinkleSpeed = 0.001
	maxTwinkleSpeed = 0.003 // Radians per millisecond
	maxDriftSpeed   = 0.25  // Units per frame
)

// Tier is a star magnitude class.
type Tier int

const (
	TierDim Tier = iota
	TierMedium
	TierBright
	TierVeryBright
)

func (t Tier) String() string {
	switch t {
	case TierDim:
		return "dim"
	case TierMedium:
		return "medium"
	case TierBright:
		return "bright"
	case TierVeryBright:
		return "very-bright"
	default:
		return "unknown"
	}
}

// tierSpec describes one magnitude tier. Tiers are picked by comparing a
// uniform draw against the cumulative threshold.
type tierSpec struct {
	tier                 Tier
	threshold            float64 // Cumulative probability upper bound
	minRadius, maxRadius float64
	minBright, maxBright float64
	twinkleAmount        float64
	glow                 bool
}

var tiers = []tierSpec{
	{TierDim, 0.70, 0.3, 0.7, 0.15, 0.40, 0.1, false},
	{TierMedium, 0.90, 0.5, 1.1, 0.4, 0.7, 0.2, false},
	{TierBright, 0.97, 0.8, 1.6, 0.7, 0.9, 0.3, false},
	{TierVeryBright, 1.00, 1.2, 2.2, 0.85, 1.0, 0.15, true},
}

// Star colour buckets with their probabilities.
var starColors = []struct {
	weight float64
	color  draw.Color
}{
	{0.60, draw.RGB(255, 255, 255)}, // White
	{0.15, draw.RGB(255, 244, 232)}, // Warm white
	{0.15, draw.RGB(202, 215, 255)}, // Cool blue-white
	{0.10, draw.RGB(255, 247, 200)}, // Pale yellow
}

// StarColors returns the colours a realistic star can have.
func StarColors() []draw.Color {
	out := make([]draw.Color, len(starColors))
	for i, c := range starColors {
		out[i] = c.color
	}
	return out
}

// Star is one point of light in the field.
type Star struct {
	X, Y          float64
	VX, VY        float64 // Drift per frame; used only when an edge mode is active
	Radius        float64
	Brightness    float64 // Base brightness in [0,1]
	Color         draw.Color
	TwinkleSpeed  float64 // Radians per millisecond
	TwinkleOffset float64 // Phase in radians
	TwinkleAmount float64 // Modulation depth relative to Brightness
	HasGlow       bool
	Tier          Tier
}

// Alpha returns the brightness to draw the star with at time now.
func (s *Star) Alpha(now time.Duration, intensity float64, twinkle bool) float64 {
	b := s.Brightness
	if twinkle {
		ms := float64(now) / float64(time.Millisecond)
		b += math.Sin(ms*s.TwinkleSpeed+s.TwinkleOffset) * s.TwinkleAmount * s.Brightness * intensity
	}
	return math.Min(1, math.Max(minStarAlpha, b))
}

// draw paints the star's halo (if any) and core.
func (s *Star) draw(surf Surface, c draw.Color, alpha float64) {
	if s.HasGlow {
		surf.FillRadial(s.X, s.Y, s.Radius*glowScale, []draw.GradientStop{
			{Offset: 0, Color: c.WithAlpha(glowAlpha * alpha)},
			{Offset: 1, Color: c.WithAlpha(0)},
		})
	}
	surf.FillCircle(s.X, s.Y, s.Radius, c.WithAlpha(alpha))
}

// move drifts the star by its velocity and applies the edge policy.
func (s *Star) move(width, height float64, mode EdgeMode) {
	if mode == EdgeNone {
		return
	}
	s.X += s.VX
	s.Y += s.VY

	switch mode {
	case EdgeWrap:
		if width > 0 {
			s.X = math.Mod(s.X, width)
			if s.X < 0 {
				s.X += width
			}
		}
		if height > 0 {
			s.Y = math.Mod(s.Y, height)
			if s.Y < 0 {
				s.Y += height
			}
		}
	case EdgeBounce:
		if s.X < 0 || s.X > width {
			s.VX = -s.VX
			s.X = math.Min(width, math.Max(0, s.X))
		}
		if s.Y < 0 || s.Y > height {
			s.VY = -s.VY
			s.Y = math.Min(height, math.Max(0, s.Y))
		}
	}
}

// EffectiveStarCount scales a reference-area star count to a surface so
// that density stays constant across sizes.
func EffectiveStarCount(starCount int, width, height float64) int {
	if starCount <= 0 || width <= 0 || height <= 0 {
		return 0
	}
	return int(math.Floor(float64(starCount) * width * height / (referenceWidth * referenceHeight)))
}

// Generator produces star fields. It has no state besides its random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = newRand()
	}
	return &Generator{rng: rng}
}

// Stars returns a freshly generated field for the given surface size.
func (g *Generator) Stars(p Profile, starCount int, width, height float64) []Star {
	n := EffectiveStarCount(starCount, width, height)
	stars := make([]Star, n)
	for i := range stars {
		if p == ProfileRealistic {
			stars[i] = g.realisticStar(width, height)
		} else {
			stars[i] = g.plainStar(width, height)
		}
	}
	return stars
}

// plainStar is a uniform white star with a wide twinkle.
func (g *Generator) plainStar(width, height float64) Star {
	s := g.baseStar(width, height)
	s.Radius = g.between(0.3, 1.5)
	s.Brightness = g.between(0.5, 1.0)
	s.TwinkleAmount = 1
	s.Color = draw.White
	s.Tier = TierMedium
	return s
}

// realisticStar draws a magnitude tier and colour bucket.
func (g *Generator) realisticStar(width, height float64) Star {
	s := g.baseStar(width, height)
	spec := tiers[len(tiers)-1]
	p := g.rng.Float64()
	for _, t := range tiers {
		if p < t.threshold {
			spec = t
			break
		}
	}
	s.Tier = spec.tier
	s.Radius = g.between(spec.minRadius, spec.maxRadius)
	s.Brightness = g.between(spec.minBright, spec.maxBright)
	s.TwinkleAmount = spec.twinkleAmount
	s.HasGlow = spec.glow
	s.Color = g.starColor()
	return s
}

func (g *Generator) baseStar(width, height float64) Star {
	return Star{
		X:             g.rng.Float64() * width,
		Y:             g.rng.Float64() * height,
		VX:            g.between(-maxDriftSpeed, maxDriftSpeed),
		VY:            g.between(-maxDriftSpeed, maxDriftSpeed),
		TwinkleSpeed:  g.between(minTwinkleSpeed, maxTwinkleSpeed),
		TwinkleOffset: g.rng.Float64() * 2 * math.Pi,
	}
}

func (g *Generator) starColor() draw.Color {
	p := g.rng.Float64()
	acc := 0.0
	for _, c := range starColors {
		acc += c.weight
		if p < acc {
			return c.color
		}
	}
	return starColors[0].color
}

// between returns a uniform value in [lo, hi).
func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
