package draw

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned when a colour string cannot be parsed.
var ErrInvalidColor = errors.New("invalid color")

// Color is an sRGB colour with a straight (non-premultiplied) alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Common colours.
var (
	Black       = Color{A: 1}
	White       = Color{R: 255, G: 255, B: 255, A: 1}
	Transparent = Color{}
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA returns a colour with the given alpha, clamped to [0,1].
func RGBA(r, g, b uint8, a float64) Color {
	return Color{R: r, G: g, B: b, A: clamp01(a)}
}

// WithAlpha returns c with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// String formats the colour in CSS functional notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex returns the #rrggbb form of the colour, ignoring alpha.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// Luminance returns the relative luminance of the colour in [0,1], ignoring alpha.
func (c Color) Luminance() float64 {
	return 0.2126*float64(c.R)/255 + 0.7152*float64(c.G)/255 + 0.0722*float64(c.B)/255
}

// Lerp interpolates between c (t=0) and o (t=1) in RGB space.
func (c Color) Lerp(o Color, t float64) Color {
	t = clamp01(t)
	r, g, b := c.colorful().BlendRgb(o.colorful(), t).Clamped().RGB255()
	return Color{R: r, G: g, B: b, A: c.A + (o.A-c.A)*t}
}

// Over composites c on top of dst (source-over). The result keeps dst's alpha
// combined with c's coverage.
func (c Color) Over(dst Color) Color {
	a := c.A
	if a <= 0 {
		return dst
	}
	if a >= 1 {
		return c
	}
	outA := a + dst.A*(1-a)
	if outA <= 0 {
		return Transparent
	}
	mix := func(s, d uint8) uint8 {
		v := (float64(s)*a + float64(d)*dst.A*(1-a)) / outA
		return uint8(math.Round(math.Min(255, math.Max(0, v))))
	}
	return Color{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: outA}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// ParseColor parses "#rgb", "#rrggbb", "rgb(r, g, b)" and "rgba(r, g, b, a)".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case strings.HasPrefix(s, "#"):
		cf, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("%w %q: %v", ErrInvalidColor, s, err)
		}
		r, g, b := cf.RGB255()
		return RGB(r, g, b), nil
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[len("rgb("):len(s)-1], 3)
	}
	return Color{}, fmt.Errorf("%w %q", ErrInvalidColor, s)
}

func parseFunctional(orig, body string, want int) (Color, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return Color{}, fmt.Errorf("%w %q: expected %d components", ErrInvalidColor, orig, want)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil || v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w %q: bad channel %q", ErrInvalidColor, orig, parts[i])
		}
		ch[i] = uint8(math.Round(v))
	}
	a := 1.0
	if want == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return Color{}, fmt.Errorf("%w %q: bad alpha %q", ErrInvalidColor, orig, parts[3])
		}
		a = v
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, nil
}

// GradientStop is one colour stop of a linear or radial gradient.
type GradientStop struct {
	Offset float64 // Position in [0,1]
	Color  Color
}

// SampleGradient returns the colour at position t in [0,1].
// Stops must be sorted by offset.
func SampleGradient(stops []GradientStop, t float64) Color {
	if len(stops) == 0 {
		return Transparent
	}
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		prev, next := stops[i-1], stops[i]
		if t <= next.Offset {
			span := next.Offset - prev.Offset
			if span <= 0 {
				return next.Color
			}
			return prev.Color.Lerp(next.Color, (t-prev.Offset)/span)
		}
	}
	return stops[len(stops)-1].Color
}

// Visible reports whether any stop has a non-zero alpha.
func Visible(stops []GradientStop) bool {
	for _, s := range stops {
		if s.Color.A > 0 {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
