// Package draw provides the colour model and the terminal drawing surface.
package draw

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Shade characters from lightest to darkest.
// Used when the terminal cannot display colour.
var Shades = []rune{' ', '░', '▒', '▓', '█'}

// ShadeLevel returns a shade character for a value between 0.0 (empty) and 1.0 (solid).
func ShadeLevel(intensity float64) rune {
	if intensity <= 0 {
		return Shades[0]
	}
	if intensity >= 1 {
		return Shades[len(Shades)-1]
	}
	idx := int(intensity * float64(len(Shades)-1))
	return Shades[idx]
}

// BlockUpperHalf draws a cell as two sub-pixels: foreground on top,
// background below.
const BlockUpperHalf = '▀'

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
