package sky

import (
	"github.com/tomz197/nightsky/internal/physics"
)

// offSurface is the pointer position used while no pointer is present. It is
// far enough away that no influence radius reaches the surface.
const offSurface = -1e9

// Pointer interaction strengths.
const (
	attractPull = 0.02 // Fraction of the displacement closed per frame
	repelPush   = 3.0  // Units per frame at zero distance
)

// Pointer is the last known pointer position in surface coordinates.
type Pointer struct {
	X, Y   float64
	Active bool
}

// idlePointer returns the sentinel position for an absent pointer.
func idlePointer() Pointer {
	return Pointer{X: offSurface, Y: offSurface}
}

// Perturb moves s according to the pointer. Stars outside radius and stars
// exactly under the pointer are left alone.
func (p Pointer) Perturb(s *Star, radius float64, mode PointerMode) {
	if !p.Active || radius <= 0 || !physics.PointInCircle(s.X, s.Y, p.X, p.Y, radius) {
		return
	}
	d := physics.Distance(s.X, s.Y, p.X, p.Y)
	if d == 0 || d >= radius {
		return
	}

	dx := p.X - s.X
	dy := p.Y - s.Y
	switch mode {
	case PointerAttract:
		s.X += dx * attractPull
		s.Y += dy * attractPull
	default:
		force := (radius - d) / radius
		s.X -= dx / d * force * repelPush
		s.Y -= dy / d * force * repelPush
	}
}
