package sky

import (
	"math"
	"testing"
)

func TestPointerPerturb(t *testing.T) {
	p := Pointer{X: 0, Y: 0, Active: true}

	tests := []struct {
		name  string
		ptr   Pointer
		start float64
		mode  PointerMode
		want  float64
	}{
		{"repel", p, 10, PointerRepel, 10 + 0.9*3},
		{"attract", p, 10, PointerAttract, 10 - 10*0.02},
		{"outside radius", p, 150, PointerRepel, 150},
		{"on radius", p, 100, PointerRepel, 100},
		{"zero distance", p, 0, PointerRepel, 0},
		{"inactive", idlePointer(), 10, PointerRepel, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Star{X: tt.start}
			tt.ptr.Perturb(&s, 100, tt.mode)
			if math.Abs(s.X-tt.want) > 1e-9 || s.Y != 0 {
				t.Errorf("star at (%v, %v), want (%v, 0)", s.X, s.Y, tt.want)
			}
		})
	}
}

func TestIdlePointerIsOffSurface(t *testing.T) {
	p := idlePointer()
	if p.Active || p.X > -1e6 || p.Y > -1e6 {
		t.Errorf("idle pointer = %+v", p)
	}
}
