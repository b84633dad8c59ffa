package sky

import (
	"math"
	"testing"

	"github.com/tomz197/nightsky/internal/draw"
)

func TestTrailEvictsEldest(t *testing.T) {
	tr := NewTrail(3)
	for i := 1; i <= 5; i++ {
		tr.Push(draw.Point{X: float64(i)})
		if tr.Len() > tr.Cap() {
			t.Fatalf("len %d exceeds cap %d", tr.Len(), tr.Cap())
		}
		if got := tr.At(0).X; got != float64(i) {
			t.Fatalf("front = %v, want %v", got, i)
		}
	}
	if tr.Len() != 3 {
		t.Fatalf("len = %d, want 3", tr.Len())
	}
	for i, want := range []float64{5, 4, 3} {
		if got := tr.At(i).X; got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestSpeedClassParameters(t *testing.T) {
	tests := []struct {
		class     SpeedClass
		trail     int
		thickness float64
		fade      float64
	}{
		{SpeedSlow, 80, 1.2, 0.001},
		{SpeedMedium, 60, 1.0, 0.002},
		{SpeedFast, 40, 0.8, 0.004},
	}
	for _, tt := range tests {
		t.Run(tt.class.String(), func(t *testing.T) {
			m := NewMeteor(0, 0, 0.5, 3, tt.class)
			if m.Trail.Cap() != tt.trail {
				t.Errorf("trail capacity = %d, want %d", m.Trail.Cap(), tt.trail)
			}
			if m.Thickness != tt.thickness {
				t.Errorf("thickness = %v, want %v", m.Thickness, tt.thickness)
			}
			if m.FadeRate != tt.fade {
				t.Errorf("fade rate = %v, want %v", m.FadeRate, tt.fade)
			}
			if m.Opacity != 1 {
				t.Errorf("opacity = %v, want 1", m.Opacity)
			}
		})
	}
}

func TestMeteorLifecycle(t *testing.T) {
	m := NewMeteor(100, 100, 0.6, 3, SpeedFast)
	prev := m.Opacity
	for frame := 0; frame < 10000; frame++ {
		removed := m.Update(1920, 1080)
		if m.Opacity > prev {
			t.Fatalf("frame %d: opacity rose from %v to %v", frame, prev, m.Opacity)
		}
		prev = m.Opacity
		if m.Trail.Len() > m.Trail.Cap() {
			t.Fatalf("frame %d: trail %d exceeds %d", frame, m.Trail.Len(), m.Trail.Cap())
		}
		if head := m.Trail.At(0); head.X != m.X || head.Y != m.Y {
			t.Fatalf("frame %d: trail front %v, meteor at (%v, %v)", frame, head, m.X, m.Y)
		}

		gone := m.Opacity <= 0 || m.X > 1920+meteorMargin || m.Y > 1080+meteorMargin
		if removed != gone {
			t.Fatalf("frame %d: removed = %v, want %v", frame, removed, gone)
		}
		if removed {
			return
		}
	}
	t.Fatal("meteor never removed")
}

func TestMeteorRemovedWhenFaded(t *testing.T) {
	m := &Meteor{Opacity: 1, FadeRate: 0.25, Trail: NewTrail(4)}
	for i := 1; i <= 3; i++ {
		if m.Update(100, 100) {
			t.Fatalf("removed after %d updates at opacity %v", i, m.Opacity)
		}
	}
	if !m.Update(100, 100) {
		t.Fatalf("not removed at opacity %v", m.Opacity)
	}
	if m.Opacity != 0 {
		t.Errorf("opacity = %v, want 0", m.Opacity)
	}
}

func TestMeteorRemovedPastMargin(t *testing.T) {
	m := &Meteor{X: 198, Y: 50, VX: 1, Opacity: 1, Trail: NewTrail(4)}
	if m.Update(100, 100) {
		t.Fatal("removed at x = 199")
	}
	if m.Update(100, 100) {
		t.Fatal("removed at x = 200, exactly on the margin")
	}
	if !m.Update(100, 100) {
		t.Fatal("not removed at x = 201")
	}

	m = &Meteor{X: 50, Y: 200, VY: 1, Opacity: 1, Trail: NewTrail(4)}
	if !m.Update(100, 100) {
		t.Fatal("not removed past bottom margin")
	}

	// Leaving through the top or left never removes a meteor.
	m = &Meteor{X: -500, Y: -500, VX: -1, VY: -1, Opacity: 1, Trail: NewTrail(4)}
	if m.Update(100, 100) {
		t.Fatal("removed past top-left")
	}
}

func TestMeteorDraw(t *testing.T) {
	m := &Meteor{Opacity: 0.8, Thickness: 1, Trail: NewTrail(10)}
	for i := 0; i < 4; i++ {
		m.Trail.Push(draw.Point{X: float64(i), Y: float64(i)})
	}
	surf := &recordingSurface{w: 100, h: 100}
	m.Draw(surf)

	if surf.count("line") != 3 || surf.count("radial") != 1 {
		t.Fatalf("calls = %v, want 3 lines and 1 radial", surf.calls)
	}
	if surf.calls[len(surf.calls)-1] != "radial" {
		t.Errorf("head drawn before trail: %v", surf.calls)
	}
	for j := 1; j < len(surf.lines); j++ {
		if surf.lines[j].A >= surf.lines[j-1].A {
			t.Errorf("segment %d alpha %v not below segment %d alpha %v", j, surf.lines[j].A, j-1, surf.lines[j-1].A)
		}
	}
	if len(surf.lineStops[0]) != 3 {
		t.Fatalf("segment stops = %v, want 3", surf.lineStops[0])
	}
	mid := surf.lineStops[0][1]
	if mid.Offset != 0.5 || mid.Color.WithAlpha(1) != haloColor {
		t.Errorf("segment stops = %v, want head, halo midpoint, tail", surf.lineStops[0])
	}
	if got, want := mid.Color.A, m.SegmentAlpha(0)*0.4; math.Abs(got-want) > 1e-9 {
		t.Errorf("midpoint alpha = %v, want %v", got, want)
	}
	if got, want := m.SegmentAlpha(0), 0.8; got != want {
		t.Errorf("SegmentAlpha(0) = %v, want %v", got, want)
	}
	if got := m.SegmentAlpha(4); got != 0 {
		t.Errorf("SegmentAlpha(4) = %v, want 0", got)
	}
}
