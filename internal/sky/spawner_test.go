package sky

import (
	"math"
	"testing"
	"time"
)

func TestSpawnerCheck(t *testing.T) {
	s := NewSpawner(seeded(1), 3000*time.Millisecond)

	steps := []struct {
		now  time.Duration
		want bool
	}{
		{0, false},
		{3000 * time.Millisecond, false},
		{3001 * time.Millisecond, true},
		{3002 * time.Millisecond, false},
		{6001 * time.Millisecond, false},
		{6002 * time.Millisecond, true},
	}
	for _, st := range steps {
		if got := s.Check(st.now); got != st.want {
			t.Errorf("Check(%v) = %v, want %v", st.now, got, st.want)
		}
	}
}

func TestSpawnerSetIntervalKeepsElapsed(t *testing.T) {
	s := NewSpawner(seeded(1), 3000*time.Millisecond)
	s.SetInterval(10 * time.Second)

	if s.Check(5 * time.Second) {
		t.Error("spawned at 5s with a 10s interval")
	}
	if !s.Check(10*time.Second + time.Millisecond) {
		t.Error("no spawn after 10s")
	}
	if s.Interval() != 10*time.Second {
		t.Errorf("Interval() = %v", s.Interval())
	}
}

func angleOf(m *Meteor) float64 {
	return math.Atan2(m.VX, m.VY) * 180 / math.Pi
}

func TestClassicSpawn(t *testing.T) {
	s := NewSpawner(seeded(5), time.Second)
	for range 500 {
		m := s.Spawn(ProfileClassic, RandomMeteorAngle, 1920, 1080)
		if m.Y != classicStartY || m.X < 0 || m.X >= 1920 {
			t.Fatalf("start (%v, %v)", m.X, m.Y)
		}
		if a := angleOf(m); a < 15-1e-9 || a > 45+1e-9 {
			t.Fatalf("angle %v outside [15, 45]", a)
		}
		if v := math.Hypot(m.VX, m.VY); v < classicMinSpeed-1e-9 || v > classicMaxSpeed+1e-9 {
			t.Fatalf("speed %v outside [4, 7]", v)
		}
		if m.Trail.Cap() != classicTrailLen || m.FadeRate != classicFadeRate {
			t.Fatalf("trail %d fade %v", m.Trail.Cap(), m.FadeRate)
		}
	}
}

func TestRealisticSpawn(t *testing.T) {
	s := NewSpawner(seeded(9), time.Second)
	classes := map[SpeedClass]int{}
	for range 2000 {
		m := s.Spawn(ProfileRealistic, 35, 1000, 1000)
		if m.X < 0 || m.X >= 700 || m.Y < 0 || m.Y >= 300 {
			t.Fatalf("start (%v, %v) outside upper-left region", m.X, m.Y)
		}
		if a := angleOf(m); math.Abs(a-35) > 1e-9 {
			t.Fatalf("angle %v, want 35", a)
		}
		spec := specFor(m.Class)
		if v := math.Hypot(m.VX, m.VY); v < spec.minSpeed-1e-9 || v > spec.maxSpeed+1e-9 {
			t.Fatalf("%v meteor speed %v", m.Class, v)
		}
		if m.Trail.Cap() != spec.trailLength {
			t.Fatalf("%v meteor trail %d", m.Class, m.Trail.Cap())
		}
		classes[m.Class]++
	}
	if classes[SpeedFast] == 0 || classes[SpeedFast] > classes[SpeedSlow] || classes[SpeedFast] > classes[SpeedMedium] {
		t.Errorf("unexpected class distribution %v", classes)
	}
}
