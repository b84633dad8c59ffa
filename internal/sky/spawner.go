package sky

import (
	"math"
	"math/rand/v2"
	"time"
)

// Classic meteor launch parameters.
const (
	classicStartY   = -50.0
	classicMinSpeed = 4.0
	classicMaxSpeed = 7.0
	minRandomAngle  = math.Pi / 12 // 15°
	maxRandomAngle  = math.Pi / 4  // 45°
)

// Realistic meteors start within this fraction of the surface.
const (
	startWidthFraction  = 0.7
	startHeightFraction = 0.3
)

// Spawner decides when a meteor is due and creates it.
//
// It is idle between spawns. Check moves it through a spawn when more than
// the interval has elapsed since the previous one; Spawn creates a meteor
// without consulting the timer.
type Spawner struct {
	rng      *rand.Rand
	interval time.Duration
	last     time.Duration // Frame time of the previous automatic spawn
}

// NewSpawner creates a spawner firing every interval.
func NewSpawner(rng *rand.Rand, interval time.Duration) *Spawner {
	if rng == nil {
		rng = newRand()
	}
	return &Spawner{rng: rng, interval: interval}
}

// Interval returns the current spawn interval.
func (s *Spawner) Interval() time.Duration {
	return s.interval
}

// SetInterval changes the interval. The elapsed time since the last spawn is
// kept, so the next Check compares it against the new threshold.
func (s *Spawner) SetInterval(d time.Duration) {
	s.interval = d
}

// Check reports whether a spawn is due at now and, if so, restarts the timer.
func (s *Spawner) Check(now time.Duration) bool {
	if now-s.last <= s.interval {
		return false
	}
	s.last = now
	return true
}

// Reset restarts the timer at now.
func (s *Spawner) Reset(now time.Duration) {
	s.last = now
}

// Spawn creates one meteor for a surface of the given size. angleDeg is the
// direction in degrees from vertical, or RandomMeteorAngle.
func (s *Spawner) Spawn(p Profile, angleDeg, width, height float64) *Meteor {
	angle := s.angle(angleDeg)
	if p != ProfileRealistic {
		x := s.rng.Float64() * width
		speed := s.between(classicMinSpeed, classicMaxSpeed)
		return newMeteor(x, classicStartY, angle, speed, classicTrailLen, 1, classicFadeRate, SpeedMedium)
	}

	spec := s.speedClass()
	x := s.rng.Float64() * width * startWidthFraction
	y := s.rng.Float64() * height * startHeightFraction
	speed := s.between(spec.minSpeed, spec.maxSpeed)
	return NewMeteor(x, y, angle, speed, spec.class)
}

func (s *Spawner) angle(deg float64) float64 {
	if deg < 0 {
		return s.between(minRandomAngle, maxRandomAngle)
	}
	return deg * math.Pi / 180
}

// speedClass draws a class according to the class weights.
func (s *Spawner) speedClass() speedSpec {
	p := s.rng.Float64()
	acc := 0.0
	for _, c := range speedClasses {
		acc += c.weight
		if p < acc {
			return c
		}
	}
	return speedClasses[len(speedClasses)-1]
}

func (s *Spawner) between(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
