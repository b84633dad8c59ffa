package sky

import (
	"github.com/tomz197/nightsky/internal/physics"
)

// GridThreshold is the star count above which the linker uses a spatial grid
// instead of checking every pair.
const GridThreshold = 400

// lineWidth is the stroke width of proximity lines.
const lineWidth = 0.5

// LineOpacity returns the alpha of a line between two stars d apart. It is
// peak at d = 0, falls linearly and is 0 from maxDistance on.
func LineOpacity(d, maxDistance, peak float64) float64 {
	if maxDistance <= 0 || d >= maxDistance {
		return 0
	}
	if d < 0 {
		d = 0
	}
	return (1 - d/maxDistance) * peak
}

// Linker finds star pairs closer than a threshold.
type Linker struct {
	// Threshold overrides GridThreshold when positive.
	Threshold int

	grid *physics.SpatialGrid
}

// Pairs calls fn once for every unordered pair (i < j) of stars closer than
// maxDistance, with their distance.
func (l *Linker) Pairs(stars []Star, maxDistance, width, height float64, fn func(i, j int, d float64)) {
	if maxDistance <= 0 || len(stars) < 2 {
		return
	}
	threshold := l.Threshold
	if threshold <= 0 {
		threshold = GridThreshold
	}
	if len(stars) > threshold {
		l.gridPairs(stars, maxDistance, width, height, fn)
		return
	}

	for i := 0; i < len(stars); i++ {
		a := &stars[i]
		for j := i + 1; j < len(stars); j++ {
			b := &stars[j]
			if d := physics.Distance(a.X, a.Y, b.X, b.Y); d < maxDistance {
				fn(i, j, d)
			}
		}
	}
}

func (l *Linker) gridPairs(stars []Star, maxDistance, width, height float64, fn func(i, j int, d float64)) {
	if l.grid == nil {
		l.grid = physics.NewSpatialGrid(width, height, maxDistance)
	} else {
		l.grid.Reset(width, height, maxDistance)
	}
	for i := range stars {
		l.grid.Insert(stars[i].X, stars[i].Y, i)
	}

	for i := range stars {
		a := &stars[i]
		l.grid.QueryAround(a.X, a.Y, func(j int) bool {
			if j <= i {
				return false
			}
			b := &stars[j]
			if d := physics.Distance(a.X, a.Y, b.X, b.Y); d < maxDistance {
				fn(i, j, d)
			}
			return false
		})
	}
}
