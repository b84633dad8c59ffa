package physics

import "math"

// SpatialGrid is a uniform grid for neighbourhood queries on a bounded plane.
// Items are inserted by position and index, then nearby items can be queried
// in O(1) per cell via a 3x3 neighbourhood lookup.
//
// Cell size must be >= the maximum interaction distance so that every pair
// closer than that distance is found within the 3x3 neighbourhood.
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1 / cellSize (precomputed to avoid division)
	cols        int
	rows        int
	cells       []gridCell
}

// MaxCellsPerSide caps the grid resolution. Cells grow past the requested
// size when the plane would need more than this many per side.
const MaxCellsPerSide = 256

// gridCell stores the indices of items that fall within a grid cell.
// The slice is reused between frames (reset to [:0]) to avoid allocations.
type gridCell struct {
	items []int
}

// NewSpatialGrid creates a spatial grid covering the given dimensions.
// cellSize should be >= the maximum query distance.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	g := &SpatialGrid{}
	g.Reset(width, height, cellSize)
	return g
}

// Reset resizes the grid and removes all items. Cell storage is kept when
// the cell count does not change.
func (g *SpatialGrid) Reset(width, height, cellSize float64) {
	if cellSize <= 0 {
		cellSize = 1
	}
	cellSize = max(cellSize, width/MaxCellsPerSide, height/MaxCellsPerSide)
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	g.cellSize = cellSize
	g.invCellSize = 1.0 / cellSize
	if cols*rows != len(g.cells) {
		g.cells = make([]gridCell, cols*rows)
	} else {
		g.Clear()
	}
	g.cols = cols
	g.rows = rows
}

// Clear removes all items from the grid without deallocating cell memory.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i].items = g.cells[i].items[:0]
	}
}

// Insert adds an item (identified by index) at the given position.
func (g *SpatialGrid) Insert(x, y float64, index int) {
	col, row := g.posToCell(x, y)
	idx := row*g.cols + col
	g.cells[idx].items = append(g.cells[idx].items, index)
}

// QueryAround calls fn for each item index in the 3x3 cell neighbourhood
// around the given position. Cells beyond the grid edges are skipped, so
// every item is visited at most once.
// If fn returns true, iteration stops early (useful for "find first" queries).
func (g *SpatialGrid) QueryAround(x, y float64, fn func(index int) bool) {
	col, row := g.posToCell(x, y)

	for r := row - 1; r <= row+1; r++ {
		if r < 0 || r >= g.rows {
			continue
		}
		rowOffset := r * g.cols

		for c := col - 1; c <= col+1; c++ {
			if c < 0 || c >= g.cols {
				continue
			}
			for _, itemIdx := range g.cells[rowOffset+c].items {
				if fn(itemIdx) {
					return
				}
			}
		}
	}
}

// posToCell converts coordinates to grid cell coordinates.
// Clamps to valid range so positions slightly outside the bounds land in edge cells.
func (g *SpatialGrid) posToCell(x, y float64) (col, row int) {
	col = int(math.Floor(x * g.invCellSize))
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}

	row = int(math.Floor(y * g.invCellSize))
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return col, row
}
