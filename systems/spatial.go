package systems

import "gonum.org/v1/gonum/spatial/r3"

// gridEntry is a body index with its cached planar position.
type gridEntry struct {
	Index int
	X, Z  float64
}

// SpatialGrid is a uniform broad-phase grid on the XZ plane covering a square
// arena centered on the origin. Positions outside the arena clamp to edge cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	half     float64
	cells    [][]gridEntry
}

// NewSpatialGrid creates a grid covering [-mapSize/2, mapSize/2]² with the given cell size.
func NewSpatialGrid(mapSize, cellSize float64) *SpatialGrid {
	cols := int(mapSize/cellSize) + 1

	cells := make([][]gridEntry, cols*cols)
	for i := range cells {
		cells[i] = make([]gridEntry, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		half:     mapSize / 2,
		cells:    cells,
	}
}

// Clear removes all entries from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a body index at the given world position.
func (g *SpatialGrid) Insert(index int, pos r3.Vec) {
	col, row := g.cellCoords(pos.X, pos.Z)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], gridEntry{Index: index, X: pos.X, Z: pos.Z})
}

// Build clears the grid and inserts every non-barrier body of the snapshot.
func (g *SpatialGrid) Build(bodies []WorldBody) {
	g.Clear()
	for i := range bodies {
		if bodies[i].IsBarrier {
			continue
		}
		g.Insert(i, bodies[i].Position)
	}
}

// QueryRadiusInto appends the indices of entries whose planar distance from
// center is within radius. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []int, center r3.Vec, radius float64) []int {
	minCol, minRow := g.cellCoords(center.X-radius, center.Z-radius)
	maxCol, maxRow := g.cellCoords(center.X+radius, center.Z+radius)
	radiusSq := radius * radius

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			for _, e := range g.cells[row*g.cols+col] {
				dx := e.X - center.X
				dz := e.Z - center.Z
				if dx*dx+dz*dz <= radiusSq {
					dst = append(dst, e.Index)
				}
			}
		}
	}
	return dst
}

// cellCoords returns the clamped cell column and row for a world position.
func (g *SpatialGrid) cellCoords(x, z float64) (int, int) {
	col := int((x + g.half) / g.cellSize)
	row := int((z + g.half) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.cols {
		row = g.cols - 1
	}
	return col, row
}
