package camera

import "gonum.org/v1/gonum/spatial/r3"

// Minimap projects the arena's XZ plane onto a square grid of size×size units
// (pixels or terminal cells). -X maps to the left edge, -Z to the top.
type Minimap struct {
	Size    float64
	MapSize float64
}

// NewMinimap creates a minimap of the given size for an arena of side mapSize.
func NewMinimap(size int, mapSize float64) *Minimap {
	return &Minimap{Size: float64(size), MapSize: mapSize}
}

// Project converts a world position to minimap coordinates, clamped to the map.
func (m *Minimap) Project(p r3.Vec) (x, y float64) {
	scale := m.Size / m.MapSize
	x = (p.X + m.MapSize/2) * scale
	y = (p.Z + m.MapSize/2) * scale
	return clamp(x, 0, m.Size), clamp(y, 0, m.Size)
}

// Cell returns the integer cell containing a world position, in [0, Size).
func (m *Minimap) Cell(p r3.Vec) (col, row int) {
	x, y := m.Project(p)
	last := int(m.Size) - 1
	return min(int(x), last), min(int(y), last)
}

// Radius converts a world length to minimap units.
func (m *Minimap) Radius(r float64) float64 {
	return r * m.Size / m.MapSize
}
