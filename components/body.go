package components

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ShapeKind identifies the mesh family of a world body.
type ShapeKind uint8

const (
	ShapeCube ShapeKind = iota
	ShapeSphere
	ShapeCone
	ShapeCylinder
)

// String returns the lowercase shape name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeCube:
		return "cube"
	case ShapeSphere:
		return "sphere"
	case ShapeCone:
		return "cone"
	case ShapeCylinder:
		return "cylinder"
	}
	return fmt.Sprintf("shape(%d)", uint8(k))
}

// ParseShape converts a shape name to its kind.
func ParseShape(name string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cube", "box":
		return ShapeCube, nil
	case "sphere", "ball":
		return ShapeSphere, nil
	case "cone":
		return ShapeCone, nil
	case "cylinder":
		return ShapeCylinder, nil
	}
	return 0, fmt.Errorf("unknown shape %q", name)
}

// Body holds the collision-relevant properties of a collectible.
// EffectiveRadius is NominalSize * shape factor, cached at spawn.
type Body struct {
	Shape           ShapeKind
	NominalSize     float64
	EffectiveRadius float64
}

// Barrier is a static axis-aligned box in its own frame, rotated by Yaw about +Y
// and centered on the entity Position. Barriers are never absorbed.
//
// A Boundary barrier has no top for collision purposes: it extends upward
// without limit and only ever pushes the player back toward the arena center.
type Barrier struct {
	HalfExtents r3.Vec
	Yaw         float64 // radians about +Y
	Boundary    bool
}
