package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/gulp/components"
)

// UnknownShapeVolumeFactor is the volume fallback (factor * s^3) for unrecognized shapes.
const UnknownShapeVolumeFactor = 0.5

// DefaultShapeFactors maps each shape to the scalar converting nominal size to
// effective collision radius.
var DefaultShapeFactors = map[components.ShapeKind]float64{
	components.ShapeSphere:   1.0,
	components.ShapeCube:     0.5,
	components.ShapeCone:     0.5,
	components.ShapeCylinder: 0.5,
}

// ShapeTable approximates every shape with a sphere of effective radius
// nominalSize * factor.
type ShapeTable struct {
	factors map[components.ShapeKind]float64
}

// NewShapeTable builds a table from named factors (e.g. from config).
// Shapes missing from the map keep their default factor.
func NewShapeTable(named map[string]float64) (*ShapeTable, error) {
	t := &ShapeTable{factors: make(map[components.ShapeKind]float64, len(DefaultShapeFactors))}
	for k, f := range DefaultShapeFactors {
		t.factors[k] = f
	}
	for name, f := range named {
		kind, err := components.ParseShape(name)
		if err != nil {
			return nil, fmt.Errorf("shape factor table: %w", err)
		}
		if !isFinitePositive(f) {
			return nil, fmt.Errorf("shape factor for %s must be positive, got %v", name, f)
		}
		t.factors[kind] = f
	}
	return t, nil
}

// Factor returns the shape factor for a kind. Unknown kinds use 1.0.
func (t *ShapeTable) Factor(kind components.ShapeKind) float64 {
	if t != nil {
		if f, ok := t.factors[kind]; ok {
			return f
		}
	}
	if f, ok := DefaultShapeFactors[kind]; ok {
		return f
	}
	return 1.0
}

// EffectiveRadius returns the collision radius of a body of the given shape and size.
func (t *ShapeTable) EffectiveRadius(kind components.ShapeKind, nominalSize float64) float64 {
	return nominalSize * t.Factor(kind)
}

// HalfHeight returns how far the shape's center sits above the ground when resting on it.
// Cones and cylinders are 2s tall by convention.
func HalfHeight(kind components.ShapeKind, nominalSize float64) float64 {
	if kind == components.ShapeCube {
		return nominalSize / 2
	}
	return nominalSize
}

// ShapeVolume returns the exact volume of a shape with nominal size s.
func ShapeVolume(kind components.ShapeKind, s float64) float64 {
	switch kind {
	case components.ShapeSphere:
		return 4.0 / 3.0 * math.Pi * s * s * s
	case components.ShapeCube:
		return s * s * s
	case components.ShapeCone:
		return 1.0 / 3.0 * math.Pi * s * s * (2 * s)
	case components.ShapeCylinder:
		return math.Pi * s * s * (2 * s)
	}
	return UnknownShapeVolumeFactor * s * s * s
}

// SphereVolume returns the volume of a sphere of radius r.
func SphereVolume(r float64) float64 {
	return 4.0 / 3.0 * math.Pi * r * r * r
}

// RadiusForVolume inverts SphereVolume.
func RadiusForVolume(v float64) float64 {
	return math.Cbrt(3 * v / (4 * math.Pi))
}
