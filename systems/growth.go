package systems

import (
	"fmt"
	"log/slog"
)

// GrowthResult describes one tick of absorptions.
type GrowthResult struct {
	OldRadius   float64
	NewRadius   float64
	Absorbed    []WorldBody // bodies whose volume was added; caller removes them
	Skipped     int         // absorptions discarded by the volume or radius guard
	AddedVolume float64
}

// GrowthEngine converts absorbed bodies into player radius by volume conservation.
type GrowthEngine struct {
	absorbed []WorldBody

	// Session totals
	Absorptions int
	TotalVolume float64
}

// NewGrowthEngine creates a growth engine.
func NewGrowthEngine() *GrowthEngine {
	return &GrowthEngine{}
}

// Grow returns the radius of a sphere whose volume is that of a sphere of
// radius r plus added. An absorption that would produce a non-finite or
// non-increasing radius fails with ErrInvalidRadius.
func Grow(r, added float64) (float64, error) {
	if !isFinitePositive(added) {
		return r, fmt.Errorf("%w: added volume %v", ErrInvalidVolume, added)
	}
	current := SphereVolume(r)
	if !isFinitePositive(current) {
		return r, fmt.Errorf("%w: player volume %v", ErrInvalidVolume, current)
	}
	next := RadiusForVolume(current + added)
	if !isFinitePositive(next) || next <= r {
		return r, fmt.Errorf("%w: %v -> %v", ErrInvalidRadius, r, next)
	}
	return next, nil
}

// Absorb applies each body in turn. A body failing the guard is skipped and
// leaves the radius untouched; the rest still apply. The returned Absorbed
// slice is reused across calls.
func (g *GrowthEngine) Absorb(radius float64, bodies []WorldBody) GrowthResult {
	g.absorbed = g.absorbed[:0]
	res := GrowthResult{OldRadius: radius, NewRadius: radius}

	for i := range bodies {
		b := &bodies[i]
		v := ShapeVolume(b.Shape, b.NominalSize)
		next, err := Grow(res.NewRadius, v)
		if err != nil {
			res.Skipped++
			slog.Warn("absorption skipped",
				"body_id", b.ID,
				"shape", b.Shape.String(),
				"size", b.NominalSize,
				"radius", res.NewRadius,
				"err", err,
			)
			continue
		}
		res.NewRadius = next
		res.AddedVolume += v
		g.absorbed = append(g.absorbed, *b)
	}

	g.Absorptions += len(g.absorbed)
	g.TotalVolume += res.AddedVolume
	res.Absorbed = g.absorbed
	return res
}
