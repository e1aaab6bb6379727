package systems

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

// Allocator finds non-overlapping spawn positions by bounded rejection sampling.
type Allocator struct {
	mapSize         float64
	playableArea    float64
	maxAttempts     int
	overlapBuffer   float64
	clearanceMargin float64
	rng             *rand.Rand

	// Attempts counts position draws, Failures counts exhausted placements.
	Attempts int
	Failures int
}

// NewAllocator creates an allocator drawing from rng.
func NewAllocator(cfg *config.Config, rng *rand.Rand) *Allocator {
	return &Allocator{
		mapSize:         cfg.Arena.MapSize,
		playableArea:    cfg.Arena.PlayableArea,
		maxAttempts:     cfg.Placement.MaxAttempts,
		overlapBuffer:   cfg.Placement.OverlapBuffer,
		clearanceMargin: cfg.Placement.ClearanceMargin,
		rng:             rng,
	}
}

// MaxCoord returns the half-extent of the square a body of the given size may spawn in.
func (a *Allocator) MaxCoord(size float64) float64 {
	return math.Min(a.playableArea, a.mapSize/2-size)
}

// Place returns a ground-resting position for a new body such that it keeps
// clearanceMargin from the player and overlapBuffer from every non-barrier
// occupant, measured between centers on the XZ plane. Planar clearance implies
// 3D clearance since every body rests on the same ground plane.
//
// Returns ErrPlacementFailed when no position is found within the attempt budget.
func (a *Allocator) Place(shape components.ShapeKind, size, radius float64, player components.Player, occupants []WorldBody) (r3.Vec, error) {
	maxCoord := a.MaxCoord(size)
	if maxCoord <= 0 {
		a.Failures++
		return r3.Vec{}, fmt.Errorf("%w: size %.2f leaves no room in arena", ErrPlacementFailed, size)
	}

	playerClear := player.Radius + radius + a.clearanceMargin
	playerClearSq := playerClear * playerClear

	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		a.Attempts++
		candidate := r3.Vec{
			X: (a.rng.Float64()*2 - 1) * maxCoord,
			Y: HalfHeight(shape, size),
			Z: (a.rng.Float64()*2 - 1) * maxCoord,
		}

		if planarDistSq(candidate, player.Position) < playerClearSq {
			continue
		}
		if a.overlapsAny(candidate, radius, occupants) {
			continue
		}
		return candidate, nil
	}

	a.Failures++
	return r3.Vec{}, fmt.Errorf("%w after %d attempts", ErrPlacementFailed, a.maxAttempts)
}

func (a *Allocator) overlapsAny(candidate r3.Vec, radius float64, occupants []WorldBody) bool {
	for i := range occupants {
		o := &occupants[i]
		if o.IsBarrier {
			continue
		}
		minDist := radius + o.EffectiveRadius + a.overlapBuffer
		if planarDistSq(candidate, o.Position) < minDist*minDist {
			return true
		}
	}
	return false
}
