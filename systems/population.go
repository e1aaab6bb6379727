package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

// PopulationStats counts population events since the last Reset.
type PopulationStats struct {
	Spawned           int
	PlacementFailures int
	Culled            int
	Removed           int
}

// Reset zeroes all counters.
func (s *PopulationStats) Reset() {
	*s = PopulationStats{}
}

// Population owns the live collectibles and barriers of a session.
// The ark world is the slot map: entity ids are recycled on removal.
type Population struct {
	cfg       *config.Config
	world     *ecs.World
	shapes    *ShapeTable
	alloc     *Allocator
	rng       *rand.Rand
	drawables DrawableFactory
	kinds     []components.ShapeKind

	bodyMapper    *ecs.Map2[components.Position, components.Body]
	barrierMapper *ecs.Map2[components.Position, components.Barrier]
	bodyFilter    *ecs.Filter2[components.Position, components.Body]
	barrierFilter *ecs.Filter2[components.Position, components.Barrier]
	bodyMap       *ecs.Map[components.Body]

	count    int
	snapshot []WorldBody
	barriers []WorldBody
	dirty    bool

	Stats PopulationStats
}

// NewPopulation creates a population manager over world. A nil drawables
// factory disables presentation callbacks.
func NewPopulation(cfg *config.Config, world *ecs.World, shapes *ShapeTable, rng *rand.Rand, drawables DrawableFactory) (*Population, error) {
	kinds := make([]components.ShapeKind, 0, len(cfg.Shapes.Kinds))
	for _, name := range cfg.Shapes.Kinds {
		k, err := components.ParseShape(name)
		if err != nil {
			return nil, fmt.Errorf("shapes.kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	if drawables == nil {
		drawables = nopDrawables{}
	}

	return &Population{
		cfg:           cfg,
		world:         world,
		shapes:        shapes,
		alloc:         NewAllocator(cfg, rng),
		rng:           rng,
		drawables:     drawables,
		kinds:         kinds,
		bodyMapper:    ecs.NewMap2[components.Position, components.Body](world),
		barrierMapper: ecs.NewMap2[components.Position, components.Barrier](world),
		bodyFilter:    ecs.NewFilter2[components.Position, components.Body](world),
		barrierFilter: ecs.NewFilter2[components.Position, components.Barrier](world),
		bodyMap:       ecs.NewMap[components.Body](world),
		dirty:         true,
	}, nil
}

// Count returns the number of live collectibles.
func (p *Population) Count() int {
	return p.count
}

// Allocator returns the placement allocator (for attempt counters).
func (p *Population) Allocator() *Allocator {
	return p.alloc
}

// BuildBarriers creates four boundary walls just outside the ±mapSize/2 square.
// The east and west walls are unrotated; north and south are yawed by π/2.
// WallHeight only sizes the drawn wall; collision treats them as unbounded.
func (p *Population) BuildBarriers() {
	half := p.cfg.Derived.HalfMapSize
	thick := p.cfg.Arena.WallThickness
	height := p.cfg.Arena.WallHeight
	offset := half + thick/2
	extents := r3.Vec{X: thick / 2, Y: height / 2, Z: half + thick}

	walls := []struct {
		center r3.Vec
		yaw    float64
	}{
		{r3.Vec{X: offset, Y: height / 2}, 0},
		{r3.Vec{X: -offset, Y: height / 2}, 0},
		{r3.Vec{Z: offset, Y: height / 2}, math.Pi / 2},
		{r3.Vec{Z: -offset, Y: height / 2}, math.Pi / 2},
	}
	for _, w := range walls {
		pos := components.Position{Vec: w.center}
		barrier := components.Barrier{HalfExtents: extents, Yaw: w.yaw, Boundary: true}
		p.barrierMapper.NewEntity(&pos, &barrier)
	}
	p.dirty = true
}

// Bodies returns a snapshot of every collectible followed by every barrier.
// The slice is reused and valid until the population next changes.
func (p *Population) Bodies() []WorldBody {
	if p.dirty {
		p.rebuild()
	}
	return p.snapshot
}

// Barriers returns the barrier portion of the snapshot.
func (p *Population) Barriers() []WorldBody {
	if p.dirty {
		p.rebuild()
	}
	return p.barriers
}

func (p *Population) rebuild() {
	p.snapshot = p.snapshot[:0]

	query := p.bodyFilter.Query()
	for query.Next() {
		pos, body := query.Get()
		e := query.Entity()
		p.snapshot = append(p.snapshot, WorldBody{
			Entity:          e,
			ID:              e.ID(),
			Shape:           body.Shape,
			NominalSize:     body.NominalSize,
			Position:        pos.Vec,
			EffectiveRadius: body.EffectiveRadius,
		})
	}
	n := len(p.snapshot)

	bq := p.barrierFilter.Query()
	for bq.Next() {
		pos, barrier := bq.Get()
		e := bq.Entity()
		p.snapshot = append(p.snapshot, WorldBody{
			Entity:          e,
			ID:              e.ID(),
			Shape:           components.ShapeCube,
			Position:        pos.Vec,
			EffectiveRadius: r3.Norm(barrier.HalfExtents),
			IsBarrier:       true,
			Box:             *barrier,
		})
	}

	p.barriers = p.snapshot[n:]
	p.count = n
	p.dirty = false
}

// SpawnInitial fills the arena with up to count collectibles, bounded by
// MaxObjectCount. Attempts are capped at RetryFactor × desired; a partial
// population is logged, not an error. Returns the number spawned.
func (p *Population) SpawnInitial(count int, player components.Player) int {
	desired := min(count, p.cfg.Population.MaxObjectCount-p.Count())
	if desired <= 0 {
		return 0
	}
	spawned := p.spawnBatch(desired, player)
	if spawned < desired {
		slog.Info("initial population partial",
			"desired", desired,
			"spawned", spawned,
			"placement_failures", p.Stats.PlacementFailures,
		)
	}
	return spawned
}

// MaintainResult summarizes one Maintain call.
type MaintainResult struct {
	Culled  int
	Spawned int
}

// Maintain culls stale collectibles and, when respawning is enabled, tops the
// population back up toward desired. Spawns per call are capped by
// MaxSpawnPerTick (0 = unlimited) and never exceed MaxObjectCount.
func (p *Population) Maintain(desired int, player components.Player) MaintainResult {
	res := MaintainResult{Culled: p.Cull(player)}
	if !p.cfg.Population.RespawnObjects {
		return res
	}

	target := min(desired, p.cfg.Population.MaxObjectCount)
	need := target - p.Count()
	if limit := p.cfg.Population.MaxSpawnPerTick; limit > 0 {
		need = min(need, limit)
	}
	if need > 0 {
		res.Spawned = p.spawnBatch(need, player)
	}
	return res
}

// spawnBatch tries to spawn desired bodies within RetryFactor × desired attempts.
func (p *Population) spawnBatch(desired int, player components.Player) int {
	ceiling := desired * p.cfg.Population.RetryFactor
	occupants := p.Bodies()
	spawned := 0

	for attempt := 0; attempt < ceiling && spawned < desired; attempt++ {
		kind, size := p.chooseShapeSize(player.Radius)
		radius := p.shapes.EffectiveRadius(kind, size)

		pos, err := p.alloc.Place(kind, size, radius, player, occupants)
		if err != nil {
			if errors.Is(err, ErrPlacementFailed) {
				p.Stats.PlacementFailures++
				slog.Debug("spawn skipped", "shape", kind.String(), "size", size, "err", err)
				continue
			}
			slog.Warn("spawn error", "err", err)
			continue
		}

		e := p.create(kind, size, radius, pos)
		occupants = append(occupants, WorldBody{
			Entity:          e,
			ID:              e.ID(),
			Shape:           kind,
			NominalSize:     size,
			Position:        pos,
			EffectiveRadius: radius,
		})
		spawned++
	}
	// occupants may alias the snapshot buffer; force a rebuild.
	p.dirty = true
	return spawned
}

// SpawnAt creates a collectible at pos without placement checks.
// Used by scripted scenarios and tools; respects MaxObjectCount.
func (p *Population) SpawnAt(kind components.ShapeKind, size float64, pos r3.Vec) (ecs.Entity, bool) {
	if p.Count() >= p.cfg.Population.MaxObjectCount || !isFinitePositive(size) {
		return ecs.Entity{}, false
	}
	e := p.create(kind, size, p.shapes.EffectiveRadius(kind, size), pos)
	p.dirty = true
	return e, true
}

func (p *Population) create(kind components.ShapeKind, size, radius float64, pos r3.Vec) ecs.Entity {
	position := components.Position{Vec: pos}
	body := components.Body{Shape: kind, NominalSize: size, EffectiveRadius: radius}
	e := p.bodyMapper.NewEntity(&position, &body)

	p.count++
	p.Stats.Spawned++
	p.drawables.Spawn(e.ID(), kind, size, pos)
	return e
}

// Remove deletes a collectible. Barriers and stale entities are ignored.
func (p *Population) Remove(e ecs.Entity) bool {
	if !p.remove(e) {
		return false
	}
	p.Stats.Removed++
	return true
}

func (p *Population) remove(e ecs.Entity) bool {
	if !p.world.Alive(e) || !p.bodyMap.Has(e) {
		return false
	}
	p.drawables.Remove(e.ID())
	p.world.RemoveEntity(e)
	p.count--
	p.dirty = true
	return true
}

// CullEligible reports whether a body may be culled: it must be tiny relative
// to the player, below the absolute ceiling, and far from the arena center.
func (p *Population) CullEligible(size float64, pos r3.Vec, playerRadius float64) bool {
	pc := &p.cfg.Population
	if size >= playerRadius*pc.CullPlayerRatio || size >= pc.CullMinSize {
		return false
	}
	threshold := pc.CullDistanceRatio * p.cfg.Arena.PlayableArea
	return pos.X*pos.X+pos.Z*pos.Z > threshold*threshold
}

// Cull removes every eligible collectible and returns how many were removed.
func (p *Population) Cull(player components.Player) int {
	var toRemove []ecs.Entity

	query := p.bodyFilter.Query()
	for query.Next() {
		pos, body := query.Get()
		if p.CullEligible(body.NominalSize, pos.Vec, player.Radius) {
			toRemove = append(toRemove, query.Entity())
		}
	}

	culled := 0
	for _, e := range toRemove {
		if p.remove(e) {
			culled++
		}
	}
	p.Stats.Culled += culled
	return culled
}

// chooseShapeSize draws a shape uniformly and a size from the weighted categories.
func (p *Population) chooseShapeSize(playerRadius float64) (components.ShapeKind, float64) {
	kind := p.kinds[p.rng.Intn(len(p.kinds))]

	cats := p.cfg.Population.Categories
	total := 0.0
	for _, c := range cats {
		total += c.Weight
	}
	pick := p.rng.Float64() * total
	cat := cats[len(cats)-1]
	for _, c := range cats {
		if pick < c.Weight {
			cat = c
			break
		}
		pick -= c.Weight
	}

	lo, hi := cat.Min, cat.Max
	if p.cfg.Population.ScaleWithPlayer && p.cfg.Player.InitialRadius > 0 {
		scale := math.Max(1, playerRadius/p.cfg.Player.InitialRadius)
		lo *= scale
		hi *= scale
	}
	maxSize := p.cfg.Arena.MaxObjectSize
	lo = math.Min(lo, maxSize)
	hi = math.Min(hi, maxSize)

	u := p.rng.Float64()
	if cat.SqrtBias {
		u = math.Sqrt(u)
	}
	return kind, lo + u*(hi-lo)
}
