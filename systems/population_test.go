package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
	"pgregory.net/rapid"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

// recordingDrawables tracks which ids the presentation layer currently holds.
type recordingDrawables struct {
	live    map[uint32]components.ShapeKind
	spawns  int
	removes int
}

func newRecordingDrawables() *recordingDrawables {
	return &recordingDrawables{live: make(map[uint32]components.ShapeKind)}
}

func (r *recordingDrawables) Spawn(id uint32, shape components.ShapeKind, _ float64, _ r3.Vec) {
	r.live[id] = shape
	r.spawns++
}

func (r *recordingDrawables) Remove(id uint32) {
	delete(r.live, id)
	r.removes++
}

// fataler is satisfied by both *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatal(args ...any)
}

func newTestPopulation(t fataler, cfg *config.Config, seed int64, drawables DrawableFactory) *Population {
	t.Helper()
	shapes, err := NewShapeTable(cfg.Shapes.Factors)
	if err != nil {
		t.Fatal(err)
	}
	pop, err := NewPopulation(cfg, ecs.NewWorld(), shapes, rand.New(rand.NewSource(seed)), drawables)
	if err != nil {
		t.Fatal(err)
	}
	return pop
}

func TestSpawnInitial(t *testing.T) {
	cfg := testConfig(t, nil)
	draw := newRecordingDrawables()
	pop := newTestPopulation(t, cfg, 42, draw)
	player := components.NewPlayer(cfg.Player.InitialRadius)

	spawned := pop.SpawnInitial(cfg.Population.InitialObjectCount, player)
	if spawned == 0 {
		t.Fatal("no bodies spawned")
	}
	if spawned > cfg.Population.InitialObjectCount {
		t.Errorf("spawned %d > requested %d", spawned, cfg.Population.InitialObjectCount)
	}
	if pop.Count() != spawned {
		t.Errorf("Count = %d, want %d", pop.Count(), spawned)
	}
	if len(draw.live) != spawned {
		t.Errorf("drawables live = %d, want %d", len(draw.live), spawned)
	}

	for _, b := range pop.Bodies() {
		if b.NominalSize <= 0 || b.NominalSize > cfg.Arena.MaxObjectSize {
			t.Errorf("body %d size %v out of range", b.ID, b.NominalSize)
		}
		if b.EffectiveRadius != b.NominalSize*DefaultShapeFactors[b.Shape] {
			t.Errorf("body %d effective radius %v, want %v", b.ID, b.EffectiveRadius, b.NominalSize*DefaultShapeFactors[b.Shape])
		}
	}
}

func TestSpawnInitialRespectsMaxObjectCount(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Population.MaxObjectCount = 10
	})
	pop := newTestPopulation(t, cfg, 1, nil)

	if got := pop.SpawnInitial(50, components.NewPlayer(1)); got > 10 {
		t.Errorf("spawned %d, want at most 10", got)
	}
	if got := pop.SpawnInitial(50, components.NewPlayer(1)); pop.Count() > 10 {
		t.Errorf("second call spawned %d, count %d exceeds ceiling", got, pop.Count())
	}
}

func TestSpawnRetryCeiling(t *testing.T) {
	cfg := testConfig(t, nil)
	pop := newTestPopulation(t, cfg, 3, nil)

	// A player covering the whole arena makes every placement fail.
	player := components.NewPlayer(1000)
	if got := pop.SpawnInitial(20, player); got != 0 {
		t.Fatalf("spawned %d, want 0", got)
	}

	wantFailures := 20 * cfg.Population.RetryFactor
	if pop.Stats.PlacementFailures != wantFailures {
		t.Errorf("PlacementFailures = %d, want %d", pop.Stats.PlacementFailures, wantFailures)
	}
	if pop.Allocator().Attempts != wantFailures*cfg.Placement.MaxAttempts {
		t.Errorf("Attempts = %d, want %d", pop.Allocator().Attempts, wantFailures*cfg.Placement.MaxAttempts)
	}
}

func TestMaintain(t *testing.T) {
	tests := []struct {
		name        string
		respawn     bool
		perTick     int
		wantSpawned int
	}{
		{"respawn disabled", false, 8, 0},
		{"capped per tick", true, 3, 3},
		{"uncapped", true, 0, 12},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Population.RespawnObjects = tc.respawn
				c.Population.MaxSpawnPerTick = tc.perTick
			})
			pop := newTestPopulation(t, cfg, 9, nil)
			res := pop.Maintain(12, components.NewPlayer(1))
			if res.Spawned != tc.wantSpawned {
				t.Errorf("Spawned = %d, want %d", res.Spawned, tc.wantSpawned)
			}
		})
	}
}

func TestRemove(t *testing.T) {
	cfg := testConfig(t, nil)
	draw := newRecordingDrawables()
	pop := newTestPopulation(t, cfg, 5, draw)
	pop.BuildBarriers()
	pop.SpawnInitial(5, components.NewPlayer(1))

	bodies := pop.Bodies()
	var body, barrier WorldBody
	for _, b := range bodies {
		if b.IsBarrier {
			barrier = b
		} else {
			body = b
		}
	}

	before := pop.Count()
	if !pop.Remove(body.Entity) {
		t.Fatal("Remove returned false for a live body")
	}
	if pop.Count() != before-1 {
		t.Errorf("Count = %d, want %d", pop.Count(), before-1)
	}
	if _, ok := draw.live[body.ID]; ok {
		t.Error("drawable not removed")
	}
	if pop.Remove(body.Entity) {
		t.Error("second Remove of the same entity should fail")
	}
	if pop.Remove(barrier.Entity) {
		t.Error("barriers must not be removable")
	}
	if len(pop.Barriers()) != 4 {
		t.Errorf("barriers = %d, want 4", len(pop.Barriers()))
	}
}

func TestBuildBarriers(t *testing.T) {
	cfg := testConfig(t, nil)
	pop := newTestPopulation(t, cfg, 1, nil)
	pop.BuildBarriers()

	if pop.Count() != 0 {
		t.Errorf("barriers must not count as collectibles, Count = %d", pop.Count())
	}
	barriers := pop.Barriers()
	if len(barriers) != 4 {
		t.Fatalf("barriers = %d, want 4", len(barriers))
	}
	half := cfg.Derived.HalfMapSize
	for _, b := range barriers {
		if !b.IsBarrier || !b.Box.Boundary {
			t.Errorf("wall at %v: IsBarrier=%v Boundary=%v, want both", b.Position, b.IsBarrier, b.Box.Boundary)
		}
		// Inner face of each wall lies on the arena edge.
		d := math.Max(math.Abs(b.Position.X), math.Abs(b.Position.Z))
		if d-b.Box.HalfExtents.X != half {
			t.Errorf("wall at %v: inner face at %v, want %v", b.Position, d-b.Box.HalfExtents.X, half)
		}
	}
}

// TestCullSafety checks that cull never removes a body that is large relative
// to the player or above the absolute minimum, wherever it is.
func TestCullSafety(t *testing.T) {
	cfg := testConfig(t, nil)

	rapid.Check(t, func(t *rapid.T) {
		pop := newTestPopulation(t, cfg, 1, nil)
		player := components.NewPlayer(rapid.Float64Range(0.5, 200).Draw(t, "player_radius"))

		n := rapid.IntRange(1, 40).Draw(t, "n")
		for i := 0; i < n; i++ {
			size := rapid.Float64Range(0.05, 20).Draw(t, "size")
			pos := r3.Vec{
				X: rapid.Float64Range(-100, 100).Draw(t, "x"),
				Z: rapid.Float64Range(-100, 100).Draw(t, "z"),
			}
			pop.create(components.ShapeSphere, size, size, pos)
		}

		pop.Cull(player)

		threshold := cfg.Population.CullDistanceRatio * cfg.Arena.PlayableArea
		for _, b := range pop.Bodies() {
			if b.IsBarrier {
				continue
			}
			small := b.NominalSize < player.Radius*cfg.Population.CullPlayerRatio && b.NominalSize < cfg.Population.CullMinSize
			far := b.Position.X*b.Position.X+b.Position.Z*b.Position.Z > threshold*threshold
			if small && far {
				t.Fatalf("eligible body survived cull: size %v at %v", b.NominalSize, b.Position)
			}
		}
		if pop.Count()+pop.Stats.Culled != n {
			t.Fatalf("count %d + culled %d != %d", pop.Count(), pop.Stats.Culled, n)
		}
	})
}

func TestCullNeverRemovesLargeBodies(t *testing.T) {
	cfg := testConfig(t, nil)
	pop := newTestPopulation(t, cfg, 1, nil)
	player := components.NewPlayer(100)

	far := r3.Vec{X: 85, Z: 0}
	pop.create(components.ShapeCube, 5, 2.5, far)      // at the absolute minimum
	pop.create(components.ShapeCube, 10, 5, far)       // >= player*0.1
	pop.create(components.ShapeCube, 1, 0.5, r3.Vec{}) // small but central
	pop.create(components.ShapeCube, 1, 0.5, far)      // eligible

	if got := pop.Cull(player); got != 1 {
		t.Errorf("Cull removed %d, want 1", got)
	}
	if pop.Count() != 3 {
		t.Errorf("Count = %d, want 3", pop.Count())
	}
}
