package game

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
	"github.com/pthm-cable/gulp/systems"
	"github.com/pthm-cable/gulp/telemetry"
)

type recordingDrawables struct {
	spawned map[uint32]components.ShapeKind
	removed []uint32
}

func (r *recordingDrawables) Spawn(id uint32, shape components.ShapeKind, size float64, pos r3.Vec) {
	if r.spawned == nil {
		r.spawned = make(map[uint32]components.ShapeKind)
	}
	r.spawned[id] = shape
}

func (r *recordingDrawables) Remove(id uint32) {
	r.removed = append(r.removed, id)
}

func testGame(t *testing.T, mutate func(*config.Config), opts Options) *Game {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if mutate != nil {
		mutate(cfg)
	}
	if opts.FixedDT == 0 {
		opts.FixedDT = cfg.Physics.ReferenceDT
	}
	g, err := New(cfg, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// emptyArena leaves the arena without collectibles so scenarios are scripted.
func emptyArena(cfg *config.Config) {
	cfg.Population.InitialObjectCount = 0
	cfg.Population.RespawnObjects = false
}

func TestNewSpawnsInitialPopulation(t *testing.T) {
	d := &recordingDrawables{}
	g := testGame(t, nil, Options{Seed: 7, Drawables: d})

	cfg := g.Config()
	n := g.Population().Count()
	if n == 0 || n > cfg.Population.MaxObjectCount {
		t.Errorf("initial count = %d, want in (0, %d]", n, cfg.Population.MaxObjectCount)
	}
	if len(d.spawned) != n {
		t.Errorf("drawables spawned = %d, want %d", len(d.spawned), n)
	}
	if got := len(g.Population().Barriers()); got != 4 {
		t.Errorf("barriers = %d, want 4", got)
	}

	hud := g.HUD()
	if hud.Radius != cfg.Player.InitialRadius {
		t.Errorf("radius = %v, want %v", hud.Radius, cfg.Player.InitialRadius)
	}
	if hud.Distance <= 0 || hud.FOV <= 0 {
		t.Errorf("framing not initialized: %+v", hud)
	}
	if hud.Tick != 0 || hud.Absorptions != 0 {
		t.Errorf("fresh session HUD = %+v", hud)
	}
	if g.RunID() == "" {
		t.Error("empty run id")
	}
}

func TestUpdateAbsorbsSmallBody(t *testing.T) {
	d := &recordingDrawables{}
	g := testGame(t, emptyArena, Options{Drawables: d})

	e, ok := g.Population().SpawnAt(components.ShapeSphere, 0.5, r3.Vec{X: 1.2, Y: 0.5})
	if !ok {
		t.Fatal("SpawnAt failed")
	}

	g.Update(g.Config().Physics.ReferenceDT)

	hud := g.HUD()
	want := math.Cbrt(1 + 0.125)
	if math.Abs(hud.Radius-want) > 1e-9 {
		t.Errorf("radius = %v, want %v", hud.Radius, want)
	}
	if hud.Absorptions != 1 {
		t.Errorf("absorptions = %d, want 1", hud.Absorptions)
	}
	if vol := 4.0 / 3 * math.Pi * 0.125; math.Abs(hud.AbsorbedVolume-vol) > 1e-9 {
		t.Errorf("absorbed volume = %v, want %v", hud.AbsorbedVolume, vol)
	}
	if hud.BodyCount != 0 {
		t.Errorf("body count = %d, want 0", hud.BodyCount)
	}
	if len(d.removed) != 1 || d.removed[0] != e.ID() {
		t.Errorf("removed = %v, want [%d]", d.removed, e.ID())
	}
	if p := g.Player(); p.Position.Y < p.Radius {
		t.Errorf("player below ground after growth: y=%v r=%v", p.Position.Y, p.Radius)
	}
}

func TestUpdatePushedBackByLargeBody(t *testing.T) {
	g := testGame(t, emptyArena, Options{})

	if _, ok := g.Population().SpawnAt(components.ShapeCube, 3, r3.Vec{X: 2.2, Y: 1.5}); !ok {
		t.Fatal("SpawnAt failed")
	}

	g.Update(g.Config().Physics.ReferenceDT)

	p := g.Player()
	if p.Radius != 1 {
		t.Errorf("radius = %v, blocking body must not be absorbed", p.Radius)
	}
	if p.Position.X >= 0 {
		t.Errorf("player x = %v, want pushed toward -X", p.Position.X)
	}
	if p.Velocity.X >= 0 {
		t.Errorf("velocity x = %v, want outward impulse toward -X", p.Velocity.X)
	}
	if g.Population().Count() != 1 {
		t.Errorf("count = %d, blocking body must remain", g.Population().Count())
	}
}

func TestInputAppliedAtNextTick(t *testing.T) {
	g := testGame(t, emptyArena, Options{})

	g.SetInputVelocity(r3.Vec{X: 3, Y: 50})
	if g.Player().Velocity.X != 0 {
		t.Fatal("input must not apply before the next tick")
	}

	g.Update(g.Config().Physics.ReferenceDT)
	p := g.Player()
	if p.Velocity.X <= 0 || p.Velocity.X > 3 {
		t.Errorf("velocity x = %v, want in (0, 3]", p.Velocity.X)
	}
	if p.Position.X <= 0 {
		t.Errorf("position x = %v, want moved toward +X", p.Position.X)
	}
	if p.Position.Y != p.Radius {
		t.Errorf("vertical input leaked: y = %v", p.Position.Y)
	}

	// Consumed: a later tick only decays the velocity.
	before := g.Player().Velocity.X
	g.Update(g.Config().Physics.ReferenceDT)
	if after := g.Player().Velocity.X; after >= before {
		t.Errorf("velocity %v -> %v, want friction decay without new input", before, after)
	}
}

func TestSteerScalesWithRadius(t *testing.T) {
	g := testGame(t, emptyArena, Options{})
	g.Steer(0, -2)
	g.Update(g.Config().Physics.ReferenceDT)

	p := g.Player()
	if p.Velocity.Z >= 0 || p.Velocity.X != 0 {
		t.Errorf("velocity = %+v, want along -Z", p.Velocity)
	}
	if speed := math.Abs(p.Velocity.Z); speed > g.Config().Player.InputSpeed*p.Radius {
		t.Errorf("speed %v exceeds input speed", speed)
	}
}

// barrierPenetration returns how far the player sphere reaches into the
// deepest barrier it touches; +Inf when its center is inside one.
func barrierPenetration(g *Game) float64 {
	p := g.Player()
	worst := 0.0
	for _, b := range g.Population().Barriers() {
		hit, ok := systems.BarrierContact(p, b)
		if !ok {
			continue
		}
		if hit.Inside {
			return math.Inf(1)
		}
		worst = math.Max(worst, p.Radius-hit.Distance)
	}
	return worst
}

func TestLargePlayerHeldByBoundaryWall(t *testing.T) {
	for _, radius := range []float64{5, 40, 60} {
		g := testGame(t, emptyArena, Options{})
		half := g.Config().Derived.HalfMapSize
		g.player.Radius = radius
		g.player.Position = r3.Vec{Y: radius}

		for i := 0; i < 1500; i++ {
			g.Steer(1, 0)
			g.Update(g.Config().Physics.ReferenceDT)

			p := g.Player()
			if p.Position.X > half-p.Radius+0.01 {
				t.Fatalf("radius %v tick %d: x = %v past the east wall", radius, i, p.Position.X)
			}
			if p.Position.Y > p.Radius+1e-6 {
				t.Fatalf("radius %v tick %d: y = %v, player rode up the wall", radius, i, p.Position.Y)
			}
		}
		if x := g.Player().Position.X; x < half-radius-1 {
			t.Errorf("radius %v: x = %v, never reached the wall", radius, x)
		}
	}
}

func TestGrowthNextToWallStaysOutside(t *testing.T) {
	g := testGame(t, emptyArena, Options{})
	half := g.Config().Derived.HalfMapSize

	// Clear of the east wall by 0.1 at radius 1.
	g.player.Position = r3.Vec{X: half - 1.1, Y: 1}
	x := g.player.Position.X
	for _, pos := range []r3.Vec{{X: x - 1.2, Y: 0.9}, {X: x, Y: 0.9, Z: 1.2}, {X: x, Y: 0.9, Z: -1.2}} {
		if _, ok := g.Population().SpawnAt(components.ShapeSphere, 0.9, pos); !ok {
			t.Fatal("SpawnAt failed")
		}
	}

	g.Update(g.Config().Physics.ReferenceDT)

	hud := g.HUD()
	if hud.Absorptions != 3 {
		t.Fatalf("absorptions = %d, want 3", hud.Absorptions)
	}
	if pen := barrierPenetration(g); pen > 0.01 {
		t.Errorf("penetration %v > 0.01 after growth to radius %v", pen, hud.Radius)
	}
	if p := g.Player(); p.Position.Y < p.Radius {
		t.Errorf("player below ground: y=%v r=%v", p.Position.Y, p.Radius)
	}
}

func TestRadiusMonotonicOverSession(t *testing.T) {
	g := testGame(t, nil, Options{Seed: 3})
	cfg := g.Config()

	prev := g.Player().Radius
	for i := 0; i < 600; i++ {
		// Sweep in a slow circle so the player meets bodies.
		angle := float64(i) / 60
		g.Steer(math.Cos(angle), math.Sin(angle))
		g.Update(cfg.Physics.ReferenceDT)

		hud := g.HUD()
		if hud.Radius < prev {
			t.Fatalf("tick %d: radius shrank %v -> %v", i, prev, hud.Radius)
		}
		prev = hud.Radius
		if hud.BodyCount > cfg.Population.MaxObjectCount {
			t.Fatalf("tick %d: body count %d above cap", i, hud.BodyCount)
		}
		half := cfg.Derived.HalfMapSize
		if math.Abs(hud.Position.X) > half+hud.Radius || math.Abs(hud.Position.Z) > half+hud.Radius {
			t.Fatalf("tick %d: player escaped arena at %+v", i, hud.Position)
		}
	}
	if g.Tick() != 600 {
		t.Errorf("tick = %d, want 600", g.Tick())
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	g := testGame(t, nil, Options{Seed: 1})
	if err := g.Run(context.Background(), 30); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.Tick() != 30 {
		t.Errorf("tick = %d, want 30", g.Tick())
	}
	if !g.Running() {
		t.Error("reaching max ticks should not clear the running flag")
	}
}

func TestStopPreventsTicks(t *testing.T) {
	g := testGame(t, nil, Options{Seed: 1})
	g.Stop()

	if g.Step() {
		t.Error("Step after Stop should report false")
	}
	if err := g.Run(context.Background(), 0); err != nil {
		t.Errorf("Run after Stop: %v", err)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
}

func TestStopFromCallback(t *testing.T) {
	var g *Game
	windows := 0
	g = testGame(t, func(cfg *config.Config) {
		cfg.Telemetry.StatsWindow = 6 * cfg.Physics.ReferenceDT
	}, Options{Seed: 1, StatsCallback: func(telemetry.WindowStats) {
		windows++
		if windows == 2 {
			g.Stop()
		}
	}})

	if err := g.Run(context.Background(), 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	const want = 2 * 6
	if g.Tick() != want {
		t.Errorf("tick = %d, want %d (stop completes the current tick only)", g.Tick(), want)
	}
}

func TestRunContextCancelled(t *testing.T) {
	g := testGame(t, nil, Options{Seed: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Run(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
}

func TestClampDT(t *testing.T) {
	g := testGame(t, emptyArena, Options{})
	limit := g.Config().Physics.MaxFrameDT

	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		{"negative", -1, 0},
		{"normal", 0.02, 0.02},
		{"stall", 5, limit},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.clampDT(tc.dt); got != tc.want {
				t.Errorf("clampDT(%v) = %v, want %v", tc.dt, got, tc.want)
			}
		})
	}
}

func TestTelemetryOutput(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	g := testGame(t, func(cfg *config.Config) {
		cfg.Telemetry.StatsWindow = 6 * cfg.Physics.ReferenceDT
	}, Options{Seed: 2, OutputDir: dir, StatsCallback: func(s telemetry.WindowStats) {
		windows = append(windows, s)
	}})

	const perWindow = 6
	if err := g.Run(context.Background(), 3*perWindow); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(windows) != 3 {
		t.Fatalf("windows = %d, want 3", len(windows))
	}
	for i, w := range windows {
		if w.RunID != g.RunID() {
			t.Errorf("window %d run id = %q", i, w.RunID)
		}
		if w.WindowEndTick != int32((i+1)*perWindow) {
			t.Errorf("window %d end = %d", i, w.WindowEndTick)
		}
	}
	if windows[0].Spawned == 0 {
		t.Error("first window should include the initial spawn")
	}

	data, err := os.ReadFile(filepath.Join(dir, telemetry.TelemetryFile))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 4 {
		t.Errorf("telemetry.csv lines = %d, want header + 3", lines)
	}
	if _, err := os.Stat(filepath.Join(dir, telemetry.ConfigFile)); err != nil {
		t.Errorf("config snapshot missing: %v", err)
	}
}
