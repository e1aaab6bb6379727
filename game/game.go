// Package game owns a session: the population, the player and the per-tick pipeline.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/camera"
	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
	"github.com/pthm-cable/gulp/systems"
	"github.com/pthm-cable/gulp/telemetry"
)

// Options holds session settings that are not part of the config file.
type Options struct {
	Seed      int64
	Drawables systems.DrawableFactory // nil disables presentation callbacks
	OutputDir string                  // empty disables CSV output
	LogStats  bool

	// FixedDT replaces the monotonic frame delta when > 0 (headless runs).
	FixedDT float64

	// StatsCallback is called with each flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete session state. All methods except Stop and
// Running must be called from the goroutine that drives ticks.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	population *systems.Population
	detector   *systems.Detector
	responder  *systems.Responder
	growth     *systems.GrowthEngine
	physics    *systems.PhysicsSystem
	camera     *camera.Camera
	framing    camera.Framing

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	// Player and input
	player       components.Player
	pendingInput r3.Vec
	hasInput     bool

	// Frame timing
	fixedDT   float64
	lastFrame time.Time

	tick    int32
	running atomic.Bool
}

// New creates a session: barriers, the initial population and the player
// at the arena center.
func New(cfg *config.Config, opts Options) (*Game, error) {
	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(opts.Seed))

	shapes, err := systems.NewShapeTable(cfg.Shapes.Factors)
	if err != nil {
		return nil, fmt.Errorf("building shape table: %w", err)
	}
	population, err := systems.NewPopulation(cfg, world, shapes, rng, opts.Drawables)
	if err != nil {
		return nil, fmt.Errorf("creating population: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:           cfg,
		world:         world,
		rng:           rng,
		population:    population,
		detector:      systems.NewDetector(cfg),
		responder:     systems.NewResponder(cfg),
		growth:        systems.NewGrowthEngine(),
		physics:       systems.NewPhysicsSystem(cfg),
		camera:        camera.New(cfg),
		collector:     telemetry.NewCollector(telemetry.NewRunID(), cfg.Telemetry.StatsWindow),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		player:        components.NewPlayer(cfg.Player.InitialRadius),
		fixedDT:       opts.FixedDT,
	}

	population.BuildBarriers()
	spawned := population.SpawnInitial(cfg.Population.InitialObjectCount, g.player)
	g.framing = g.camera.Update(g.player.Radius, 0)
	g.running.Store(true)

	slog.Info("session started",
		"run_id", g.collector.RunID(),
		"seed", opts.Seed,
		"bodies", spawned,
		"map_size", cfg.Arena.MapSize,
		"output_dir", output.Dir(),
	)
	return g, nil
}

// Step runs one tick using the frame delta and reports whether the session
// is still running. A stopped session does not tick.
func (g *Game) Step() bool {
	if !g.running.Load() {
		return false
	}
	g.Update(g.frameDelta())
	return true
}

// frameDelta returns the seconds since the previous frame, clamped to MaxFrameDT.
func (g *Game) frameDelta() float64 {
	if g.fixedDT > 0 {
		return g.fixedDT
	}
	now := time.Now()
	dt := g.cfg.Physics.ReferenceDT
	if !g.lastFrame.IsZero() {
		dt = now.Sub(g.lastFrame).Seconds()
	}
	g.lastFrame = now
	return g.clampDT(dt)
}

func (g *Game) clampDT(dt float64) float64 {
	if dt < 0 {
		return 0
	}
	if limit := g.cfg.Physics.MaxFrameDT; limit > 0 && dt > limit {
		return limit
	}
	return dt
}

// Stop clears the running flag; the tick in progress completes.
// Safe to call from any goroutine.
func (g *Game) Stop() {
	g.running.Store(false)
}

// Running reports whether the session still schedules ticks.
func (g *Game) Running() bool {
	return g.running.Load()
}

// Close stops the session and closes telemetry output.
func (g *Game) Close() error {
	g.Stop()
	return g.output.Close()
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() int32 {
	return g.tick
}

// Player returns a copy of the player state.
func (g *Game) Player() components.Player {
	return g.player
}

// Population returns the session's population (read access for renderers).
func (g *Game) Population() *systems.Population {
	return g.population
}

// Camera returns the camera (for Eye and framing).
func (g *Game) Camera() *camera.Camera {
	return g.camera
}

// Config returns the session configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// RunID returns the session identifier stamped into telemetry.
func (g *Game) RunID() string {
	return g.collector.RunID()
}

// PerfStats returns timing over the rolling perf window.
func (g *Game) PerfStats() telemetry.PerfStats {
	return g.perf.Stats()
}

// RecordFrame records render frame timing (windowed mode).
func (g *Game) RecordFrame() {
	g.perf.RecordFrame()
}
