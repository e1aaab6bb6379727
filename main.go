package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gulp/config"
	"github.com/pthm-cable/gulp/game"
	"github.com/pthm-cable/gulp/renderer"
	"github.com/pthm-cable/gulp/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:      rngSeed,
		OutputDir: *outputDir,
		LogStats:  *logStats,
	}

	if *headless {
		if err := runHeadless(cfg, opts, *maxTicks); err != nil {
			slog.Error("session failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := runWindowed(cfg, opts, *maxTicks); err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless ticks at the reference step until max ticks or interrupt.
func runHeadless(cfg *config.Config, opts game.Options, maxTicks int) error {
	opts.FixedDT = cfg.Physics.ReferenceDT
	g, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"max_ticks", maxTicks,
		"run_id", g.RunID(),
	)

	err = g.Run(ctx, maxTicks)
	hud := g.HUD()
	slog.Info("simulation finished",
		"tick", hud.Tick,
		"radius", hud.Radius,
		"absorptions", hud.Absorptions,
		"bodies", hud.BodyCount,
	)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runWindowed drives one tick per rendered frame.
func runWindowed(cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "gulp")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	newSession := func() (*game.Game, *renderer.Scene, error) {
		scene := renderer.NewScene(cfg.Arena.MapSize)
		opts.Drawables = scene
		g, err := game.New(cfg, opts)
		return g, scene, err
	}

	g, scene, err := newSession()
	if err != nil {
		return err
	}
	defer func() { g.Close() }()

	hud := ui.NewHUD()
	minimap := ui.NewMinimapView(cfg.Camera.MinimapSize*4, cfg.Arena.MapSize)
	paused := false

	for !rl.WindowShouldClose() && g.Running() {
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if dx, dz := movementInput(); dx != 0 || dz != 0 {
			g.Steer(dx, dz)
		}
		if !paused {
			g.Step()
		}
		g.RecordFrame()

		state := g.HUD()
		player := g.Player()
		cam := g.Camera()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: 135, G: 190, B: 235, A: 255})

		scene.Draw(renderer.Camera(cam.Eye(player.Position), player.Position, state.FOV), player, g.Population().Barriers())

		action := hud.Draw(ui.HUDData{
			Radius:         state.Radius,
			MaxObjectSize:  cfg.Arena.MaxObjectSize,
			Absorptions:    state.Absorptions,
			AbsorbedVolume: state.AbsorbedVolume,
			BodyCount:      state.BodyCount,
			Tick:           state.Tick,
			Distance:       state.Distance,
			FOV:            state.FOV,
			FPS:            rl.GetFPS(),
			Paused:         paused,
		})
		size := int32(cfg.Camera.MinimapSize * 4)
		minimap.Draw(int32(rl.GetScreenWidth())-size-10, 10, state.Position, state.Radius, g.Population().Bodies())
		hud.DrawControls(int32(rl.GetScreenHeight()), "WASD/Arrows: move | Space: pause")

		rl.EndDrawing()

		switch action {
		case ui.ActionTogglePause:
			paused = !paused
		case ui.ActionRestart:
			g.Close()
			if g, scene, err = newSession(); err != nil {
				return err
			}
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			break
		}
	}
	return nil
}

// movementInput returns the XZ direction requested by the keyboard.
// Forward (W/Up) is -Z, away from the camera.
func movementInput() (dx, dz float64) {
	if rl.IsKeyDown(rl.KeyW) || rl.IsKeyDown(rl.KeyUp) {
		dz--
	}
	if rl.IsKeyDown(rl.KeyS) || rl.IsKeyDown(rl.KeyDown) {
		dz++
	}
	if rl.IsKeyDown(rl.KeyA) || rl.IsKeyDown(rl.KeyLeft) {
		dx--
	}
	if rl.IsKeyDown(rl.KeyD) || rl.IsKeyDown(rl.KeyRight) {
		dx++
	}
	return dx, dz
}
