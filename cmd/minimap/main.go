// Command minimap runs a session in the terminal and shows it as a top-down map.
package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/gulp/camera"
	"github.com/pthm-cable/gulp/config"
	"github.com/pthm-cable/gulp/game"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	fps := flag.Int("fps", 30, "Frames per second")
	size := flag.Int("size", 0, "Minimap size in cells (0 = use config)")
	flag.Parse()

	// The terminal belongs to the map; only errors are logged, to stderr.
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	if *size <= 0 {
		*size = cfg.Camera.MinimapSize
	}
	if *fps < 1 {
		*fps = 30
	}

	g, err := game.New(cfg, game.Options{Seed: *seed})
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer g.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to init screen", "error", err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.HideCursor()

	run(screen, g, camera.NewMinimap(*size, cfg.Arena.MapSize), time.Second/time.Duration(*fps))
}

// run owns the session: key events arrive on a channel so every tick and
// input change happens on this goroutine.
func run(screen tcell.Screen, g *game.Game, mm *camera.Minimap, frame time.Duration) {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	paused := false
	for g.Running() {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				if _, resized := ev.(*tcell.EventResize); resized {
					screen.Sync()
				}
				continue
			}
			switch {
			case key.Key() == tcell.KeyEscape, key.Key() == tcell.KeyCtrlC, key.Rune() == 'q':
				g.Stop()
			case key.Rune() == ' ':
				paused = !paused
			default:
				if dx, dz, ok := steerKey(key.Key()); ok {
					g.Steer(dx, dz)
				}
			}
		case <-ticker.C:
			if !paused {
				g.Step()
			}
			drawFrame(screen, mm, g.HUD(), g.Population().Bodies(), paused)
			screen.Show()
		}
	}
}
