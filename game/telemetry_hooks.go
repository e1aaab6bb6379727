package game

import (
	"log/slog"

	"github.com/pthm-cable/gulp/telemetry"
)

// flushTelemetry emits a window record once the stats window has elapsed.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush() {
		return
	}

	stats := g.collector.Flush(g.tick, telemetry.Sample{
		BodyCount:      g.population.Count(),
		Radius:         g.player.Radius,
		CameraDistance: g.framing.Distance,
		CameraFOV:      g.framing.FOV,
	})
	perfStats := g.perf.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.output.WritePerf(perfStats, stats.RunID, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}
