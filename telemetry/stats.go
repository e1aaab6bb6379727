// Package telemetry provides windowed session statistics, phase timing and CSV output.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	BodyCount int `csv:"bodies"`

	// Events during window
	Absorptions       int     `csv:"absorptions"`
	AbsorbedVolume    float64 `csv:"absorbed_volume"`
	SkippedAbsorption int     `csv:"skipped_absorptions"`
	BlockingContacts  int     `csv:"blocking_contacts"`
	BarrierContacts   int     `csv:"barrier_contacts"`
	Bounces           int     `csv:"bounces"`
	Spawned           int     `csv:"spawned"`
	PlacementFailures int     `csv:"placement_failures"`
	Culled            int     `csv:"culled"`

	// Player radius distribution over the window's ticks
	RadiusEnd  float64 `csv:"radius"`
	RadiusMean float64 `csv:"radius_mean"`
	RadiusStd  float64 `csv:"radius_std"`
	RadiusP10  float64 `csv:"radius_p10"`
	RadiusP50  float64 `csv:"radius_p50"`
	RadiusP90  float64 `csv:"radius_p90"`

	// Camera framing at window end
	CameraDistance float64 `csv:"camera_distance"`
	CameraFOV      float64 `csv:"camera_fov"`
}

// ComputeRadiusStats calculates mean, sample standard deviation and
// percentiles. Returns zeros for an empty slice.
func ComputeRadiusStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	if n == 1 {
		mean = values[0]
	} else {
		mean, std = stat.MeanStdDev(values, nil)
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p50 = stat.Quantile(0.50, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.90, stat.LinInterp, sorted, nil)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.BodyCount),
		slog.Int("absorptions", s.Absorptions),
		slog.Float64("absorbed_volume", s.AbsorbedVolume),
		slog.Int("skipped_absorptions", s.SkippedAbsorption),
		slog.Int("blocking_contacts", s.BlockingContacts),
		slog.Int("barrier_contacts", s.BarrierContacts),
		slog.Int("bounces", s.Bounces),
		slog.Int("spawned", s.Spawned),
		slog.Int("placement_failures", s.PlacementFailures),
		slog.Int("culled", s.Culled),
		slog.Float64("radius", s.RadiusEnd),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("radius_std", s.RadiusStd),
		slog.Float64("radius_p10", s.RadiusP10),
		slog.Float64("radius_p50", s.RadiusP50),
		slog.Float64("radius_p90", s.RadiusP90),
		slog.Float64("camera_distance", s.CameraDistance),
		slog.Float64("camera_fov", s.CameraFOV),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"bodies", s.BodyCount,
		"absorptions", s.Absorptions,
		"absorbed_volume", s.AbsorbedVolume,
		"blocking_contacts", s.BlockingContacts,
		"barrier_contacts", s.BarrierContacts,
		"spawned", s.Spawned,
		"placement_failures", s.PlacementFailures,
		"culled", s.Culled,
		"radius", s.RadiusEnd,
		"radius_p50", s.RadiusP50,
		"camera_distance", s.CameraDistance,
		"camera_fov", s.CameraFOV,
	)
}
