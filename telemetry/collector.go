package telemetry

import "github.com/google/uuid"

// NewRunID returns a fresh identifier stamped into every telemetry row of a session.
func NewRunID() string {
	return uuid.NewString()
}

// Sample is the end-of-window state the caller supplies to Flush.
type Sample struct {
	BodyCount      int
	Radius         float64
	CameraDistance float64
	CameraFOV      float64
}

// Collector accumulates events within time windows and produces WindowStats.
// Windows are measured in simulated seconds, so they span the same time at
// any frame rate.
type Collector struct {
	runID             string
	windowDurationSec float64

	// Current window tracking
	windowStartTick int32
	windowStartTime float64
	simTime         float64
	radii           []float64

	// Event counters for current window
	absorptions       int
	absorbedVolume    float64
	skippedAbsorption int
	blockingContacts  int
	barrierContacts   int
	bounces           int
	spawned           int
	placementFailures int
	culled            int
}

// windowEpsilon absorbs float drift from summing frame deltas.
const windowEpsilon = 1e-9

// NewCollector creates a new stats collector whose windows last
// windowDurationSec simulated seconds.
func NewCollector(runID string, windowDurationSec float64) *Collector {
	return &Collector{
		runID:             runID,
		windowDurationSec: windowDurationSec,
	}
}

// RunID returns the session identifier.
func (c *Collector) RunID() string {
	return c.runID
}

// RecordTick records the frame delta and the player's radius after the tick.
func (c *Collector) RecordTick(dt, radius float64) {
	c.simTime += dt
	c.radii = append(c.radii, radius)
}

// RecordAbsorptions records bodies absorbed this tick and their total volume.
func (c *Collector) RecordAbsorptions(n int, volume float64, skipped int) {
	c.absorptions += n
	c.absorbedVolume += volume
	c.skippedAbsorption += skipped
}

// RecordContacts records collision contacts resolved this tick.
func (c *Collector) RecordContacts(blocking, barriers, bounces int) {
	c.blockingContacts += blocking
	c.barrierContacts += barriers
	c.bounces += bounces
}

// RecordPopulation records population maintenance results.
func (c *Collector) RecordPopulation(spawned, placementFailures, culled int) {
	c.spawned += spawned
	c.placementFailures += placementFailures
	c.culled += culled
}

// ShouldFlush returns true once the window's simulated time has elapsed.
// A window always holds at least one tick.
func (c *Collector) ShouldFlush() bool {
	if len(c.radii) == 0 {
		return false
	}
	return c.simTime-c.windowStartTime >= c.windowDurationSec-windowEpsilon
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	mean, std, p10, p50, p90 := ComputeRadiusStats(c.radii)

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      c.simTime,

		BodyCount: s.BodyCount,

		Absorptions:       c.absorptions,
		AbsorbedVolume:    c.absorbedVolume,
		SkippedAbsorption: c.skippedAbsorption,
		BlockingContacts:  c.blockingContacts,
		BarrierContacts:   c.barrierContacts,
		Bounces:           c.bounces,
		Spawned:           c.spawned,
		PlacementFailures: c.placementFailures,
		Culled:            c.culled,

		RadiusEnd:  s.Radius,
		RadiusMean: mean,
		RadiusStd:  std,
		RadiusP10:  p10,
		RadiusP50:  p50,
		RadiusP90:  p90,

		CameraDistance: s.CameraDistance,
		CameraFOV:      s.CameraFOV,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowStartTime = c.simTime
	c.radii = c.radii[:0]
	c.absorptions = 0
	c.absorbedVolume = 0
	c.skippedAbsorption = 0
	c.blockingContacts = 0
	c.barrierContacts = 0
	c.bounces = 0
	c.spawned = 0
	c.placementFailures = 0
	c.culled = 0

	return stats
}
