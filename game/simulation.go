package game

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/telemetry"
)

// Update runs one complete tick of dt seconds:
// input, integrate, detect, respond, grow, maintain, camera, telemetry.
func (g *Game) Update(dt float64) {
	g.perf.StartTick()
	defer g.perf.EndTick()

	g.perf.StartPhase(telemetry.PhaseInput)
	g.applyInput()

	g.perf.StartPhase(telemetry.PhaseIntegrate)
	g.physics.Update(&g.player, dt)

	g.perf.StartPhase(telemetry.PhaseDetect)
	contacts := g.detector.Detect(g.player, g.population.Bodies())

	g.perf.StartPhase(telemetry.PhaseRespond)
	resp := g.responder.Resolve(&g.player, contacts)

	// Absorb only after every contact has been classified and resolved;
	// removal invalidates the body snapshot.
	g.perf.StartPhase(telemetry.PhaseGrow)
	growth := g.growth.Absorb(g.player.Radius, contacts.Absorbable)
	g.player.Radius = growth.NewRadius
	for i := range growth.Absorbed {
		g.population.Remove(growth.Absorbed[i].Entity)
	}
	if growth.NewRadius > growth.OldRadius {
		post := g.responder.Separate(&g.player, g.population.Barriers())
		resp.Barriers += post.Barriers
		resp.Bounces += post.Bounces
	}

	g.perf.StartPhase(telemetry.PhaseMaintain)
	g.population.Maintain(g.cfg.Population.InitialObjectCount, g.player)

	g.perf.StartPhase(telemetry.PhaseCamera)
	g.framing = g.camera.Update(g.player.Radius, dt)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.collector.RecordTick(dt, g.player.Radius)
	g.collector.RecordAbsorptions(len(growth.Absorbed), growth.AddedVolume, growth.Skipped)
	g.collector.RecordContacts(resp.Blocking, resp.Barriers, resp.Bounces)
	stats := &g.population.Stats
	g.collector.RecordPopulation(stats.Spawned, stats.PlacementFailures, stats.Culled)
	stats.Reset()
	g.flushTelemetry()
}

// Run ticks until maxTicks (0 = unlimited), Stop, or ctx cancellation.
// Cancellation is checked between ticks only.
func (g *Game) Run(ctx context.Context, maxTicks int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if maxTicks > 0 && int(g.tick) >= maxTicks {
			return nil
		}
		if !g.Step() {
			return nil
		}
	}
}

// SetInputVelocity stores a horizontal velocity for the next input phase.
// Collision-imposed velocity is left alone until then.
func (g *Game) SetInputVelocity(v r3.Vec) {
	g.pendingInput = r3.Vec{X: v.X, Z: v.Z}
	g.hasInput = true
}

// Steer sets the input velocity from a movement direction on the XZ plane.
// Speed scales with the player's radius; a zero direction stops input.
func (g *Game) Steer(dx, dz float64) {
	dir := r3.Vec{X: dx, Z: dz}
	if r3.Norm2(dir) == 0 {
		g.SetInputVelocity(r3.Vec{})
		return
	}
	speed := g.cfg.Player.InputSpeed * g.player.Radius
	g.SetInputVelocity(r3.Scale(speed, r3.Unit(dir)))
}

func (g *Game) applyInput() {
	if !g.hasInput {
		return
	}
	g.player.Velocity.X = g.pendingInput.X
	g.player.Velocity.Z = g.pendingInput.Z
	g.hasInput = false
}
