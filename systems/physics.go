package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/config"
)

// PhysicsSystem integrates the player, the only dynamic body.
// Every step is scaled by the frame delta, so results do not depend on frame rate.
type PhysicsSystem struct {
	gravity       float64
	friction      float64
	referenceDT   float64
	maxSpeed      float64
	speedExponent float64
}

// NewPhysicsSystem creates a physics system.
func NewPhysicsSystem(cfg *config.Config) *PhysicsSystem {
	return &PhysicsSystem{
		gravity:       cfg.Physics.Gravity,
		friction:      cfg.Physics.Friction,
		referenceDT:   cfg.Physics.ReferenceDT,
		maxSpeed:      cfg.Physics.MaxSpeed,
		speedExponent: cfg.Physics.SpeedExponent,
	}
}

// MaxSpeed returns the horizontal speed limit for a player of the given radius.
func (s *PhysicsSystem) MaxSpeed(radius float64) float64 {
	return s.maxSpeed * math.Pow(radius, s.speedExponent)
}

// Update advances the player by dt seconds and reports whether it rests on the ground.
func (s *PhysicsSystem) Update(player *components.Player, dt float64) bool {
	if dt <= 0 {
		return player.Position.Y <= player.Radius
	}

	player.Velocity.Y += s.gravity * dt

	// Limit horizontal velocity
	limit := s.MaxSpeed(player.Radius)
	if speed := horizontalSpeed(player.Velocity); speed > limit {
		scale := limit / speed
		player.Velocity.X *= scale
		player.Velocity.Z *= scale
	}

	player.Position = r3.Add(player.Position, r3.Scale(dt, player.Velocity))

	grounded := false
	if player.Position.Y <= player.Radius {
		player.Position.Y = player.Radius
		if player.Velocity.Y < 0 {
			player.Velocity.Y = 0
		}
		grounded = true
	}

	if grounded {
		// Friction is expressed per reference tick; rescale to this frame's length.
		f := math.Pow(s.friction, dt/s.referenceDT)
		player.Velocity.X *= f
		player.Velocity.Z *= f
	}
	return grounded
}
