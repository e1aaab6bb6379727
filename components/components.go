// Package components defines ECS components and the player state for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r3"

// Player is the single dynamic body: a sphere that only ever grows.
type Player struct {
	Position r3.Vec
	Velocity r3.Vec
	Radius   float64
}

// NewPlayer creates a player resting on the ground at the arena origin.
func NewPlayer(radius float64) Player {
	return Player{
		Position: r3.Vec{Y: radius},
		Radius:   radius,
	}
}
