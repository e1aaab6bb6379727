// Package systems implements the per-tick simulation stages: placement, population,
// collision detection and response, growth and player physics.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
)

// WorldBody is a per-tick snapshot of a collectible or barrier assembled from
// ECS components. Collision code works on snapshots and never touches the world.
type WorldBody struct {
	Entity          ecs.Entity
	ID              uint32
	Shape           components.ShapeKind
	NominalSize     float64
	Position        r3.Vec
	EffectiveRadius float64

	IsBarrier bool
	Box       components.Barrier // valid when IsBarrier

	// Velocity is nil for static bodies. Blocking bodies never move under
	// the static response policy, so it is always nil today.
	Velocity *r3.Vec
}

// DrawableFactory is the presentation hook: the core decides what exists and
// where, the factory turns that into something drawable.
type DrawableFactory interface {
	Spawn(id uint32, shape components.ShapeKind, size float64, pos r3.Vec)
	Remove(id uint32)
}

// nopDrawables is used when no presentation layer is attached.
type nopDrawables struct{}

func (nopDrawables) Spawn(uint32, components.ShapeKind, float64, r3.Vec) {}
func (nopDrawables) Remove(uint32)                                      {}
