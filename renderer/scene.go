// Package renderer draws the arena with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/systems"
)

// drawable is one collectible as the renderer sees it.
type drawable struct {
	shape components.ShapeKind
	size  float32
	pos   rl.Vector3
	color rl.Color
}

// Scene keeps the drawable set in sync with the population through the
// spawn and remove callbacks, and draws it in 3D.
type Scene struct {
	drawables  map[uint32]drawable
	groundSize float32
}

// NewScene creates an empty scene for an arena of the given side length.
func NewScene(mapSize float64) *Scene {
	return &Scene{
		drawables:  make(map[uint32]drawable),
		groundSize: float32(mapSize),
	}
}

var _ systems.DrawableFactory = (*Scene)(nil)

// Spawn registers a collectible.
func (s *Scene) Spawn(id uint32, shape components.ShapeKind, size float64, pos r3.Vec) {
	s.drawables[id] = drawable{
		shape: shape,
		size:  float32(size),
		pos:   vec3(pos),
		color: shapeColor(shape, id),
	}
}

// Remove forgets a collectible. Unknown ids are ignored.
func (s *Scene) Remove(id uint32) {
	delete(s.drawables, id)
}

// Len returns the number of registered collectibles.
func (s *Scene) Len() int {
	return len(s.drawables)
}

// Camera builds the raylib camera looking at the player from eye.
func Camera(eye, target r3.Vec, fov float64) rl.Camera3D {
	return rl.NewCamera3D(vec3(eye), vec3(target), rl.NewVector3(0, 1, 0), float32(fov), rl.CameraPerspective)
}

// Draw renders ground, walls, collectibles and the player.
func (s *Scene) Draw(cam rl.Camera3D, player components.Player, barriers []systems.WorldBody) {
	rl.BeginMode3D(cam)

	rl.DrawPlane(rl.NewVector3(0, 0, 0), rl.NewVector2(s.groundSize, s.groundSize), rl.Color{R: 96, G: 160, B: 80, A: 255})

	for i := range barriers {
		drawBarrier(&barriers[i])
	}
	for _, d := range s.drawables {
		drawShape(d)
	}

	r := float32(player.Radius)
	rl.DrawSphere(vec3(player.Position), r, rl.Color{R: 230, G: 70, B: 90, A: 255})
	rl.DrawSphereWires(vec3(player.Position), r*1.01, 8, 12, rl.Fade(rl.White, 0.3))

	rl.EndMode3D()
}

func drawShape(d drawable) {
	s := d.size
	switch d.shape {
	case components.ShapeCube:
		rl.DrawCube(d.pos, s, s, s, d.color)
	case components.ShapeSphere:
		rl.DrawSphere(d.pos, s, d.color)
	case components.ShapeCone:
		// Height 2s, resting on its base.
		base := rl.NewVector3(d.pos.X, d.pos.Y-s, d.pos.Z)
		rl.DrawCylinder(base, 0, s, 2*s, 16, d.color)
	case components.ShapeCylinder:
		base := rl.NewVector3(d.pos.X, d.pos.Y-s, d.pos.Z)
		rl.DrawCylinder(base, s, s, 2*s, 16, d.color)
	}
}

func drawBarrier(b *systems.WorldBody) {
	ext := b.Box.HalfExtents
	rl.PushMatrix()
	rl.Translatef(float32(b.Position.X), float32(b.Position.Y), float32(b.Position.Z))
	rl.Rotatef(float32(b.Box.Yaw*180/math.Pi), 0, 1, 0)
	rl.DrawCube(rl.NewVector3(0, 0, 0), float32(2*ext.X), float32(2*ext.Y), float32(2*ext.Z), rl.Color{R: 120, G: 110, B: 100, A: 255})
	rl.PopMatrix()
}

// shapeColor picks a stable per-body tint from a per-shape base color.
func shapeColor(shape components.ShapeKind, id uint32) rl.Color {
	base := [...]rl.Color{
		components.ShapeCube:     {R: 70, G: 130, B: 220, A: 255},
		components.ShapeSphere:   {R: 240, G: 200, B: 60, A: 255},
		components.ShapeCone:     {R: 160, G: 90, B: 200, A: 255},
		components.ShapeCylinder: {R: 60, G: 190, B: 170, A: 255},
	}
	c := rl.Gray
	if int(shape) < len(base) {
		c = base[shape]
	}
	shade := 0.8 + 0.2*float32(id%7)/6
	return rl.Color{
		R: uint8(float32(c.R) * shade),
		G: uint8(float32(c.G) * shade),
		B: uint8(float32(c.B) * shade),
		A: c.A,
	}
}

func vec3(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}
