package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/camera"
	"github.com/pthm-cable/gulp/systems"
)

// MinimapView draws the arena from above in a screen corner.
type MinimapView struct {
	renderer *Renderer
	proj     *camera.Minimap
}

// NewMinimapView creates a minimap of sizePx pixels for an arena of mapSize.
func NewMinimapView(sizePx int, mapSize float64) *MinimapView {
	return &MinimapView{
		renderer: NewRenderer(),
		proj:     camera.NewMinimap(sizePx, mapSize),
	}
}

// Draw renders bodies and the player with the minimap's top-left at (x, y).
func (m *MinimapView) Draw(x, y int32, player r3.Vec, radius float64, bodies []systems.WorldBody) {
	size := int32(m.proj.Size)
	m.renderer.DrawPanel(x, y, size, size)

	for i := range bodies {
		b := &bodies[i]
		if b.IsBarrier {
			continue
		}
		px, py := m.proj.Project(b.Position)
		rl.DrawCircle(x+int32(px), y+int32(py), max(1, float32(m.proj.Radius(b.EffectiveRadius))), m.renderer.Theme.Body)
	}

	px, py := m.proj.Project(player)
	rl.DrawCircle(x+int32(px), y+int32(py), max(2, float32(m.proj.Radius(radius))), m.renderer.Theme.Player)
}
