package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/gulp/camera"
	"github.com/pthm-cable/gulp/components"
	"github.com/pthm-cable/gulp/game"
	"github.com/pthm-cable/gulp/systems"
)

var (
	borderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	playerStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	textStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	shapeStyles = map[components.ShapeKind]tcell.Style{
		components.ShapeCube:     tcell.StyleDefault.Foreground(tcell.ColorBlue),
		components.ShapeSphere:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
		components.ShapeCone:     tcell.StyleDefault.Foreground(tcell.ColorPurple),
		components.ShapeCylinder: tcell.StyleDefault.Foreground(tcell.ColorTeal),
	}
	shapeGlyphs = map[components.ShapeKind]rune{
		components.ShapeCube:     '#',
		components.ShapeSphere:   'o',
		components.ShapeCone:     '^',
		components.ShapeCylinder: '|',
	}
)

// Terminal cells are about twice as tall as wide; each map cell spans two columns.
const cellWidth = 2

// cellPos converts a minimap cell to screen coordinates inside the border.
func cellPos(col, row int) (x, y int) {
	return 1 + col*cellWidth, 1 + row
}

// drawFrame renders the arena border, bodies, player and a status block.
func drawFrame(s tcell.Screen, mm *camera.Minimap, hud game.HUD, bodies []systems.WorldBody, paused bool) {
	s.Clear()
	size := int(mm.Size)
	drawBorder(s, size*cellWidth+2, size+2)

	for i := range bodies {
		b := &bodies[i]
		if b.IsBarrier {
			continue
		}
		x, y := cellPos(mm.Cell(b.Position))
		s.SetContent(x, y, shapeGlyphs[b.Shape], nil, shapeStyles[b.Shape])
	}

	x, y := cellPos(mm.Cell(hud.Position))
	s.SetContent(x, y, '@', nil, playerStyle)

	status := []string{
		fmt.Sprintf("radius %.2f  absorbed %d (vol %.1f)  bodies %d", hud.Radius, hud.Absorptions, hud.AbsorbedVolume, hud.BodyCount),
		fmt.Sprintf("camera %.1f  fov %.0f  tick %d", hud.Distance, hud.FOV, hud.Tick),
		"arrows: move  space: pause  q: quit",
	}
	if paused {
		status[2] = "PAUSED  " + status[2]
	}
	for i, line := range status {
		drawText(s, 0, size+3+i, line)
	}
}

func drawBorder(s tcell.Screen, w, h int) {
	for x := 1; x < w-1; x++ {
		s.SetContent(x, 0, '-', nil, borderStyle)
		s.SetContent(x, h-1, '-', nil, borderStyle)
	}
	for y := 1; y < h-1; y++ {
		s.SetContent(0, y, '|', nil, borderStyle)
		s.SetContent(w-1, y, '|', nil, borderStyle)
	}
	for _, c := range [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		s.SetContent(c[0], c[1], '+', nil, borderStyle)
	}
}

func drawText(s tcell.Screen, x, y int, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, textStyle)
	}
}

// steerKey maps an arrow key to a movement direction on the XZ plane.
func steerKey(k tcell.Key) (dx, dz float64, ok bool) {
	switch k {
	case tcell.KeyUp:
		return 0, -1, true
	case tcell.KeyDown:
		return 0, 1, true
	case tcell.KeyLeft:
		return -1, 0, true
	case tcell.KeyRight:
		return 1, 0, true
	}
	return 0, 0, false
}
