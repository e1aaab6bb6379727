package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds what the HUD shows for one frame.
type HUDData struct {
	Radius         float64
	MaxObjectSize  float64 // reference for the size bar
	Absorptions    int
	AbsorbedVolume float64
	BodyCount      int
	Tick           int32
	Distance       float64
	FOV            float64
	FPS            int32
	Paused         bool
}

// Action is a control requested through the HUD buttons.
type Action int

const (
	ActionNone Action = iota
	ActionTogglePause
	ActionRestart
)

const panelWidth = 260

// HUD renders the session panel and its controls.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a HUD.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD and returns the control clicked this frame, if any.
func (h *HUD) Draw(data HUDData) Action {
	r := h.renderer
	pad := r.Theme.Padding
	x, y := pad, pad

	r.DrawPanel(x, y, panelWidth, 210)
	x += pad
	y += pad

	y = r.DrawHeader(x, y, "gulp")
	y = r.DrawBar(x, y, "Size", data.Radius, data.MaxObjectSize, panelWidth-2*pad)
	y = r.DrawLabelValue(x, y, "Absorbed", fmt.Sprintf("%d (vol %.1f)", data.Absorptions, data.AbsorbedVolume))
	y = r.DrawLabelValue(x, y, "Bodies", fmt.Sprintf("%d", data.BodyCount))
	y = r.DrawLabelValue(x, y, "Camera", fmt.Sprintf("%.1f / fov %.0f", data.Distance, data.FOV))
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d | %d fps", data.Tick, data.FPS))
	y += 6

	action := ActionNone
	pauseText := "Pause"
	if data.Paused {
		pauseText = "Resume"
	}
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: 110, Height: 28}, pauseText) {
		action = ActionTogglePause
	}
	if gui.Button(rl.Rectangle{X: float32(x + 120), Y: float32(y), Width: 110, Height: 28}, "Restart") {
		action = ActionRestart
	}
	return action
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}
