// Package ui draws the heads-up display, controls and minimap over the 3D view.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Header      rl.Color
	LabelColor  rl.Color
	ValueColor  rl.Color
	BarBg       rl.Color
	BarFill     rl.Color
	Player      rl.Color
	Body        rl.Color

	Padding    int32
	LineHeight int32
	LabelWidth int32
	BarHeight  int32
	FontSize   int32
	HeaderSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:     rl.Color{R: 20, G: 25, B: 30, A: 220},
		PanelBorder: rl.Color{R: 60, G: 70, B: 80, A: 255},
		Header:      rl.Yellow,
		LabelColor:  rl.LightGray,
		ValueColor:  rl.RayWhite,
		BarBg:       rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:     rl.Color{R: 100, G: 200, B: 100, A: 255},
		Player:      rl.Color{R: 230, G: 70, B: 90, A: 255},
		Body:        rl.Color{R: 200, G: 200, B: 200, A: 200},

		Padding:    10,
		LineHeight: 18,
		LabelWidth: 90,
		BarHeight:  12,
		FontSize:   14,
		HeaderSize: 18,
	}
}
