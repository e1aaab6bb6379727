package game

import "gonum.org/v1/gonum/spatial/r3"

// HUD is the state exposed to presentation layers each frame.
type HUD struct {
	Radius         float64
	Absorptions    int
	AbsorbedVolume float64 // session total
	Position       r3.Vec
	Distance       float64
	FOV            float64
	Height         float64
	BodyCount      int
	Tick           int32
}

// HUD returns a snapshot for the HUD and minimap.
func (g *Game) HUD() HUD {
	return HUD{
		Radius:         g.player.Radius,
		Absorptions:    g.growth.Absorptions,
		AbsorbedVolume: g.growth.TotalVolume,
		Position:       g.player.Position,
		Distance:       g.framing.Distance,
		FOV:            g.framing.FOV,
		Height:         g.framing.Height,
		BodyCount:      g.population.Count(),
		Tick:           g.tick,
	}
}
