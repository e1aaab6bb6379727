package components

import "gonum.org/v1/gonum/spatial/r3"

// Position represents an entity's world position (Y up, ground plane at Y=0).
type Position struct {
	r3.Vec
}
