// Package camera derives third-person camera framing from the player's size.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/gulp/config"
)

// Framing is the camera setup for one frame.
type Framing struct {
	Distance float64 // eye to player, along the ground
	FOV      float64 // vertical field of view, degrees
	Height   float64 // eye height above the player center
}

// Camera keeps the player filling a fixed share of the screen as it grows.
//
// FOV is a clamped linear function of radius. Distance then inverts
// screenHeight = 2*tan(fov/2)*distance for the target screen share, so the two
// are solved in sequence rather than jointly. Height is a fixed ratio of distance.
type Camera struct {
	screenShare  float64
	zoomRate     float64
	arenaScale   float64
	baseFOV      float64
	fovMin       float64
	fovMax       float64
	fovPerRadius float64
	heightRatio  float64
	smoothing    float64

	// Current is the eased framing last returned by Update.
	Current     Framing
	initialized bool
}

// New creates a camera from the config.
func New(cfg *config.Config) *Camera {
	c := cfg.Camera
	return &Camera{
		screenShare:  c.MaxScreenPercentage,
		zoomRate:     c.CameraZoomRate,
		arenaScale:   cfg.Derived.ArenaScale,
		baseFOV:      c.BaseFOV,
		fovMin:       c.FOVMin,
		fovMax:       c.FOVMax,
		fovPerRadius: c.FOVPerRadius,
		heightRatio:  c.HeightRatio,
		smoothing:    c.Smoothing,
	}
}

// FOV returns the field of view in degrees for a player of the given radius.
func (c *Camera) FOV(radius float64) float64 {
	return clamp(c.baseFOV-5+radius*c.fovPerRadius, c.fovMin, c.fovMax)
}

// Distance returns the camera distance at which a sphere of the given radius
// fills the target share of a view with the given FOV.
func (c *Camera) Distance(radius, fovDeg float64) float64 {
	half := fovDeg * math.Pi / 360
	return radius / c.screenShare / math.Tan(half) * c.zoomRate * c.arenaScale
}

// Frame returns the target framing for a radius, without smoothing.
func (c *Camera) Frame(radius float64) Framing {
	fov := c.FOV(radius)
	dist := c.Distance(radius, fov)
	return Framing{
		Distance: dist,
		FOV:      fov,
		Height:   dist * c.heightRatio,
	}
}

// Update eases Current toward the target framing for radius over dt seconds.
// The first call, or a zero smoothing rate, snaps straight to the target.
func (c *Camera) Update(radius, dt float64) Framing {
	target := c.Frame(radius)
	if !c.initialized || c.smoothing <= 0 {
		c.Current = target
		c.initialized = true
		return c.Current
	}

	// Exponential approach: alpha stays in [0, 1), so no overshoot.
	alpha := 1 - math.Exp(-c.smoothing*math.Max(dt, 0))
	c.Current.Distance += (target.Distance - c.Current.Distance) * alpha
	c.Current.FOV += (target.FOV - c.Current.FOV) * alpha
	c.Current.Height += (target.Height - c.Current.Height) * alpha
	return c.Current
}

// Eye returns the camera position for the current framing, behind the player
// along +Z, looking at target.
func (c *Camera) Eye(target r3.Vec) r3.Vec {
	return r3.Add(target, r3.Vec{Y: c.Current.Height, Z: c.Current.Distance})
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
