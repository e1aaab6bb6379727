package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// isFinitePositive reports whether v is a usable positive quantity.
func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// planarDistSq returns the squared distance between two points on the XZ plane.
func planarDistSq(a, b r3.Vec) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return dx*dx + dz*dz
}

// horizontal returns v with its vertical component removed.
func horizontal(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// horizontalSpeed returns the magnitude of the XZ component of v.
func horizontalSpeed(v r3.Vec) float64 {
	return math.Hypot(v.X, v.Z)
}

// safeUnit normalizes v, returning ok=false for (near) zero vectors
// where r3.Unit would yield NaN.
func safeUnit(v r3.Vec) (r3.Vec, bool) {
	n := r3.Norm(v)
	if n < 1e-9 || math.IsNaN(n) || math.IsInf(n, 0) {
		return r3.Vec{}, false
	}
	return r3.Scale(1/n, v), true
}
