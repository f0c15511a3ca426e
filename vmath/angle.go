package vmath

import "math"

// TwoPi is a full revolution in radians
const TwoPi = 2 * math.Pi

// IsFinite reports whether f is neither NaN nor ±Inf
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// WrapAngle normalizes an angle in radians to [0, 2π)
// Non-finite input returns 0
func WrapAngle(a float64) float64 {
	if !IsFinite(a) {
		return 0
	}
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	// Mod of a tiny negative value rounds up to exactly 2π
	if a >= TwoPi {
		a = 0
	}
	return a
}

// PlanarAngle returns the XZ-plane angle of offset, consistent with V3FOnCircle
func PlanarAngle(offset Vec3F) float64 {
	return WrapAngle(math.Atan2(offset.Z, offset.X))
}

// PlanarRadius returns the XZ-plane length of offset
func PlanarRadius(offset Vec3F) float64 {
	return math.Hypot(offset.X, offset.Z)
}
