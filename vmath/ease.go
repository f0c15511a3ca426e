package vmath

import "math"

// Clamp01 clamps t to [0, 1], NaN maps to 0
func Clamp01(t float64) float64 {
	if !(t > 0) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// ClampF clamps v to [lo, hi]
func ClampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CubicEaseInOut maps linear progress to eased progress
// f(0)=0, f(0.5)=0.5, f(1)=1, monotonically non-decreasing on [0, 1]
func CubicEaseInOut(t float64) float64 {
	t = Clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}
