package parameter

import "time"

// Camera transition and focus framing
const (
	// TransitionDuration is the fixed wall-clock length of every camera transition
	// Not derived from travel distance
	TransitionDuration = 1500 * time.Millisecond

	// ViewDistanceFactor multiplies body size to get the focus viewing distance
	ViewDistanceFactor = 2.5

	// MinViewDistance floors the viewing distance so small bodies are not clipped into
	MinViewDistance = 1.5

	// ViewElevation is the upward tilt of the focus offset, as a fraction of the planar offset
	ViewElevation = 0.35
)

// Orbit zone thresholds, as multiples of body size
const (
	// ZoneMultiplier applies to ordinary bodies
	ZoneMultiplier = 12.0

	// CentralZoneMultiplier applies to the central body, which is visually large
	CentralZoneMultiplier = 4.0
)

// Auto-orbit
const (
	// OrbitAngularSpeed is the camera revolution rate around a focused body in rad/s
	// Driven by real frame time, unaffected by the time multiplier
	OrbitAngularSpeed = 0.15
)

// Default framing used by camera reset
var (
	DefaultCameraPosition = [3]float64{0, 60, 140}
	DefaultCameraTarget   = [3]float64{0, 0, 0}
)
