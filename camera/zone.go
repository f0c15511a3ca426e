package camera

import (
	"fmt"
	"math"

	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/vmath"
)

// ZoneThreshold returns the orbit zone radius for a body
func ZoneThreshold(bodySize float64, isCentralBody bool) float64 {
	if isCentralBody {
		return bodySize * parameter.CentralZoneMultiplier
	}
	return bodySize * parameter.ZoneMultiplier
}

// IsInZone reports whether the camera is within the body's orbit zone
// A plain threshold on Euclidean distance, no hysteresis
func IsInZone(cameraPosition, bodyPosition vmath.Vec3F, bodySize float64, isCentralBody bool) bool {
	return vmath.V3FDist(cameraPosition, bodyPosition) < ZoneThreshold(bodySize, isCentralBody)
}

// ViewDistance returns the planar focus distance for a body, floored for small bodies
func ViewDistance(bodySize float64) float64 {
	return math.Max(bodySize*parameter.ViewDistanceFactor, parameter.MinViewDistance)
}

// focusReach is the straight-line camera distance produced by FocusPose
func focusReach(bodySize float64) float64 {
	return ViewDistance(bodySize) * math.Hypot(1, parameter.ViewElevation)
}

// FocusPose returns the framing for a body seen from the current camera direction
// The camera keeps its bearing around the body, moves to the view distance and looks at the body
func FocusPose(cameraPosition, bodyPosition vmath.Vec3F, bodySize float64) Pose {
	dir := vmath.V3FSub(cameraPosition, bodyPosition)
	dir.Y = 0
	dir = vmath.V3FNormalize(dir)
	if dir == (vmath.Vec3F{}) {
		// Camera straight above or on the body
		dir = vmath.Vec3F{Z: 1}
	}

	dist := ViewDistance(bodySize)
	offset := vmath.V3FScale(dir, dist)
	offset.Y = dist * parameter.ViewElevation

	return Pose{
		Position: vmath.V3FAdd(bodyPosition, offset),
		Target:   bodyPosition,
	}
}

// ValidateFraming rejects bodies whose focus framing would land outside their own orbit zone
func ValidateFraming(id string, bodySize float64, isCentralBody bool) error {
	reach := focusReach(bodySize)
	zone := ZoneThreshold(bodySize, isCentralBody)
	if reach >= zone {
		return fmt.Errorf("%w: %s focus distance %.3g not inside orbit zone %.3g", ErrFraming, id, reach, zone)
	}
	return nil
}
