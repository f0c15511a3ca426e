// Package camera drives the camera's position and look-at target
//
// A Controller owns the camera while focusing, orbiting or following a body and hands it
// back to the viewer in Free mode. Mode changes go through a table-driven state machine
// (table.yaml), with Dispatch as the single entry point for focus, reset, manual input
// and per-frame ticks.
package camera

import (
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/vmath"
)

// Pose is a camera position and the point it looks at
type Pose struct {
	Position vmath.Vec3F `json:"position"`
	Target   vmath.Vec3F `json:"target"`
}

// DefaultPose returns the fixed framing used by reset
func DefaultPose() Pose {
	p, t := parameter.DefaultCameraPosition, parameter.DefaultCameraTarget
	return Pose{
		Position: vmath.Vec3F{X: p[0], Y: p[1], Z: p[2]},
		Target:   vmath.Vec3F{X: t[0], Y: t[1], Z: t[2]},
	}
}

// IsFinite reports whether both points are finite
func (p Pose) IsFinite() bool {
	return vmath.V3FIsFinite(p.Position) && vmath.V3FIsFinite(p.Target)
}

// Distance returns the distance between camera and look-at point
func (p Pose) Distance() float64 {
	return vmath.V3FDist(p.Position, p.Target)
}
