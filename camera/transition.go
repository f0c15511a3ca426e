package camera

import (
	"github.com/lixenwraith/orrery/vmath"
)

// Purpose tells what a completed transition leads to
type Purpose uint8

const (
	PurposeFocus Purpose = iota // Ends on a body
	PurposeReset                // Ends on the default pose, clears focus
)

func (p Purpose) String() string {
	if p == PurposeReset {
		return "reset"
	}
	return "focus"
}

// Transition is an in-flight eased move between two poses
// Times are seconds on the frame clock
type Transition struct {
	StartPosition vmath.Vec3F
	StartTarget   vmath.Vec3F
	EndPosition   vmath.Vec3F
	EndTarget     vmath.Vec3F
	StartTime     float64
	Duration      float64
	Purpose       Purpose
}

// Sample is the interpolated pose at one instant
type Sample struct {
	Pose
	Progress float64 // Linear, clamped to [0, 1]
	Done     bool
}

// NewTransition starts a move from one pose to another at now
func NewTransition(from, to Pose, now, duration float64, purpose Purpose) *Transition {
	return &Transition{
		StartPosition: from.Position,
		StartTarget:   from.Target,
		EndPosition:   to.Position,
		EndTarget:     to.Target,
		StartTime:     now,
		Duration:      duration,
		Purpose:       purpose,
	}
}

// Progress returns linear progress at now, 1 at or after StartTime+Duration
func (t *Transition) Progress(now float64) float64 {
	if t.Duration <= 0 {
		return 1
	}
	return vmath.Clamp01((now - t.StartTime) / t.Duration)
}

// Advance samples the transition at now with cubic easing
func (t *Transition) Advance(now float64) Sample {
	progress := t.Progress(now)
	eased := vmath.CubicEaseInOut(progress)
	return Sample{
		Pose: Pose{
			Position: vmath.V3FLerp(t.StartPosition, t.EndPosition, eased),
			Target:   vmath.V3FLerp(t.StartTarget, t.EndTarget, eased),
		},
		Progress: progress,
		Done:     progress >= 1,
	}
}

// Shift moves the end pose by delta, used to track a moving body
func (t *Transition) Shift(delta vmath.Vec3F) {
	t.EndPosition = vmath.V3FAdd(t.EndPosition, delta)
	t.EndTarget = vmath.V3FAdd(t.EndTarget, delta)
}

// End returns the destination pose
func (t *Transition) End() Pose {
	return Pose{Position: t.EndPosition, Target: t.EndTarget}
}
