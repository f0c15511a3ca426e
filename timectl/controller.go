// Package timectl owns the global time multiplier, pause and reverse state
package timectl

import (
	"math"

	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/vmath"
)

// ScaleListener receives the effective scale whenever it changes
type ScaleListener interface {
	ApplyScale(scale float64)
}

// State is a read-only view of the time controller
type State struct {
	Multiplier     float64 `json:"multiplier"`
	Paused         bool    `json:"paused"`
	Reversed       bool    `json:"reversed"`
	EffectiveScale float64 `json:"effective_scale"`
}

// Controller computes the effective time scale applied to every body
//
// Direction composes as a flag XOR sign: the multiplier's own sign gives the base direction
// and Reversed flips it. Reversing with a negative multiplier therefore runs forward.
// Pause forces the scale to zero without touching multiplier or direction.
type Controller struct {
	multiplier float64
	paused     bool
	reversed   bool

	effective float64

	listeners []ScaleListener
}

// New creates a controller at the default multiplier, listeners receive the initial scale
func New(listeners ...ScaleListener) *Controller {
	c := &Controller{
		multiplier: parameter.MultiplierDefault,
		listeners:  listeners,
	}
	c.recompute()
	return c
}

// Subscribe adds a listener and immediately pushes the current scale to it
func (c *Controller) Subscribe(l ScaleListener) {
	c.listeners = append(c.listeners, l)
	l.ApplyScale(c.effective)
}

// SetMultiplier clamps v to the multiplier bounds and returns the stored value
// NaN is ignored and the current multiplier is kept
func (c *Controller) SetMultiplier(v float64) float64 {
	if math.IsNaN(v) {
		return c.multiplier
	}
	c.multiplier = vmath.ClampF(v, parameter.MultiplierMin, parameter.MultiplierMax)
	c.recompute()
	return c.multiplier
}

// Pause freezes motion
// Multiplier and direction are untouched, so Resume recovers the pre-pause magnitude
// unless they were changed while paused
func (c *Controller) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.recompute()
}

// Resume restores motion honoring the current multiplier and reverse flag
func (c *Controller) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.recompute()
}

// TogglePause switches between Pause and Resume
func (c *Controller) TogglePause() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Reverse flips the direction flag
func (c *Controller) Reverse() {
	c.reversed = !c.reversed
	c.recompute()
}

// Scale returns the effective signed scale
func (c *Controller) Scale() float64 {
	return c.effective
}

// State returns a snapshot of the controller
func (c *Controller) State() State {
	return State{
		Multiplier:     c.multiplier,
		Paused:         c.paused,
		Reversed:       c.reversed,
		EffectiveScale: c.effective,
	}
}

// recompute derives the effective scale and pushes it to listeners
func (c *Controller) recompute() {
	eff := 0.0
	if !c.paused {
		eff = c.multiplier * parameter.BaseSpeed * parameter.VisualizationFactor
		if c.reversed {
			eff = -eff
		}
	}
	// Avoid publishing negative zero
	if eff == 0 {
		eff = 0
	}
	c.effective = eff

	for _, l := range c.listeners {
		l.ApplyScale(eff)
	}
}
