package engine

import (
	"github.com/lixenwraith/orrery/camera"
)

// Frame summarizes one Tick
type Frame struct {
	Number        uint64
	Now           float64 // Frame clock in seconds after this tick
	Dt            float64 // Raw delta passed to Tick
	Scale         float64 // Effective time scale used for bodies
	Skipped       bool    // Delta was rejected, nothing advanced
	BodiesSkipped int
}

// Observer receives simulation notifications synchronously from the host goroutine
// Implementations must not call back into the SimulationContext
type Observer interface {
	ModeChanged(change camera.ModeChange)
	FrameDone(f Frame)
	BodySkipped(id string, err error)
	FocusRequested(id string, err error)
}

// BaseObserver implements Observer with no-ops, embed it to handle a subset
type BaseObserver struct{}

func (BaseObserver) ModeChanged(camera.ModeChange) {}
func (BaseObserver) FrameDone(Frame)               {}
func (BaseObserver) BodySkipped(string, error)     {}
func (BaseObserver) FocusRequested(string, error)  {}
