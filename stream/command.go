package stream

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/engine"
)

// ErrUnknownOp is returned for commands the simulation does not understand
var ErrUnknownOp = errors.New("unknown command op")

// Command ops
const (
	OpFocus   = "focus"
	OpReset   = "reset"
	OpPause   = "pause"
	OpResume  = "resume"
	OpToggle  = "toggle"
	OpReverse = "reverse"
	OpSpeed   = "speed"
	OpManual  = "manual"
	OpEngage  = "engage"
	OpPose    = "pose"
)

// Command is one inbound client request
type Command struct {
	Op    string       `json:"op"`
	Body  string       `json:"body,omitempty"`  // focus
	Value float64      `json:"value,omitempty"` // speed
	Mode  string       `json:"mode,omitempty"`  // engage: orbit, follow or none
	Pose  *camera.Pose `json:"pose,omitempty"`  // pose: viewer pose in Free mode
}

// Apply runs the command against the simulation, must be called from the host loop
func (c Command) Apply(sim *engine.SimulationContext) error {
	switch c.Op {
	case OpFocus:
		return sim.FocusOnBody(c.Body)
	case OpReset:
		sim.ResetCamera()
	case OpPause:
		sim.PauseTime()
	case OpResume:
		sim.ResumeTime()
	case OpToggle:
		sim.TogglePause()
	case OpReverse:
		sim.ReverseTime()
	case OpSpeed:
		sim.SetTimeMultiplier(c.Value)
	case OpManual:
		sim.NotifyManualCameraInput()
	case OpEngage:
		e, err := camera.ParseEngage(c.Mode)
		if err != nil {
			return err
		}
		sim.SetEngage(e)
	case OpPose:
		if c.Pose == nil || !sim.SetViewerPose(*c.Pose) {
			return fmt.Errorf("viewer pose rejected in %v mode", sim.Mode())
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, c.Op)
	}
	return nil
}
