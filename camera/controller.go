package camera

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/orrery/engine/fsm"
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/scene"
	"github.com/lixenwraith/orrery/vmath"
)

// ErrNoPosition is returned when a focus target has no finite rendered position
var ErrNoPosition = errors.New("focus target has no position")

// Config wires a Controller to its collaborators
type Config struct {
	Positions scene.PositionSource // Required, where focused bodies are rendered
	Input     InputSignal          // Optional, polled each tick
	Engage    Engage               // What a completed focus enters
	TablePath string               // Optional transition table override, empty uses the embedded table
	Duration  time.Duration        // Transition length, zero uses parameter.TransitionDuration
}

// State is a read-only copy of the camera state
type State struct {
	Mode       Mode    `json:"mode"`
	Focus      string  `json:"focus,omitempty"`
	InsideZone bool    `json:"inside_zone"`
	Pose       Pose    `json:"pose"`
	Progress   float64 `json:"progress,omitempty"` // Transition progress while Transitioning
	// Destination is the pose the in-flight transition is heading to
	Destination *Pose `json:"destination,omitempty"`
}

// Controller is the camera focus state machine
// Not safe for concurrent use, the host calls it from its frame loop
type Controller struct {
	machine *fsm.Machine[*Controller]
	modes   map[fsm.StateID]Mode

	positions scene.PositionSource
	input     InputSignal
	engage    Engage
	duration  float64

	mode Mode
	pose Pose

	// Clock of the event being dispatched
	now float64
	dt  float64

	focus       *Target
	insideZone  bool
	zoneKnown   bool // insideZone was computed from a real position since focus
	zoneEntered bool // outside to inside edge this tick
	manualInput bool // interrupt pending until the end of the next tick

	// Request consumed by BeginTransition
	pending        *Target
	pendingPurpose Purpose
	pendingBodyPos vmath.Vec3F

	transition  *Transition
	arrived     bool
	lastBodyPos vmath.Vec3F

	orbitAngle   float64
	orbitRadius  float64
	orbitHeight  float64
	followOffset vmath.Vec3F

	listeners []func(ModeChange)
}

// New builds a controller in Free mode at the default pose
func New(cfg Config) (*Controller, error) {
	if cfg.Positions == nil {
		return nil, fmt.Errorf("camera: position source is required")
	}
	duration := cfg.Duration
	if duration <= 0 {
		duration = parameter.TransitionDuration
	}

	c := &Controller{
		positions: cfg.Positions,
		input:     cfg.Input,
		engage:    cfg.Engage,
		duration:  duration.Seconds(),
		pose:      DefaultPose(),
		mode:      ModeFree,
	}

	m := fsm.NewMachine[*Controller]()
	registerCameraFSM(m)
	if err := fsm.LoadConfigAuto(m, cfg.TablePath, defaultTable); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTable, err)
	}
	modes, err := bindModes(m)
	if err != nil {
		return nil, err
	}
	c.machine = m
	c.modes = modes

	if err := m.Init(c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTable, err)
	}
	c.mode = c.modes[m.ActiveState()]
	return c, nil
}

// OnModeChange registers fn to run after every dispatch that changes the mode
func (c *Controller) OnModeChange(fn func(ModeChange)) {
	c.listeners = append(c.listeners, fn)
}

// Dispatch is the single entry point for camera input
// Events carrying non-finite time are rejected without touching state
func (c *Controller) Dispatch(ev Event) error {
	if !vmath.IsFinite(ev.Now) || !vmath.IsFinite(ev.Dt) {
		return ErrNonFiniteTime
	}

	from := c.mode
	c.now = ev.Now

	switch ev.Type {
	case EventFocus:
		if ev.Target == nil {
			return ErrNoTarget
		}
		pos, ok := c.positionOf(ev.Target)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoPosition, ev.Target.ID)
		}
		c.pending = ev.Target
		c.pendingPurpose = PurposeFocus
		c.pendingBodyPos = pos
		c.machine.HandleEvent(c, fsmFocus)

	case EventReset:
		c.pending = nil
		c.pendingPurpose = PurposeReset
		c.machine.HandleEvent(c, fsmReset)

	case EventManualInput:
		c.manualInput = true

	case EventTick:
		c.dt = ev.Dt
		if c.input != nil && c.input.IsUserControllingCamera() {
			c.manualInput = true
		}
		c.machine.Update(c, time.Duration(ev.Dt*float64(time.Second)))
		c.manualInput = false
		c.zoneEntered = false

	default:
		return fmt.Errorf("camera: unknown event %d", ev.Type)
	}

	c.pending = nil
	c.syncMode(from)
	return nil
}

// syncMode publishes a mode change to listeners
func (c *Controller) syncMode(from Mode) {
	c.mode = c.modes[c.machine.ActiveState()]
	if c.mode == from {
		return
	}
	change := ModeChange{From: from, To: c.mode, Focus: c.FocusedBodyID()}
	for _, fn := range c.listeners {
		fn(change)
	}
}

// SetViewerPose records a pose set by the viewer, accepted only in Free mode
func (c *Controller) SetViewerPose(p Pose) bool {
	if c.mode.Owned() || !p.IsFinite() {
		return false
	}
	c.pose = p
	return true
}

// Mode returns the current mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// Pose returns the camera position and look-at target for this frame
func (c *Controller) Pose() Pose {
	return c.pose
}

// FocusedBodyID returns the focused body, empty if none
// Cleared only when a reset completes
func (c *Controller) FocusedBodyID() string {
	if c.focus == nil {
		return ""
	}
	return c.focus.ID
}

// InsideZone reports the last zone result for the focused body
func (c *Controller) InsideZone() bool {
	return c.insideZone
}

// Transition returns the in-flight transition, nil unless Transitioning
func (c *Controller) Transition() *Transition {
	return c.transition
}

// Engage returns the configured engagement
func (c *Controller) Engage() Engage {
	return c.engage
}

// SetEngage changes what the next completed focus enters
func (c *Controller) SetEngage(e Engage) {
	c.engage = e
}

// State returns a copy of the camera state
func (c *Controller) State() State {
	s := State{
		Mode:       c.mode,
		Focus:      c.FocusedBodyID(),
		InsideZone: c.insideZone,
		Pose:       c.pose,
	}
	if c.transition != nil {
		s.Progress = c.transition.Progress(c.now)
		end := c.transition.End()
		s.Destination = &end
	}
	return s
}

// Edges lists every transition of the loaded table
func (c *Controller) Edges() []fsm.Edge {
	return c.machine.Edges()
}

func (c *Controller) arrivedOnFocus() bool {
	return c.arrived && c.transition != nil && c.transition.Purpose == PurposeFocus && c.focus != nil
}

// beginTransition starts the move requested by the pending focus or reset
// Entering Transitioning drops any orbit or follow sub-state
func (c *Controller) beginTransition() {
	c.orbitAngle, c.orbitRadius, c.orbitHeight = 0, 0, 0
	c.followOffset = vmath.Vec3F{}
	c.arrived = false

	var to Pose
	if c.pendingPurpose == PurposeFocus && c.pending != nil {
		if c.focus == nil || c.focus.ID != c.pending.ID {
			c.zoneKnown = false
			c.insideZone = false
		}
		c.focus = c.pending
		c.lastBodyPos = c.pendingBodyPos
		to = FocusPose(c.pose.Position, c.pendingBodyPos, c.focus.Size)
	} else {
		to = DefaultPose()
	}
	c.transition = NewTransition(c.pose, to, c.now, c.duration, c.pendingPurpose)
}

// advanceTransition samples the in-flight move, tracking a moving focus body
func (c *Controller) advanceTransition() {
	t := c.transition
	if t == nil {
		return
	}
	if t.Purpose == PurposeFocus {
		if pos, ok := c.bodyPosition(); ok {
			t.Shift(vmath.V3FSub(pos, c.lastBodyPos))
			c.lastBodyPos = pos
		}
	}
	sample := t.Advance(c.now)
	c.pose = sample.Pose
	c.arrived = sample.Done
}

// trackZone updates the zone flag and the entry edge for the focused body
func (c *Controller) trackZone() {
	if c.focus == nil {
		c.insideZone, c.zoneKnown, c.zoneEntered = false, false, false
		return
	}
	pos, ok := c.bodyPosition()
	if !ok {
		return
	}
	inside := IsInZone(c.pose.Position, pos, c.focus.Size, c.focus.Central)
	c.zoneEntered = c.zoneKnown && inside && !c.insideZone
	c.insideZone = inside
	c.zoneKnown = true
}

// bodyPosition returns the focused body's finite position
func (c *Controller) bodyPosition() (vmath.Vec3F, bool) {
	if c.focus == nil {
		return vmath.Vec3F{}, false
	}
	return c.positionOf(c.focus)
}

func (c *Controller) positionOf(t *Target) (vmath.Vec3F, bool) {
	pos, ok := c.positions.GetPosition(t.Handle)
	if !ok || !vmath.V3FIsFinite(pos) {
		return vmath.Vec3F{}, false
	}
	return pos, true
}
