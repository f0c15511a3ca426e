package camera

import (
	_ "embed"
	"fmt"
	"slices"

	"github.com/lixenwraith/orrery/engine/fsm"
	"github.com/lixenwraith/orrery/parameter"
	"github.com/lixenwraith/orrery/vmath"
)

//go:embed table.yaml
var defaultTable []byte

// DefaultTable returns the embedded transition table
func DefaultTable() []byte {
	return slices.Clone(defaultTable)
}

// Machine event types, EventTick is the fsm tick trigger
const (
	fsmFocus fsm.EventType = iota + 1
	fsmReset
)

// registerCameraFSM binds guard and action names used by table.yaml
func registerCameraFSM(m *fsm.Machine[*Controller]) {
	m.RegisterEvent("Focus", fsmFocus)
	m.RegisterEvent("Reset", fsmReset)

	// --- GUARDS ---

	// Arrived: transition done, any purpose
	m.RegisterGuard("Arrived", func(c *Controller) bool {
		return c.arrived
	})

	// ArrivedAtReset: reset transition done
	m.RegisterGuard("ArrivedAtReset", func(c *Controller) bool {
		return c.arrived && c.transition != nil && c.transition.Purpose == PurposeReset
	})

	// ArrivedOrbit: focus transition done with auto-orbit engagement
	m.RegisterGuard("ArrivedOrbit", func(c *Controller) bool {
		return c.arrivedOnFocus() && c.engage == EngageOrbit
	})

	// ArrivedFollow: focus transition done with follow engagement
	m.RegisterGuard("ArrivedFollow", func(c *Controller) bool {
		return c.arrivedOnFocus() && c.engage == EngageFollow
	})

	// ManualInput: viewer interrupt received since the last tick
	m.RegisterGuard("ManualInput", func(c *Controller) bool {
		return c.manualInput
	})

	// OutsideZone: camera left the focused body's orbit zone
	m.RegisterGuard("OutsideZone", func(c *Controller) bool {
		return c.focus != nil && c.zoneKnown && !c.insideZone
	})

	// ZoneEnteredOrbit: viewer moved the camera back into the zone, re-engage orbit
	m.RegisterGuard("ZoneEnteredOrbit", func(c *Controller) bool {
		return c.zoneEntered && !c.manualInput && c.engage == EngageOrbit
	})

	// ZoneEnteredFollow: as ZoneEnteredOrbit for follow engagement
	m.RegisterGuard("ZoneEnteredFollow", func(c *Controller) bool {
		return c.zoneEntered && !c.manualInput && c.engage == EngageFollow
	})

	// --- ACTIONS ---

	m.RegisterAction("BeginTransition", func(c *Controller, args map[string]any) {
		c.beginTransition()
	})

	m.RegisterAction("AdvanceTransition", func(c *Controller, args map[string]any) {
		c.advanceTransition()
	})

	m.RegisterAction("EndTransition", func(c *Controller, args map[string]any) {
		c.arrived = false
		c.transition = nil
	})

	m.RegisterAction("ClearFocus", func(c *Controller, args map[string]any) {
		c.focus = nil
		c.insideZone = false
		c.zoneKnown = false
		c.zoneEntered = false
	})

	m.RegisterAction("TrackZone", func(c *Controller, args map[string]any) {
		c.trackZone()
	})

	m.RegisterAction("CaptureOrbit", func(c *Controller, args map[string]any) {
		pos, ok := c.bodyPosition()
		if !ok {
			return
		}
		offset := vmath.V3FSub(c.pose.Position, pos)
		c.orbitAngle = vmath.PlanarAngle(offset)
		c.orbitRadius = vmath.PlanarRadius(offset)
		c.orbitHeight = offset.Y
		if c.orbitRadius == 0 {
			c.orbitRadius = ViewDistance(c.focus.Size)
		}
	})

	// OrbitStep revolves at a constant real-time rate and re-aims at the body's current position
	m.RegisterAction("OrbitStep", func(c *Controller, args map[string]any) {
		if c.manualInput {
			return
		}
		pos, ok := c.bodyPosition()
		if !ok {
			return
		}
		c.orbitAngle = vmath.WrapAngle(c.orbitAngle + parameter.OrbitAngularSpeed*c.dt)
		p := vmath.V3FOnCircle(pos, c.orbitRadius, c.orbitAngle)
		p.Y += c.orbitHeight
		c.pose = Pose{Position: p, Target: pos}
	})

	m.RegisterAction("CaptureFollow", func(c *Controller, args map[string]any) {
		if pos, ok := c.bodyPosition(); ok {
			c.followOffset = vmath.V3FSub(c.pose.Position, pos)
		}
	})

	m.RegisterAction("FollowStep", func(c *Controller, args map[string]any) {
		if c.manualInput {
			return
		}
		pos, ok := c.bodyPosition()
		if !ok {
			return
		}
		c.pose = Pose{Position: vmath.V3FAdd(pos, c.followOffset), Target: pos}
	})
}

// bindModes maps table leaves onto camera modes
// The table must have exactly the four mode names as leaves
func bindModes(m *fsm.Machine[*Controller]) (map[fsm.StateID]Mode, error) {
	want := make([]string, 0, len(modeNames))
	for _, name := range modeNames {
		want = append(want, name)
	}
	slices.Sort(want)

	if leaves := m.Leaves(); !slices.Equal(leaves, want) {
		return nil, fmt.Errorf("%w: leaves %v, want %v", ErrTable, leaves, want)
	}

	modes := make(map[fsm.StateID]Mode, len(modeNames))
	for mode, name := range modeNames {
		id, _ := m.GetStateID(name)
		modes[id] = Mode(mode)
	}
	return modes, nil
}
