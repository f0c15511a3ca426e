package camera

import (
	"github.com/lixenwraith/orrery/scene"
)

// EventType enumerates inputs accepted by Controller.Dispatch
type EventType uint8

const (
	EventTick        EventType = iota // Per-frame update
	EventFocus                        // Select a body
	EventReset                        // Return to the default pose
	EventManualInput                  // Viewer is dragging or zooming
)

var eventNames = [...]string{
	EventTick:        "Tick",
	EventFocus:       "Focus",
	EventReset:       "Reset",
	EventManualInput: "ManualInput",
}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "Unknown"
}

// Target is a resolved focus subject
type Target struct {
	ID      string
	Handle  scene.Handle
	Size    float64
	Central bool
}

// TargetFor builds a focus target from a registered body
func TargetFor(b *scene.Body) *Target {
	return &Target{
		ID:      b.ID,
		Handle:  b.Handle,
		Size:    b.Size,
		Central: b.IsCentral(),
	}
}

// Event is a single input to the controller
// Now is seconds on the frame clock; Dt is only used by EventTick
type Event struct {
	Type   EventType
	Target *Target
	Now    float64
	Dt     float64
}

// Tick builds a per-frame event
func Tick(now, dt float64) Event {
	return Event{Type: EventTick, Now: now, Dt: dt}
}

// Focus builds a focus event
func Focus(t *Target, now float64) Event {
	return Event{Type: EventFocus, Target: t, Now: now}
}

// Reset builds a reset event
func Reset(now float64) Event {
	return Event{Type: EventReset, Now: now}
}

// ManualInput builds a manual interrupt event
func ManualInput() Event {
	return Event{Type: EventManualInput}
}

// InputSignal reports whether the viewer is currently controlling the camera
type InputSignal interface {
	IsUserControllingCamera() bool
}

// ModeChange is published after a dispatch changes the mode
type ModeChange struct {
	From  Mode
	To    Mode
	Focus string // Focused body after the change, empty if none
}
