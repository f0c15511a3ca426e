package camera

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the camera ownership state, exactly one holds at any time
type Mode uint8

const (
	ModeFree Mode = iota
	ModeTransitioning
	ModeOrbiting
	ModeFollowing
)

var modeNames = [...]string{
	ModeFree:          "Free",
	ModeTransitioning: "Transitioning",
	ModeOrbiting:      "Orbiting",
	ModeFollowing:     "Following",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// MarshalText encodes the mode by name
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Owned reports whether the controller, not the viewer, writes the camera in this mode
func (m Mode) Owned() bool {
	return m != ModeFree
}

// Engage selects what a completed focus transition enters
type Engage uint8

const (
	EngageOrbit  Engage = iota // Auto-orbit around the body
	EngageFollow               // Keep a constant offset to the body
	EngageNone                 // Release to the viewer
)

var engageNames = [...]string{
	EngageOrbit:  "orbit",
	EngageFollow: "follow",
	EngageNone:   "none",
}

func (e Engage) String() string {
	if int(e) < len(engageNames) {
		return engageNames[e]
	}
	return fmt.Sprintf("engage(%d)", e)
}

// ParseEngage resolves orbit, follow or none
func ParseEngage(s string) (Engage, error) {
	for e, name := range engageNames {
		if strings.EqualFold(s, name) {
			return Engage(e), nil
		}
	}
	return EngageOrbit, fmt.Errorf("unknown engage mode %q (want orbit, follow or none)", s)
}

var (
	// ErrNoTarget is returned when a focus event carries no body
	ErrNoTarget = errors.New("focus event without target")

	// ErrNonFiniteTime is returned when an event carries a NaN or infinite time
	ErrNonFiniteTime = errors.New("non-finite camera time")

	// ErrFraming is returned for bodies too small to be framed inside their orbit zone
	ErrFraming = errors.New("body cannot be framed inside its orbit zone")

	// ErrTable is returned when a transition table does not describe the camera modes
	ErrTable = errors.New("invalid camera table")
)
