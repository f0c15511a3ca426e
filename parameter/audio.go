package parameter

import "time"

// Cue playback
const (
	// CueSampleRate is the speaker sample rate
	CueSampleRate = 48000

	// CueBufferDuration is the speaker buffer length, bounds cue latency
	CueBufferDuration = 100 * time.Millisecond

	// CueVolume is the default linear cue volume
	CueVolume = 0.5
)

// Arrival chime, played when the camera engages a body
const (
	ArrivalDuration     = 600 * time.Millisecond
	ArrivalAttack       = 5 * time.Millisecond
	ArrivalRelease      = 450 * time.Millisecond
	ArrivalFundamental  = 659.25 // E5
	ArrivalOvertoneGain = 0.3
)

// Release tone, played when the camera is handed back to the viewer
const (
	ReleaseDuration = 250 * time.Millisecond
	ReleaseAttack   = 10 * time.Millisecond
	ReleaseRelease  = 150 * time.Millisecond
	ReleasePitch    = 392.0 // G4
)
