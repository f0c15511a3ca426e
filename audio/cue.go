// Package audio plays short synthesized cues for camera hand-offs
package audio

import (
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/orrery/camera"
	"github.com/lixenwraith/orrery/engine"
	"github.com/lixenwraith/orrery/parameter"
)

const sampleRate = beep.SampleRate(parameter.CueSampleRate)

// Cue identifies a sound
type Cue int

const (
	CueArrival Cue = iota // Camera engaged a body
	CueRelease            // Camera handed back to the viewer
)

// Synthesize builds a one-shot streamer for cue at the given linear volume
func Synthesize(cue Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	switch cue {
	case CueArrival:
		fund := NewOscillator(parameter.ArrivalFundamental, parameter.ArrivalDuration, WaveSine, rate)
		over := NewOscillator(parameter.ArrivalFundamental*2, parameter.ArrivalDuration, WaveSine, rate)
		mixed := beep.Mix(
			newVolume(fund, 1-parameter.ArrivalOvertoneGain),
			newVolume(over, parameter.ArrivalOvertoneGain),
		)
		shaped := NewEnvelope(mixed, parameter.ArrivalDuration, parameter.ArrivalAttack, parameter.ArrivalRelease, rate)
		return newVolume(shaped, volume)
	case CueRelease:
		osc := NewOscillator(parameter.ReleasePitch, parameter.ReleaseDuration, WaveTriangle, rate)
		shaped := NewEnvelope(osc, parameter.ReleaseDuration, parameter.ReleaseAttack, parameter.ReleaseRelease, rate)
		return newVolume(shaped, volume)
	default:
		return nil
	}
}

// CuePlayer mixes cues into the system speaker
// All methods are no-ops until Initialize succeeds
type CuePlayer struct {
	engine.BaseObserver

	mu          sync.Mutex
	mixer       *beep.Mixer
	volume      float64
	muted       bool
	initialized bool
}

// NewCuePlayer creates a player at the default volume
func NewCuePlayer() *CuePlayer {
	return &CuePlayer{
		mixer:  &beep.Mixer{},
		volume: parameter.CueVolume,
	}
}

// Initialize opens the speaker and starts the mixer
func (p *CuePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(parameter.CueBufferDuration)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Cleanup silences pending cues
// beep has no speaker teardown, clearing the mixer stops all output
func (p *CuePlayer) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// Play queues a cue, returns false when nothing was queued
func (p *CuePlayer) Play(cue Cue) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized || p.muted {
		return false
	}
	s := Synthesize(cue, sampleRate, p.volume)
	if s == nil {
		return false
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	return true
}

// PlayArrival plays the engage chime
func (p *CuePlayer) PlayArrival() bool {
	return p.Play(CueArrival)
}

// PlayRelease plays the hand-back tone
func (p *CuePlayer) PlayRelease() bool {
	return p.Play(CueRelease)
}

// ToggleMute flips mute and returns the new state
func (p *CuePlayer) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

// SetVolume sets the linear volume of subsequent cues
func (p *CuePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = min(max(v, 0), 1)
}

// ModeChanged maps camera hand-offs to cues
func (p *CuePlayer) ModeChanged(change camera.ModeChange) {
	switch {
	case change.To == camera.ModeOrbiting || change.To == camera.ModeFollowing:
		p.PlayArrival()
	case change.To == camera.ModeFree && (change.From == camera.ModeOrbiting || change.From == camera.ModeFollowing):
		p.PlayRelease()
	}
}
