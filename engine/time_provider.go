package engine

import (
	"time"
)

// Clock is the wall-clock source a host loop measures frame deltas from
type Clock interface {
	Now() time.Time
}

// TimeProvider provides the real system time with monotonic clock readings
type TimeProvider struct{}

// NewTimeProvider creates a new monotonic time provider
func NewTimeProvider() *TimeProvider {
	return &TimeProvider{}
}

// Now returns the current time with monotonic clock reading
func (p *TimeProvider) Now() time.Time {
	return time.Now()
}

// FrameTimer turns successive clock readings into frame deltas in seconds
type FrameTimer struct {
	clock Clock
	last  time.Time
	start bool
}

// NewFrameTimer creates a timer, the first Delta returns 0
func NewFrameTimer(clock Clock) *FrameTimer {
	if clock == nil {
		clock = NewTimeProvider()
	}
	return &FrameTimer{clock: clock}
}

// Delta returns seconds since the previous call
// A clock stepping backwards yields a negative delta, which Tick rejects
func (f *FrameTimer) Delta() float64 {
	now := f.clock.Now()
	if !f.start {
		f.start = true
		f.last = now
		return 0
	}
	dt := now.Sub(f.last).Seconds()
	f.last = now
	return dt
}
