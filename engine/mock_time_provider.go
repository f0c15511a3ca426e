package engine

import (
	"sync"
	"time"
)

// MockTimeProvider is a manually stepped Clock for tests and replay
type MockTimeProvider struct {
	mu   sync.RWMutex
	now  time.Time
	step time.Duration // Added after every Now when nonzero
}

// NewMockTimeProvider creates a mock clock at start
func NewMockTimeProvider(start time.Time) *MockTimeProvider {
	return &MockTimeProvider{now: start}
}

// Now returns the mocked time, then applies the auto step
func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.now
	m.now = m.now.Add(m.step)
	return t
}

// SetTime jumps the clock, backwards jumps are allowed
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves the clock forward by d
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// SetStep makes every Now call advance the clock by d, emulating a steady frame rate
func (m *MockTimeProvider) SetStep(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = d
}
