package mock

import (
	"sync"
	"time"
)

// Clock stamps recorded spy calls and intercepted requests. Tests swap in a
// ManualClock to get stable timestamps.
type Clock interface {
	// Now returns the current time according to this clock
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ManualClock implements Clock with a controllable time value.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManualClock creates a clock initialized to the given time.
// If t is zero, the clock is initialized to the current time.
func NewManualClock(t time.Time) *ManualClock {
	if t.IsZero() {
		t = time.Now()
	}
	return &ManualClock{current: t}
}

// Now returns the current time according to this clock.
func (m *ManualClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the clock forward by the given duration.
func (m *ManualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set sets the clock to a specific time.
func (m *ManualClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
