// Package clock provides an injectable time source so token expiry and
// credential-age rules can be tested without waiting for real time to pass.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Real implements Clock using the system time.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// Manual implements Clock with a controllable time value.
type Manual struct {
	mu      sync.RWMutex
	current time.Time
}

// NewManual creates a manual clock initialized to t.
// If t is zero, the clock is initialized to the current time.
func NewManual(t time.Time) *Manual {
	if t.IsZero() {
		t = time.Now()
	}
	return &Manual{current: t}
}

// Now returns the current time according to this clock.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set sets the clock to a specific time.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// OrReal returns c, or Real when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real{}
	}
	return c
}
