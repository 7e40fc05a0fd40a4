package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceAndSet(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewManual(start)

	assert.Equal(t, start, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())

	later := start.Add(48 * time.Hour)
	c.Set(later)
	assert.Equal(t, later, c.Now())
}

func TestNewManual_ZeroUsesCurrentTime(t *testing.T) {
	before := time.Now()
	c := NewManual(time.Time{})
	assert.False(t, c.Now().Before(before))
}

func TestOrReal(t *testing.T) {
	assert.IsType(t, Real{}, OrReal(nil))

	m := NewManual(time.Unix(0, 0))
	assert.Same(t, m, OrReal(m))
}
