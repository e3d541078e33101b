package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRound1(t *testing.T) {
	assert.Equal(t, 5.3, Round1(5.34))
	assert.Equal(t, 5.4, Round1(5.35))
	assert.Equal(t, 0.0, Round1(0.04))
	assert.Equal(t, -2.5, Round1(-2.49))
}

func limit(m int) *int { return &m }

func dur(m float64) *float64 { return &m }

func TestWithinLimit(t *testing.T) {
	e := BreakLogDetail{
		BreakLogEntry:    BreakLogEntry{Action: ActionBack, DurationMinutes: dur(25.0)},
		TimeLimitMinutes: limit(30),
	}
	assert.True(t, e.WithinLimit())
	assert.False(t, e.OverLimit())

	e.DurationMinutes = dur(30.0) // exactly at the limit counts as within
	assert.True(t, e.WithinLimit())

	e.DurationMinutes = dur(30.1)
	assert.False(t, e.WithinLimit())
	assert.True(t, e.OverLimit())
}

func TestWithinLimit_NoConfiguredLimit(t *testing.T) {
	e := BreakLogDetail{
		BreakLogEntry: BreakLogEntry{Action: ActionBack, DurationMinutes: dur(240.0)},
	}
	assert.True(t, e.WithinLimit())
	assert.False(t, e.OverLimit())
}

func TestWithinLimit_OutEntry(t *testing.T) {
	e := BreakLogDetail{
		BreakLogEntry:    BreakLogEntry{Action: ActionOut},
		TimeLimitMinutes: limit(30),
	}
	assert.False(t, e.WithinLimit())
	assert.False(t, e.OverLimit())
}

func TestElapsedMinutes(t *testing.T) {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	s := ActiveSessionDetail{
		ActiveSession: ActiveSession{StartTime: start},
	}
	assert.Equal(t, 12.5, s.ElapsedMinutes(start.Add(12*time.Minute+30*time.Second)))
}

func TestAlreadyOnBreakError(t *testing.T) {
	err := &AlreadyOnBreakError{ActiveTypeCode: "B", ActiveTypeName: "Break"}
	assert.Contains(t, err.Error(), "Break")
}

func TestTypeMismatchError(t *testing.T) {
	err := &TypeMismatchError{RequestedCode: "W", ActiveCode: "B", ActiveName: "Break"}
	assert.Contains(t, err.Error(), "B")
	assert.Contains(t, err.Error(), "W")
}
