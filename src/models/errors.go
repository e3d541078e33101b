package models

import (
	"errors"
	"fmt"
	"math"
)

// Domain-level sentinel errors for business logic.
// These errors should not contain HTTP-specific information.

var (
	// ErrNoActiveBreak indicates an end request for a user with no open break.
	ErrNoActiveBreak = errors.New("no active break")

	// ErrReasonRequired indicates a start request for a break type that
	// requires a reason, without one. No session is created.
	ErrReasonRequired = errors.New("reason required for this break type")

	// ErrUnknownBreakType indicates a break type code not in the catalogue.
	ErrUnknownBreakType = errors.New("unknown break type")

	// ErrUserNotFound indicates a lookup for a user that does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// AlreadyOnBreakError rejects a start request while a break is open. It
// carries the active type so the caller can report it.
type AlreadyOnBreakError struct {
	ActiveTypeCode string
	ActiveTypeName string
}

func (e *AlreadyOnBreakError) Error() string {
	return fmt.Sprintf("already on break: %s", e.ActiveTypeName)
}

// TypeMismatchError rejects an end request whose type does not match the
// open session's type. The session stays open and unmodified.
type TypeMismatchError struct {
	RequestedCode string
	ActiveCode    string
	ActiveName    string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("active break is %s, not %s", e.ActiveCode, e.RequestedCode)
}

// Round1 rounds to one decimal place; durations and rates across the
// service are reported at this precision.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
