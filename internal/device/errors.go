package device

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange matches every *RangeError.
	ErrOutOfRange = errors.New("parameter out of range")

	// ErrLockNotConfirmed is returned by CSAC.LockSteeringIrrevocably when the
	// caller did not pass ConfirmSteerLock.
	ErrLockNotConfirmed = errors.New("steer lock not confirmed")

	// ErrAbsorbLimit is returned when a sentence absorber keeps seeing '$'
	// lines past its read bound.
	ErrAbsorbLimit = errors.New("sentence absorb limit reached")

	ErrUnknownProfile = errors.New("unknown device profile")
)

// RangeError reports a command parameter that failed its range or set check.
// The command it belongs to was not transmitted.
type RangeError struct {
	Command string
	Value   string
	// Allowed describes the accepted values, e.g. "[0, 255]".
	Allowed string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %s not in %s", e.Command, e.Value, e.Allowed)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }
