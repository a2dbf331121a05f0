package domain

import (
	"errors"
	"fmt"
)

// Ledger errors. Every mutating Trip operation that returns one of these
// leaves the trip exactly as it was.
var (
	// ErrCapacityExceeded is returned when the trip already holds the maximum
	// permitted number of stops.
	ErrCapacityExceeded = errors.New("stop capacity exceeded")

	// ErrInvalidDay is returned for a day index outside [1, totalDays].
	ErrInvalidDay = errors.New("invalid day")

	// ErrLastDayProtected is returned when removing the only remaining day.
	ErrLastDayProtected = errors.New("last day cannot be removed")

	// ErrStopNotFound is returned when an operation references an unknown stop id.
	ErrStopNotFound = errors.New("stop not found")

	// ErrSequenceMismatch is returned by ReorderDay when the requested sequence
	// is not a permutation of the day's stops.
	ErrSequenceMismatch = errors.New("sequence does not match day stops")

	// ErrInvalidStop is returned when stop input fails validation.
	ErrInvalidStop = errors.New("invalid stop")

	// ErrCancelled is returned when an optimizer run is interrupted before a
	// full improvement pass completed.
	ErrCancelled = errors.New("cancelled")

	// ErrOracle matches any *OracleError via errors.Is.
	ErrOracle = errors.New("travel oracle error")
)

type OracleErrorKind int

const (
	// Transient failures (timeouts, throttling, 5xx) may succeed on retry.
	Transient OracleErrorKind = iota + 1
	// Permanent failures (unroutable pair, unsupported mode, bad request) will not.
	Permanent
)

func (k OracleErrorKind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Permanent:
		return "permanent"
	}
	return "unknown"
}

// OracleError is a failure reported by the travel cost oracle for one leg.
type OracleError struct {
	Kind OracleErrorKind
	Key  RouteKey
	Err  error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("travel oracle %s failure for %s: %v", e.Kind, e.Key, e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

func (e *OracleError) Is(target error) bool { return target == ErrOracle }

// Temporary reports whether retrying the operation may succeed.
func (e *OracleError) Temporary() bool { return e.Kind == Transient }
