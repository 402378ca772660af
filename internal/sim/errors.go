package sim

import (
	"errors"
	"fmt"
)

// NumericalFailureError reports a non-finite value (NaN or infinity)
// produced mid-integration, typically from overflow or division by zero
// in a flow or auxiliary equation.
//
// The run aborts as a whole: no partial result is published. The failure
// is deterministic, so it is never retried with unchanged inputs.
type NumericalFailureError struct {
	// Variable is the name of the variable that evaluated non-finite.
	Variable string

	// Step is the zero-based step index at which evaluation failed.
	Step int

	// Time is the simulation time of the failing step.
	Time float64
}

// Error implements the error interface.
func (e *NumericalFailureError) Error() string {
	return fmt.Sprintf("non-finite value for %q at step %d (t=%v)", e.Variable, e.Step, e.Time)
}

// IsNumericalFailure reports whether err is (or wraps) a
// NumericalFailureError.
func IsNumericalFailure(err error) bool {
	var ne *NumericalFailureError
	return errors.As(err, &ne)
}

// UnknownSeriesError reports a request for an output series the run does
// not track.
type UnknownSeriesError struct {
	// Name is the requested series name.
	Name string

	// Tracked lists the series the run does track.
	Tracked []string
}

// Error implements the error interface.
func (e *UnknownSeriesError) Error() string {
	return fmt.Sprintf("unknown output series %q (tracked: %v)", e.Name, e.Tracked)
}

// IsUnknownSeries reports whether err is (or wraps) an UnknownSeriesError.
func IsUnknownSeries(err error) bool {
	var ue *UnknownSeriesError
	return errors.As(err, &ue)
}
