package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration requests and runs.
var (
	// ErrNonFiniteState indicates an initial state with NaN or Inf.
	ErrNonFiniteState = errors.New("dynamo: initial state contains NaN or Inf")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: state dimension does not match system")

	// ErrInvalidSpan indicates a span whose end does not follow its start.
	ErrInvalidSpan = errors.New("dynamo: span end must be greater than start")

	// ErrNoSampleTimes indicates an empty sample-time sequence.
	ErrNoSampleTimes = errors.New("dynamo: no sample times requested")

	// ErrUnsortedSampleTimes indicates a decreasing sample-time sequence.
	ErrUnsortedSampleTimes = errors.New("dynamo: sample times must be non-decreasing")

	// ErrSampleOutOfSpan indicates a sample time outside the span.
	ErrSampleOutOfSpan = errors.New("dynamo: sample time outside integration span")

	// ErrStepTooSmall indicates the adaptive step fell below minimum.
	ErrStepTooSmall = errors.New("dynamo: adaptive step below minimum")

	// ErrMaxSteps indicates the step budget ran out mid-span.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrUnstable indicates a diverged state the controller could not recover.
	ErrUnstable = errors.New("dynamo: state diverged (NaN or Inf)")
)

// InputError reports a malformed request, rejected before any stepping.
type InputError struct {
	Wrapped error
	Detail  string
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return e.Wrapped.Error()
	}
	return fmt.Sprintf("%v: %s", e.Wrapped, e.Detail)
}

func (e *InputError) Unwrap() error {
	return e.Wrapped
}

// IntegrationError reports a run the step controller could not finish.
// Time is the furthest point reached, Steps the trial steps spent, and
// Partial the samples produced before the failure (possibly empty,
// never nil).
type IntegrationError struct {
	Time    float64
	Steps   int
	Partial *Trajectory
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v (reached t=%.6g after %d steps)", e.Wrapped, e.Time, e.Steps)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
