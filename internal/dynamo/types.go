package dynamo

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every element is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an autonomous-or-not ODE right-hand side dX/dt = f(X, t).
// Implementations must be pure: no retained state, no side effects.
type System interface {
	Derive(x State, t float64) State
	Dim() int
}

// Hamiltonian is implemented by systems that can report the total
// mechanical energy of a state, enabling drift diagnostics.
type Hamiltonian interface {
	Energy(x State) float64
}

// Span is the integration interval [Start, End].
type Span struct {
	Start float64
	End   float64
}

// Tolerances configures step control. Zero fields take the defaults.
type Tolerances struct {
	Rel      float64 // relative error tolerance
	Abs      float64 // absolute error tolerance
	InitStep float64 // first trial step; 0 picks span/1000
	MinStep  float64 // giving-up threshold for adaptive solvers
	MaxSteps int     // trial-step budget per run
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		Rel:      1e-6,
		Abs:      1e-9,
		MinStep:  1e-10,
		MaxSteps: 100000,
	}
}

// Trajectory is the sampled result of one integration run: one state
// per requested sample time, in request order. Immutable once returned.
type Trajectory struct {
	Times  []float64
	States []State
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Solver integrates a system across a span and reports the state at
// each requested sample time. Sample times must be non-decreasing and
// lie within the span. Failures are *InputError before any stepping,
// *IntegrationError after.
type Solver interface {
	Solve(ctx context.Context, sys System, x0 State, span Span, sampleTimes []float64, tol Tolerances) (*Trajectory, error)
}

// SampleTimes returns n evenly spaced times across span, endpoints
// included exactly.
func SampleTimes(span Span, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{span.Start}
	}
	ts := make([]float64, n)
	floats.Span(ts, span.Start, span.End)
	return ts
}

// ValidateRequest checks a Solve request without performing any
// integration. Solvers call it before their first step so that a
// malformed request is never partially computed.
func ValidateRequest(sys System, x0 State, span Span, sampleTimes []float64) error {
	if len(x0) != sys.Dim() {
		return &InputError{
			Wrapped: ErrDimensionMismatch,
			Detail:  fmt.Sprintf("state has %d elements, system wants %d", len(x0), sys.Dim()),
		}
	}
	if !x0.IsValid() {
		return &InputError{Wrapped: ErrNonFiniteState}
	}
	if !(span.End > span.Start) {
		return &InputError{
			Wrapped: ErrInvalidSpan,
			Detail:  fmt.Sprintf("[%g, %g]", span.Start, span.End),
		}
	}
	if len(sampleTimes) == 0 {
		return &InputError{Wrapped: ErrNoSampleTimes}
	}
	for i, ts := range sampleTimes {
		if math.IsNaN(ts) || ts < span.Start || ts > span.End {
			return &InputError{
				Wrapped: ErrSampleOutOfSpan,
				Detail:  fmt.Sprintf("t=%g outside [%g, %g]", ts, span.Start, span.End),
			}
		}
		if i > 0 && ts < sampleTimes[i-1] {
			return &InputError{
				Wrapped: ErrUnsortedSampleTimes,
				Detail:  fmt.Sprintf("t=%g after t=%g", ts, sampleTimes[i-1]),
			}
		}
	}
	return nil
}
