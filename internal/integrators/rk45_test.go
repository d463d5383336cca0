package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// harmonicOscillator has the closed-form solution x(t) = cos(t) for
// x0 = (1, 0), which makes solver accuracy directly checkable.
type harmonicOscillator struct{}

func (h *harmonicOscillator) Dim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

func TestRK45SolveAccuracy(t *testing.T) {
	solver := NewRK45()
	span := dynamo.Span{Start: 0, End: 10}
	times := dynamo.SampleTimes(span, 101)

	traj, err := solver.Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, span, times, dynamo.DefaultTolerances())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if traj.Len() != len(times) {
		t.Fatalf("expected %d samples, got %d", len(times), traj.Len())
	}

	for i, ts := range traj.Times {
		want := math.Cos(ts)
		if math.Abs(traj.States[i][0]-want) > 1e-4 {
			t.Errorf("x(%g) = %.8f, want %.8f", ts, traj.States[i][0], want)
		}
	}
}

func TestRK45EnergyConservation(t *testing.T) {
	solver := NewRK45()
	dyn := &harmonicOscillator{}
	span := dynamo.Span{Start: 0, End: 100}
	times := dynamo.SampleTimes(span, 1001)

	traj, err := solver.Solve(context.Background(), dyn, dynamo.State{1, 0}, span, times, dynamo.DefaultTolerances())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	e0 := dyn.Energy(traj.States[0])
	for i, x := range traj.States {
		drift := math.Abs(dyn.Energy(x)-e0) / e0
		if drift > 1e-4 {
			t.Fatalf("energy drift %e at sample %d", drift, i)
		}
	}
}

func TestRK45Determinism(t *testing.T) {
	solver := NewRK45()
	span := dynamo.Span{Start: 0, End: 20}
	times := dynamo.SampleTimes(span, 500)
	x0 := dynamo.State{1, 0}

	a, err := solver.Solve(context.Background(), &harmonicOscillator{}, x0, span, times, dynamo.DefaultTolerances())
	if err != nil {
		t.Fatal(err)
	}
	b, err := solver.Solve(context.Background(), &harmonicOscillator{}, x0, span, times, dynamo.DefaultTolerances())
	if err != nil {
		t.Fatal(err)
	}

	for i := range a.States {
		for j := range a.States[i] {
			if a.States[i][j] != b.States[i][j] {
				t.Fatalf("runs differ at sample %d element %d: %v vs %v",
					i, j, a.States[i][j], b.States[i][j])
			}
		}
	}
}

func TestRK45BoundarySample(t *testing.T) {
	solver := NewRK45()
	x0 := dynamo.State{0.3, -0.2}

	traj, err := solver.Solve(context.Background(), &harmonicOscillator{}, x0,
		dynamo.Span{Start: 5, End: 10}, []float64{5}, dynamo.DefaultTolerances())
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	if traj.Len() != 1 || traj.Times[0] != 5 {
		t.Fatalf("expected single sample at t=5, got %v", traj.Times)
	}
	if traj.States[0][0] != x0[0] || traj.States[0][1] != x0[1] {
		t.Errorf("sample at t_start must equal the initial state: %v", traj.States[0])
	}
	// And not alias it.
	traj.States[0][0] = 99
	if x0[0] == 99 {
		t.Error("trajectory aliases the caller's initial state")
	}
}

func TestRK45RejectsBadInput(t *testing.T) {
	solver := NewRK45()
	dyn := &harmonicOscillator{}
	span := dynamo.Span{Start: 0, End: 10}
	ctx := context.Background()
	x0 := dynamo.State{1, 0}

	cases := []struct {
		name  string
		x0    dynamo.State
		span  dynamo.Span
		times []float64
		want  error
	}{
		{"unsorted", x0, span, []float64{5, 2, 8}, dynamo.ErrUnsortedSampleTimes},
		{"empty", x0, span, nil, dynamo.ErrNoSampleTimes},
		{"out of span", x0, span, []float64{2, 11}, dynamo.ErrSampleOutOfSpan},
		{"before span", x0, span, []float64{-1, 2}, dynamo.ErrSampleOutOfSpan},
		{"non-finite state", dynamo.State{math.NaN(), 0}, span, []float64{1}, dynamo.ErrNonFiniteState},
		{"wrong dimension", dynamo.State{1, 0, 0}, span, []float64{1}, dynamo.ErrDimensionMismatch},
		{"inverted span", x0, dynamo.Span{Start: 10, End: 0}, []float64{1}, dynamo.ErrInvalidSpan},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := solver.Solve(ctx, dyn, tc.x0, tc.span, tc.times, dynamo.DefaultTolerances())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var ierr *dynamo.InputError
			if !errors.As(err, &ierr) {
				t.Fatalf("expected *InputError, got %T: %v", err, err)
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRK45StepBudget(t *testing.T) {
	solver := NewRK45()
	span := dynamo.Span{Start: 0, End: 1000}
	times := dynamo.SampleTimes(span, 11)

	tol := dynamo.DefaultTolerances()
	tol.MaxSteps = 10

	_, err := solver.Solve(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, span, times, tol)
	if err == nil {
		t.Fatal("expected step budget exhaustion")
	}
	if !errors.Is(err, dynamo.ErrMaxSteps) {
		t.Fatalf("expected ErrMaxSteps, got %v", err)
	}

	var ierr *dynamo.IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *IntegrationError, got %T", err)
	}
	if ierr.Partial == nil {
		t.Error("expected partial trajectory attached")
	}
	if ierr.Time >= span.End {
		t.Errorf("furthest time %g should be short of span end", ierr.Time)
	}
}

func TestRK45ContextCancellation(t *testing.T) {
	solver := NewRK45()
	span := dynamo.Span{Start: 0, End: 10}
	times := dynamo.SampleTimes(span, 11)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := solver.Solve(ctx, &harmonicOscillator{}, dynamo.State{1, 0}, span, times, dynamo.DefaultTolerances())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	var ierr *dynamo.IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *IntegrationError, got %T", err)
	}
}

// blowup diverges in finite time: dx/dt = x^2 from x(0)=1 reaches
// infinity at t=1, forcing the step controller to give up.
type blowup struct{}

func (b *blowup) Dim() int { return 1 }

func (b *blowup) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

func TestRK45SingularityEscalates(t *testing.T) {
	solver := NewRK45()
	span := dynamo.Span{Start: 0, End: 2}
	times := dynamo.SampleTimes(span, 21)

	_, err := solver.Solve(context.Background(), &blowup{}, dynamo.State{1}, span, times, dynamo.DefaultTolerances())
	if err == nil {
		t.Fatal("expected integration failure near the singularity")
	}

	var ierr *dynamo.IntegrationError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected *IntegrationError, got %T: %v", err, err)
	}
	if ierr.Time > 1.01 {
		t.Errorf("reached t=%g past the t=1 singularity", ierr.Time)
	}
	if ierr.Partial == nil || ierr.Partial.Len() == 0 {
		t.Error("expected partial samples before the singularity")
	}
}

func TestHermiteEndpoints(t *testing.T) {
	x0 := dynamo.State{1, -2}
	x1 := dynamo.State{3, 5}
	f0 := dynamo.State{0.5, 0.5}
	f1 := dynamo.State{-0.25, 4}

	at0 := hermite(2, 3, x0, x1, f0, f1, 2)
	at1 := hermite(2, 3, x0, x1, f0, f1, 3)

	for i := range x0 {
		if at0[i] != x0[i] {
			t.Errorf("interpolant not exact at left endpoint: %v", at0)
		}
		if at1[i] != x1[i] {
			t.Errorf("interpolant not exact at right endpoint: %v", at1)
		}
	}
}
