package integrators

import (
	"context"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// DefaultRK4Step is the sub-step size used when none is configured.
const DefaultRK4Step = 1e-3

// RK4 is a fixed-step classic Runge-Kutta solver. It re-integrates to
// each requested sample time exactly, dividing every gap into equal
// sub-steps no larger than Dt, so no interpolation is involved. Useful
// as a cross-check against the adaptive solver and for stepping through
// regions where adaptive control collapses.
type RK4 struct {
	Dt float64
}

func NewRK4(dt float64) *RK4 {
	if dt <= 0 {
		dt = DefaultRK4Step
	}
	return &RK4{Dt: dt}
}

func (r *RK4) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, span dynamo.Span, sampleTimes []float64, tol dynamo.Tolerances) (*dynamo.Trajectory, error) {
	if err := dynamo.ValidateRequest(sys, x0, span, sampleTimes); err != nil {
		return nil, err
	}
	tol = withDefaults(tol)

	traj := &dynamo.Trajectory{
		Times:  make([]float64, 0, len(sampleTimes)),
		States: make([]dynamo.State, 0, len(sampleTimes)),
	}

	t := span.Start
	x := x0.Clone()
	steps := 0

	for _, target := range sampleTimes {
		if target > t {
			n := int(math.Ceil((target - t) / r.Dt))
			h := (target - t) / float64(n)

			for j := 0; j < n; j++ {
				select {
				case <-ctx.Done():
					return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: ctx.Err()}
				default:
				}
				if steps >= tol.MaxSteps {
					return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: dynamo.ErrMaxSteps}
				}

				x = r.step(sys, x, t, h)
				t += h
				steps++

				if !x.IsValid() {
					return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: dynamo.ErrUnstable}
				}
			}
			t = target
		}

		traj.Times = append(traj.Times, target)
		traj.States = append(traj.States, x.Clone())
	}

	return traj, nil
}

func (r *RK4) step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	scratch := make(dynamo.State, n)

	k1 := sys.Derive(x, t)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := sys.Derive(scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := sys.Derive(scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4 := sys.Derive(scratch, t+dt)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
