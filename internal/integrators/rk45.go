package integrators

import (
	"context"
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an adaptive Dormand-Prince 4(5) solver. The controller picks
// step sizes against the configured tolerances; requested sample times
// are evaluated by cubic Hermite interpolation over each accepted step,
// so output density never constrains the step size. Runs are
// bit-reproducible for identical inputs and tolerances.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Solve(ctx context.Context, sys dynamo.System, x0 dynamo.State, span dynamo.Span, sampleTimes []float64, tol dynamo.Tolerances) (*dynamo.Trajectory, error) {
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
	f := sys.Derive(x, t)

	si := 0
	for si < len(sampleTimes) && sampleTimes[si] == span.Start {
		traj.Times = append(traj.Times, span.Start)
		traj.States = append(traj.States, x.Clone())
		si++
	}

	dt := tol.InitStep
	if dt <= 0 {
		dt = (span.End - span.Start) / 1000
	}

	steps := 0
	for t < span.End {
		select {
		case <-ctx.Done():
			return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: ctx.Err()}
		default:
		}

		if steps >= tol.MaxSteps {
			return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: dynamo.ErrMaxSteps}
		}

		clamped := false
		if t+dt > span.End {
			dt = span.End - t
			clamped = true
		}

		xNew, fNew, errRatio := r.attempt(sys, x, f, t, dt, tol)
		steps++

		if math.IsNaN(errRatio) || !xNew.IsValid() {
			// A singular region may still be steppable-around at a
			// smaller dt; shrink hard before giving up.
			dt *= r.minScale
			if dt < tol.MinStep {
				return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: dynamo.ErrUnstable}
			}
			continue
		}

		if errRatio > 1 {
			dt *= math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
			if dt < tol.MinStep {
				return nil, &dynamo.IntegrationError{Time: t, Steps: steps, Partial: traj, Wrapped: dynamo.ErrStepTooSmall}
			}
			continue
		}

		tNew := t + dt
		if clamped {
			tNew = span.End
		}

		for si < len(sampleTimes) && sampleTimes[si] <= tNew {
			traj.Times = append(traj.Times, sampleTimes[si])
			traj.States = append(traj.States, hermite(t, tNew, x, xNew, f, fNew, sampleTimes[si]))
			si++
		}

		t, x, f = tNew, xNew, fNew

		if errRatio > 0 {
			dt *= math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
		} else {
			dt *= r.maxScale
		}
	}

	return traj, nil
}

// attempt performs one trial step of size dt from (t, x) with k1 = f(x, t)
// already evaluated. Returns the 5th-order solution, its derivative
// (first-same-as-last), and the error estimate scaled so that <= 1
// means acceptable.
func (r *RK45) attempt(sys dynamo.System, x, k1 dynamo.State, t, dt float64, tol dynamo.Tolerances) (dynamo.State, dynamo.State, float64) {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := sys.Derive(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(xNew, t+dt)

	errRatio := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errRatio = math.Max(errRatio, math.Abs(errEst)/scale)
	}

	return xNew, k7, errRatio
}

// hermite evaluates the cubic Hermite interpolant through (t0, x0) and
// (t1, x1) with end derivatives f0, f1 at ts in (t0, t1]. Exact at both
// endpoints.
func hermite(t0, t1 float64, x0, x1, f0, f1 dynamo.State, ts float64) dynamo.State {
	h := t1 - t0
	theta := (ts - t0) / h
	u := theta - 1

	out := make(dynamo.State, len(x0))
	for i := range out {
		out[i] = (1-theta)*x0[i] + theta*x1[i] +
			theta*u*((1-2*theta)*(x1[i]-x0[i])+u*h*f0[i]+theta*h*f1[i])
	}
	return out
}

func withDefaults(tol dynamo.Tolerances) dynamo.Tolerances {
	def := dynamo.DefaultTolerances()
	if tol.Rel <= 0 {
		tol.Rel = def.Rel
	}
	if tol.Abs <= 0 {
		tol.Abs = def.Abs
	}
	if tol.MinStep <= 0 {
		tol.MinStep = def.MinStep
	}
	if tol.MaxSteps <= 0 {
		tol.MaxSteps = def.MaxSteps
	}
	return tol
}
