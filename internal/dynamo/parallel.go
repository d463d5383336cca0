package dynamo

import (
	"context"
	"sync"
)

// Batch integrates many initial conditions of the same system
// concurrently. Each run is an independent sequential computation, so
// one goroutine per initial state is safe: parameters are read-only and
// every run clones its own state.
type Batch struct {
	Sys    System
	Solver Solver
}

// Run returns one trajectory per initial state, in input order. If any
// run fails, the first error is returned alongside the trajectories
// that did complete; failed entries are nil.
func (b *Batch) Run(ctx context.Context, x0s []State, span Span, sampleTimes []float64, tol Tolerances) ([]*Trajectory, error) {
	trajs := make([]*Trajectory, len(x0s))
	errs := make([]error, len(x0s))

	var wg sync.WaitGroup
	for i, x0 := range x0s {
		wg.Add(1)
		go func(idx int, x0 State) {
			defer wg.Done()
			trajs[idx], errs[idx] = b.Solver.Solve(ctx, b.Sys, x0.Clone(), span, sampleTimes, tol)
		}(i, x0)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return trajs, err
		}
	}
	return trajs, nil
}
