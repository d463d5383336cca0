// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for numerical
// integration of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Solver]: trajectory solver interface
//   - [Trajectory]: sampled result of one integration run
//
// # Example
//
//	sys := physics.NewDoublePendulum(physics.DefaultParams())
//	solver := integrators.NewRK45()
//	traj, err := solver.Solve(ctx, sys, x0, span, times, dynamo.DefaultTolerances())
//
// # Thread Safety
//
// Solvers hold no per-run state and may be shared across goroutines.
// Independent trajectories share nothing mutable; use [Batch] to run a
// set of initial conditions concurrently.
package dynamo
