// Package physics models the planar double pendulum.
//
// [DoublePendulum] implements [dynamo.System] with the Lagrangian
// equations of motion for two point masses on massless rods, and
// [dynamo.Hamiltonian] for energy diagnostics. [Project] derives
// Cartesian bob positions from an angular trajectory.
//
// Angles are measured in radians from the downward vertical and are
// never wrapped into a canonical range: downstream trigonometry is
// range-invariant, and wrapping would mask integrator drift.
package physics
