package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// Energies evaluates total mechanical energy at every trajectory sample.
func Energies(sys dynamo.Hamiltonian, traj *dynamo.Trajectory) []float64 {
	es := make([]float64, traj.Len())
	for i, x := range traj.States {
		es[i] = sys.Energy(x)
	}
	return es
}

// EnergyDrift reports the worst relative deviation of total energy
// across a trajectory, measured against the first sample. The undamped
// pendulum conserves energy exactly, so this is a direct measure of
// integrator error. A zero-energy start (the rest state) reports zero.
func EnergyDrift(sys dynamo.Hamiltonian, traj *dynamo.Trajectory) float64 {
	if traj == nil || traj.Len() == 0 {
		return 0
	}

	e0 := sys.Energy(traj.States[0])
	if e0 == 0 {
		return 0
	}

	drifts := make([]float64, traj.Len())
	for i, x := range traj.States {
		drifts[i] = math.Abs(sys.Energy(x)-e0) / math.Abs(e0)
	}
	return floats.Max(drifts)
}
