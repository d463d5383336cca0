package integrators

import (
	"fmt"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// New returns a solver by name: "rk45" (adaptive Dormand-Prince, the
// default for an empty name) or "rk4" (fixed step).
func New(name string) (dynamo.Solver, error) {
	switch name {
	case "", "rk45":
		return NewRK45(), nil
	case "rk4":
		return NewRK4(DefaultRK4Step), nil
	default:
		return nil, fmt.Errorf("unknown solver: %s", name)
	}
}

func List() []string {
	return []string{"rk45", "rk4"}
}
