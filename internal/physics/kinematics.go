package physics

import (
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

// PositionSample is the Cartesian position of both bobs at one
// trajectory sample. Purely derived data: recomputed on demand from a
// trajectory, never stored alongside it.
type PositionSample struct {
	Time float64 `json:"time"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	X2   float64 `json:"x2"`
	Y2   float64 `json:"y2"`
}

// Positions maps one angular state to bob coordinates. The pivot is the
// origin, y points up, theta is measured from the downward vertical.
func Positions(x dynamo.State, p Params) (x1, y1, x2, y2 float64) {
	x1 = p.L1 * math.Sin(x[0])
	y1 = -p.L1 * math.Cos(x[0])
	x2 = x1 + p.L2*math.Sin(x[2])
	y2 = y1 - p.L2*math.Cos(x[2])
	return
}

// Project converts a trajectory into position samples, one per
// trajectory sample in the same order. Stateless; non-finite states
// propagate through unchanged.
func Project(traj *dynamo.Trajectory, p Params) []PositionSample {
	out := make([]PositionSample, traj.Len())
	for i, t := range traj.Times {
		x1, y1, x2, y2 := Positions(traj.States[i], p)
		out[i] = PositionSample{Time: t, X1: x1, Y1: y1, X2: x2, Y2: y2}
	}
	return out
}
