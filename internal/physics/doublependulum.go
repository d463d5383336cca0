package physics

import (
	"math"

	"github.com/san-kum/pendsim/internal/dynamo"
)

const (
	DefaultMass    = 1.0
	DefaultLength  = 1.0
	DefaultGravity = 9.81
)

// Params holds the physical constants of a double pendulum. The value
// is shared read-only between dynamics and projection; it is never
// mutated after construction.
type Params struct {
	G  float64 `json:"g"`
	L1 float64 `json:"l1"`
	L2 float64 `json:"l2"`
	M1 float64 `json:"m1"`
	M2 float64 `json:"m2"`
}

func DefaultParams() Params {
	return Params{
		G:  DefaultGravity,
		L1: DefaultLength,
		L2: DefaultLength,
		M1: DefaultMass,
		M2: DefaultMass,
	}
}

// DoublePendulum is the chaotic two-arm pendulum. State layout is
// (theta1, omega1, theta2, omega2): angle and angular velocity of each
// arm, radians from the downward vertical.
//
// Parameters are used unchecked. Degenerate values (a zero length, a
// zero mass) make a denominator vanish and the derivative follows IEEE
// semantics into NaN/Inf instead of returning an error; the adaptive
// step controller detects the fallout. Parameter sanity is the
// caller's responsibility.
type DoublePendulum struct {
	P Params
}

func NewDoublePendulum(p Params) *DoublePendulum {
	return &DoublePendulum{P: p}
}

func (d *DoublePendulum) Dim() int { return 4 }

func (d *DoublePendulum) Derive(x dynamo.State, t float64) dynamo.State {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	g, l1, l2, m1, m2 := d.P.G, d.P.L1, d.P.L2, d.P.M1, d.P.M2

	delta := theta2 - theta1
	sinD, cosD := math.Sin(delta), math.Cos(delta)

	den1 := (m1+m2)*l1 - m2*l1*cosD*cosD
	den2 := (l2 / l1) * den1

	alpha1 := (m2*l1*omega1*omega1*sinD*cosD +
		m2*g*math.Sin(theta2)*cosD +
		m2*l2*omega2*omega2*sinD -
		(m1+m2)*g*math.Sin(theta1)) / den1

	alpha2 := (-m2*l2*omega2*omega2*sinD*cosD +
		(m1+m2)*g*math.Sin(theta1)*cosD -
		(m1+m2)*l1*omega1*omega1*sinD -
		(m1+m2)*g*math.Sin(theta2)) / den2

	return dynamo.State{omega1, alpha1, omega2, alpha2}
}

// Energy returns total mechanical energy, with potential measured from
// the pivot. Constant along exact solutions; its drift across a
// computed trajectory measures integrator error.
func (d *DoublePendulum) Energy(x dynamo.State) float64 {
	theta1, omega1, theta2, omega2 := x[0], x[1], x[2], x[3]
	g, l1, l2, m1, m2 := d.P.G, d.P.L1, d.P.L2, d.P.M1, d.P.M2

	v1sq := l1 * l1 * omega1 * omega1
	v2sq := v1sq + l2*l2*omega2*omega2 +
		2*l1*l2*omega1*omega2*math.Cos(theta1-theta2)

	ke := 0.5*m1*v1sq + 0.5*m2*v2sq
	y1 := -l1 * math.Cos(theta1)
	y2 := y1 - l2*math.Cos(theta2)
	pe := m1*g*y1 + m2*g*y2

	return ke + pe
}
