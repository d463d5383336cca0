package integrators_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/metrics"
	"github.com/san-kum/pendsim/internal/physics"
)

// The reference scenario: unit rods and masses, first arm horizontal,
// second arm inverted, 1000 samples over 20 seconds.
var _ = Describe("reference scenario", func() {
	var (
		params physics.Params
		sys    *physics.DoublePendulum
		solver *integrators.RK45
		x0     dynamo.State
		span   dynamo.Span
		times  []float64
	)

	BeforeEach(func() {
		params = physics.DefaultParams()
		sys = physics.NewDoublePendulum(params)
		solver = integrators.NewRK45()
		x0 = dynamo.State{math.Pi / 2, 0, math.Pi, 0}
		span = dynamo.Span{Start: 0, End: 20}
		times = dynamo.SampleTimes(span, 1000)
	})

	It("produces one sample per requested time with exact endpoints", func() {
		traj, err := solver.Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		Expect(traj.Len()).To(Equal(1000))
		Expect(traj.Times[0]).To(Equal(0.0))
		Expect(traj.Times[999]).To(Equal(20.0))
		Expect(traj.States[0]).To(Equal(x0))
	})

	It("keeps bob 1 on its circle through the whole projection", func() {
		traj, err := solver.Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		positions := physics.Project(traj, params)
		Expect(positions).To(HaveLen(traj.Len()))

		for _, ps := range positions {
			r2 := ps.X1*ps.X1 + ps.Y1*ps.Y1
			Expect(r2).To(BeNumerically("~", params.L1*params.L1, 1e-12))
		}
	})

	It("bounds energy drift despite chaotic motion", func() {
		traj, err := solver.Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		Expect(metrics.EnergyDrift(sys, traj)).To(BeNumerically("<", 0.01))
	})

	It("is bit-reproducible across runs", func() {
		a, err := solver.Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())
		b, err := solver.Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		for i := range a.States {
			Expect(a.States[i]).To(Equal(b.States[i]))
		}
	})
})

var _ = Describe("small-angle run", func() {
	It("conserves energy to well under one percent", func() {
		params := physics.DefaultParams()
		sys := physics.NewDoublePendulum(params)
		solver := integrators.NewRK45()
		span := dynamo.Span{Start: 0, End: 10}
		times := dynamo.SampleTimes(span, 500)

		traj, err := solver.Solve(context.Background(), sys, dynamo.State{0.1, 0, 0.1, 0}, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		Expect(metrics.EnergyDrift(sys, traj)).To(BeNumerically("<", 0.01))
	})
})

var _ = Describe("solver strategies", func() {
	It("agree on a short non-chaotic horizon", func() {
		params := physics.DefaultParams()
		sys := physics.NewDoublePendulum(params)
		span := dynamo.Span{Start: 0, End: 2}
		times := dynamo.SampleTimes(span, 50)
		x0 := dynamo.State{0.3, 0, 0.2, 0}

		adaptive, err := integrators.NewRK45().Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())
		fixed, err := integrators.NewRK4(1e-4).Solve(context.Background(), sys, x0, span, times, dynamo.DefaultTolerances())
		Expect(err).NotTo(HaveOccurred())

		for i := range times {
			for j := 0; j < 4; j++ {
				Expect(adaptive.States[i][j]).To(BeNumerically("~", fixed.States[i][j], 1e-4))
			}
		}
	})
})
