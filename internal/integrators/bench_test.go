package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

func BenchmarkRK45DoublePendulum(b *testing.B) {
	solver := NewRK45()
	sys := physics.NewDoublePendulum(physics.DefaultParams())
	span := dynamo.Span{Start: 0, End: 10}
	times := dynamo.SampleTimes(span, 100)
	x0 := dynamo.State{1.5, 0, 2.5, 0}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(ctx, sys, x0, span, times, dynamo.DefaultTolerances()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRK4DoublePendulum(b *testing.B) {
	solver := NewRK4(1e-3)
	sys := physics.NewDoublePendulum(physics.DefaultParams())
	span := dynamo.Span{Start: 0, End: 10}
	times := dynamo.SampleTimes(span, 100)
	x0 := dynamo.State{1.5, 0, 2.5, 0}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(ctx, sys, x0, span, times, dynamo.DefaultTolerances()); err != nil {
			b.Fatal(err)
		}
	}
}
