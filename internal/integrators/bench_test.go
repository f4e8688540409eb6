package integrators

import (
	"testing"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

type benchDynamics struct{}

func (benchDynamics) StateDim() int { return 2 }

func (benchDynamics) Derive(x dynamo.Vector[scalar.Real], _ float64) dynamo.Vector[scalar.Real] {
	return dynamo.Vector[scalar.Real]{x[1], x[0].Scale(-1)}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler[scalar.Real]()
	dyn := benchDynamics{}
	x := dynamo.RealVector([]float64{1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4[scalar.Real]()
	dyn := benchDynamics{}
	x := dynamo.RealVector([]float64{1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45[scalar.Real]()
	dyn := benchDynamics{}
	x := dynamo.RealVector([]float64{1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkVerlet(b *testing.B) {
	integrator := NewVerlet[scalar.Real]()
	dyn := benchDynamics{}
	x := dynamo.RealVector([]float64{1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkLeapfrog(b *testing.B) {
	integrator := NewLeapfrog[scalar.Real]()
	dyn := benchDynamics{}
	x := dynamo.RealVector([]float64{1, 0})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

// benchChain is ten uncoupled unit oscillators laid out positions first,
// velocities second, to size the per-step cost at a larger state dimension.
type benchChain struct{}

func (benchChain) StateDim() int { return 20 }

func (benchChain) Derive(x dynamo.Vector[scalar.Real], _ float64) dynamo.Vector[scalar.Real] {
	dx := make(dynamo.Vector[scalar.Real], 20)
	for i := 0; i < 10; i++ {
		dx[i] = x[10+i]
		dx[10+i] = x[i].Scale(-0.1)
	}
	return dx
}

func chainState() dynamo.Vector[scalar.Real] {
	xs := make([]float64, 20)
	for i := range xs {
		xs[i] = float64(i) * 0.1
	}
	return dynamo.RealVector(xs)
}

func BenchmarkRK4_Chain10(b *testing.B) {
	integrator := NewRK4[scalar.Real]()
	dyn := benchChain{}
	x := chainState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.001)
	}
}

func BenchmarkLeapfrog_Chain10(b *testing.B) {
	integrator := NewLeapfrog[scalar.Real]()
	dyn := benchChain{}
	x := chainState()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.001)
	}
}

// BenchmarkImplicitEuler_Chain10 carries the dense factorization cost at
// state dimension twenty.
func BenchmarkImplicitEuler_Chain10(b *testing.B) {
	ctx := dynamo.NewContext(chainState())
	ie := NewImplicitEuler[scalar.Real](benchChain{}, ctx)
	ie.SetMaxStepSize(0.1)
	ie.SetFixedStepMode(true)
	if err := ie.Initialize(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ok, err := ie.IntegrateWithSingleFixedStepToTime(ctx.Time() + 0.001); err != nil || !ok {
			b.Fatalf("step failed: ok=%t err=%v", ok, err)
		}
	}
}

// BenchmarkImplicitEuler_FixedStep times one converged Newton solve plus the
// embedded error estimate on a non-stiff oscillator.
func BenchmarkImplicitEuler_FixedStep(b *testing.B) {
	sys := physics.NewSpringMass[scalar.Real](300, 2)
	ctx := dynamo.NewContext(dynamo.RealVector([]float64{0.1, 0.01}))
	ie := NewImplicitEuler[scalar.Real](sys, ctx)
	ie.SetMaxStepSize(0.1)
	ie.SetFixedStepMode(true)
	if err := ie.Initialize(); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if ok, err := ie.IntegrateWithSingleFixedStepToTime(ctx.Time() + 1e-3); err != nil || !ok {
			b.Fatalf("step failed: ok=%t err=%v", ok, err)
		}
	}
}

// BenchmarkImplicitEuler_StiffDamper times the full error-controlled loop,
// Jacobian refreshes included, over a short stiff horizon.
func BenchmarkImplicitEuler_StiffDamper(b *testing.B) {
	for name, reuse := range map[string]bool{"reuse": true, "fresh": false} {
		b.Run(name, func(b *testing.B) {
			sys := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2)
			ctx := dynamo.NewContext(dynamo.RealVector([]float64{1, 0.1}))
			ie := NewImplicitEuler[scalar.Real](sys, ctx)
			ie.SetMaxStepSize(0.1)
			ie.SetRequestedMinStepSize(1e-6)
			ie.SetThrowOnMinStepViolation(false)
			ie.SetTargetAccuracy(1e-4)
			ie.SetReuse(reuse)
			if err := ie.Initialize(); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ctx.SetTime(0)
				ctx.SetState(dynamo.RealVector([]float64{1, 0.1}))
				if err := ie.IntegrateWithMultipleStepsToTime(0.01); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
