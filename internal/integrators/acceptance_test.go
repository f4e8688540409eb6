// Acceptance specs driving the implicit engine end to end over the classic
// stiff benchmark systems, at the tolerances the engine is expected to hold
// in production use.
package integrators_test

import (
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

const machEps = 2.220446049250313e-16

var allSchemes = []jacobian.Scheme{
	jacobian.ForwardDifference,
	jacobian.CentralDifference,
	jacobian.Automatic,
}

func mustIntegrate(ie *integrators.ImplicitEuler[scalar.Real], tFinal float64) {
	GinkgoHelper()
	Expect(ie.IntegrateWithMultipleStepsToTime(tFinal)).To(Succeed())
}

// expectBusyStats checks the bookkeeping every long error-controlled run
// must leave behind, then resets it so the next leg starts from zero.
func expectBusyStats(ie *integrators.ImplicitEuler[scalar.Real]) {
	GinkgoHelper()
	st := ie.Statistics()
	Expect(st.StepsTaken).To(BeNumerically(">", 0))
	Expect(st.PrevStepSize).To(BeNumerically(">", 0))
	Expect(st.LargestStepSize).To(BeNumerically(">", 0))
	Expect(st.Primary.NewtonIterations).To(BeNumerically(">", 0))
	Expect(st.Primary.DerivativeEvals).To(BeNumerically(">", 0))
	Expect(st.Primary.JacobianDerivativeEvals).To(BeNumerically(">", 0))
	Expect(st.Primary.JacobianEvals).To(BeNumerically(">", 0))
	Expect(st.Primary.Factorizations).To(BeNumerically(">", 0))
	Expect(st.ErrorEstimator.NewtonIterations).To(BeNumerically(">", 0))
	Expect(st.ErrorEstimator.DerivativeEvals).To(BeNumerically(">", 0))
	ie.ResetStatistics()
}

var _ = Describe("ImplicitEuler", func() {
	Describe("on an affine system", func() {
		// Backward Euler lands on the exact solution of dx/dt = const and
		// the two-half-step reference retraces it, so the estimate has
		// nothing left to measure but rounding.
		It("produces a near-zero error estimate over a unit step", func() {
			sys := physics.NewLinearScalar[scalar.Real](4)
			ctx := dynamo.NewContext(dynamo.RealVector([]float64{3}))
			ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
			ie.SetMaxStepSize(1)
			ie.SetFixedStepMode(true)
			Expect(ie.Initialize()).To(Succeed())

			ok, err := ie.IntegrateWithSingleFixedStepToTime(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			Expect(ctx.State()[0].Float64()).To(Equal(7.0))
			Expect(math.Abs(ie.ErrorEstimate()[0].Float64())).To(BeNumerically("<=", 2*machEps))
		})

		It("keeps a perfect estimate through the explicit bypass", func() {
			// Steepen the slope so a step below the working minimum still
			// moves the state by +2, then watch the explicit mode commit it
			// with no estimate at all.
			probe := integrators.NewImplicitEuler[scalar.Real](
				physics.NewLinearScalar[scalar.Real](4),
				dynamo.NewContext(dynamo.RealVector([]float64{3})))
			probe.SetMaxStepSize(1)
			Expect(probe.Initialize()).To(Succeed())
			workingMin := probe.WorkingMinStepSize()

			slope := 4 / workingMin
			sys := physics.NewLinearScalar[scalar.Real](slope)
			ctx := dynamo.NewContext(dynamo.RealVector([]float64{3}))
			ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
			ie.SetMaxStepSize(1)
			ie.SetFixedStepMode(true)
			Expect(ie.Initialize()).To(Succeed())

			h := workingMin / 2
			ok, err := ie.IntegrateWithSingleFixedStepToTime(h)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			want := scalar.R(3).Add(scalar.R(slope).Scale(h)).Float64()
			Expect(ctx.State()[0].Float64()).To(Equal(want))
			Expect(math.Abs(ie.ErrorEstimate()[0].Float64())).To(BeNumerically("<=", 2*machEps))
			Expect(ie.Statistics().ErrorEstimator).To(BeZero())
		})
	})

	Describe("on a stationary system", func() {
		It("stays pinned at the equilibrium while growing the step", func() {
			sys := physics.NewStationary[scalar.Real]()
			ctx := dynamo.NewContext(sys.DefaultState())
			ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
			ie.SetMaxStepSize(1)
			ie.SetTargetAccuracy(1e-3)
			ie.RequestInitialStepSizeTarget(1e-4)
			Expect(ie.Initialize()).To(Succeed())

			mustIntegrate(ie, 1)

			Expect(ctx.Time()).To(Equal(1.0))
			for i, s := range ctx.State() {
				Expect(math.Abs(s.Float64())).To(BeNumerically("<=", machEps),
					"state component %d drifted", i)
			}
		})
	})

	Describe("selecting the automatic scheme on a derivative-carrying state", func() {
		It("fails lazily and recovers after switching to forward differences", func() {
			sys := physics.NewSpringMass[scalar.Deriv](1, 1)
			ctx := dynamo.NewContext(dynamo.DualVector([]float64{1, 0}))
			ie := integrators.NewImplicitEuler[scalar.Deriv](sys, ctx)
			ie.SetMaxStepSize(0.1)
			ie.SetScheme(jacobian.Automatic)
			Expect(ie.Initialize()).To(Succeed())

			err := ie.IntegrateWithMultipleStepsToTime(0.2)
			Expect(err).To(MatchError(dynamo.ErrUnsupportedScheme))
			Expect(ctx.Time()).To(BeZero())

			// Same engine, no re-initialization.
			ie.SetScheme(jacobian.ForwardDifference)
			Expect(ie.IntegrateWithMultipleStepsToTime(0.2)).To(Succeed())
			Expect(ctx.Time()).To(Equal(0.2))

			xWant, _ := sys.Solution(1, 0, 0.2)
			Expect(ctx.State()[0].Float64()).To(BeNumerically("~", xWant, 0.05))
		})
	})

	Describe("reusing the Jacobian across steps", func() {
		It("spends fewer Jacobian evaluations than rebuilding every attempt", func() {
			run := func(reuse bool) (float64, integrators.Statistics) {
				sys := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2)
				ctx := dynamo.NewContext(dynamo.RealVector([]float64{1, 0.1}))
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.SetRequestedMinStepSize(1e-6)
				ie.SetThrowOnMinStepViolation(false)
				ie.SetTargetAccuracy(1e-4)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())
				Expect(ie.IntegrateWithMultipleStepsToTime(0.25)).To(Succeed())
				return ctx.State()[0].Float64(), ie.Statistics()
			}

			xOn, statsOn := run(true)
			xOff, statsOff := run(false)

			Expect(statsOn.Primary.JacobianEvals).To(BeNumerically("<", statsOff.Primary.JacobianEvals))

			xWant, _ := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2).Solution(1, 0.1, 0.25)
			Expect(xOn).To(BeNumerically("~", xWant, 1e-3))
			Expect(xOff).To(BeNumerically("~", xWant, 1e-3))
		})
	})

	for _, reuse := range []bool{true, false} {
		Context(fmt.Sprintf("with Jacobian reuse %t", reuse), func() {
			It("tracks a fast spring-mass oscillator under every Jacobian scheme", func() {
				sys := physics.NewSpringMass[scalar.Real](300, 2)
				ctx := dynamo.NewContext(dynamo.RealVector([]float64{0.1, 0.01}))
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.SetTargetAccuracy(5e-5)
				ie.SetRequestedMinStepSize(1e-6)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())

				xWant, _ := sys.Solution(0.1, 0.01, 1)
				for _, scheme := range allSchemes {
					ie.SetScheme(scheme)
					ctx.SetTime(0)
					ctx.SetState(dynamo.RealVector([]float64{0.1, 0.01}))

					mustIntegrate(ie, 1)

					Expect(ctx.Time()).To(Equal(1.0))
					Expect(ctx.State()[0].Float64()).To(BeNumerically("~", xWant, 5e-3),
						"position under scheme %s", scheme)
					if scheme == jacobian.Automatic {
						Expect(ie.Statistics().SmallestAdaptedStepSize).To(BeNumerically("<", 0.1))
					}
					expectBusyStats(ie)
				}
			})

			It("drains the stiff spring-mass-damper to rest under every scheme", func() {
				sys := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2)
				ctx := dynamo.NewContext(dynamo.RealVector([]float64{1, 0.1}))
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.SetRequestedMinStepSize(1e-6)
				ie.SetThrowOnMinStepViolation(false)
				ie.SetTargetAccuracy(1e-6)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())

				xWant, vWant := sys.Solution(1, 0.1, 2)
				for _, scheme := range allSchemes {
					ie.SetScheme(scheme)
					ctx.SetTime(0)
					ctx.SetState(dynamo.RealVector([]float64{1, 0.1}))

					mustIntegrate(ie, 2)

					Expect(ctx.Time()).To(Equal(2.0))
					Expect(ctx.State()[0].Float64()).To(BeNumerically("~", xWant, 1e-6),
						"position under scheme %s", scheme)
					Expect(ctx.State()[1].Float64()).To(BeNumerically("~", vWant, 1e-4),
						"velocity under scheme %s", scheme)
					if scheme == jacobian.Automatic {
						Expect(ie.Statistics().SmallestAdaptedStepSize).To(BeNumerically("<", 0.1))
					}
					expectBusyStats(ie)
				}
			})

			It("keeps both masses of the stiff double spring on the slow mode", func() {
				sys := physics.NewStiffDoubleMassSpring[scalar.Real]()
				ctx := dynamo.NewContext(sys.DefaultState())
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.RequestInitialStepSizeTarget(0.1)
				ie.SetTargetAccuracy(1e-5)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())

				mustIntegrate(ie, 1)

				pos, _ := sys.ApproximateSolution(1, 1)
				Expect(ctx.State()[0].Float64()).To(BeNumerically("~", pos, 2e-2))
				Expect(ctx.State()[1].Float64()).To(BeNumerically("~", pos, 2e-2))
				expectBusyStats(ie)
			})

			It("crosses the velocity-derivative discontinuity and settles", func() {
				sys := physics.NewDiscontinuousSpringMassDamper[scalar.Real](1e10, 1e4, 2, 10)
				ctx := dynamo.NewContext(dynamo.RealVector([]float64{1e-8, 0}))
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(1e-3)
				ie.SetRequestedMinStepSize(1e-5)
				ie.SetThrowOnMinStepViolation(false)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())

				for _, scheme := range allSchemes {
					ie.SetScheme(scheme)
					ctx.SetTime(0)
					ctx.SetState(dynamo.RealVector([]float64{1e-8, 0}))

					mustIntegrate(ie, 1)

					Expect(ctx.Time()).To(Equal(1.0))
					Expect(math.Abs(ctx.State()[0].Float64())).To(BeNumerically("<=", 1e-8),
						"resting position under scheme %s", scheme)
					expectBusyStats(ie)
				}
			})

			It("runs the Robertson kinetics out to the standard horizon", func() {
				sys := physics.NewRobertson[scalar.Real]()
				ctx := dynamo.NewContext(sys.DefaultState())
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(1e7)
				ie.SetThrowOnMinStepViolation(false)
				ie.SetTargetAccuracy(5e-5)
				ie.RequestInitialStepSizeTarget(1e-4)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())

				mustIntegrate(ie, sys.EndTime())

				y1, y2, y3 := sys.Solution()
				Expect(ctx.Time()).To(Equal(sys.EndTime()))
				Expect(ctx.State()[0].Float64()).To(BeNumerically("~", y1, 5e-5))
				Expect(ctx.State()[1].Float64()).To(BeNumerically("~", y2, 5e-5))
				Expect(ctx.State()[2].Float64()).To(BeNumerically("~", y3, 5e-5))
				expectBusyStats(ie)
			})

			It("estimates single-step error within tolerance across the grid", func() {
				sys := physics.NewSpringMass[scalar.Real](300, 2)
				ctx := dynamo.NewContext(sys.DefaultState())
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.SetFixedStepMode(true)
				ie.SetScheme(jacobian.Automatic)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())
				Expect(ie.ErrorEstimateOrder()).To(Equal(2))

				positions := []float64{0.1, 1.0, 0.0}
				velocities := []float64{0.01, 1.0, -10.0}
				dts := []float64{1e-8, 1e-4, 1e-3, 1e-2}
				atols := []float64{1e-14, 1e-6, 1e-4, 1e-2}

				for j, dt := range dts {
					for i := range positions {
						ctx.SetTime(0)
						ctx.SetState(dynamo.RealVector([]float64{positions[i], velocities[i]}))

						ok, err := ie.IntegrateWithSingleFixedStepToTime(dt)
						Expect(err).NotTo(HaveOccurred())
						Expect(ok).To(BeTrue(), "dt %g from (%g, %g)", dt, positions[i], velocities[i])
						Expect(ctx.Time()).To(Equal(dt))

						xTrue, _ := sys.Solution(positions[i], velocities[i], dt)
						est := math.Abs(ie.ErrorEstimate()[0].Float64())
						errX := math.Abs(ctx.State()[0].Float64() - xTrue)
						Expect(errX).To(BeNumerically("<=", atols[j]),
							"position error at dt %g from (%g, %g)", dt, positions[i], velocities[i])
						Expect(math.Abs(errX-est)).To(BeNumerically("<=", atols[j]),
							"estimate quality at dt %g from (%g, %g)", dt, positions[i], velocities[i])
					}
				}
			})

			It("integrates less accurately when the accuracy target loosens", func() {
				sys := physics.NewSpringMass[scalar.Real](300, 2)
				ctx := dynamo.NewContext(dynamo.RealVector([]float64{0.1, 0.01}))
				ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
				ie.SetMaxStepSize(0.1)
				ie.SetRequestedMinStepSize(1e-6)
				ie.SetThrowOnMinStepViolation(false)
				ie.SetTargetAccuracy(1e-4)
				ie.SetReuse(reuse)
				Expect(ie.Initialize()).To(Succeed())
				Expect(ie.AccuracyInUse()).To(Equal(1e-4))

				xTrue, _ := sys.Solution(0.1, 0.01, 0.1)
				mustIntegrate(ie, 0.1)
				errTight := math.Abs(ctx.State()[0].Float64() - xTrue)

				// Absurdly loose targets clamp to the working ceiling rather
				// than being honored as-is.
				ie.SetTargetAccuracy(100)
				Expect(ie.Initialize()).To(Succeed())
				Expect(ie.AccuracyInUse()).To(Equal(0.5))

				ctx.SetTime(0)
				ctx.SetState(dynamo.RealVector([]float64{0.1, 0.01}))
				mustIntegrate(ie, 0.1)
				errLoose := math.Abs(ctx.State()[0].Float64() - xTrue)

				Expect(errLoose).To(BeNumerically(">", errTight))
			})
		})
	}
})
