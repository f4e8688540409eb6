package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

// tunableDecay is dx/dt = rate*x with a rate that tests mutate between
// solves to stale the cached Jacobian.
type tunableDecay struct{ rate float64 }

func (d *tunableDecay) StateDim() int { return 1 }

func (d *tunableDecay) Derive(x dynamo.Vector[scalar.Real], _ float64) dynamo.Vector[scalar.Real] {
	return dynamo.Vector[scalar.Real]{x[0].Scale(d.rate)}
}

// cubicDecay is dx/dt = -x^3. Far from the origin the frozen iteration
// matrix contracts too slowly for the iteration budget.
type cubicDecay struct{}

func (cubicDecay) StateDim() int { return 1 }

func (cubicDecay) Derive(x dynamo.Vector[scalar.Real], _ float64) dynamo.Vector[scalar.Real] {
	cube := x[0].Mul(x[0]).Mul(x[0])
	return dynamo.Vector[scalar.Real]{cube.Scale(-1)}
}

func TestCorrectorWork_Affine(t *testing.T) {
	ie, _ := newAffineEngine(3, 4)
	ie.SetMaxStepSize(1)
	ie.SetFixedStepMode(true)
	if err := ie.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if ok, err := ie.IntegrateWithSingleFixedStepToTime(1); err != nil || !ok {
		t.Fatalf("step = (%v, %v)", ok, err)
	}

	// Full step: one forward-difference Jacobian (2 evaluations for one
	// state), one factorization, convergence on the second iteration.
	stats := ie.Statistics()
	wantPrimary := Work{
		Costs: jacobian.Costs{
			DerivativeEvals:         4,
			JacobianDerivativeEvals: 2,
			JacobianEvals:           1,
			Factorizations:          1,
		},
		NewtonIterations: 2,
	}
	if stats.Primary != wantPrimary {
		t.Errorf("primary work = %+v, want %+v", stats.Primary, wantPrimary)
	}

	// Half steps reuse the Jacobian: the first refactorizes for h/2, the
	// second hits the factorization cache outright.
	wantEstimator := Work{
		Costs: jacobian.Costs{
			DerivativeEvals: 4,
			Factorizations:  1,
		},
		NewtonIterations: 4,
	}
	if stats.ErrorEstimator != wantEstimator {
		t.Errorf("estimator work = %+v, want %+v", stats.ErrorEstimator, wantEstimator)
	}

	if est := ie.ErrorEstimate()[0].Float64(); math.Abs(est) > 4.5e-16 {
		t.Errorf("affine error estimate = %g, want roundoff", est)
	}
}

func TestCorrectorWork_Stationary(t *testing.T) {
	sys := physics.NewStationary[scalar.Real]()
	ctx := dynamo.NewContext(dynamo.RealVector([]float64{1.5, -2.5}))
	ie := NewImplicitEuler[scalar.Real](sys, ctx)
	ie.SetMaxStepSize(1)
	ie.SetFixedStepMode(true)
	if err := ie.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if ok, err := ie.IntegrateWithSingleFixedStepToTime(0.5); err != nil || !ok {
		t.Fatalf("step = (%v, %v)", ok, err)
	}

	// Zero dynamics: the first update is already below the floor.
	stats := ie.Statistics()
	wantPrimary := Work{
		Costs: jacobian.Costs{
			DerivativeEvals:         4,
			JacobianDerivativeEvals: 3,
			JacobianEvals:           1,
			Factorizations:          1,
		},
		NewtonIterations: 1,
	}
	if stats.Primary != wantPrimary {
		t.Errorf("primary work = %+v, want %+v", stats.Primary, wantPrimary)
	}
	wantEstimator := Work{
		Costs: jacobian.Costs{
			DerivativeEvals: 2,
			Factorizations:  1,
		},
		NewtonIterations: 2,
	}
	if stats.ErrorEstimator != wantEstimator {
		t.Errorf("estimator work = %+v, want %+v", stats.ErrorEstimator, wantEstimator)
	}

	if got := ctx.State().Float64s(); got[0] != 1.5 || got[1] != -2.5 {
		t.Errorf("stationary state drifted to %v", got)
	}
}

func TestCorrectorRetry_RebuildsStaleJacobian(t *testing.T) {
	sys := &tunableDecay{rate: -1}
	jm := jacobian.NewManager[scalar.Real](sys)
	nc := newCorrector[scalar.Real](sys, jm)
	x0 := dynamo.Vector[scalar.Real]{scalar.R(1)}

	var warm Work
	if _, ok, err := nc.Solve(x0, 0, 1e-2, 0.1, &warm); err != nil || !ok {
		t.Fatalf("warmup solve = (%v, %v)", ok, err)
	}

	// Make the cached Jacobian badly stale, then solve at the same step
	// size so the factorization cache is also hit.
	sys.rate = -3000
	var work Work
	x1, ok, err := nc.Solve(x0, 0, 1e-2, 0.1, &work)
	if err != nil || !ok {
		t.Fatalf("solve after rate change = (%v, %v)", ok, err)
	}
	if want := 1.0 / 31.0; math.Abs(x1[0].Float64()-want) > 1e-12 {
		t.Errorf("x1 = %.17g, want %.17g", x1[0].Float64(), want)
	}

	// Two iterations diverge on the stale matrix, then the rebuilt one
	// converges in two. Exactly one fresh Jacobian is charged.
	want := Work{
		Costs: jacobian.Costs{
			DerivativeEvals:         6,
			JacobianDerivativeEvals: 2,
			JacobianEvals:           1,
			Factorizations:          1,
		},
		NewtonIterations: 4,
	}
	if work != want {
		t.Errorf("retry work = %+v, want %+v", work, want)
	}
}

func TestCorrectorNoRetry_WhenReuseDisabled(t *testing.T) {
	sys := &tunableDecay{rate: -1}
	jm := jacobian.NewManager[scalar.Real](sys)
	jm.SetReuse(false)
	nc := newCorrector[scalar.Real](sys, jm)
	x0 := dynamo.Vector[scalar.Real]{scalar.R(1)}

	var warm Work
	if _, ok, err := nc.Solve(x0, 0, 1e-2, 0.1, &warm); err != nil || !ok {
		t.Fatalf("warmup solve = (%v, %v)", ok, err)
	}

	// With reuse off every attempt starts from a fresh Jacobian, so the
	// rate change costs nothing extra.
	sys.rate = -3000
	var work Work
	x1, ok, err := nc.Solve(x0, 0, 1e-2, 0.1, &work)
	if err != nil || !ok {
		t.Fatalf("solve after rate change = (%v, %v)", ok, err)
	}
	if want := 1.0 / 31.0; math.Abs(x1[0].Float64()-want) > 1e-12 {
		t.Errorf("x1 = %.17g, want %.17g", x1[0].Float64(), want)
	}
	if work.JacobianEvals != 1 || work.NewtonIterations != 2 {
		t.Errorf("work = %+v, want one Jacobian and two iterations", work)
	}
}

func TestCorrectorFailure_FreshJacobianGetsNoRetry(t *testing.T) {
	sys := physics.NewRobertson[scalar.Real]()
	jm := jacobian.NewManager[scalar.Real](sys)
	nc := newCorrector[scalar.Real](sys, jm)
	x0 := sys.DefaultState()

	var work Work
	x1, ok, err := nc.Solve(x0, 0, 1e-2, 5e-5, &work)
	if err != nil {
		t.Fatalf("divergence should not be fatal: %v", err)
	}
	if ok || x1 != nil {
		t.Fatal("expected divergence at h=1e-2 from the initial state")
	}

	// The iteration diverged on a freshly built Jacobian, so a rebuild
	// could not help and only one is charged.
	if work.JacobianEvals != 1 {
		t.Errorf("JacobianEvals = %d, want 1 (no retry)", work.JacobianEvals)
	}
	if work.NewtonIterations != 2 {
		t.Errorf("NewtonIterations = %d, want divergence detected on the second", work.NewtonIterations)
	}
}

func TestCorrectorFailure_IterationBudget(t *testing.T) {
	sys := cubicDecay{}
	jm := jacobian.NewManager[scalar.Real](sys)
	nc := newCorrector[scalar.Real](sys, jm)
	x0 := dynamo.Vector[scalar.Real]{scalar.R(10)}

	// Contraction is monotone but far too slow at this distance from the
	// fixed point; the budget runs out without a divergence signal.
	var work Work
	_, ok, err := nc.Solve(x0, 0, 0.1, 0.1, &work)
	if err != nil || ok {
		t.Fatalf("solve = (%v, %v), want slow-contraction failure", ok, err)
	}
	if work.NewtonIterations != maxNewtonIterations {
		t.Errorf("NewtonIterations = %d, want the full budget %d", work.NewtonIterations, maxNewtonIterations)
	}
}

func TestAutomaticScheme_RequiresDualPath(t *testing.T) {
	sys := cubicDecay{} // no DeriveDual
	jm := jacobian.NewManager[scalar.Real](sys)
	jm.SetScheme(jacobian.Automatic)
	nc := newCorrector[scalar.Real](sys, jm)
	x0 := dynamo.Vector[scalar.Real]{scalar.R(1)}

	var work Work
	_, ok, err := nc.Solve(x0, 0, 0.1, 0.1, &work)
	if ok || !errors.Is(err, dynamo.ErrUnsupportedScheme) {
		t.Errorf("solve on dual-less system = (%v, %v), want ErrUnsupportedScheme", ok, err)
	}
}

func TestAutomaticScheme_RejectsNestedDuals(t *testing.T) {
	// An integrator running on derivative-carrying scalars cannot seed a
	// second derivative level. Initialize stays lazy; the first step fails.
	sys := physics.NewSpringMass[scalar.Deriv](1, 1)
	ctx := dynamo.NewContext(dynamo.DualVector([]float64{1, 0}))
	ie := NewImplicitEuler[scalar.Deriv](sys, ctx)
	ie.SetMaxStepSize(0.1)
	ie.SetScheme(jacobian.Automatic)
	if err := ie.Initialize(); err != nil {
		t.Fatalf("Initialize should not probe the scheme: %v", err)
	}

	err := ie.IntegrateWithMultipleStepsToTime(0.1)
	if !errors.Is(err, dynamo.ErrUnsupportedScheme) {
		t.Errorf("integrate = %v, want ErrUnsupportedScheme", err)
	}
}
