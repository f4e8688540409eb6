package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/linalg"
	"github.com/san-kum/stiffode/internal/scalar"
)

const (
	// Accuracy used when the caller never set a target, and the loosest
	// accuracy the integrator will agree to run at.
	defaultAccuracy = 1e-1
	loosestAccuracy = 5e-1

	// The working minimum step size never drops below this fraction of the
	// maximum step, which keeps t + h representable distinct from t.
	minStepScale = 1e-14
)

// ImplicitEuler integrates dX/dt = f(X, t) with the backward Euler method,
// solving each step with the Newton corrector and adapting the step size
// from an embedded step-doubling error estimate. The method adds artificial
// damping, which is what makes it usable on stiff systems where explicit
// steppers need punishingly small steps.
//
// An instance is bound to one system and one attached context and is not
// safe for concurrent use.
type ImplicitEuler[T scalar.Value[T]] struct {
	sys dynamo.System[T]
	ctx *dynamo.Context[T]

	maxStep       float64
	requestedMin  float64
	targetAcc     float64
	initialTarget float64
	fixedStep     bool
	throwOnMin    bool

	accuracyInUse float64
	workingMin    float64

	jac    *jacobian.Manager[T]
	newton *newtonCorrector[T]

	stats       Statistics
	errEstimate dynamo.Vector[T]
	nextH       float64
	initialized bool
}

func NewImplicitEuler[T scalar.Value[T]](sys dynamo.System[T], ctx *dynamo.Context[T]) *ImplicitEuler[T] {
	jm := jacobian.NewManager(sys)
	return &ImplicitEuler[T]{
		sys:           sys,
		ctx:           ctx,
		maxStep:       math.NaN(),
		targetAcc:     math.NaN(),
		initialTarget: math.NaN(),
		throwOnMin:    true,
		jac:           jm,
		newton:        newCorrector(sys, jm),
		stats:         newStatistics(),
	}
}

func (ie *ImplicitEuler[T]) MaxStepSize() float64              { return ie.maxStep }
func (ie *ImplicitEuler[T]) SetMaxStepSize(h float64)          { ie.maxStep = h }
func (ie *ImplicitEuler[T]) RequestedMinStepSize() float64     { return ie.requestedMin }
func (ie *ImplicitEuler[T]) SetRequestedMinStepSize(h float64) { ie.requestedMin = h }
func (ie *ImplicitEuler[T]) TargetAccuracy() float64           { return ie.targetAcc }
func (ie *ImplicitEuler[T]) SetTargetAccuracy(a float64)       { ie.targetAcc = a }

// RequestInitialStepSizeTarget sets the size error control starts from on
// the first step. Unset, the first attempt starts at the maximum step.
func (ie *ImplicitEuler[T]) RequestInitialStepSizeTarget(h float64) { ie.initialTarget = h }
func (ie *ImplicitEuler[T]) InitialStepSizeTarget() float64         { return ie.initialTarget }

func (ie *ImplicitEuler[T]) FixedStepMode() bool                { return ie.fixedStep }
func (ie *ImplicitEuler[T]) SetFixedStepMode(on bool)           { ie.fixedStep = on }
func (ie *ImplicitEuler[T]) ThrowOnMinStepViolation() bool      { return ie.throwOnMin }
func (ie *ImplicitEuler[T]) SetThrowOnMinStepViolation(on bool) { ie.throwOnMin = on }

func (ie *ImplicitEuler[T]) Scheme() jacobian.Scheme     { return ie.jac.Scheme() }
func (ie *ImplicitEuler[T]) SetScheme(s jacobian.Scheme) { ie.jac.SetScheme(s) }
func (ie *ImplicitEuler[T]) Reuse() bool                 { return ie.jac.Reuse() }
func (ie *ImplicitEuler[T]) SetReuse(r bool)             { ie.jac.SetReuse(r) }

// AccuracyInUse is the target accuracy after clamping, valid once
// Initialize has run.
func (ie *ImplicitEuler[T]) AccuracyInUse() float64 { return ie.accuracyInUse }

// WorkingMinStepSize is the smallest step error control will request; below
// it the engine switches to the explicit bypass.
func (ie *ImplicitEuler[T]) WorkingMinStepSize() float64 { return ie.workingMin }

// ErrorEstimateOrder reports the asymptotic order of the embedded estimate.
func (ie *ImplicitEuler[T]) ErrorEstimateOrder() int { return errEstimateOrder }

// ErrorEstimate returns the estimate produced by the last successful step.
func (ie *ImplicitEuler[T]) ErrorEstimate() dynamo.Vector[T] { return ie.errEstimate.Clone() }

func (ie *ImplicitEuler[T]) Statistics() Statistics { return ie.stats }
func (ie *ImplicitEuler[T]) ResetStatistics()       { ie.stats = newStatistics() }

// JacobianMatrix exposes the last Jacobian the manager computed, for
// diagnostics. Nil before the first implicit step.
func (ie *ImplicitEuler[T]) JacobianMatrix() *linalg.Dense[T] { return ie.jac.Jacobian() }

func (ie *ImplicitEuler[T]) Context() *dynamo.Context[T] { return ie.ctx }

// ResetContext detaches the current context and attaches the given one
// (which may be nil). The integrator must be re-initialized afterwards.
func (ie *ImplicitEuler[T]) ResetContext(ctx *dynamo.Context[T]) {
	ie.ctx = ctx
	ie.initialized = false
}

// Initialize validates the configuration, derives the working accuracy and
// minimum step, resets statistics and drops any cached Jacobian state. It
// must be called before integrating and again after ResetContext.
func (ie *ImplicitEuler[T]) Initialize() error {
	if ie.ctx == nil {
		return fmt.Errorf("%w: no context attached", dynamo.ErrConfiguration)
	}
	if math.IsNaN(ie.maxStep) {
		return fmt.Errorf("%w: maximum step size not set", dynamo.ErrConfiguration)
	}
	if ie.maxStep <= 0 || math.IsInf(ie.maxStep, 0) {
		return fmt.Errorf("%w: maximum step size must be positive and finite, got %g", dynamo.ErrConfiguration, ie.maxStep)
	}
	if ie.requestedMin < 0 {
		return fmt.Errorf("%w: requested minimum step size must not be negative, got %g", dynamo.ErrConfiguration, ie.requestedMin)
	}
	if ie.requestedMin > ie.maxStep {
		return fmt.Errorf("%w: requested minimum step size %g exceeds maximum step size %g", dynamo.ErrConfiguration, ie.requestedMin, ie.maxStep)
	}
	if n := ie.sys.StateDim(); n != ie.ctx.Dim() {
		return fmt.Errorf("%w: system has %d states, context has %d", dynamo.ErrConfiguration, n, ie.ctx.Dim())
	}

	switch {
	case math.IsNaN(ie.targetAcc):
		ie.accuracyInUse = defaultAccuracy
	case ie.targetAcc <= 0:
		return fmt.Errorf("%w: target accuracy must be positive, got %g", dynamo.ErrConfiguration, ie.targetAcc)
	case ie.targetAcc > loosestAccuracy:
		// Looser than the integrator can usefully run at; clamp.
		ie.accuracyInUse = loosestAccuracy
	default:
		ie.accuracyInUse = ie.targetAcc
	}

	ie.workingMin = math.Max(ie.requestedMin, minStepScale*ie.maxStep)

	h0 := ie.initialTarget
	if math.IsNaN(h0) {
		h0 = ie.maxStep
	} else if h0 <= 0 {
		return fmt.Errorf("%w: initial step size target must be positive, got %g", dynamo.ErrConfiguration, h0)
	}
	ie.nextH = math.Min(h0, ie.maxStep)

	ie.jac.Invalidate()
	ie.stats = newStatistics()
	ie.errEstimate = make(dynamo.Vector[T], ie.ctx.Dim())
	ie.initialized = true
	return nil
}

func (ie *ImplicitEuler[T]) requireReady() error {
	if ie.ctx == nil {
		return fmt.Errorf("%w: no context attached", dynamo.ErrConfiguration)
	}
	if !ie.initialized {
		return fmt.Errorf("%w: Initialize has not been called", dynamo.ErrConfiguration)
	}
	return nil
}

// IntegrateWithMultipleStepsToTime advances the context to tFinal, taking
// as many steps as the step policy decides. In fixed-step mode every step
// is min(max step, remaining) and a non-converging step is fatal; otherwise
// the error-controlled policy retries with shrunk steps first.
func (ie *ImplicitEuler[T]) IntegrateWithMultipleStepsToTime(tFinal float64) error {
	if err := ie.requireReady(); err != nil {
		return err
	}
	if tFinal <= ie.ctx.Time() {
		return fmt.Errorf("%w: target time %g is not ahead of current time %g", dynamo.ErrConfiguration, tFinal, ie.ctx.Time())
	}

	for ie.ctx.Time() < tFinal {
		if ie.fixedStep {
			if err := ie.fixedStepToward(tFinal); err != nil {
				return err
			}
			continue
		}
		if err := ie.errorControlledStep(tFinal); err != nil {
			return err
		}
	}
	return nil
}

// IntegrateWithSingleFixedStepToTime attempts exactly one step spanning
// from the current time to tTarget. The boolean reports corrector
// convergence; the error return carries only fatal conditions. The context
// is untouched when the step does not converge. Fixed-step mode must be
// enabled.
func (ie *ImplicitEuler[T]) IntegrateWithSingleFixedStepToTime(tTarget float64) (bool, error) {
	if err := ie.requireReady(); err != nil {
		return false, err
	}
	if !ie.fixedStep {
		return false, fmt.Errorf("%w: single fixed steps require fixed-step mode", dynamo.ErrConfiguration)
	}
	h := tTarget - ie.ctx.Time()
	if h <= 0 {
		return false, fmt.Errorf("%w: target time %g is not ahead of current time %g", dynamo.ErrConfiguration, tTarget, ie.ctx.Time())
	}

	ok, err := ie.attemptStep(h)
	if err != nil || !ok {
		return false, err
	}
	ie.ctx.SetTime(tTarget)
	ie.stats.recordCommit(h)
	return true, nil
}

func (ie *ImplicitEuler[T]) fixedStepToward(tFinal float64) error {
	t0 := ie.ctx.Time()
	h := math.Min(ie.maxStep, tFinal-t0)

	ok, err := ie.attemptStep(h)
	if err != nil {
		return err
	}
	if !ok {
		ie.stats.SubstepFailures++
		return &dynamo.IntegrationError{Time: t0, StepSize: h, Wrapped: dynamo.ErrConvergence}
	}
	if h == tFinal-t0 {
		ie.ctx.SetTime(tFinal)
	}
	ie.stats.recordCommit(h)
	return nil
}

// attemptStep tries one step of exactly h from the current context. On
// success the context holds the advanced time and state and the error
// estimate is refreshed; on corrector failure the context is unchanged.
// Steps strictly below the working minimum use the explicit bypass: a
// single forward Euler update accepted unconditionally, with a zeroed
// estimate.
func (ie *ImplicitEuler[T]) attemptStep(h float64) (bool, error) {
	t0 := ie.ctx.Time()
	x0 := ie.ctx.State().Clone()

	if h < ie.workingMin {
		ie.explicitStep(h)
		return true, nil
	}

	x1, ok, err := ie.newton.Solve(x0, t0, h, ie.accuracyInUse, &ie.stats.Primary)
	if err != nil || !ok {
		return false, err
	}

	// Embedded step-doubling estimate: the same step as two halves, charged
	// to the estimator bucket. A failing half fails the whole attempt.
	half := h / 2
	xh, ok, err := ie.newton.Solve(x0, t0, half, ie.accuracyInUse, &ie.stats.ErrorEstimator)
	if err != nil || !ok {
		return false, err
	}
	xf, ok, err := ie.newton.Solve(xh, t0+half, half, ie.accuracyInUse, &ie.stats.ErrorEstimator)
	if err != nil || !ok {
		return false, err
	}

	ie.errEstimate = xf.Sub(x1)
	ie.ctx.SetState(x1)
	ie.ctx.SetTime(t0 + h)
	return true, nil
}

// explicitStep advances the context by one forward Euler update of size h
// with a zeroed error estimate. Used for steps too small for the corrector
// to resolve and as the last resort when the corrector cannot converge at
// the working minimum.
func (ie *ImplicitEuler[T]) explicitStep(h float64) {
	t0 := ie.ctx.Time()
	x0 := ie.ctx.State().Clone()
	f0 := ie.sys.Derive(x0, t0)
	ie.stats.Primary.DerivativeEvals++
	ie.ctx.SetState(x0.AddScaled(f0, h))
	ie.ctx.SetTime(t0 + h)
	ie.errEstimate = make(dynamo.Vector[T], len(x0))
}
