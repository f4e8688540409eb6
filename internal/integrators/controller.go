package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
)

const (
	// Order of the step-doubling error estimate; resizing uses the standard
	// 1/(order+1) exponent.
	errEstimateOrder = 2

	// Step resize clamps and the contraction applied after a corrector
	// failure.
	minResizeFactor        = 0.2
	maxResizeFactor        = 5.0
	shrinkOnSubstepFailure = 0.5

	// Consecutive non-advancing attempts tolerated per committed step.
	maxStepAttempts = 60
)

// errorControlledStep commits exactly one step toward targetTime, shrinking
// and retrying until the embedded estimate satisfies the working accuracy.
// Steps clamped up to the working minimum still run the corrector but the
// estimate no longer gets a vote: the step is taken at the smallest size
// the policy allows, accepting whatever error that brings. Only when even
// that fails does the explicit bypass keep time advancing.
func (ie *ImplicitEuler[T]) errorControlledStep(targetTime float64) error {
	saved := ie.ctx.Clone()

	for attempt := 0; attempt < maxStepAttempts; attempt++ {
		t0 := ie.ctx.Time()
		remaining := targetTime - t0

		h := math.Min(ie.nextH, ie.maxStep)
		if h < ie.workingMin {
			h = ie.workingMin
		}
		floored := h <= ie.workingMin
		clipped := false
		if h >= remaining {
			h, clipped = remaining, true
		}

		ok, err := ie.attemptStep(h)
		if err != nil {
			return err
		}
		if !ok {
			ie.stats.SubstepFailures++
			ie.stats.ShrinkagesFromSubstepFailures++
			next := h * shrinkOnSubstepFailure
			if err := ie.checkMinViolation(next, t0); err != nil {
				return err
			}
			if floored {
				// The corrector cannot advance even at the working minimum;
				// the explicit fallback is all that is left.
				ie.explicitStep(h)
				ie.commitStep(h, clipped, attempt, targetTime)
				ie.nextH = h * ie.resizeFactor(0)
				return nil
			}
			ie.nextH = next
			continue
		}

		errNorm := ie.errEstimate.MaxAbs()
		if floored || errNorm <= ie.accuracyInUse {
			ie.commitStep(h, clipped, attempt, targetTime)
			// A step clipped to hit the target keeps its earlier ideal size
			// unless the error says to come down anyway.
			if grown := h * ie.resizeFactor(errNorm); !clipped || grown < ie.nextH {
				ie.nextH = grown
			}
			return nil
		}

		// Estimate too large: roll back, shrink, retry.
		ie.ctx.Restore(saved)
		ie.stats.ShrinkagesFromErrorControl++
		next := h * ie.resizeFactor(errNorm)
		if err := ie.checkMinViolation(next, t0); err != nil {
			return err
		}
		ie.nextH = next
	}

	return fmt.Errorf("%w: no acceptable step after %d attempts at t=%g",
		dynamo.ErrConvergence, maxStepAttempts, ie.ctx.Time())
}

// commitStep finishes an accepted attempt: snaps clipped steps onto the
// target time and updates the step bookkeeping.
func (ie *ImplicitEuler[T]) commitStep(h float64, clipped bool, attempt int, targetTime float64) {
	if clipped {
		ie.ctx.SetTime(targetTime)
	}
	ie.stats.recordCommit(h)
	if attempt > 0 {
		ie.stats.recordAdapted(h)
	}
}

// resizeFactor maps an estimate norm to the step scaling
// (accuracy/err)^(1/(order+1)), clamped to [0.2, 5]. A vanishing estimate
// grows by the full clamp.
func (ie *ImplicitEuler[T]) resizeFactor(errNorm float64) float64 {
	if errNorm <= 0 {
		return maxResizeFactor
	}
	f := math.Pow(ie.accuracyInUse/errNorm, 1.0/(errEstimateOrder+1))
	return math.Min(math.Max(f, minResizeFactor), maxResizeFactor)
}

// checkMinViolation applies the minimum step policy to a proposed size:
// with the throw flag set a sub-minimum request fails the integration,
// otherwise the next attempt simply runs clamped at the working minimum.
func (ie *ImplicitEuler[T]) checkMinViolation(h, t float64) error {
	if h >= ie.workingMin || !ie.throwOnMin {
		return nil
	}
	return &dynamo.IntegrationError{Time: t, StepSize: h, Wrapped: dynamo.ErrMinimumStep}
}
