package integrators

import (
	"math"

	"github.com/san-kum/stiffode/internal/jacobian"
)

// Work counts the effort spent by one side of the engine. The embedded
// error estimator runs the same corrector machinery as the primary
// integration, so its work lands in a bucket of the same shape.
type Work struct {
	jacobian.Costs
	NewtonIterations int
}

// Statistics is the complete cost and step-size record of an integrator
// instance since the last reset.
type Statistics struct {
	Primary        Work
	ErrorEstimator Work

	StepsTaken                    int
	SubstepFailures               int
	ShrinkagesFromSubstepFailures int
	ShrinkagesFromErrorControl    int

	// PrevStepSize is the size of the last committed step. LargestStepSize
	// tracks the biggest committed step; SmallestAdaptedStepSize the
	// smallest committed step that error control had shrunk (NaN until one
	// happens).
	PrevStepSize            float64
	LargestStepSize         float64
	SmallestAdaptedStepSize float64
}

func newStatistics() Statistics {
	return Statistics{SmallestAdaptedStepSize: math.NaN()}
}

// TotalDerivativeEvals sums both buckets, the figure benchmarks care about.
func (s Statistics) TotalDerivativeEvals() int {
	return s.Primary.DerivativeEvals + s.ErrorEstimator.DerivativeEvals
}

func (s Statistics) TotalNewtonIterations() int {
	return s.Primary.NewtonIterations + s.ErrorEstimator.NewtonIterations
}

func (s *Statistics) recordCommit(h float64) {
	s.StepsTaken++
	s.PrevStepSize = h
	if h > s.LargestStepSize {
		s.LargestStepSize = h
	}
}

func (s *Statistics) recordAdapted(h float64) {
	if math.IsNaN(s.SmallestAdaptedStepSize) || h < s.SmallestAdaptedStepSize {
		s.SmallestAdaptedStepSize = h
	}
}
