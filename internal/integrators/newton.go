package integrators

import (
	"errors"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/scalar"
)

const (
	// Newton iterations per solve attempt before giving up.
	maxNewtonIterations = 10

	// Fraction of the working accuracy the contraction test must reach.
	newtonKappa = 0.05

	// Updates this small are roundoff; iterating further cannot shrink them.
	newtonAbsFloor = 10 * 2.220446049250313e-16
)

// newtonCorrector solves the backward Euler equation
//
//	g(z) = z - x0 - h*f(t0+h, z) = 0
//
// by Newton iteration against the manager's factorized (I - h*J).
// Non-convergence is an expected outcome the step controller reacts to, so
// it is reported as ok=false; the error return carries only fatal
// conditions (unsupported Jacobian scheme).
type newtonCorrector[T scalar.Value[T]] struct {
	sys dynamo.System[T]
	jac *jacobian.Manager[T]
}

func newCorrector[T scalar.Value[T]](sys dynamo.System[T], jac *jacobian.Manager[T]) *newtonCorrector[T] {
	return &newtonCorrector[T]{sys: sys, jac: jac}
}

// Solve attempts one implicit step of size h from (t0, x0), charging all
// work to the given bucket. accuracy is the integrator's accuracy in use.
func (nc *newtonCorrector[T]) Solve(x0 dynamo.Vector[T], t0, h, accuracy float64, work *Work) (dynamo.Vector[T], bool, error) {
	// A failing attempt that ran on a cached Jacobian earns one retry with
	// a fresh rebuild before the failure stands.
	for attempt := 0; attempt < 2; attempt++ {
		rebuilt, err := nc.jac.Freshen(x0, t0+h, h, &work.Costs)
		if err != nil {
			if errors.Is(err, dynamo.ErrUnsupportedScheme) {
				return nil, false, err
			}
			// Singular iteration matrix: recoverable, the controller will
			// shrink the step.
			nc.jac.Invalidate()
			return nil, false, nil
		}

		if x, ok := nc.iterate(x0, t0+h, h, accuracy, work); ok {
			return x, true, nil
		}
		if rebuilt || !nc.jac.Reuse() {
			break
		}
		nc.jac.Invalidate()
	}

	nc.jac.Invalidate()
	return nil, false, nil
}

func (nc *newtonCorrector[T]) iterate(x0 dynamo.Vector[T], t1, h, accuracy float64, work *Work) (dynamo.Vector[T], bool) {
	x := x0.Clone()
	lastNorm := math.NaN()

	for i := 0; i < maxNewtonIterations; i++ {
		f := nc.sys.Derive(x, t1)
		work.DerivativeEvals++

		g := x.Sub(x0).Sub(f.Scale(h))
		dx := nc.jac.Solve(g.Scale(-1))
		work.NewtonIterations++

		x = x.Add(dx)
		if !x.IsValid() {
			return nil, false
		}

		norm := dx.MaxAbs()
		if norm < newtonAbsFloor {
			return x, true
		}
		if i >= 1 {
			theta := norm / lastNorm
			if theta > 1 {
				// Diverging; more iterations will not help.
				return nil, false
			}
			eta := theta / (1 - theta)
			if eta*norm < newtonKappa*accuracy {
				return x, true
			}
		}
		lastNorm = norm
	}

	return nil, false
}
