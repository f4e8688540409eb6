// Package jacobian owns the Jacobian lifecycle of the implicit engine:
// computing df/dx under a selectable scheme, assembling and factorizing the
// iteration matrix (I - h*J), and deciding when a cached factorization may
// be reused instead of rebuilt.
package jacobian

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/linalg"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Costs counts work charged to whoever requested a computation. The engine
// keeps separate buckets for the primary integration and the embedded error
// estimator, so all methods take the bucket explicitly.
type Costs struct {
	DerivativeEvals         int
	JacobianDerivativeEvals int
	JacobianEvals           int
	Factorizations          int
}

// Manager computes Jacobians and holds the factorized iteration matrix for
// one integrator instance. Two caches live here: the Jacobian itself, kept
// across steps under the reuse policy, and the factorization of (I - h*J),
// tagged with the step size it was built for. A convergence failure, a
// scheme change or an explicit reset drops both; a step-size change only
// forces a refactorization.
type Manager[T scalar.Value[T]] struct {
	sys    dynamo.System[T]
	scheme Scheme
	reuse  bool

	jac      *linalg.Dense[T]
	jacValid bool

	matrix      linalg.LU[T]
	matrixStep  float64
	matrixValid bool
}

func NewManager[T scalar.Value[T]](sys dynamo.System[T]) *Manager[T] {
	return &Manager[T]{sys: sys, scheme: ForwardDifference, reuse: true}
}

func (m *Manager[T]) Scheme() Scheme { return m.scheme }

// SetScheme switches the computation scheme. Cached values were built under
// the old scheme, so they are dropped.
func (m *Manager[T]) SetScheme(s Scheme) {
	if s != m.scheme {
		m.Invalidate()
	}
	m.scheme = s
}

func (m *Manager[T]) Reuse() bool     { return m.reuse }
func (m *Manager[T]) SetReuse(r bool) { m.reuse = r }

// Invalidate drops the cached Jacobian and factorization. Called on
// convergence failures and on integrator re-initialization.
func (m *Manager[T]) Invalidate() {
	m.jacValid = false
	m.matrixValid = false
}

// Jacobian returns the most recently computed df/dx, or nil.
func (m *Manager[T]) Jacobian() *linalg.Dense[T] { return m.jac }

// Freshen guarantees a factorized iteration matrix for step size h,
// recomputing the Jacobian at (t, x) unless the cached one is usable. It
// reports whether the Jacobian was rebuilt; a full cache hit charges
// nothing to costs.
func (m *Manager[T]) Freshen(x dynamo.Vector[T], t, h float64, costs *Costs) (rebuilt bool, err error) {
	needJac := !m.jacValid || !m.reuse
	if !needJac && m.matrixValid && m.matrixStep == h {
		return false, nil
	}

	if needJac {
		jac, err := m.Compute(x, t, costs)
		if err != nil {
			return false, err
		}
		m.jac = jac
		m.jacValid = true
	}

	a := NewIterationMatrix(m.jac, h)
	costs.Factorizations++
	m.matrixStep = h
	m.matrixValid = m.matrix.Factorize(a)
	if !m.matrixValid {
		return needJac, fmt.Errorf("%w: singular iteration matrix at h=%g", dynamo.ErrConvergence, h)
	}
	return needJac, nil
}

// Solve applies the factorized iteration matrix: returns y with
// (I - h*J)*y = b.
func (m *Manager[T]) Solve(b dynamo.Vector[T]) dynamo.Vector[T] {
	return dynamo.Vector[T](m.matrix.Solve(b))
}

// Compute evaluates df/dx at (t, x) under the current scheme, charging the
// evaluation to costs. It does not touch the iteration-matrix cache.
func (m *Manager[T]) Compute(x dynamo.Vector[T], t float64, costs *Costs) (*linalg.Dense[T], error) {
	costs.JacobianEvals++
	switch m.scheme {
	case CentralDifference:
		return m.centralDiff(x, t, costs), nil
	case Automatic:
		return m.automatic(x, t, costs)
	default:
		return m.forwardDiff(x, t, costs), nil
	}
}

// Perturbation sizes follow the usual rule for first and second order
// differencing: sqrt(eps) and cbrt(eps) scaled by the coordinate magnitude.
var (
	fwdDelta = math.Sqrt(2.220446049250313e-16)
	ctrDelta = math.Cbrt(2.220446049250313e-16)
)

func (m *Manager[T]) forwardDiff(x dynamo.Vector[T], t float64, costs *Costs) *linalg.Dense[T] {
	n := len(x)
	f0 := m.sys.Derive(x, t)
	costs.DerivativeEvals++
	costs.JacobianDerivativeEvals++

	jac := linalg.NewDense[T](n)
	xp := x.Clone()
	for j := 0; j < n; j++ {
		d := fwdDelta * math.Max(1, x[j].Abs())
		// Recompute the realized perturbation to cancel representation error.
		xj := x[j].Add(x[j].Const(d))
		d = xj.Float64() - x[j].Float64()

		xp[j] = xj
		fj := m.sys.Derive(xp, t)
		costs.DerivativeEvals++
		costs.JacobianDerivativeEvals++
		xp[j] = x[j]

		for i := 0; i < n; i++ {
			jac.Set(i, j, fj[i].Sub(f0[i]).Scale(1/d))
		}
	}
	return jac
}

func (m *Manager[T]) centralDiff(x dynamo.Vector[T], t float64, costs *Costs) *linalg.Dense[T] {
	n := len(x)
	jac := linalg.NewDense[T](n)
	xp := x.Clone()
	for j := 0; j < n; j++ {
		d := ctrDelta * math.Max(1, x[j].Abs())
		hi := x[j].Add(x[j].Const(d))
		lo := x[j].Sub(x[j].Const(d))
		span := hi.Float64() - lo.Float64()

		xp[j] = hi
		fhi := m.sys.Derive(xp, t)
		xp[j] = lo
		flo := m.sys.Derive(xp, t)
		xp[j] = x[j]
		costs.DerivativeEvals += 2
		costs.JacobianDerivativeEvals += 2

		for i := 0; i < n; i++ {
			jac.Set(i, j, fhi[i].Sub(flo[i]).Scale(1/span))
		}
	}
	return jac
}

func (m *Manager[T]) automatic(x dynamo.Vector[T], t float64, costs *Costs) (*linalg.Dense[T], error) {
	var zero T
	if _, nested := any(zero).(scalar.Deriv); nested {
		return nil, fmt.Errorf("%w: automatic differentiation cannot nest through a derivative-carrying scalar", dynamo.ErrUnsupportedScheme)
	}
	ds, ok := any(m.sys).(dynamo.DualSystem)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no exact-derivative path", dynamo.ErrUnsupportedScheme, m.sys)
	}

	n := len(x)
	seeded := dynamo.Vector[scalar.Deriv](scalar.Seed(x.Float64s()))
	out := ds.DeriveDual(seeded, t)
	costs.DerivativeEvals++
	costs.JacobianDerivativeEvals++

	jac := linalg.NewDense[T](n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			g := 0.0
			if j < len(out[i].Grad) {
				g = out[i].Grad[j]
			}
			jac.Set(i, j, x[0].Const(g))
		}
	}
	return jac, nil
}

// NewIterationMatrix assembles I - h*J.
func NewIterationMatrix[T scalar.Value[T]](jac *linalg.Dense[T], h float64) *linalg.Dense[T] {
	n := jac.Dim()
	a := linalg.NewDense[T](n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := jac.At(i, j).Scale(-h)
			if i == j {
				v = v.Add(v.Const(1))
			}
			a.Set(i, j, v)
		}
	}
	return a
}
