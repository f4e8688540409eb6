package dynamo

import (
	"math"

	"github.com/san-kum/stiffode/internal/scalar"
)

// Vector is a state vector over a kernel scalar.
type Vector[T scalar.Value[T]] []T

func (v Vector[T]) Clone() Vector[T] {
	c := make(Vector[T], len(v))
	copy(c, v)
	return c
}

func (v Vector[T]) IsValid() bool {
	for _, x := range v {
		if !x.Finite() {
			return false
		}
	}
	return true
}

func (v Vector[T]) Norm() float64 {
	sum := 0.0
	for _, x := range v {
		a := x.Abs()
		sum += a * a
	}
	return math.Sqrt(sum)
}

// MaxAbs is the infinity norm of the values.
func (v Vector[T]) MaxAbs() float64 {
	m := 0.0
	for _, x := range v {
		if a := x.Abs(); a > m {
			m = a
		}
	}
	return m
}

func (v Vector[T]) Add(other Vector[T]) Vector[T] {
	result := make(Vector[T], len(v))
	for i := range v {
		result[i] = v[i].Add(other[i])
	}
	return result
}

func (v Vector[T]) Sub(other Vector[T]) Vector[T] {
	result := make(Vector[T], len(v))
	for i := range v {
		result[i] = v[i].Sub(other[i])
	}
	return result
}

func (v Vector[T]) Scale(k float64) Vector[T] {
	result := make(Vector[T], len(v))
	for i := range v {
		result[i] = v[i].Scale(k)
	}
	return result
}

// AddScaled computes v + k*other without touching v.
func (v Vector[T]) AddScaled(other Vector[T], k float64) Vector[T] {
	result := make(Vector[T], len(v))
	for i := range v {
		result[i] = v[i].Add(other[i].Scale(k))
	}
	return result
}

func (v Vector[T]) Float64s() []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x.Float64()
	}
	return out
}

// RealVector wraps plain float64 values as a Vector[scalar.Real].
func RealVector(xs []float64) Vector[scalar.Real] {
	v := make(Vector[scalar.Real], len(xs))
	for i, x := range xs {
		v[i] = scalar.R(x)
	}
	return v
}

// DualVector lifts plain float64 values into constant dual values.
func DualVector(xs []float64) Vector[scalar.Deriv] {
	v := make(Vector[scalar.Deriv], len(xs))
	for i, x := range xs {
		v[i] = scalar.D(x)
	}
	return v
}

// System models dX/dt = f(X, t). State arithmetic is generic over the
// kernel scalar; time stays a plain float64.
type System[T scalar.Value[T]] interface {
	Derive(x Vector[T], t float64) Vector[T]
	StateDim() int
}

// DualSystem is an optional capability: systems that can propagate exact
// derivatives through their dynamics expose it so the automatic Jacobian
// scheme can read df/dx out of a single evaluation.
type DualSystem interface {
	DeriveDual(x Vector[scalar.Deriv], t float64) Vector[scalar.Deriv]
}

// Stepper advances a state by one explicit step of size h.
type Stepper[T scalar.Value[T]] interface {
	Step(sys System[T], x Vector[T], t, h float64) Vector[T]
}

// Hamiltonian systems expose a conserved energy, used for drift reporting.
type Hamiltonian[T scalar.Value[T]] interface {
	Energy(x Vector[T]) float64
}

// Observer receives committed integration samples.
type Observer[T scalar.Value[T]] interface {
	OnStep(x Vector[T], t, h float64)
}

// Configurable systems expose named parameters for presets and CLI overrides.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
