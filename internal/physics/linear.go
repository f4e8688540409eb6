package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// LinearScalar is the one-state system dx/dt = slope, so x(t) is affine in
// time. Backward Euler reproduces affine solutions exactly and its
// step-doubling estimate vanishes to roundoff, which tests rely on.
type LinearScalar[T scalar.Value[T]] struct {
	Slope float64
}

func NewLinearScalar[T scalar.Value[T]](slope float64) *LinearScalar[T] {
	return &LinearScalar[T]{Slope: slope}
}

func (l *LinearScalar[T]) StateDim() int { return 1 }

func (l *LinearScalar[T]) DefaultState() dynamo.Vector[T] {
	return make(dynamo.Vector[T], 1)
}

func linearScalarDerive[T scalar.Value[T]](slope float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	return dynamo.Vector[T]{x[0].Const(slope)}
}

func (l *LinearScalar[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return linearScalarDerive(l.Slope, x)
}

func (l *LinearScalar[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return linearScalarDerive(l.Slope, x)
}

// Solution is the exact state at time t from x0 at time zero.
func (l *LinearScalar[T]) Solution(x0, t float64) float64 {
	return x0 + l.Slope*t
}

func (l *LinearScalar[T]) GetParams() map[string]float64 {
	return map[string]float64{"slope": l.Slope}
}

func (l *LinearScalar[T]) SetParam(name string, value float64) error {
	if name != "slope" {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	l.Slope = value
	return nil
}
