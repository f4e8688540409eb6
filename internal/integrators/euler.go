package integrators

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Euler is the forward (explicit) first order stepper. On stiff systems it
// is the unstable baseline the implicit engine is compared against; the
// engine itself uses the same update for sub-minimum bypass steps.
type Euler[T scalar.Value[T]] struct{}

func NewEuler[T scalar.Value[T]]() *Euler[T] {
	return &Euler[T]{}
}

func (e *Euler[T]) Step(sys dynamo.System[T], x dynamo.Vector[T], t, h float64) dynamo.Vector[T] {
	return x.AddScaled(sys.Derive(x, t), h)
}
