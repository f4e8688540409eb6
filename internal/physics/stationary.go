package physics

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Stationary is a two-state system whose derivatives are identically zero.
// Any error-controlled integrator must hold its state bit-exact, which
// makes it the canonical do-no-harm check.
type Stationary[T scalar.Value[T]] struct{}

func NewStationary[T scalar.Value[T]]() *Stationary[T] {
	return &Stationary[T]{}
}

func (s *Stationary[T]) StateDim() int { return 2 }

func (s *Stationary[T]) DefaultState() dynamo.Vector[T] {
	return make(dynamo.Vector[T], 2)
}

func (s *Stationary[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return make(dynamo.Vector[T], len(x))
}

func (s *Stationary[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return make(dynamo.Vector[scalar.Deriv], len(x))
}
