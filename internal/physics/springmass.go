package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// SpringMass is the undamped oscillator
//
//	dx/dt = v
//	dv/dt = -(k/m) x
//
// State: [x, v]. Not stiff on its own; with a large k it drives the
// integrator hard enough to exercise error control, and its closed-form
// solution makes global accuracy checkable.
type SpringMass[T scalar.Value[T]] struct {
	K float64 // spring constant
	M float64 // mass
}

func NewSpringMass[T scalar.Value[T]](k, m float64) *SpringMass[T] {
	return &SpringMass[T]{K: k, M: m}
}

func (s *SpringMass[T]) StateDim() int { return 2 }

func (s *SpringMass[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(0.1), z.Const(0.01)}
}

func springMassDerive[T scalar.Value[T]](k, m float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	return dynamo.Vector[T]{
		x[1],
		x[0].Scale(-k / m),
	}
}

func (s *SpringMass[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return springMassDerive(s.K, s.M, x)
}

func (s *SpringMass[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return springMassDerive(s.K, s.M, x)
}

// Omega is the natural frequency sqrt(k/m).
func (s *SpringMass[T]) Omega() float64 {
	return math.Sqrt(s.K / s.M)
}

// Solution is the exact state at time t from (x0, v0) at time zero.
func (s *SpringMass[T]) Solution(x0, v0, t float64) (x, v float64) {
	w := s.Omega()
	sin, cos := math.Sin(w*t), math.Cos(w*t)
	x = x0*cos + v0/w*sin
	v = -x0*w*sin + v0*cos
	return x, v
}

func (s *SpringMass[T]) Energy(x dynamo.Vector[T]) float64 {
	pos, vel := x[0].Float64(), x[1].Float64()
	return 0.5*s.K*pos*pos + 0.5*s.M*vel*vel
}

func (s *SpringMass[T]) GetParams() map[string]float64 {
	return map[string]float64{"k": s.K, "m": s.M}
}

func (s *SpringMass[T]) SetParam(name string, value float64) error {
	switch name {
	case "k":
		s.K = value
	case "m":
		s.M = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
