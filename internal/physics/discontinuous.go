package physics

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// DiscontinuousSpringMassDamper models a mass pushed by a constant force
// against a unilateral spring-damper that engages only at x < 0:
//
//	dx/dt = v
//	dv/dt = (-F + [x<0](-k x - b v)) / m
//
// The velocity derivative jumps at x = 0, which defeats smoothness
// assumptions in Jacobian reuse and convergence heuristics; the mass comes
// to rest with the spring slightly compressed, at x = -F/k.
type DiscontinuousSpringMassDamper[T scalar.Value[T]] struct {
	K        float64 // spring constant, active for x < 0
	B        float64 // damping constant, active for x < 0
	M        float64 // mass
	ForceMag float64 // constant force magnitude, pushing toward -x
}

func NewDiscontinuousSpringMassDamper[T scalar.Value[T]](k, b, m, forceMag float64) *DiscontinuousSpringMassDamper[T] {
	return &DiscontinuousSpringMassDamper[T]{K: k, B: b, M: m, ForceMag: forceMag}
}

func (s *DiscontinuousSpringMassDamper[T]) StateDim() int { return 2 }

func (s *DiscontinuousSpringMassDamper[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1e-8), z.Const(0)}
}

func discontinuousDerive[T scalar.Value[T]](k, b, m, forceMag float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	force := x[0].Const(-forceMag)
	if x[0].Float64() < 0 {
		force = force.Sub(x[0].Scale(k)).Sub(x[1].Scale(b))
	}
	return dynamo.Vector[T]{
		x[1],
		force.Scale(1 / m),
	}
}

func (s *DiscontinuousSpringMassDamper[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return discontinuousDerive(s.K, s.B, s.M, s.ForceMag, x)
}

func (s *DiscontinuousSpringMassDamper[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return discontinuousDerive(s.K, s.B, s.M, s.ForceMag, x)
}

// EquilibriumPosition is where the constant force balances the spring.
func (s *DiscontinuousSpringMassDamper[T]) EquilibriumPosition() float64 {
	return -s.ForceMag / s.K
}
