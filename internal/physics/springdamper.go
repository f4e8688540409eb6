package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// SpringMassDamper is the damped oscillator
//
//	dx/dt = v
//	dv/dt = (-k x - b v) / m
//
// State: [x, v]. With k and b large it is the textbook stiff problem: the
// fast mode decays in microseconds while the interesting motion unfolds on
// a timescale an explicit method could never step across.
type SpringMassDamper[T scalar.Value[T]] struct {
	K float64 // spring constant
	B float64 // damping constant
	M float64 // mass
}

func NewSpringMassDamper[T scalar.Value[T]](k, b, m float64) *SpringMassDamper[T] {
	return &SpringMassDamper[T]{K: k, B: b, M: m}
}

func (s *SpringMassDamper[T]) StateDim() int { return 2 }

func (s *SpringMassDamper[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(0.1)}
}

func springDamperDerive[T scalar.Value[T]](k, b, m float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	force := x[0].Scale(-k).Sub(x[1].Scale(b))
	return dynamo.Vector[T]{
		x[1],
		force.Scale(1 / m),
	}
}

func (s *SpringMassDamper[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return springDamperDerive(s.K, s.B, s.M, x)
}

func (s *SpringMassDamper[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return springDamperDerive(s.K, s.B, s.M, x)
}

// Solution evaluates the closed form at time t from (x0, v0) at time zero,
// covering the overdamped, critically damped and underdamped cases.
func (s *SpringMassDamper[T]) Solution(x0, v0, t float64) (x, v float64) {
	disc := s.B*s.B - 4*s.M*s.K
	switch {
	case disc > 0:
		// Two real decay rates.
		root := math.Sqrt(disc)
		s1 := (-s.B + root) / (2 * s.M)
		s2 := (-s.B - root) / (2 * s.M)
		c1 := (v0 - s2*x0) / (s1 - s2)
		c2 := x0 - c1
		e1, e2 := math.Exp(s1*t), math.Exp(s2*t)
		x = c1*e1 + c2*e2
		v = c1*s1*e1 + c2*s2*e2
	case disc == 0:
		s0 := -s.B / (2 * s.M)
		c2 := v0 - s0*x0
		e := math.Exp(s0 * t)
		x = (x0 + c2*t) * e
		v = (c2 + s0*(x0+c2*t)) * e
	default:
		sigma := -s.B / (2 * s.M)
		w := math.Sqrt(-disc) / (2 * s.M)
		e := math.Exp(sigma * t)
		sin, cos := math.Sin(w*t), math.Cos(w*t)
		cs := (v0 - sigma*x0) / w
		x = e * (x0*cos + cs*sin)
		v = sigma*x + e*(-x0*w*sin+cs*w*cos)
	}
	return x, v
}

func (s *SpringMassDamper[T]) GetParams() map[string]float64 {
	return map[string]float64{"k": s.K, "b": s.B, "m": s.M}
}

func (s *SpringMassDamper[T]) SetParam(name string, value float64) error {
	switch name {
	case "k":
		s.K = value
	case "b":
		s.B = value
	case "m":
		s.M = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
