package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// DoubleWell models a damped particle in a bistable potential
// V(x) = A (x² - B)².
type DoubleWell[T scalar.Value[T]] struct {
	A, B, Mass, Damping float64
}

func NewDoubleWell[T scalar.Value[T]]() *DoubleWell[T] {
	return &DoubleWell[T]{1.0, 1.0, 1.0, 0.1}
}

func (d *DoubleWell[T]) StateDim() int { return 2 }

func (d *DoubleWell[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(math.Sqrt(d.B) + 0.1), z.Const(0)}
}

func doubleWellDerive[T scalar.Value[T]](a, b, mass, damping float64, s dynamo.Vector[T]) dynamo.Vector[T] {
	x, v := s[0], s[1]
	force := x.Mul(x.Mul(x).Sub(x.Const(b))).Scale(-4 * a).Sub(v.Scale(damping))
	return dynamo.Vector[T]{v, force.Scale(1 / mass)}
}

func (d *DoubleWell[T]) Derive(s dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return doubleWellDerive(d.A, d.B, d.Mass, d.Damping, s)
}

func (d *DoubleWell[T]) DeriveDual(s dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return doubleWellDerive(d.A, d.B, d.Mass, d.Damping, s)
}

func (d *DoubleWell[T]) Energy(s dynamo.Vector[T]) float64 {
	x, v := s[0].Float64(), s[1].Float64()
	return 0.5*d.Mass*v*v + d.A*math.Pow(x*x-d.B, 2)
}

func (d *DoubleWell[T]) GetParams() map[string]float64 {
	return map[string]float64{"A": d.A, "B": d.B, "mass": d.Mass, "damping": d.Damping}
}

func (d *DoubleWell[T]) SetParam(n string, v float64) error {
	switch n {
	case "A":
		d.A = v
	case "B":
		d.B = v
	case "mass":
		d.Mass = v
	case "damping":
		d.Damping = v
	default:
		return fmt.Errorf("unknown parameter: %s", n)
	}
	return nil
}
