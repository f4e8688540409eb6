package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

type Rossler[T scalar.Value[T]] struct{ a, b, c float64 }

func NewRossler[T scalar.Value[T]]() *Rossler[T] { return &Rossler[T]{0.2, 0.2, 5.7} }

func (r *Rossler[T]) StateDim() int { return 3 }

func (r *Rossler[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(1), z.Const(1)}
}

func rosslerDerive[T scalar.Value[T]](a, b, c float64, s dynamo.Vector[T]) dynamo.Vector[T] {
	x, y, z := s[0], s[1], s[2]
	return dynamo.Vector[T]{
		y.Add(z).Scale(-1),
		x.Add(y.Scale(a)),
		z.Mul(x.Sub(x.Const(c))).Add(x.Const(b)),
	}
}

// Derive calculates the Rossler attractor derivatives.
func (r *Rossler[T]) Derive(s dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return rosslerDerive(r.a, r.b, r.c, s)
}

func (r *Rossler[T]) DeriveDual(s dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return rosslerDerive(r.a, r.b, r.c, s)
}

func (r *Rossler[T]) GetParams() map[string]float64 {
	return map[string]float64{"a": r.a, "b": r.b, "c": r.c}
}

func (r *Rossler[T]) SetParam(n string, v float64) error {
	switch n {
	case "a":
		r.a = v
	case "b":
		r.b = v
	case "c":
		r.c = v
	default:
		return fmt.Errorf("unknown parameter: %s", n)
	}
	return nil
}
