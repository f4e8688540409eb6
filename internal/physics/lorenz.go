package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

type Lorenz[T scalar.Value[T]] struct{ sigma, rho, beta float64 }

func NewLorenz[T scalar.Value[T]]() *Lorenz[T] { return &Lorenz[T]{10.0, 28.0, 8.0 / 3.0} }

func (l *Lorenz[T]) StateDim() int { return 3 }

func (l *Lorenz[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(1), z.Const(1)}
}

func lorenzDerive[T scalar.Value[T]](sigma, rho, beta float64, s dynamo.Vector[T]) dynamo.Vector[T] {
	x, y, z := s[0], s[1], s[2]
	return dynamo.Vector[T]{
		y.Sub(x).Scale(sigma),
		x.Scale(rho).Sub(x.Mul(z)).Sub(y),
		x.Mul(y).Sub(z.Scale(beta)),
	}
}

// Derive calculates the Lorenz attractor derivatives.
func (l *Lorenz[T]) Derive(s dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return lorenzDerive(l.sigma, l.rho, l.beta, s)
}

func (l *Lorenz[T]) DeriveDual(s dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return lorenzDerive(l.sigma, l.rho, l.beta, s)
}

func (l *Lorenz[T]) GetParams() map[string]float64 {
	return map[string]float64{"sigma": l.sigma, "rho": l.rho, "beta": l.beta}
}

func (l *Lorenz[T]) SetParam(n string, v float64) error {
	switch n {
	case "sigma":
		l.sigma = v
	case "rho":
		l.rho = v
	case "beta":
		l.beta = v
	default:
		return fmt.Errorf("unknown parameter: %s", n)
	}
	return nil
}
