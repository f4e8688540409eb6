package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Duffing implements a nonlinear forced oscillator. State: [x, v]; the
// sinusoidal forcing enters through the time argument, so the right-hand
// side stays polynomial in the state.
type Duffing[T scalar.Value[T]] struct {
	Alpha, Beta, Delta, Gamma, Omega float64
}

func NewDuffing[T scalar.Value[T]]() *Duffing[T] {
	return &Duffing[T]{-1.0, 1.0, 0.3, 0.5, 1.2}
}

func (d *Duffing[T]) StateDim() int { return 2 }

func (d *Duffing[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(0)}
}

func duffingDerive[T scalar.Value[T]](alpha, beta, delta, gamma, omega float64, s dynamo.Vector[T], t float64) dynamo.Vector[T] {
	x, v := s[0], s[1]
	forcing := x.Const(gamma * math.Cos(omega*t))
	return dynamo.Vector[T]{
		v,
		forcing.Sub(v.Scale(delta)).Sub(x.Scale(alpha)).Sub(x.Mul(x).Mul(x).Scale(beta)),
	}
}

func (d *Duffing[T]) Derive(s dynamo.Vector[T], t float64) dynamo.Vector[T] {
	return duffingDerive(d.Alpha, d.Beta, d.Delta, d.Gamma, d.Omega, s, t)
}

func (d *Duffing[T]) DeriveDual(s dynamo.Vector[scalar.Deriv], t float64) dynamo.Vector[scalar.Deriv] {
	return duffingDerive(d.Alpha, d.Beta, d.Delta, d.Gamma, d.Omega, s, t)
}

func (d *Duffing[T]) Energy(s dynamo.Vector[T]) float64 {
	x, v := s[0].Float64(), s[1].Float64()
	return 0.5*v*v + 0.5*d.Alpha*x*x + 0.25*d.Beta*x*x*x*x
}

func (d *Duffing[T]) GetParams() map[string]float64 {
	return map[string]float64{"alpha": d.Alpha, "beta": d.Beta, "delta": d.Delta, "gamma": d.Gamma, "omega": d.Omega}
}

func (d *Duffing[T]) SetParam(n string, v float64) error {
	switch n {
	case "alpha":
		d.Alpha = v
	case "beta":
		d.Beta = v
	case "delta":
		d.Delta = v
	case "gamma":
		d.Gamma = v
	case "omega":
		d.Omega = v
	default:
		return fmt.Errorf("unknown parameter: %s", n)
	}
	return nil
}
