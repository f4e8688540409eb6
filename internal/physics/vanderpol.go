package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// VanDerPol implements the Van der Pol oscillator.
// State: [x, y] where y = dx/dt
// Equations:
//
//	dx/dt = y
//	dy/dt = μ(1 - x²)y - x
//
// Small μ gives a gentle limit cycle; μ in the thousands stretches the
// relaxation phase into a classic stiff benchmark.
type VanDerPol[T scalar.Value[T]] struct {
	mu float64 // Nonlinearity parameter
}

func NewVanDerPol[T scalar.Value[T]]() *VanDerPol[T] {
	return &VanDerPol[T]{
		mu: 1.0, // Classic value for limit cycle
	}
}

// NewStiffVanDerPol uses μ = 1000, the standard stiff configuration.
func NewStiffVanDerPol[T scalar.Value[T]]() *VanDerPol[T] {
	return &VanDerPol[T]{mu: 1000}
}

func (v *VanDerPol[T]) StateDim() int { return 2 }

func (v *VanDerPol[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(2), z.Const(0)}
}

func vanDerPolDerive[T scalar.Value[T]](mu float64, s dynamo.Vector[T]) dynamo.Vector[T] {
	x, y := s[0], s[1]
	return dynamo.Vector[T]{
		y,
		x.Const(1).Sub(x.Mul(x)).Mul(y).Scale(mu).Sub(x),
	}
}

func (v *VanDerPol[T]) Derive(s dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return vanDerPolDerive(v.mu, s)
}

func (v *VanDerPol[T]) DeriveDual(s dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return vanDerPolDerive(v.mu, s)
}

// GetParams implements dynamo.Configurable
func (v *VanDerPol[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"mu": v.mu,
	}
}

// SetParam implements dynamo.Configurable
func (v *VanDerPol[T]) SetParam(name string, value float64) error {
	if name != "mu" {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	v.mu = value
	return nil
}
