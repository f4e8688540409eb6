package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// MassChain is N equal masses joined by identical spring-dampers, with the
// end springs anchored to walls. State: [x1..xN, v1..vN] with x the
// displacement from rest. Large K makes every mode fast at once, and the
// dimension scales with N, so the chain is the workout for Jacobian
// evaluation and factorization on bigger systems.
type MassChain[T scalar.Value[T]] struct {
	N int
	K float64 // spring constant, every link
	B float64 // damper, every link
	M float64 // per-mass
}

func NewMassChain[T scalar.Value[T]](n int, k, b, m float64) *MassChain[T] {
	if n < 1 {
		n = 1
	}
	return &MassChain[T]{N: n, K: k, B: b, M: m}
}

func (c *MassChain[T]) StateDim() int { return 2 * c.N }

// DefaultState displaces the first mass and half-displaces the second,
// launching a pulse down the chain.
func (c *MassChain[T]) DefaultState() dynamo.Vector[T] {
	var z T
	x := make(dynamo.Vector[T], 2*c.N)
	for i := range x {
		x[i] = z.Const(0)
	}
	x[0] = z.Const(1)
	if c.N > 1 {
		x[1] = z.Const(0.5)
	}
	return x
}

func massChainDerive[T scalar.Value[T]](n int, k, b, m float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	var z T
	zero := z.Const(0)

	deriv := make(dynamo.Vector[T], 2*n)
	for i := 0; i < n; i++ {
		pos, vel := x[i], x[n+i]

		left, leftVel := zero, zero
		if i > 0 {
			left, leftVel = x[i-1], x[n+i-1]
		}
		right, rightVel := zero, zero
		if i < n-1 {
			right, rightVel = x[i+1], x[n+i+1]
		}

		// Each link pulls toward its neighbor; the walls sit at zero.
		force := left.Sub(pos).Add(right.Sub(pos)).Scale(k).
			Add(leftVel.Sub(vel).Add(rightVel.Sub(vel)).Scale(b))

		deriv[i] = vel
		deriv[n+i] = force.Scale(1 / m)
	}
	return deriv
}

func (c *MassChain[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return massChainDerive(c.N, c.K, c.B, c.M, x)
}

func (c *MassChain[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return massChainDerive(c.N, c.K, c.B, c.M, x)
}

func (c *MassChain[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"k": c.K,
		"b": c.B,
		"m": c.M,
	}
}

func (c *MassChain[T]) SetParam(name string, value float64) error {
	switch name {
	case "k":
		c.K = value
	case "b":
		c.B = value
	case "m":
		c.M = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
