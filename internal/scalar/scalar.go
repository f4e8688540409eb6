// Package scalar defines the arithmetic capability the integration kernel is
// generic over, with two concrete scalars:
//
//   - [Real]: a plain float64
//   - [Deriv]: a value carrying a gradient vector (forward-mode derivatives)
//
// The kernel never touches float64 arithmetic directly for state math; it
// goes through the [Value] method set so the same Newton iteration, LU
// factorization and step logic run unchanged on either scalar.
package scalar

import "math"

// Value is the closed set of operations the kernel needs from a scalar.
// Const produces a constant with the receiver's derivative shape, which is
// why it is a method rather than a free function.
type Value[T any] interface {
	Add(T) T
	Sub(T) T
	Mul(T) T
	Div(T) T
	Scale(k float64) T
	Const(c float64) T
	Float64() float64
	Abs() float64
	Finite() bool
}

type Real float64

// R wraps a float64 as a Real.
func R(v float64) Real { return Real(v) }

func (a Real) Add(b Real) Real      { return a + b }
func (a Real) Sub(b Real) Real      { return a - b }
func (a Real) Mul(b Real) Real      { return a * b }
func (a Real) Div(b Real) Real      { return a / b }
func (a Real) Scale(k float64) Real { return a * Real(k) }
func (a Real) Const(c float64) Real { return Real(c) }
func (a Real) Float64() float64     { return float64(a) }
func (a Real) Abs() float64         { return math.Abs(float64(a)) }

func (a Real) Finite() bool {
	return !math.IsNaN(float64(a)) && !math.IsInf(float64(a), 0)
}
