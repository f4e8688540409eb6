package scalar

import "math"

// Deriv is a forward-mode dual value: a float64 plus the gradient of that
// value with respect to a set of seed variables. A nil gradient means the
// value is a constant; binary operations treat the missing entries as zero.
type Deriv struct {
	Val  float64
	Grad []float64
}

// D builds a dual value with an explicit gradient.
func D(v float64, grad ...float64) Deriv {
	return Deriv{Val: v, Grad: grad}
}

// Seed lifts x into dual values with identity gradients, so that after
// evaluating f the i-th result holds row i of the Jacobian df/dx in its
// gradient.
func Seed(x []float64) []Deriv {
	out := make([]Deriv, len(x))
	for i, v := range x {
		g := make([]float64, len(x))
		g[i] = 1
		out[i] = Deriv{Val: v, Grad: g}
	}
	return out
}

// Values strips the gradients from xs.
func Values(xs []Deriv) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Val
	}
	return out
}

func width(a, b Deriv) int {
	if len(a.Grad) > len(b.Grad) {
		return len(a.Grad)
	}
	return len(b.Grad)
}

func gradAt(g []float64, i int) float64 {
	if i < len(g) {
		return g[i]
	}
	return 0
}

func (a Deriv) Add(b Deriv) Deriv {
	n := width(a, b)
	c := Deriv{Val: a.Val + b.Val}
	if n > 0 {
		c.Grad = make([]float64, n)
		for i := range c.Grad {
			c.Grad[i] = gradAt(a.Grad, i) + gradAt(b.Grad, i)
		}
	}
	return c
}

func (a Deriv) Sub(b Deriv) Deriv {
	n := width(a, b)
	c := Deriv{Val: a.Val - b.Val}
	if n > 0 {
		c.Grad = make([]float64, n)
		for i := range c.Grad {
			c.Grad[i] = gradAt(a.Grad, i) - gradAt(b.Grad, i)
		}
	}
	return c
}

func (a Deriv) Mul(b Deriv) Deriv {
	n := width(a, b)
	c := Deriv{Val: a.Val * b.Val}
	if n > 0 {
		c.Grad = make([]float64, n)
		for i := range c.Grad {
			c.Grad[i] = gradAt(a.Grad, i)*b.Val + a.Val*gradAt(b.Grad, i)
		}
	}
	return c
}

func (a Deriv) Div(b Deriv) Deriv {
	n := width(a, b)
	q := a.Val / b.Val
	c := Deriv{Val: q}
	if n > 0 {
		c.Grad = make([]float64, n)
		for i := range c.Grad {
			c.Grad[i] = (gradAt(a.Grad, i) - q*gradAt(b.Grad, i)) / b.Val
		}
	}
	return c
}

func (a Deriv) Scale(k float64) Deriv {
	c := Deriv{Val: a.Val * k}
	if len(a.Grad) > 0 {
		c.Grad = make([]float64, len(a.Grad))
		for i, g := range a.Grad {
			c.Grad[i] = g * k
		}
	}
	return c
}

// Const keeps the receiver's gradient width so downstream operations stay
// dimensionally consistent.
func (a Deriv) Const(c float64) Deriv {
	d := Deriv{Val: c}
	if len(a.Grad) > 0 {
		d.Grad = make([]float64, len(a.Grad))
	}
	return d
}

func (a Deriv) Float64() float64 { return a.Val }
func (a Deriv) Abs() float64     { return math.Abs(a.Val) }

func (a Deriv) Finite() bool {
	if math.IsNaN(a.Val) || math.IsInf(a.Val, 0) {
		return false
	}
	for _, g := range a.Grad {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return false
		}
	}
	return true
}
