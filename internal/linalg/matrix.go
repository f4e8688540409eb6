// Package linalg provides dense square matrices and LU factorization generic
// over the kernel scalar. The iteration matrix of an implicit step must live
// in the same arithmetic as the state, including derivative-carrying duals,
// so this layer cannot delegate to a float64-only matrix library. The
// float64 projection bridges to gonum for diagnostics.
package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/stiffode/internal/scalar"
)

// Dense is an n-by-n matrix over a kernel scalar, row-major.
type Dense[T scalar.Value[T]] struct {
	n    int
	data []T
}

func NewDense[T scalar.Value[T]](n int) *Dense[T] {
	return &Dense[T]{n: n, data: make([]T, n*n)}
}

func (m *Dense[T]) Dim() int          { return m.n }
func (m *Dense[T]) At(i, j int) T     { return m.data[i*m.n+j] }
func (m *Dense[T]) Set(i, j int, v T) { m.data[i*m.n+j] = v }

func (m *Dense[T]) Clone() *Dense[T] {
	c := NewDense[T](m.n)
	copy(c.data, m.data)
	return c
}

func (m *Dense[T]) IsValid() bool {
	for _, v := range m.data {
		if !v.Finite() {
			return false
		}
	}
	return true
}

// MulVec computes m*x.
func (m *Dense[T]) MulVec(x []T) []T {
	out := make([]T, m.n)
	for i := 0; i < m.n; i++ {
		acc := m.data[i*m.n].Mul(x[0])
		for j := 1; j < m.n; j++ {
			acc = acc.Add(m.data[i*m.n+j].Mul(x[j]))
		}
		out[i] = acc
	}
	return out
}

// Float64Mat projects the values (derivatives stripped) into a gonum matrix
// for eigenvalue and conditioning diagnostics.
func (m *Dense[T]) Float64Mat() *mat.Dense {
	out := mat.NewDense(m.n, m.n, nil)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			out.Set(i, j, m.data[i*m.n+j].Float64())
		}
	}
	return out
}
