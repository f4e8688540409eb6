package linalg

import (
	"math"

	"github.com/san-kum/stiffode/internal/scalar"
)

// LU is an in-place LU factorization with partial pivoting. Pivots compare
// by absolute value of the scalar's float64 projection, which keeps the
// pivot order identical between plain and derivative-carrying runs.
type LU[T scalar.Value[T]] struct {
	lu  *Dense[T]
	piv []int
	ok  bool
}

// Factorize decomposes a, reporting false when a pivot vanishes or is not
// finite, or the elimination produces non-finite entries. The input is not
// modified.
func (f *LU[T]) Factorize(a *Dense[T]) bool {
	n := a.Dim()
	f.lu = a.Clone()
	if cap(f.piv) < n {
		f.piv = make([]int, n)
	}
	f.piv = f.piv[:n]
	f.ok = false

	m := f.lu
	for col := 0; col < n; col++ {
		// Partial pivoting on the remaining column.
		pivRow := col
		pivAbs := m.At(col, col).Abs()
		for r := col + 1; r < n; r++ {
			if v := m.At(r, col).Abs(); v > pivAbs {
				pivRow, pivAbs = r, v
			}
		}
		if pivAbs == 0 || math.IsNaN(pivAbs) || math.IsInf(pivAbs, 0) {
			return false
		}
		f.piv[col] = pivRow
		if pivRow != col {
			for j := 0; j < n; j++ {
				m.data[col*n+j], m.data[pivRow*n+j] = m.data[pivRow*n+j], m.data[col*n+j]
			}
		}

		pivot := m.At(col, col)
		for r := col + 1; r < n; r++ {
			mult := m.At(r, col).Div(pivot)
			if !mult.Finite() {
				return false
			}
			m.Set(r, col, mult)
			for j := col + 1; j < n; j++ {
				m.Set(r, j, m.At(r, j).Sub(mult.Mul(m.At(col, j))))
			}
		}
	}

	f.ok = true
	return true
}

func (f *LU[T]) Factorized() bool { return f.ok }

// Solve returns x with lu*x = b for the matrix last passed to Factorize.
func (f *LU[T]) Solve(b []T) []T {
	n := f.lu.Dim()
	x := make([]T, n)
	copy(x, b)

	// Apply row exchanges, then forward-substitute through L.
	for i := 0; i < n; i++ {
		if p := f.piv[i]; p != i {
			x[i], x[p] = x[p], x[i]
		}
		for j := 0; j < i; j++ {
			x[i] = x[i].Sub(f.lu.At(i, j).Mul(x[j]))
		}
	}

	// Back-substitute through U.
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			x[i] = x[i].Sub(f.lu.At(i, j).Mul(x[j]))
		}
		x[i] = x[i].Div(f.lu.At(i, i))
	}

	return x
}
