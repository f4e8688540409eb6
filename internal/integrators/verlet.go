package integrators

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Verlet is velocity Verlet for states laid out as positions followed by
// velocities. Symplectic, so it holds energy on Hamiltonian systems where
// the dissipative backward Euler update bleeds it off.
type Verlet[T scalar.Value[T]] struct {
	scratch dynamo.Vector[T]
}

func NewVerlet[T scalar.Value[T]]() *Verlet[T] {
	return &Verlet[T]{}
}

func (v *Verlet[T]) ensureScratch(n int) {
	if len(v.scratch) != n {
		v.scratch = make(dynamo.Vector[T], n)
	}
}

func (v *Verlet[T]) Step(sys dynamo.System[T], x dynamo.Vector[T], t, h float64) dynamo.Vector[T] {
	n := len(x)
	half := n / 2
	v.ensureScratch(n)

	result := make(dynamo.Vector[T], n)
	dx := sys.Derive(x, t)
	h2 := h * h

	for i := 0; i < half; i++ {
		result[i] = x[i].Add(x[half+i].Scale(h)).Add(dx[half+i].Scale(0.5 * h2))
	}

	for i := 0; i < half; i++ {
		v.scratch[i] = result[i]
		v.scratch[half+i] = x[half+i]
	}

	dxNew := sys.Derive(v.scratch, t+h)

	halfH := 0.5 * h
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i].Add(dx[half+i].Add(dxNew[half+i]).Scale(halfH))
	}

	return result
}

// Leapfrog is the kick-drift-kick variant of the same scheme.
type Leapfrog[T scalar.Value[T]] struct {
	scratch dynamo.Vector[T]
}

func NewLeapfrog[T scalar.Value[T]]() *Leapfrog[T] {
	return &Leapfrog[T]{}
}

func (l *Leapfrog[T]) Step(sys dynamo.System[T], x dynamo.Vector[T], t, h float64) dynamo.Vector[T] {
	n := len(x)
	half := n / 2

	if len(l.scratch) != n {
		l.scratch = make(dynamo.Vector[T], n)
	}

	result := make(dynamo.Vector[T], n)
	dx := sys.Derive(x, t)
	halfH := h * 0.5

	for i := 0; i < half; i++ {
		l.scratch[half+i] = x[half+i].Add(dx[half+i].Scale(halfH))
	}

	for i := 0; i < half; i++ {
		result[i] = x[i].Add(l.scratch[half+i].Scale(h))
		l.scratch[i] = result[i]
	}

	dxNew := sys.Derive(l.scratch, t+h)

	for i := 0; i < half; i++ {
		result[half+i] = l.scratch[half+i].Add(dxNew[half+i].Scale(halfH))
	}

	return result
}
