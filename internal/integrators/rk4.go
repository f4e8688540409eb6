package integrators

import (
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// RK4 is the classic fourth order explicit stepper, kept as the accuracy
// reference for non-stiff comparisons. Like every explicit method its
// stability region is bounded, so it is not a substitute for the implicit
// engine on stiff systems.
type RK4[T scalar.Value[T]] struct {
	scratch dynamo.Vector[T]
}

func NewRK4[T scalar.Value[T]]() *RK4[T] {
	return &RK4[T]{}
}

func (r *RK4[T]) ensureScratch(n int) {
	if len(r.scratch) != n {
		r.scratch = make(dynamo.Vector[T], n)
	}
}

func (r *RK4[T]) Step(sys dynamo.System[T], x dynamo.Vector[T], t, h float64) dynamo.Vector[T] {
	n := len(x)
	r.ensureScratch(n)

	k1 := sys.Derive(x, t)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k1[i].Scale(h * 0.5))
	}
	k2 := sys.Derive(r.scratch, t+h*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k2[i].Scale(h * 0.5))
	}
	k3 := sys.Derive(r.scratch, t+h*0.5)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i].Add(k3[i].Scale(h))
	}
	k4 := sys.Derive(r.scratch, t+h)

	result := make(dynamo.Vector[T], n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		sum := k1[i].Add(k2[i].Scale(2)).Add(k3[i].Scale(2)).Add(k4[i])
		result[i] = x[i].Add(sum.Scale(h6))
	}

	return result
}
