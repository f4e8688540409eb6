package integrators

import (
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the embedded Dormand-Prince 5(4) pair. It is the explicit
// adaptive counterpart used to contrast against the implicit engine: on
// non-stiff systems it is far cheaper per unit of accuracy, on stiff ones
// its suggested step collapses to the stability limit.
type RK45[T scalar.Value[T]] struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45[T scalar.Value[T]]() *RK45[T] {
	return &RK45[T]{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45[T]) Step(sys dynamo.System[T], x dynamo.Vector[T], t, h float64) dynamo.Vector[T] {
	xNew, _ := r.StepAdaptive(sys, x, t, h, 1e-6)
	return xNew
}

// StepAdaptive advances one step of size h and returns the advanced state
// together with the step size the embedded error estimate suggests for the
// next attempt. The caller owns acceptance: a suggestion smaller than h
// means the step overshot tol.
func (r *RK45[T]) StepAdaptive(sys dynamo.System[T], x dynamo.Vector[T], t, h, tol float64) (dynamo.Vector[T], float64) {
	n := len(x)

	k1 := sys.Derive(x, t)

	stage := make(dynamo.Vector[T], n)
	for i := 0; i < n; i++ {
		stage[i] = x[i].Add(k1[i].Scale(h * b21))
	}
	k2 := sys.Derive(stage, t+a2*h)

	for i := 0; i < n; i++ {
		stage[i] = x[i].Add(k1[i].Scale(h * b31)).Add(k2[i].Scale(h * b32))
	}
	k3 := sys.Derive(stage, t+a3*h)

	for i := 0; i < n; i++ {
		stage[i] = x[i].Add(k1[i].Scale(h * b41)).Add(k2[i].Scale(h * b42)).Add(k3[i].Scale(h * b43))
	}
	k4 := sys.Derive(stage, t+a4*h)

	for i := 0; i < n; i++ {
		stage[i] = x[i].Add(k1[i].Scale(h * b51)).Add(k2[i].Scale(h * b52)).
			Add(k3[i].Scale(h * b53)).Add(k4[i].Scale(h * b54))
	}
	k5 := sys.Derive(stage, t+a5*h)

	for i := 0; i < n; i++ {
		stage[i] = x[i].Add(k1[i].Scale(h * b61)).Add(k2[i].Scale(h * b62)).
			Add(k3[i].Scale(h * b63)).Add(k4[i].Scale(h * b64)).Add(k5[i].Scale(h * b65))
	}
	k6 := sys.Derive(stage, t+h)

	xNew := make(dynamo.Vector[T], n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i].Add(k1[i].Scale(h * c1)).Add(k3[i].Scale(h * c3)).
			Add(k4[i].Scale(h * c4)).Add(k5[i].Scale(h * c5)).Add(k6[i].Scale(h * c6))
	}

	// FSAL stage, only used by the embedded estimate here.
	k7 := sys.Derive(xNew, t+h)

	errMax := 0.0
	for i := 0; i < n; i++ {
		est := h * (dc1*k1[i].Float64() + dc3*k3[i].Float64() + dc4*k4[i].Float64() +
			dc5*k5[i].Float64() + dc6*k6[i].Float64() + dc7*k7[i].Float64())
		span := x[i].Abs() + math.Abs(h*k1[i].Float64()) + 1e-10
		errMax = math.Max(errMax, math.Abs(est)/span)
	}

	errRatio := errMax / tol

	var hNew float64
	switch {
	case errRatio > 1:
		hNew = h * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		// A passed step never suggests below h, so hNew < h is exactly
		// the overshoot signal.
		hNew = h * math.Min(r.maxScale, math.Max(1, r.safety*math.Pow(errRatio, -0.2)))
	default:
		hNew = h * r.maxScale
	}

	return xNew, hNew
}
