package physics

import (
	"fmt"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// Robertson is the classic stiff chemical kinetics benchmark
//
//	y1' = -k1 y1 + k2 y2 y3
//	y2' =  k1 y1 - k2 y2 y3 - k3 y2^2
//	y3' =  k3 y2^2
//
// from y = (1, 0, 0). The reaction rates span nine orders of magnitude and
// the standard horizon is t = 1e11, so the problem rewards integrators that
// can grow the step enormously once the fast transients die out.
type Robertson[T scalar.Value[T]] struct {
	K1, K2, K3 float64
}

func NewRobertson[T scalar.Value[T]]() *Robertson[T] {
	return &Robertson[T]{K1: 0.04, K2: 1e4, K3: 3e7}
}

func (r *Robertson[T]) StateDim() int { return 3 }

func robertsonDerive[T scalar.Value[T]](k1, k2, k3 float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	y1, y2, y3 := x[0], x[1], x[2]

	recombine := y2.Mul(y3).Scale(k2)
	quench := y2.Mul(y2).Scale(k3)

	return dynamo.Vector[T]{
		y1.Scale(-k1).Add(recombine),
		y1.Scale(k1).Sub(recombine).Sub(quench),
		quench,
	}
}

func (r *Robertson[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return robertsonDerive(r.K1, r.K2, r.K3, x)
}

func (r *Robertson[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return robertsonDerive(r.K1, r.K2, r.K3, x)
}

// DefaultState is the canonical starting mixture, all mass in species one.
func (r *Robertson[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(0), z.Const(0)}
}

// EndTime is the standard horizon for the benchmark.
func (r *Robertson[T]) EndTime() float64 { return 1e11 }

// Solution is the reference state at EndTime for the default rates and
// initial mixture, accurate in its leading digits; nearly all mass has
// converted to species three by then.
func (r *Robertson[T]) Solution() (y1, y2, y3 float64) {
	y1 = 2.0834e-8
	y2 = 8.3333e-14
	return y1, y2, 1 - y1 - y2
}

func (r *Robertson[T]) GetParams() map[string]float64 {
	return map[string]float64{"k1": r.K1, "k2": r.K2, "k3": r.K3}
}

func (r *Robertson[T]) SetParam(name string, value float64) error {
	switch name {
	case "k1":
		r.K1 = value
	case "k2":
		r.K2 = value
	case "k3":
		r.K3 = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
