package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// StiffDoubleMassSpring couples two masses with a very stiff spring-damper
// while a soft spring ties the first mass to the world. State:
// [x1, x2, v1, v2]. The coupling locks the masses together almost rigidly,
// so the slow motion is the combined mass swinging on the soft spring while
// the stiff pair contributes a fast mode that breaks explicit methods.
type StiffDoubleMassSpring[T scalar.Value[T]] struct {
	WorldK    float64 // soft spring, world to mass 1
	CouplingK float64 // stiff spring between the masses
	CouplingB float64 // stiff damper between the masses
	M1, M2    float64
}

func NewStiffDoubleMassSpring[T scalar.Value[T]]() *StiffDoubleMassSpring[T] {
	return &StiffDoubleMassSpring[T]{
		WorldK:    100,
		CouplingK: 1e9,
		CouplingB: 1e6,
		M1:        1,
		M2:        1,
	}
}

func (s *StiffDoubleMassSpring[T]) StateDim() int { return 4 }

// DefaultState starts both masses displaced together at rest, so only the
// slow mode is excited and ApproximateSolution applies.
func (s *StiffDoubleMassSpring[T]) DefaultState() dynamo.Vector[T] {
	var z T
	return dynamo.Vector[T]{z.Const(1), z.Const(1), z.Const(0), z.Const(0)}
}

func doubleSpringDerive[T scalar.Value[T]](kw, kc, bc, m1, m2 float64, x dynamo.Vector[T]) dynamo.Vector[T] {
	x1, x2, v1, v2 := x[0], x[1], x[2], x[3]

	stretch := x2.Sub(x1)
	rate := v2.Sub(v1)
	coupling := stretch.Scale(kc).Add(rate.Scale(bc))

	f1 := x1.Scale(-kw).Add(coupling)
	f2 := coupling.Scale(-1)

	return dynamo.Vector[T]{
		v1,
		v2,
		f1.Scale(1 / m1),
		f2.Scale(1 / m2),
	}
}

func (s *StiffDoubleMassSpring[T]) Derive(x dynamo.Vector[T], _ float64) dynamo.Vector[T] {
	return doubleSpringDerive(s.WorldK, s.CouplingK, s.CouplingB, s.M1, s.M2, x)
}

func (s *StiffDoubleMassSpring[T]) DeriveDual(x dynamo.Vector[scalar.Deriv], _ float64) dynamo.Vector[scalar.Deriv] {
	return doubleSpringDerive(s.WorldK, s.CouplingK, s.CouplingB, s.M1, s.M2, x)
}

// ApproximateSolution treats the locked pair as one mass on the soft
// spring: both positions follow x0*cos(w t) with w = sqrt(k/(m1+m2)).
// Valid for equal starting positions at rest; the approximation error is
// of order WorldK/CouplingK.
func (s *StiffDoubleMassSpring[T]) ApproximateSolution(x0, t float64) (pos, vel float64) {
	w := math.Sqrt(s.WorldK / (s.M1 + s.M2))
	return x0 * math.Cos(w*t), -x0 * w * math.Sin(w*t)
}

func (s *StiffDoubleMassSpring[T]) GetParams() map[string]float64 {
	return map[string]float64{
		"k_world":    s.WorldK,
		"k_coupling": s.CouplingK,
		"b_coupling": s.CouplingB,
		"m1":         s.M1,
		"m2":         s.M2,
	}
}

func (s *StiffDoubleMassSpring[T]) SetParam(name string, value float64) error {
	switch name {
	case "k_world":
		s.WorldK = value
	case "k_coupling":
		s.CouplingK = value
	case "b_coupling":
		s.CouplingB = value
	case "m1":
		s.M1 = value
	case "m2":
		s.M2 = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
