// Package metrics provides trajectory observers that accumulate summary
// quantities while an experiment runs.
package metrics

import (
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// EnergyDrift watches a conserved energy across recorded samples and tracks
// the worst relative departure from the starting value. Backward Euler is
// dissipative, so on a conservative system the drift measures the damping
// the method itself injects at the chosen accuracy.
type EnergyDrift struct {
	sys     dynamo.Hamiltonian[scalar.Real]
	initial float64
	current float64
	max     float64
	samples int
}

func NewEnergyDrift(sys dynamo.Hamiltonian[scalar.Real]) *EnergyDrift {
	return &EnergyDrift{sys: sys}
}

func (e *EnergyDrift) OnStep(x dynamo.Vector[scalar.Real], t, h float64) {
	energy := e.sys.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	}
	e.current = energy
	e.samples++

	// Relative drift is undefined from a zero-energy start.
	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		if drift > e.max {
			e.max = drift
		}
	}
}

// Max is the largest relative drift seen so far.
func (e *EnergyDrift) Max() float64 { return e.max }

func (e *EnergyDrift) Initial() float64 { return e.initial }

func (e *EnergyDrift) Current() float64 { return e.current }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.current = 0
	e.max = 0
	e.samples = 0
}
