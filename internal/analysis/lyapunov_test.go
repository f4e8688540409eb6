package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

func TestLyapunovExponent_LorenzIsChaotic(t *testing.T) {
	sys := physics.NewLorenz[scalar.Real]()
	integ := integrators.NewRK4[scalar.Real]()

	lambda := LyapunovExponent(sys, integ, sys.DefaultState(), 0.01, 20, 1e-8)

	assert.Positive(t, lambda)
}

func TestLyapunovExponent_DampedOscillatorContracts(t *testing.T) {
	sys := physics.NewSpringMassDamper[scalar.Real](1, 1, 1)
	integ := integrators.NewRK4[scalar.Real]()

	lambda := LyapunovExponent(sys, integ, sys.DefaultState(), 0.01, 20, 1e-8)

	assert.Negative(t, lambda)
}

func TestLyapunovSpectrum_AllDirectionsContract(t *testing.T) {
	sys := physics.NewSpringMassDamper[scalar.Real](1, 1, 1)
	integ := integrators.NewRK4[scalar.Real]()

	spectrum := LyapunovSpectrum(sys, integ, sys.DefaultState(), 0.01, 20, 1e-8)

	assert.Len(t, spectrum, 2)
	for i, lambda := range spectrum {
		assert.Negative(t, lambda, "direction %d", i)
	}
}

func TestLyapunovExponent_EmptyState(t *testing.T) {
	sys := physics.NewLorenz[scalar.Real]()
	integ := integrators.NewRK4[scalar.Real]()

	assert.Zero(t, LyapunovExponent(sys, integ, nil, 0.01, 1, 1e-8))
}

func TestLyapunovExponent_StiffBlowupStaysFinite(t *testing.T) {
	// Explicit RK4 at this step size overflows immediately on a stiff
	// damper; the estimate must come back finite regardless.
	sys := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2)
	integ := integrators.NewRK4[scalar.Real]()

	lambda := LyapunovExponent(sys, integ, sys.DefaultState(), 0.01, 5, 1e-8)

	assert.False(t, math.IsNaN(lambda))
	assert.False(t, math.IsInf(lambda, 0))
}
