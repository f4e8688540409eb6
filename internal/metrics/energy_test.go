package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

func TestEnergyDrift_TracksWorstDeparture(t *testing.T) {
	// k=2, m=1: energy of [x, v] is x^2 + v^2/2.
	sys := physics.NewSpringMass[scalar.Real](2, 1)
	drift := NewEnergyDrift(sys)

	drift.OnStep(dynamo.RealVector([]float64{1, 0}), 0, 0)
	if drift.Initial() != 1 {
		t.Fatalf("initial energy = %v, want 1", drift.Initial())
	}
	if drift.Max() != 0 {
		t.Errorf("drift after first sample = %v, want 0", drift.Max())
	}

	// Energy drops to 0.25, then recovers partway.
	drift.OnStep(dynamo.RealVector([]float64{0.5, 0}), 1, 0.1)
	drift.OnStep(dynamo.RealVector([]float64{0.9, 0}), 2, 0.1)

	if got := drift.Max(); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("max drift = %v, want 0.75", got)
	}
	if got := drift.Current(); math.Abs(got-0.81) > 1e-12 {
		t.Errorf("current energy = %v, want 0.81", got)
	}
}

func TestEnergyDrift_ZeroInitialEnergy(t *testing.T) {
	sys := physics.NewSpringMass[scalar.Real](2, 1)
	drift := NewEnergyDrift(sys)

	drift.OnStep(dynamo.RealVector([]float64{0, 0}), 0, 0)
	drift.OnStep(dynamo.RealVector([]float64{1, 1}), 1, 0.1)

	if got := drift.Max(); got != 0 {
		t.Errorf("drift from zero energy = %v, want 0", got)
	}
}

func TestEnergyDrift_Reset(t *testing.T) {
	sys := physics.NewSpringMass[scalar.Real](2, 1)
	drift := NewEnergyDrift(sys)

	drift.OnStep(dynamo.RealVector([]float64{1, 0}), 0, 0)
	drift.OnStep(dynamo.RealVector([]float64{0, 0}), 1, 0.1)
	drift.Reset()

	if drift.Max() != 0 || drift.Initial() != 0 || drift.Current() != 0 {
		t.Error("Reset should clear all accumulated state")
	}

	drift.OnStep(dynamo.RealVector([]float64{2, 0}), 2, 0.1)
	if drift.Initial() != 4 {
		t.Errorf("initial after reset = %v, want 4", drift.Initial())
	}
}
