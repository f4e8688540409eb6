package analysis

import (
	"math"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/scalar"
)

// LyapunovExponent estimates the largest Lyapunov exponent using the
// trajectory separation method: integrate a trajectory and a perturbed twin,
// track the log of their separation, renormalize before it saturates. A
// positive value indicates chaos.
func LyapunovExponent(
	sys dynamo.System[scalar.Real],
	integ dynamo.Stepper[scalar.Real],
	x0 dynamo.Vector[scalar.Real],
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 {
		return 0
	}

	x0p := x0.Clone()
	x0p[0] = x0p[0].Add(scalar.R(perturbation))

	return lyapunovForPerturbation(sys, integ, x0, x0p, dt, duration, perturbation)
}

// LyapunovSpectrum computes one exponent per state dimension by perturbing
// each coordinate independently.
func LyapunovSpectrum(
	sys dynamo.System[scalar.Real],
	integ dynamo.Stepper[scalar.Real],
	x0 dynamo.Vector[scalar.Real],
	dt, duration float64,
	perturbation float64,
) []float64 {
	spectrum := make([]float64, len(x0))

	for i := range x0 {
		xp := x0.Clone()
		xp[i] = xp[i].Add(scalar.R(perturbation))

		spectrum[i] = lyapunovForPerturbation(sys, integ, x0, xp, dt, duration, perturbation)
	}

	return spectrum
}

func lyapunovForPerturbation(
	sys dynamo.System[scalar.Real],
	integ dynamo.Stepper[scalar.Real],
	x0, x0p dynamo.Vector[scalar.Real],
	dt, duration, d0 float64,
) float64 {
	x := x0.Clone()
	xp := x0p.Clone()
	t := 0.0

	sumLog := 0.0
	count := 0

	for t < duration {
		x = integ.Step(sys, x, t, dt)
		xp = integ.Step(sys, xp, t, dt)
		t += dt

		// Stiff systems overflow an explicit stepper; keep the estimate
		// from the portion that stayed finite.
		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := xp.Sub(x).Norm()

		if sep > 0 && d0 > 0 {
			sumLog += math.Log(sep / d0)
			count++
		}

		// Renormalize to prevent overflow.
		if sep > 1.0 {
			scale := d0 / sep
			for i := range xp {
				xp[i] = x[i].Add(xp[i].Sub(x[i]).Scale(scale))
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
