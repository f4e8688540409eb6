// Package analysis provides numerical diagnostics for dynamical systems.
//
// The package characterizes systems before and during integration:
//
//   - [StiffnessRatio]: eigenvalue spread of a Jacobian (gonum)
//   - [ConditionNumber]: conditioning of an iteration matrix
//   - [LyapunovExponent], [LyapunovSpectrum]: chaos via trajectory separation
//   - [GeneratePhasePortrait]: 2D phase space trajectories
//
// # Stiffness
//
// The stiffness ratio compares the fastest and slowest decaying modes of a
// linearization. A ratio far above one means an explicit method would be
// step-limited by stability rather than accuracy:
//
//	ratio, _ := analysis.StiffnessRatio(jac.Float64Mat())
//	if ratio > 1e3 {
//	    // reach for the implicit engine
//	}
package analysis
