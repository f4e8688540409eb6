// Package physics provides dynamical system models for integration.
//
// Each model implements the [dynamo.System] interface, defining the
// differential equations governing the system's evolution, generically over
// the state scalar so the same model runs on plain floats and on
// derivative-carrying values:
//
//   - [Stationary]: zero dynamics, the do-no-harm check
//   - [LinearScalar]: affine-in-time motion with an exact solution
//   - [SpringMass]: undamped oscillator with a closed-form solution
//   - [SpringMassDamper]: stiff damped oscillator, closed form included
//   - [DiscontinuousSpringMassDamper]: unilateral contact-like force law
//   - [StiffDoubleMassSpring]: two masses locked by a near-rigid coupling
//   - [MassChain]: N masses joined by stiff links, for larger Jacobians
//   - [Robertson]: stiff chemical kinetics over eleven decades of time
//   - [VanDerPol]: relaxation oscillator, stiff at large μ
//   - [Lorenz], [Rossler], [Duffing], [DoubleWell]: nonlinear classics
//
// Models with smooth dynamics also provide DeriveDual, the exact-derivative
// evaluation backing the automatic Jacobian scheme, and most implement
// [dynamo.Configurable] for runtime parameter adjustment.
//
// # Closed Forms
//
// Where a model has an analytic solution it is exposed as a Solution
// method, so integration error can be measured directly:
//
//	sys := physics.NewSpringMass[scalar.Real](1, 2)
//	x, v := sys.Solution(0.1, 0.01, t)
package physics
