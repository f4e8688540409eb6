// Package integrators provides the implicit integration engine and a set of
// explicit reference steppers.
//
// The centerpiece is [ImplicitEuler], an error-controlled backward Euler
// integrator for stiff systems. Each step solves the implicit update with a
// damped Newton iteration, reusing the Jacobian and its factorization across
// steps until convergence quality says otherwise, and sizes the next step
// from an embedded second-order error estimate:
//
//	sys := physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2)
//	ctx := dynamo.NewContext(dynamo.RealVector([]float64{1, 0.1}))
//	ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
//	ie.SetMaxStepSize(0.1)
//	ie.SetTargetAccuracy(1e-6)
//	if err := ie.Initialize(); err != nil { ... }
//	err := ie.IntegrateWithMultipleStepsToTime(2)
//
// The explicit steppers ([Euler], [RK4], [RK45], [Verlet], [Leapfrog])
// implement [dynamo.Stepper] and serve as baselines: cheaper per step,
// unusable on stiff systems at any practical step size.
//
// # Statistics
//
// The engine counts its work as it goes. [ImplicitEuler.Statistics] splits
// the cost between the primary solve and the error estimator, down to
// derivative evaluations, Jacobian refreshes and matrix factorizations.
package integrators
