// Package dynamo provides core primitives for stiff ODE integration.
//
// The package defines the fundamental interfaces and types shared by the
// integration engine and the bundled systems:
//
//   - [Vector]: state vector generic over the kernel scalar
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [DualSystem]: optional exact-derivative capability
//   - [Context]: time/state container with clone-and-restore
//   - [Stepper]: one-step explicit integrator interface
//
// # Example
//
//	sys := physics.NewSpringMass[scalar.Real](300, 2)
//	ctx := dynamo.NewContext(dynamo.RealVector([]float64{0.1, 0}))
//	ie := integrators.NewImplicitEuler[scalar.Real](sys, ctx)
//
// # Thread Safety
//
// Context instances are NOT thread-safe. An integrator owns its attached
// context for the duration of a step; detach with ResetContext before
// sharing.
package dynamo
