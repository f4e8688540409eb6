// Package viz is the live terminal watch for an integration in flight,
// built on the Bubble Tea framework:
//
//   - [Model]: tick-driven watch advancing the implicit engine one window
//     per frame, with trajectory and step-size charts and cost counters
//   - [Canvas]: braille dot canvas rendering the phase-plane trail
//
// Step sizes are charted on a log scale because a stiff run sweeps them
// across many decades.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial state
//	Q     - Quit
package viz
