// Package experiment wires configurations to runnable integrations: a model
// registry mapping names to systems, and a runner that assembles the implicit
// engine from a config and records the trajectory it produces.
package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/physics"
	"github.com/san-kum/stiffode/internal/scalar"
)

type modelEntry struct {
	brief string
	build func() dynamo.System[scalar.Real]
}

// Registry maps model names to system factories. Every registered model
// carries a default initial state, so a config without init_state runs.
type Registry struct {
	models map[string]modelEntry
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]modelEntry)}

	r.models["stationary"] = modelEntry{
		"one state pinned at zero, the do-nothing baseline",
		func() dynamo.System[scalar.Real] { return physics.NewStationary[scalar.Real]() },
	}
	r.models["linear"] = modelEntry{
		"constant slope, exact under a single backward Euler step",
		func() dynamo.System[scalar.Real] { return physics.NewLinearScalar[scalar.Real](4) },
	}
	r.models["springmass"] = modelEntry{
		"undamped oscillator, k=300 m=2",
		func() dynamo.System[scalar.Real] { return physics.NewSpringMass[scalar.Real](300, 2) },
	}
	r.models["damper"] = modelEntry{
		"stiff spring-mass-damper, k=1e10 b=1e8 m=2",
		func() dynamo.System[scalar.Real] { return physics.NewSpringMassDamper[scalar.Real](1e10, 1e8, 2) },
	}
	r.models["discontinuous"] = modelEntry{
		"stiff damper under a constant force that flips sign at t=1",
		func() dynamo.System[scalar.Real] {
			return physics.NewDiscontinuousSpringMassDamper[scalar.Real](1e10, 1e4, 2, 10)
		},
	}
	r.models["doublespring"] = modelEntry{
		"two masses joined by a stiff connecting spring",
		func() dynamo.System[scalar.Real] { return physics.NewStiffDoubleMassSpring[scalar.Real]() },
	}
	r.models["masschain"] = modelEntry{
		"six masses chained by stiff spring-dampers, 12 states",
		func() dynamo.System[scalar.Real] { return physics.NewMassChain[scalar.Real](6, 1e6, 10, 1) },
	}
	r.models["robertson"] = modelEntry{
		"three-species chemical kinetics, rate constants spanning nine decades",
		func() dynamo.System[scalar.Real] { return physics.NewRobertson[scalar.Real]() },
	}
	r.models["vanderpol"] = modelEntry{
		"van der Pol relaxation oscillator, mu=1000",
		func() dynamo.System[scalar.Real] { return physics.NewStiffVanDerPol[scalar.Real]() },
	}
	r.models["lorenz"] = modelEntry{
		"Lorenz attractor, sigma=10 rho=28 beta=8/3",
		func() dynamo.System[scalar.Real] { return physics.NewLorenz[scalar.Real]() },
	}
	r.models["rossler"] = modelEntry{
		"Rossler attractor, a=b=0.2 c=5.7",
		func() dynamo.System[scalar.Real] { return physics.NewRossler[scalar.Real]() },
	}
	r.models["duffing"] = modelEntry{
		"forced Duffing oscillator in the chaotic regime",
		func() dynamo.System[scalar.Real] { return physics.NewDuffing[scalar.Real]() },
	}
	r.models["doublewell"] = modelEntry{
		"particle in a double-well potential",
		func() dynamo.System[scalar.Real] { return physics.NewDoubleWell[scalar.Real]() },
	}

	return r
}

func (r *Registry) Get(name string) (dynamo.System[scalar.Real], error) {
	e, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return e.build(), nil
}

func (r *Registry) Brief(name string) (string, error) {
	e, ok := r.models[name]
	if !ok {
		return "", fmt.Errorf("unknown model: %s", name)
	}
	return e.brief, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
