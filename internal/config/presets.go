package config

import "sort"

// Presets are ready-made run configurations per model, keyed by model name
// then preset name. Step and accuracy choices mirror the regimes each model
// is interesting in.
var Presets = map[string]map[string]*Config{
	"springmass": {
		"tight": {
			Model: "springmass", Scheme: "forward", Reuse: true,
			MaxStep: 0.1, MinStep: 1e-6, Accuracy: 5e-5, Duration: 1.0,
			InitState: []float64{0.1, 0.01},
		},
		"loose": {
			Model: "springmass", Scheme: "forward", Reuse: true,
			MaxStep: 0.1, MinStep: 1e-6, Accuracy: 1e-2, Duration: 1.0,
			InitState: []float64{0.1, 0.01},
		},
	},
	"damper": {
		"stiff": {
			Model: "damper", Scheme: "forward", Reuse: true,
			MaxStep: 0.1, MinStep: 1e-6, Accuracy: 1e-6, Duration: 2.0,
			InitState: []float64{1, 0.1},
		},
		"exact-jacobian": {
			Model: "damper", Scheme: "automatic", Reuse: true,
			MaxStep: 0.1, MinStep: 1e-6, Accuracy: 1e-6, Duration: 2.0,
			InitState: []float64{1, 0.1},
		},
	},
	"discontinuous": {
		"settle": {
			Model: "discontinuous", Scheme: "forward", Reuse: true,
			MaxStep: 1e-3, MinStep: 1e-5, Accuracy: 0.1, Duration: 1.0,
			InitState: []float64{1e-8, 0},
		},
	},
	"doublespring": {
		"slowmode": {
			Model: "doublespring", Scheme: "forward", Reuse: true,
			MaxStep: 0.1, InitialStep: 0.1, Accuracy: 1e-5, Duration: 1.0,
		},
	},
	"robertson": {
		"classic": {
			Model: "robertson", Scheme: "forward", Reuse: true,
			MaxStep: 1e7, InitialStep: 1e-4, Accuracy: 5e-5, Duration: 1e11,
		},
	},
	"vanderpol": {
		"relaxation": {
			Model: "vanderpol", Scheme: "forward", Reuse: true,
			MaxStep: 1.0, Accuracy: 1e-4, Duration: 20.0,
		},
	},
	"lorenz": {
		"butterfly": {
			Model: "lorenz", Scheme: "forward", Reuse: true,
			MaxStep: 0.05, Accuracy: 1e-4, Duration: 20.0,
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names for a model, sorted for stable output.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetModels returns the models that ship presets, sorted.
func PresetModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
