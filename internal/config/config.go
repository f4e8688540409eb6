// Package config carries YAML run configuration for the CLI: which model to
// integrate, how the integrator is set up, and how long to run. Zero values
// mean "leave the integrator default alone"; validation belongs to the
// integrator's Initialize.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel    = "damper"
	DefaultScheme   = "forward"
	DefaultMaxStep  = 0.1
	DefaultAccuracy = 1e-4
	DefaultDuration = 2.0
)

type Config struct {
	Model       string    `yaml:"model" json:"model"`
	Scheme      string    `yaml:"scheme" json:"scheme"`
	Reuse       bool      `yaml:"reuse" json:"reuse"`
	FixedStep   bool      `yaml:"fixed_step" json:"fixed_step"`
	ThrowOnMin  bool      `yaml:"throw_on_min_step" json:"throw_on_min_step"`
	MaxStep     float64   `yaml:"max_step" json:"max_step"`
	MinStep     float64   `yaml:"min_step" json:"min_step"`
	InitialStep float64   `yaml:"initial_step" json:"initial_step"`
	Accuracy    float64   `yaml:"accuracy" json:"accuracy"`
	Duration    float64   `yaml:"duration" json:"duration"`
	InitState   []float64 `yaml:"init_state" json:"init_state,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    DefaultModel,
		Scheme:   DefaultScheme,
		Reuse:    true,
		MaxStep:  DefaultMaxStep,
		Accuracy: DefaultAccuracy,
		Duration: DefaultDuration,
	}
}

// Load reads a YAML config. Keys absent from the file keep their defaults,
// so partial configs are fine.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
