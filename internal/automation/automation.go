// Package automation runs scripted sequences of integrations from a YAML
// scenario file, saving every run the same way a standalone run is saved.
package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/storage"
)

// RunSpec is one scenario entry, a full run configuration. Keys absent from
// the file keep the shared defaults, matching how standalone config files
// load.
type RunSpec struct {
	*config.Config
}

func (r *RunSpec) UnmarshalYAML(value *yaml.Node) error {
	cfg := config.DefaultConfig()
	if err := value.Decode(cfg); err != nil {
		return err
	}
	r.Config = cfg
	return nil
}

type Scenario struct {
	Name  string    `yaml:"name"`
	Brief string    `yaml:"brief,omitempty"`
	Runs  []RunSpec `yaml:"runs"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("scenario %s has no runs", path)
	}
	return &sc, nil
}

// StepReport is the outcome of one scenario run.
type StepReport struct {
	Model   string
	RunID   string
	Rows    int
	Elapsed time.Duration
	Stats   integrators.Statistics
}

// RunScenario executes the scenario's runs in order, stopping at the first
// failure. Reports for the completed runs are returned either way.
func RunScenario(ctx context.Context, sc *Scenario, reg *experiment.Registry, store *storage.Store) ([]StepReport, error) {
	reports := make([]StepReport, 0, len(sc.Runs))
	for i, spec := range sc.Runs {
		runner := experiment.NewRunner(spec.Config, reg)

		start := time.Now()
		res, err := runner.Run(ctx)
		if err != nil {
			return reports, fmt.Errorf("scenario run %d (%s): %w", i+1, spec.Model, err)
		}

		runID, err := store.Save(spec.Config, res.Stats, res.Times, res.States, res.Steps)
		if err != nil {
			return reports, fmt.Errorf("scenario run %d (%s): %w", i+1, spec.Model, err)
		}

		reports = append(reports, StepReport{
			Model:   spec.Model,
			RunID:   runID,
			Rows:    len(res.Times),
			Elapsed: time.Since(start),
			Stats:   res.Stats,
		})
	}
	return reports, nil
}
