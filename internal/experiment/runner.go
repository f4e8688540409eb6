package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/scalar"
)

const defaultSamples = 200

// Result is one recorded integration: a row per sample window plus the final
// statistics. Steps[i] is the last committed step size when row i was taken,
// zero for the initial-condition row.
type Result struct {
	Model  string
	Times  []float64
	States [][]float64
	Steps  []float64
	Stats  integrators.Statistics
}

// Runner drives one configured integration and records its trajectory.
type Runner struct {
	// Samples is the number of windows the horizon is split into; one row
	// is recorded as each window closes, plus one for the initial state.
	Samples int

	cfg       *config.Config
	reg       *Registry
	observers []dynamo.Observer[scalar.Real]
}

func NewRunner(cfg *config.Config, reg *Registry) *Runner {
	return &Runner{Samples: defaultSamples, cfg: cfg, reg: reg}
}

func (r *Runner) Observe(o dynamo.Observer[scalar.Real]) {
	r.observers = append(r.observers, o)
}

// InitialState resolves the starting vector for a run: init_state when the
// config carries one, the model's own default otherwise.
func InitialState(sys dynamo.System[scalar.Real], cfg *config.Config) (dynamo.Vector[scalar.Real], error) {
	if len(cfg.InitState) > 0 {
		if len(cfg.InitState) != sys.StateDim() {
			return nil, fmt.Errorf("%w: model %q has %d states, init_state has %d",
				dynamo.ErrDimensionMismatch, cfg.Model, sys.StateDim(), len(cfg.InitState))
		}
		return dynamo.RealVector(cfg.InitState), nil
	}
	if ds, ok := sys.(interface {
		DefaultState() dynamo.Vector[scalar.Real]
	}); ok {
		return ds.DefaultState(), nil
	}
	return nil, fmt.Errorf("model %q has no default state; set init_state", cfg.Model)
}

// BuildEngine assembles an initialized implicit integrator from a config:
// model from the registry, initial state from init_state or the model
// default, then the step policy and Jacobian knobs. Zero-valued config
// fields leave the engine defaults alone; Initialize owns validation.
func BuildEngine(cfg *config.Config, reg *Registry) (*integrators.ImplicitEuler[scalar.Real], error) {
	sys, err := reg.Get(cfg.Model)
	if err != nil {
		return nil, err
	}
	scheme, err := jacobian.ParseScheme(cfg.Scheme)
	if err != nil {
		return nil, err
	}
	x0, err := InitialState(sys, cfg)
	if err != nil {
		return nil, err
	}

	eng := integrators.NewImplicitEuler(sys, dynamo.NewContext(x0))
	if cfg.MaxStep != 0 {
		eng.SetMaxStepSize(cfg.MaxStep)
	}
	if cfg.MinStep != 0 {
		eng.SetRequestedMinStepSize(cfg.MinStep)
	}
	if cfg.InitialStep != 0 {
		eng.RequestInitialStepSizeTarget(cfg.InitialStep)
	}
	if cfg.Accuracy != 0 {
		eng.SetTargetAccuracy(cfg.Accuracy)
	}
	eng.SetFixedStepMode(cfg.FixedStep)
	eng.SetThrowOnMinStepViolation(cfg.ThrowOnMin)
	eng.SetScheme(scheme)
	eng.SetReuse(cfg.Reuse)

	if err := eng.Initialize(); err != nil {
		return nil, err
	}
	return eng, nil
}

// Run integrates the configured model over its horizon. Cancellation is
// checked between sample windows, not inside one.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	eng, err := BuildEngine(r.cfg, r.reg)
	if err != nil {
		return nil, err
	}

	duration := r.cfg.Duration
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %g", duration)
	}
	samples := r.Samples
	if samples < 1 {
		samples = 1
	}

	ec := eng.Context()
	t0 := ec.Time()

	res := &Result{Model: r.cfg.Model}
	record := func() {
		t := ec.Time()
		h := eng.Statistics().PrevStepSize
		res.Times = append(res.Times, t)
		res.States = append(res.States, ec.State().Float64s())
		res.Steps = append(res.Steps, h)
		for _, o := range r.observers {
			o.OnStep(ec.State(), t, h)
		}
	}
	record()

	for i := 1; i <= samples; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		target := t0 + duration*float64(i)/float64(samples)
		if err := eng.IntegrateWithMultipleStepsToTime(target); err != nil {
			return nil, err
		}
		record()
	}

	res.Stats = eng.Statistics()
	return res, nil
}
