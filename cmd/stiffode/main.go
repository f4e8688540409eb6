package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/stiffode/internal/analysis"
	"github.com/san-kum/stiffode/internal/automation"
	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/export"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/jacobian"
	"github.com/san-kum/stiffode/internal/metrics"
	"github.com/san-kum/stiffode/internal/scalar"
	"github.com/san-kum/stiffode/internal/storage"
	"github.com/san-kum/stiffode/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	presetName string

	schemeName string
	reuse      bool
	fixedStep  bool
	throwOnMin bool
	maxStep    float64
	minStep    float64
	initStep   float64
	accuracy   float64
	duration   float64
	initState  []float64
	samples    int

	phaseFlag bool
	xAxis     int
	yAxis     int
	svgOut    string

	presetOut string
	jacStep   float64
	sepStep   float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stiffode",
		Short: "implicit integration lab for stiff dynamical systems",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".stiffode", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModel,
	}
	addEngineFlags(runCmd)
	runCmd.Flags().IntVar(&samples, "samples", 0, "trajectory rows to record")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&phaseFlag, "phase", false, "phase-plane scatter instead of time series")
	plotCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for the phase x-axis")
	plotCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for the phase y-axis")
	plotCmd.Flags().StringVar(&svgOut, "svg", "", "write the chart as SVG to this file")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write a run as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "time every scheme and reuse policy on one model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchModel,
	}
	addEngineFlags(benchCmd)

	compareCmd := &cobra.Command{
		Use:   "compare [model]",
		Short: "race the implicit engine against an explicit stepper",
		Args:  cobra.MaximumNArgs(1),
		RunE:  compareSteppers,
	}
	addEngineFlags(compareCmd)

	jacobianCmd := &cobra.Command{
		Use:   "jacobian [model]",
		Short: "show df/dx, stiffness ratio and iteration-matrix conditioning",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showJacobian,
	}
	addEngineFlags(jacobianCmd)
	jacobianCmd.Flags().Float64Var(&jacStep, "step", 0, "step size for the iteration matrix")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [model]",
		Short: "estimate Lyapunov exponents by trajectory separation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeModel,
	}
	addEngineFlags(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&sepStep, "dt", 1e-3, "explicit step size for the separation run")

	presetsCmd := &cobra.Command{
		Use:   "presets [model] [preset]",
		Short: "list ready-made configurations",
		Args:  cobra.MaximumNArgs(2),
		RunE:  showPresets,
	}
	presetsCmd.Flags().StringVar(&presetOut, "out", "", "write the selected preset to a config file")

	watchCmd := &cobra.Command{
		Use:   "watch [model]",
		Short: "watch an integration live",
		Args:  cobra.MaximumNArgs(1),
		RunE:  watchModel,
	}
	addEngineFlags(watchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [scenario.yaml]",
		Short: "run a scripted sequence of integrations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list the registered models",
		RunE:  listModels,
	}

	for _, c := range []*cobra.Command{runCmd, benchCmd, compareCmd, jacobianCmd, analyzeCmd, watchCmd} {
		c.MarkFlagsMutuallyExclusive("config", "preset")
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, benchCmd, compareCmd, jacobianCmd, analyzeCmd, presetsCmd, watchCmd, modelsCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml)")
	f.StringVar(&presetName, "preset", "", "preset name")
	f.StringVar(&schemeName, "scheme", "", "jacobian scheme: forward, central, automatic")
	f.BoolVar(&reuse, "reuse", true, "reuse jacobians across steps")
	f.BoolVar(&fixedStep, "fixed", false, "fixed-step mode")
	f.BoolVar(&throwOnMin, "throw-on-min", false, "fail when error control wants a step below the minimum")
	f.Float64Var(&maxStep, "max-step", 0, "maximum step size")
	f.Float64Var(&minStep, "min-step", 0, "requested minimum step size")
	f.Float64Var(&initStep, "init-step", 0, "initial step size target")
	f.Float64Var(&accuracy, "accuracy", 0, "target accuracy")
	f.Float64Var(&duration, "time", 0, "integration horizon")
	f.Float64SliceVar(&initState, "state", nil, "initial state, comma separated")
}

// buildConfig layers defaults, then a config file or preset, then explicit
// CLI flags. The positional model argument wins over both file and default.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Model = args[0]
	}
	if presetName != "" {
		p := config.GetPreset(cfg.Model, presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for model %q (available: %v)",
				presetName, cfg.Model, config.ListPresets(cfg.Model))
		}
		c := *p
		c.InitState = append([]float64(nil), p.InitState...)
		cfg = &c
	}

	f := cmd.Flags()
	if f.Changed("scheme") {
		cfg.Scheme = schemeName
	}
	if f.Changed("reuse") {
		cfg.Reuse = reuse
	}
	if f.Changed("fixed") {
		cfg.FixedStep = fixedStep
	}
	if f.Changed("throw-on-min") {
		cfg.ThrowOnMin = throwOnMin
	}
	if f.Changed("max-step") {
		cfg.MaxStep = maxStep
	}
	if f.Changed("min-step") {
		cfg.MinStep = minStep
	}
	if f.Changed("init-step") {
		cfg.InitialStep = initStep
	}
	if f.Changed("accuracy") {
		cfg.Accuracy = accuracy
	}
	if f.Changed("time") {
		cfg.Duration = duration
	}
	if f.Changed("state") {
		cfg.InitState = initState
	}
	return cfg, nil
}

type sampleLogger struct{}

func (sampleLogger) OnStep(x dynamo.Vector[scalar.Real], t, h float64) {
	slog.Debug("sample", "t", t, "h", h, "x0", x[0].Float64())
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	runner := experiment.NewRunner(cfg, reg)
	if samples > 0 {
		runner.Samples = samples
	}
	runner.Observe(sampleLogger{})

	// Conservative models get an energy-drift readout for free.
	var drift *metrics.EnergyDrift
	if sys, err := reg.Get(cfg.Model); err == nil {
		if ham, ok := sys.(dynamo.Hamiltonian[scalar.Real]); ok {
			drift = metrics.NewEnergyDrift(ham)
			runner.Observe(drift)
		}
	}

	slog.Info("integrating",
		"model", cfg.Model, "scheme", cfg.Scheme, "accuracy", cfg.Accuracy, "horizon", cfg.Duration)
	start := time.Now()
	res, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, res.Stats, res.Times, res.States, res.Steps)
	if err != nil {
		return err
	}
	slog.Info("run complete", "id", runID, "elapsed", elapsed.Round(time.Microsecond), "rows", len(res.Times))
	if drift != nil {
		slog.Info("energy drift", "initial", drift.Initial(), "final", drift.Current(), "max_relative", drift.Max())
	}

	printStats(res.Stats)
	return nil
}

func printStats(stats integrators.Statistics) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPS\tNEWTON\tF EVALS\tJACOBIANS\tFACTORIZATIONS\tSHRINK(ERR)\tSHRINK(FAIL)\tLARGEST H\tSMALLEST ADAPTED")
	smallest := "-"
	if !math.IsNaN(stats.SmallestAdaptedStepSize) {
		smallest = fmt.Sprintf("%.3g", stats.SmallestAdaptedStepSize)
	}
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.3g\t%s\n",
		stats.StepsTaken,
		stats.TotalNewtonIterations(),
		stats.TotalDerivativeEvals(),
		stats.Primary.JacobianEvals,
		stats.Primary.Factorizations,
		stats.ShrinkagesFromErrorControl,
		stats.ShrinkagesFromSubstepFailures,
		stats.LargestStepSize,
		smallest)
	w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tWHEN\tSCHEME\tACCURACY\tHORIZON\tSTEPS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3g\t%.3g\t%d\n",
			run.ID,
			run.Config.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Scheme,
			run.Config.Accuracy,
			run.Config.Duration,
			run.Statistics.StepsTaken)
	}
	return w.Flush()
}

func listModels(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range reg.Names() {
		brief, err := reg.Brief(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, brief)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, steps, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\nmodel: %s\nrows: %d\n\n", meta.ID, meta.Config.Model, len(states))

	if phaseFlag {
		dim := len(states[0])
		if xAxis < 0 || yAxis < 0 || xAxis >= dim || yAxis >= dim {
			return fmt.Errorf("axes (%d, %d) out of range for %d states", xAxis, yAxis, dim)
		}
		xs := make([]float64, len(states))
		ys := make([]float64, len(states))
		for i, s := range states {
			xs[i], ys[i] = s[xAxis], s[yAxis]
		}
		if svgOut != "" {
			return writeSVG(svgOut, export.PhaseSVG(xs, ys, 800, 600))
		}
		fmt.Println(analysis.PhasePortraitToASCII(analysis.PortraitFromSeries(xs, ys), 80, 24))
		return nil
	}
	if svgOut != "" {
		return writeSVG(svgOut, export.TimeSeriesSVG(times, states, 800, 400))
	}

	vars := min(len(states[0]), 4)
	for v := 0; v < vars; v++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][v]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("x%d to t=%.4g", v, times[len(times)-1])))
		fmt.Println(graph)
		fmt.Println()
	}

	logH := make([]float64, 0, len(steps))
	for _, h := range steps {
		if h > 0 {
			logH = append(logH, math.Log10(h))
		}
	}
	if len(logH) > 1 {
		graph := asciigraph.Plot(logH,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption("log10 step size"))
		fmt.Println(graph)
	}
	return nil
}

func writeSVG(path, svg string) error {
	if svg == "" {
		return fmt.Errorf("not enough data for an SVG chart")
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	slog.Info("svg written", "path", path)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	slog.Info("scenario starting", "name", sc.Name, "runs", len(sc.Runs))
	reports, runErr := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st)

	if len(reports) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tMODEL\tID\tROWS\tSTEPS\tNEWTON\tWALL")
		for i, rep := range reports {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%v\n",
				i+1, rep.Model, rep.RunID, rep.Rows,
				rep.Stats.StepsTaken,
				rep.Stats.TotalNewtonIterations(),
				rep.Elapsed.Round(time.Microsecond))
		}
		w.Flush()
	}
	return runErr
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, steps, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, times, states, steps)
}

func benchModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s over %.4g time units\n\n", cfg.Model, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tREUSE\tSTEPS\tNEWTON\tF EVALS\tJACOBIANS\tFACTORIZATIONS\tWALL")

	reg := experiment.NewRegistry()
	for _, scheme := range []string{"forward", "central", "automatic"} {
		for _, reusePolicy := range []bool{true, false} {
			c := *cfg
			c.InitState = append([]float64(nil), cfg.InitState...)
			c.Scheme = scheme
			c.Reuse = reusePolicy

			eng, err := experiment.BuildEngine(&c, reg)
			if err != nil {
				return err
			}

			start := time.Now()
			if err := eng.IntegrateWithMultipleStepsToTime(c.Duration); err != nil {
				fmt.Fprintf(w, "%s\t%t\t%v\n", scheme, reusePolicy, err)
				continue
			}
			elapsed := time.Since(start)

			st := eng.Statistics()
			fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%d\t%d\t%d\t%v\n",
				scheme, reusePolicy,
				st.StepsTaken,
				st.TotalNewtonIterations(),
				st.TotalDerivativeEvals(),
				st.Primary.JacobianEvals,
				st.Primary.Factorizations,
				elapsed.Round(time.Microsecond))
		}
	}
	return w.Flush()
}

const explicitAttemptBudget = 2_000_000

type raceOutcome struct {
	steps    int
	attempts int
	fEvals   int
	t        float64
	state    dynamo.Vector[scalar.Real]
	gaveUp   bool
}

// raceExplicit drives the Dormand-Prince pair over the horizon with
// reject-and-retry stepping. Seven derivative evaluations per attempt.
func raceExplicit(sys dynamo.System[scalar.Real], x0 dynamo.Vector[scalar.Real], horizon, hMax, tol float64) raceOutcome {
	const hFloor = 1e-14
	rk := integrators.NewRK45[scalar.Real]()

	out := raceOutcome{state: x0.Clone()}
	h := math.Min(hMax, horizon)
	for out.t < horizon {
		if out.attempts >= explicitAttemptBudget {
			out.gaveUp = true
			break
		}
		h = math.Min(h, horizon-out.t)

		next, hNext := rk.StepAdaptive(sys, out.state, out.t, h, tol)
		out.attempts++

		if !next.IsValid() {
			if h <= hFloor {
				out.gaveUp = true
				break
			}
			h = math.Max(h*0.2, hFloor)
			continue
		}
		if hNext < h && h > hFloor {
			h = math.Max(hNext, hFloor)
			continue
		}

		out.state = next
		out.t += h
		out.steps++
		h = math.Min(math.Max(hNext, hFloor), hMax)
	}
	out.fEvals = out.attempts * 7
	return out
}

func compareSteppers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	eng, err := experiment.BuildEngine(cfg, reg)
	if err != nil {
		return err
	}
	x0 := eng.Context().State().Clone()

	start := time.Now()
	if err := eng.IntegrateWithMultipleStepsToTime(cfg.Duration); err != nil {
		return err
	}
	implicitWall := time.Since(start)
	ist := eng.Statistics()

	sys, err := reg.Get(cfg.Model)
	if err != nil {
		return err
	}
	tol := cfg.Accuracy
	if tol <= 0 {
		tol = config.DefaultAccuracy
	}
	hMax := cfg.MaxStep
	if hMax <= 0 {
		hMax = config.DefaultMaxStep
	}

	start = time.Now()
	exp := raceExplicit(sys, x0, cfg.Duration, hMax, tol)
	explicitWall := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEPPER\tSTEPS\tF EVALS\tWALL\tFINAL T")
	fmt.Fprintf(w, "implicit euler\t%d\t%d\t%v\t%.6g\n",
		ist.StepsTaken, ist.TotalDerivativeEvals(), implicitWall.Round(time.Microsecond), eng.Context().Time())
	finalT := fmt.Sprintf("%.6g", exp.t)
	if exp.gaveUp {
		finalT = fmt.Sprintf("gave up at %.6g", exp.t)
	}
	fmt.Fprintf(w, "dormand-prince\t%d\t%d\t%v\t%s\n",
		exp.steps, exp.fEvals, explicitWall.Round(time.Microsecond), finalT)
	if err := w.Flush(); err != nil {
		return err
	}

	if !exp.gaveUp {
		fmt.Printf("\nfinal state disagreement: %.3g\n", eng.Context().State().Sub(exp.state).Norm())
	}
	return nil
}

func showJacobian(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	sys, err := reg.Get(cfg.Model)
	if err != nil {
		return err
	}
	x0, err := experiment.InitialState(sys, cfg)
	if err != nil {
		return err
	}

	h := jacStep
	if h == 0 {
		h = cfg.MaxStep
	}
	if h == 0 {
		h = config.DefaultMaxStep
	}

	fmt.Printf("model: %s  state: %v\n\n", cfg.Model, x0.Float64s())

	for _, name := range []string{"forward", "central", "automatic"} {
		scheme, err := jacobian.ParseScheme(name)
		if err != nil {
			return err
		}
		mgr := jacobian.NewManager(sys)
		mgr.SetScheme(scheme)

		var costs jacobian.Costs
		jac, err := mgr.Compute(x0, 0, &costs)
		if err != nil {
			fmt.Printf("%s: %v\n\n", name, err)
			continue
		}

		fmt.Printf("%s (%d derivative evals):\n", name, costs.DerivativeEvals)
		fmt.Printf("  %v\n", mat.Formatted(jac.Float64Mat(), mat.Prefix("  "), mat.Squeeze()))

		if ratio, err := analysis.StiffnessRatio(jac.Float64Mat()); err != nil {
			fmt.Printf("  stiffness ratio: %v\n", err)
		} else {
			fmt.Printf("  stiffness ratio: %.4g\n", ratio)
		}
		cond := analysis.ConditionNumber(jacobian.NewIterationMatrix(jac, h).Float64Mat())
		fmt.Printf("  cond(I - h*J) at h=%.3g: %.4g\n\n", h, cond)
	}
	return nil
}

func analyzeModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	reg := experiment.NewRegistry()

	sys, err := reg.Get(cfg.Model)
	if err != nil {
		return err
	}
	x0, err := experiment.InitialState(sys, cfg)
	if err != nil {
		return err
	}

	const perturbation = 1e-8
	rk := integrators.NewRK4[scalar.Real]()

	fmt.Printf("model: %s  horizon: %.4g  dt: %.3g\n\n", cfg.Model, cfg.Duration, sepStep)

	largest := analysis.LyapunovExponent(sys, rk, x0, sepStep, cfg.Duration, perturbation)
	spectrum := analysis.LyapunovSpectrum(sys, rk, x0, sepStep, cfg.Duration, perturbation)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "largest exponent\t%.4g\n", largest)
	for i, lambda := range spectrum {
		fmt.Fprintf(w, "direction x%d\t%.4g\n", i, lambda)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	switch {
	case largest > 1e-3:
		fmt.Println("\nchaotic: nearby trajectories diverge")
	case largest < -1e-3:
		fmt.Println("\ncontracting: nearby trajectories converge")
	default:
		fmt.Println("\nmarginal: no clear divergence at this horizon")
	}
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		fmt.Println("models with presets:")
		for _, model := range config.PresetModels() {
			fmt.Printf("  %-14s %v\n", model, config.ListPresets(model))
		}
		return nil

	case 1:
		model := args[0]
		names := config.ListPresets(model)
		if len(names) == 0 {
			return fmt.Errorf("no presets for model: %s", model)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PRESET\tSCHEME\tMAX STEP\tACCURACY\tHORIZON")
		for _, name := range names {
			p := config.GetPreset(model, name)
			fmt.Fprintf(w, "%s\t%s\t%.3g\t%.3g\t%.3g\n", name, p.Scheme, p.MaxStep, p.Accuracy, p.Duration)
		}
		return w.Flush()
	}

	p := config.GetPreset(args[0], args[1])
	if p == nil {
		return fmt.Errorf("unknown preset %q for model %q (available: %v)",
			args[1], args[0], config.ListPresets(args[0]))
	}
	if presetOut != "" {
		if err := config.Save(presetOut, p); err != nil {
			return err
		}
		slog.Info("preset written", "path", presetOut)
		return nil
	}
	out, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func watchModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	m, err := viz.NewModel(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}
