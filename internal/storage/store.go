// Package storage persists integration runs: one directory per run holding
// metadata.json (the run configuration plus final integrator statistics) and
// states.csv with the trajectory and the step size that produced each row.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/integrators"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// WorkRecord mirrors one statistics bucket in serializable form.
type WorkRecord struct {
	NewtonIterations        int `json:"newton_iterations"`
	DerivativeEvals         int `json:"derivative_evals"`
	JacobianDerivativeEvals int `json:"jacobian_derivative_evals"`
	JacobianEvals           int `json:"jacobian_evals"`
	Factorizations          int `json:"factorizations"`
}

// StatsRecord is the JSON shape of integrators.Statistics. The
// smallest-adapted step stays NaN until error control shrinks a step, which
// JSON cannot carry, so the key is simply absent until then.
type StatsRecord struct {
	StepsTaken                    int        `json:"steps_taken"`
	SubstepFailures               int        `json:"substep_failures"`
	ShrinkagesFromSubstepFailures int        `json:"shrinkages_from_substep_failures"`
	ShrinkagesFromErrorControl    int        `json:"shrinkages_from_error_control"`
	PrevStepSize                  float64    `json:"prev_step_size"`
	LargestStepSize               float64    `json:"largest_step_size"`
	SmallestAdaptedStepSize       float64    `json:"smallest_adapted_step_size,omitempty"`
	Primary                       WorkRecord `json:"primary"`
	ErrorEstimator                WorkRecord `json:"error_estimator"`
}

func NewStatsRecord(st integrators.Statistics) StatsRecord {
	rec := StatsRecord{
		StepsTaken:                    st.StepsTaken,
		SubstepFailures:               st.SubstepFailures,
		ShrinkagesFromSubstepFailures: st.ShrinkagesFromSubstepFailures,
		ShrinkagesFromErrorControl:    st.ShrinkagesFromErrorControl,
		PrevStepSize:                  st.PrevStepSize,
		LargestStepSize:               st.LargestStepSize,
		Primary:                       newWorkRecord(st.Primary),
		ErrorEstimator:                newWorkRecord(st.ErrorEstimator),
	}
	if !math.IsNaN(st.SmallestAdaptedStepSize) {
		rec.SmallestAdaptedStepSize = st.SmallestAdaptedStepSize
	}
	return rec
}

func newWorkRecord(w integrators.Work) WorkRecord {
	return WorkRecord{
		NewtonIterations:        w.NewtonIterations,
		DerivativeEvals:         w.DerivativeEvals,
		JacobianDerivativeEvals: w.JacobianDerivativeEvals,
		JacobianEvals:           w.JacobianEvals,
		Factorizations:          w.Factorizations,
	}
}

type RunMetadata struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Config     config.Config `json:"config"`
	Statistics StatsRecord   `json:"statistics"`
}

// Save writes one run directory named <model>_<unix>. Times must be strictly
// increasing and each states row must pair with a time and a step size.
func (s *Store) Save(cfg *config.Config, stats integrators.Statistics, times []float64, states [][]float64, steps []float64) (string, error) {
	if len(times) != len(states) || len(times) != len(steps) {
		return "", fmt.Errorf("storage: %d times, %d states, %d steps", len(times), len(states), len(steps))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return "", fmt.Errorf("storage: times not strictly increasing at row %d", i)
		}
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}

	// Back-to-back runs of one model can land on the same second; suffix
	// until the directory is fresh.
	stamp := time.Now().Unix()
	runID := fmt.Sprintf("%s_%d", cfg.Model, stamp)
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d_%d", cfg.Model, stamp, n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  time.Now(),
		Config:     *cfg,
		Statistics: NewStatsRecord(stats),
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if len(states) == 0 {
		return runID, nil
	}

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	header = append(header, "h")
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i, state := range states {
		// Step sizes span many decades; 'g' at full precision round-trips.
		row := make([]string, 0, len(state)+2)
		row = append(row, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, val := range state {
			row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
		}
		row = append(row, strconv.FormatFloat(steps[i], 'g', -1, 64))
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// List returns metadata for every readable run under the base directory,
// skipping entries that are not runs.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates reads back a trajectory: per-row state vectors, times and step
// sizes, in the order they were written.
func (s *Store) LoadStates(runID string) (states [][]float64, times, steps []float64, err error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, []float64{}, nil
	}

	times = make([]float64, 0, len(records)-1)
	states = make([][]float64, 0, len(records)-1)
	steps = make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		h, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, len(record)-2)
		for _, field := range record[1 : len(record)-1] {
			val, err := strconv.ParseFloat(field, 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}

		times = append(times, t)
		steps = append(steps, h)
		states = append(states, state)
	}

	return states, times, steps, nil
}
