package storage

import (
	"encoding/json"
	"io"
)

// ExportData bundles a run's metadata with its full trajectory for
// machine-readable export.
type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
	Steps  []float64   `json:"steps"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, times []float64, states [][]float64, steps []float64) error {
	data := ExportData{
		Meta:   *meta,
		Times:  times,
		States: states,
		Steps:  steps,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
