package models

import (
	"time"
)

// DatasetRecord is a catalogued parse: the ordered input paths plus the
// coordinate summary of the resulting dataset. The dataset values themselves
// live in the parse cache and are rebuilt from Paths on demand.
type DatasetRecord struct {
	ID              string    `json:"id"`
	Paths           []string  `json:"paths"`
	Frequencies     []float64 `json:"frequencies"`
	Thetas          []float64 `json:"thetas"`
	Phis            []float64 `json:"phis"`
	Columns         []string  `json:"columns"`
	DuplicatePolicy string    `json:"duplicate_policy"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Shape returns (n_freq, n_theta, n_phi).
func (r *DatasetRecord) Shape() [3]int {
	return [3]int{len(r.Frequencies), len(r.Thetas), len(r.Phis)}
}

// DatasetSummary is the API view of a DatasetRecord.
type DatasetSummary struct {
	ID              string    `json:"id" doc:"Dataset unique identifier"`
	Paths           []string  `json:"paths" doc:"Input files in merge order"`
	Shape           [3]int    `json:"shape" doc:"Dimension sizes (frequency, theta, phi)"`
	Frequencies     []float64 `json:"frequencies" doc:"Frequencies in Hz, ascending"`
	Thetas          []float64 `json:"thetas" doc:"Theta samples in degrees, ascending"`
	Phis            []float64 `json:"phis" doc:"Phi samples in degrees, ascending"`
	Columns         []string  `json:"columns" doc:"Data column names"`
	DuplicatePolicy string    `json:"duplicate_policy" enum:"first,last" doc:"Which section won on duplicate frequencies"`
	CreatedAt       time.Time `json:"created_at" doc:"When the dataset was first loaded"`
	UpdatedAt       time.Time `json:"updated_at" doc:"When the dataset was last parsed"`
}

// NewDatasetSummary converts a record for the API.
func NewDatasetSummary(r *DatasetRecord) DatasetSummary {
	return DatasetSummary{
		ID:              r.ID,
		Paths:           r.Paths,
		Shape:           r.Shape(),
		Frequencies:     r.Frequencies,
		Thetas:          r.Thetas,
		Phis:            r.Phis,
		Columns:         r.Columns,
		DuplicatePolicy: r.DuplicatePolicy,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
