// Package farfield holds the assembled far-field dataset: field columns on a
// regular (frequency, theta, phi) grid, plus the derived electric-field views.
package farfield

import (
	"fmt"
	"sort"
	"strings"
)

// Coordinate axis names.
const (
	Frequency = "Frequency"
	Theta     = "Theta"
	Phi       = "Phi"
)

// Dataset is a set of named columns sampled on a shared (frequency, theta,
// phi) grid. Frequencies are unique and ascending. A Dataset is immutable;
// accessors hand out copies so one value can be shared between callers.
type Dataset struct {
	frequencies []float64
	thetas      []float64
	phis        []float64
	columns     []string
	data        map[string]*Array
}

// New builds a Dataset and checks that every column matches the axes.
func New(frequencies, thetas, phis []float64, columns []string, data map[string]*Array) (*Dataset, error) {
	if !sort.Float64sAreSorted(frequencies) {
		return nil, fmt.Errorf("frequencies must be ascending")
	}
	for i := 1; i < len(frequencies); i++ {
		if frequencies[i] == frequencies[i-1] {
			return nil, fmt.Errorf("duplicate frequency %g", frequencies[i])
		}
	}
	if len(columns) != len(data) {
		return nil, fmt.Errorf("%d column names for %d arrays", len(columns), len(data))
	}
	for _, name := range columns {
		if name == Theta || name == Phi || name == Frequency {
			return nil, fmt.Errorf("coordinate %q cannot be a data column", name)
		}
		arr, ok := data[name]
		if !ok {
			return nil, fmt.Errorf("no array for column %q", name)
		}
		nf, nt, np := arr.Shape()
		if nf != len(frequencies) || nt != len(thetas) || np != len(phis) {
			return nil, fmt.Errorf("column %q has shape (%d, %d, %d), want (%d, %d, %d)",
				name, nf, nt, np, len(frequencies), len(thetas), len(phis))
		}
	}

	return &Dataset{
		frequencies: frequencies,
		thetas:      thetas,
		phis:        phis,
		columns:     columns,
		data:        data,
	}, nil
}

// Frequencies returns the frequency axis in Hz, ascending.
func (d *Dataset) Frequencies() []float64 { return copyFloats(d.frequencies) }

// Thetas returns the theta axis in degrees.
func (d *Dataset) Thetas() []float64 { return copyFloats(d.thetas) }

// Phis returns the phi axis in degrees.
func (d *Dataset) Phis() []float64 { return copyFloats(d.phis) }

// Columns returns the data column names in file order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether name is a data column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.data[name]
	return ok
}

// Shape returns the (frequency, theta, phi) extents shared by all columns.
func (d *Dataset) Shape() (int, int, int) {
	return len(d.frequencies), len(d.thetas), len(d.phis)
}

// Column returns the array for a data column.
func (d *Dataset) Column(name string) (*Array, error) {
	arr, ok := d.data[name]
	if !ok {
		return nil, &MissingFieldError{View: name, Missing: []string{name}}
	}
	return arr, nil
}

// Axis returns a copy of a coordinate axis by name. Quote decorations such
// as "Theta'" are ignored.
func (d *Dataset) Axis(name string) ([]float64, error) {
	switch strings.ReplaceAll(name, "'", "") {
	case Frequency:
		return d.Frequencies(), nil
	case Theta:
		return d.Thetas(), nil
	case Phi:
		return d.Phis(), nil
	}
	return nil, fmt.Errorf("%q is not a coordinate axis", name)
}

// Values returns every column stacked in Columns order, each laid out like
// Array.Values: the result is indexed by (column, frequency, theta, phi).
func (d *Dataset) Values() []float64 {
	nf, nt, np := d.Shape()
	plane := nf * nt * np
	out := make([]float64, len(d.columns)*plane)
	for c, name := range d.columns {
		copy(out[c*plane:(c+1)*plane], d.data[name].data)
	}
	return out
}

// FrequencyIndex returns the index of an exact frequency value.
func (d *Dataset) FrequencyIndex(freq float64) (int, bool) {
	return searchExact(d.frequencies, freq)
}

// ThetaIndex returns the index of an exact theta value.
func (d *Dataset) ThetaIndex(theta float64) (int, bool) {
	return searchExact(d.thetas, theta)
}

// PhiIndex returns the index of an exact phi value.
func (d *Dataset) PhiIndex(phi float64) (int, bool) {
	return searchExact(d.phis, phi)
}

// Value selects one sample by coordinate values rather than indices.
func (d *Dataset) Value(column string, freq, theta, phi float64) (float64, error) {
	arr, err := d.Column(column)
	if err != nil {
		return 0, err
	}
	f, ok := d.FrequencyIndex(freq)
	if !ok {
		return 0, fmt.Errorf("frequency %g: %w", freq, ErrCoordinateNotFound)
	}
	t, ok := d.ThetaIndex(theta)
	if !ok {
		return 0, fmt.Errorf("theta %g: %w", theta, ErrCoordinateNotFound)
	}
	p, ok := d.PhiIndex(phi)
	if !ok {
		return 0, fmt.Errorf("phi %g: %w", phi, ErrCoordinateNotFound)
	}
	return arr.At(f, t, p), nil
}

// searchExact returns the first index holding exactly v.
func searchExact(axis []float64, v float64) (int, bool) {
	for i, x := range axis {
		if x == v {
			return i, true
		}
	}
	return 0, false
}

func copyFloats(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
