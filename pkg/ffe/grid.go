package ffe

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// FlatteningOrder is the order in which the exporter serialised the 2-D
// angular grid into rows.
type FlatteningOrder int

const (
	// PhiFastest: rows walk phi within each theta (theta-major).
	PhiFastest FlatteningOrder = iota
	// ThetaFastest: rows walk theta within each phi (phi-major).
	ThetaFastest
)

func (o FlatteningOrder) String() string {
	switch o {
	case PhiFastest:
		return "phi-fastest"
	case ThetaFastest:
		return "theta-fastest"
	}
	return fmt.Sprintf("FlatteningOrder(%d)", int(o))
}

// rowIndex maps grid position (theta i, phi j) to the source row.
func (o FlatteningOrder) rowIndex(i, j, nTheta, nPhi int) int {
	if o == ThetaFastest {
		return j*nTheta + i
	}
	return i*nPhi + j
}

// flatteningCandidates are tried in order by AssembleGrid.
var flatteningCandidates = []FlatteningOrder{PhiFastest, ThetaFastest}

// AngularGrid is the set of unique, ascending coordinate values of a table.
type AngularGrid struct {
	Thetas []float64
	Phis   []float64
}

// Size returns the number of grid points.
func (g AngularGrid) Size() int {
	return len(g.Thetas) * len(g.Phis)
}

// Equal reports whether both grids have identical axes.
func (g AngularGrid) Equal(o AngularGrid) bool {
	return floats.Equal(g.Thetas, o.Thetas) && floats.Equal(g.Phis, o.Phis)
}

// GridSlice is one frequency reshaped onto its angular grid. Every column in
// Data has n_theta*n_phi values laid out theta-major.
type GridSlice struct {
	Path      string
	Section   int
	Frequency float64
	Grid      AngularGrid
	Order     FlatteningOrder
	Columns   []string
	Data      map[string][]float64
}

// AssembleGrid infers the angular grid of a normalised table, works out the
// flattening order and reshapes every data column onto the grid.
func AssembleGrid(t *FrequencyTable, coords CoordinateColumns) (*GridSlice, error) {
	thetaCol, phiCol := t.Column(coords.Theta), t.Column(coords.Phi)
	if floats.HasNaN(thetaCol) || floats.HasNaN(phiCol) {
		return nil, newFormatError(StageGrid, t.Section, ErrIrregularGrid, "NaN coordinate")
	}

	grid := AngularGrid{Thetas: uniqueSorted(thetaCol), Phis: uniqueSorted(phiCol)}
	nTheta, nPhi, rows := len(grid.Thetas), len(grid.Phis), t.NumRows()
	if grid.Size() != rows {
		return nil, newFormatError(StageGrid, t.Section, ErrIrregularGrid,
			fmt.Sprintf("%d thetas x %d phis != %d rows", nTheta, nPhi, rows))
	}
	if (t.DeclaredThetas > 0 && t.DeclaredThetas != nTheta) || (t.DeclaredPhis > 0 && t.DeclaredPhis != nPhi) {
		return nil, newFormatError(StageGrid, t.Section, ErrIrregularGrid,
			fmt.Sprintf("header declares %d thetas x %d phis, data has %d x %d", t.DeclaredThetas, t.DeclaredPhis, nTheta, nPhi))
	}

	order, ok := inferOrder(grid, thetaCol, phiCol)
	if !ok {
		return nil, newFormatError(StageGrid, t.Section, ErrUnresolvedOrder, "")
	}

	slice := &GridSlice{
		Section:   t.Section,
		Frequency: t.Frequency,
		Grid:      grid,
		Order:     order,
		Data:      make(map[string][]float64, len(t.Columns)-2),
	}
	for j, name := range t.Columns {
		if j == coords.Theta || j == coords.Phi {
			continue
		}
		slice.Columns = append(slice.Columns, name)
		slice.Data[name] = reshape(t, j, order, nTheta, nPhi)
	}
	return slice, nil
}

func inferOrder(grid AngularGrid, thetaCol, phiCol []float64) (FlatteningOrder, bool) {
	for _, order := range flatteningCandidates {
		if orderMatches(order, grid, thetaCol, phiCol) {
			return order, true
		}
	}
	return 0, false
}

// orderMatches checks a candidate order against the first theta slice and
// the first phi slice only: n_theta + n_phi comparisons.
func orderMatches(order FlatteningOrder, grid AngularGrid, thetaCol, phiCol []float64) bool {
	nTheta, nPhi := len(grid.Thetas), len(grid.Phis)

	thetas := make([]float64, nTheta)
	for i := range thetas {
		thetas[i] = thetaCol[order.rowIndex(i, 0, nTheta, nPhi)]
	}
	phis := make([]float64, nPhi)
	for j := range phis {
		phis[j] = phiCol[order.rowIndex(0, j, nTheta, nPhi)]
	}
	return floats.Equal(thetas, grid.Thetas) && floats.Equal(phis, grid.Phis)
}

func reshape(t *FrequencyTable, col int, order FlatteningOrder, nTheta, nPhi int) []float64 {
	out := make([]float64, nTheta*nPhi)
	for i := 0; i < nTheta; i++ {
		for j := 0; j < nPhi; j++ {
			out[i*nPhi+j] = t.Row(order.rowIndex(i, j, nTheta, nPhi))[col]
		}
	}
	return out
}

func uniqueSorted(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var out []float64
	for _, v := range sorted {
		if len(out) == 0 || v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}
