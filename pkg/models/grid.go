package models

// ComplexGrid is a (theta, phi) grid of complex samples split into real and
// imaginary parts, since JSON has no complex type.
type ComplexGrid struct {
	Real [][]float64 `json:"real" doc:"Real parts indexed [theta][phi]"`
	Imag [][]float64 `json:"imag" doc:"Imaginary parts indexed [theta][phi]"`
}

// NewComplexGrid splits values into a ComplexGrid.
func NewComplexGrid(values [][]complex128) ComplexGrid {
	g := ComplexGrid{
		Real: make([][]float64, len(values)),
		Imag: make([][]float64, len(values)),
	}
	for i, row := range values {
		g.Real[i] = make([]float64, len(row))
		g.Imag[i] = make([]float64, len(row))
		for j, v := range row {
			g.Real[i][j] = real(v)
			g.Imag[i][j] = imag(v)
		}
	}
	return g
}
