package farfield

import "fmt"

// Array is a dense float64 array indexed by (frequency, theta, phi).
type Array struct {
	shape [3]int
	data  []float64
}

// NewArray wraps data, laid out frequency-major then theta then phi. The
// array takes ownership of data.
func NewArray(nFreq, nTheta, nPhi int, data []float64) (*Array, error) {
	if nFreq < 0 || nTheta < 0 || nPhi < 0 {
		return nil, fmt.Errorf("negative array shape (%d, %d, %d)", nFreq, nTheta, nPhi)
	}
	if len(data) != nFreq*nTheta*nPhi {
		return nil, fmt.Errorf("array data length %d does not match shape (%d, %d, %d)", len(data), nFreq, nTheta, nPhi)
	}
	return &Array{shape: [3]int{nFreq, nTheta, nPhi}, data: data}, nil
}

// Shape returns the (frequency, theta, phi) extents.
func (a *Array) Shape() (int, int, int) {
	return a.shape[0], a.shape[1], a.shape[2]
}

// Len returns the total number of elements.
func (a *Array) Len() int {
	return len(a.data)
}

// At returns the element at (f, t, p). It panics on out-of-range indices,
// like slice indexing.
func (a *Array) At(f, t, p int) float64 {
	return a.data[a.offset(f, t, p)]
}

// Values returns a copy of the flat data.
func (a *Array) Values() []float64 {
	out := make([]float64, len(a.data))
	copy(out, a.data)
	return out
}

// Slice returns a copy of the (theta, phi) grid at frequency index f.
func (a *Array) Slice(f int) [][]float64 {
	out := make([][]float64, a.shape[1])
	for t := range out {
		start := a.offset(f, t, 0)
		out[t] = make([]float64, a.shape[2])
		copy(out[t], a.data[start:start+a.shape[2]])
	}
	return out
}

func (a *Array) offset(f, t, p int) int {
	if f < 0 || f >= a.shape[0] || t < 0 || t >= a.shape[1] || p < 0 || p >= a.shape[2] {
		panic(fmt.Sprintf("farfield: index (%d, %d, %d) out of range for shape %v", f, t, p, a.shape))
	}
	return (f*a.shape[1]+t)*a.shape[2] + p
}

// ComplexArray is the complex128 counterpart of Array, produced by the
// derived field views.
type ComplexArray struct {
	shape [3]int
	data  []complex128
}

func newComplexArray(shape [3]int) *ComplexArray {
	return &ComplexArray{shape: shape, data: make([]complex128, shape[0]*shape[1]*shape[2])}
}

// Shape returns the (frequency, theta, phi) extents.
func (c *ComplexArray) Shape() (int, int, int) {
	return c.shape[0], c.shape[1], c.shape[2]
}

// Len returns the total number of elements.
func (c *ComplexArray) Len() int {
	return len(c.data)
}

// At returns the element at (f, t, p).
func (c *ComplexArray) At(f, t, p int) complex128 {
	return c.data[c.offset(f, t, p)]
}

// Values returns a copy of the flat data.
func (c *ComplexArray) Values() []complex128 {
	out := make([]complex128, len(c.data))
	copy(out, c.data)
	return out
}

// Slice returns a copy of the (theta, phi) grid at frequency index f.
func (c *ComplexArray) Slice(f int) [][]complex128 {
	out := make([][]complex128, c.shape[1])
	for t := range out {
		start := c.offset(f, t, 0)
		out[t] = make([]complex128, c.shape[2])
		copy(out[t], c.data[start:start+c.shape[2]])
	}
	return out
}

func (c *ComplexArray) offset(f, t, p int) int {
	if f < 0 || f >= c.shape[0] || t < 0 || t >= c.shape[1] || p < 0 || p >= c.shape[2] {
		panic(fmt.Sprintf("farfield: index (%d, %d, %d) out of range for shape %v", f, t, p, c.shape))
	}
	return (f*c.shape[1]+t)*c.shape[2] + p
}
