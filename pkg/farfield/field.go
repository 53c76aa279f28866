package farfield

import "math"

// Field component names used by the derived views.
const (
	Etheta = "Etheta"
	Ephi   = "Ephi"
)

// RealColumn and ImagColumn give the column names holding the real and
// imaginary parts of a component, e.g. "Re(Etheta)".
func RealColumn(component string) string { return "Re(" + component + ")" }
func ImagColumn(component string) string { return "Im(" + component + ")" }

// ElectricField holds the complex spherical field components.
type ElectricField struct {
	Etheta *ComplexArray
	Ephi   *ComplexArray
}

// CartesianField holds the complex Cartesian field components.
type CartesianField struct {
	Ex *ComplexArray
	Ey *ComplexArray
	Ez *ComplexArray
}

// ComplexColumn combines Re(component) and Im(component) into one complex
// array. It is recomputed on every call.
func (d *Dataset) ComplexColumn(component string) (*ComplexArray, error) {
	re, im := RealColumn(component), ImagColumn(component)
	var missing []string
	for _, name := range []string{re, im} {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{View: component, Missing: missing}
	}

	reArr, imArr := d.data[re], d.data[im]
	out := newComplexArray(reArr.shape)
	for i := range out.data {
		out.data[i] = complex(reArr.data[i], imArr.data[i])
	}
	return out, nil
}

// ElectricField derives Etheta and Ephi from their Re/Im column pairs.
func (d *Dataset) ElectricField() (*ElectricField, error) {
	var missing []string
	for _, c := range []string{Etheta, Ephi} {
		for _, name := range []string{RealColumn(c), ImagColumn(c)} {
			if !d.HasColumn(name) {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldError{View: "electric field", Missing: missing}
	}

	eTheta, err := d.ComplexColumn(Etheta)
	if err != nil {
		return nil, err
	}
	ePhi, err := d.ComplexColumn(Ephi)
	if err != nil {
		return nil, err
	}
	return &ElectricField{Etheta: eTheta, Ephi: ePhi}, nil
}

// ToCartesian projects the spherical field onto x, y and z:
//
//	Ex = Eθ·cosθ·cosφ − Eφ·sinφ
//	Ey = Eθ·cosθ·sinφ + Eφ·cosφ
//	Ez = −Eθ·sinθ
//
// with θ and φ taken from the dataset axes in degrees.
func (d *Dataset) ToCartesian() (*CartesianField, error) {
	field, err := d.ElectricField()
	if err != nil {
		return nil, err
	}

	shape := field.Etheta.shape
	ex, ey, ez := newComplexArray(shape), newComplexArray(shape), newComplexArray(shape)

	sinT, cosT := trig(d.thetas)
	sinP, cosP := trig(d.phis)

	nTheta, nPhi := shape[1], shape[2]
	for f := 0; f < shape[0]; f++ {
		for t := 0; t < nTheta; t++ {
			ct, st := complex(cosT[t], 0), complex(sinT[t], 0)
			for p := 0; p < nPhi; p++ {
				i := (f*nTheta+t)*nPhi + p
				cp, sp := complex(cosP[p], 0), complex(sinP[p], 0)
				eth, eph := field.Etheta.data[i], field.Ephi.data[i]

				ex.data[i] = eth*ct*cp - eph*sp
				ey.data[i] = eth*ct*sp + eph*cp
				ez.data[i] = -eth * st
			}
		}
	}
	return &CartesianField{Ex: ex, Ey: ey, Ez: ez}, nil
}

func trig(degrees []float64) (sin, cos []float64) {
	sin = make([]float64, len(degrees))
	cos = make([]float64, len(degrees))
	for i, deg := range degrees {
		sin[i], cos[i] = math.Sincos(deg * math.Pi / 180)
	}
	return sin, cos
}
