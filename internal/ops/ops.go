// Package ops ties the basis, rotation, filter and occultation solvers into
// light curve evaluation for a map of fixed degree.
package ops

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/errs"
	"github.com/litescript/ls-lightcurve/internal/filter"
	"github.com/litescript/ls-lightcurve/internal/solver"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

// DefaultAxis is the rotation axis used when none is given: sky north.
var DefaultAxis = wigner.Vec3{0, 1, 0}

// Ops evaluates fluxes and intensities for maps of degree Ydeg with limb
// darkening of degree Udeg and a spherical harmonic filter of degree Fdeg.
// An Ops is safe for concurrent use.
type Ops struct {
	Ydeg, Udeg, Fdeg, Deg int
	// Nu counts the limb darkening coefficients u0 … u_Udeg. Callers pass
	// only u1 … u_Udeg; u0 is fixed at one.
	Ny, Nu, Nf, N int

	Basis     *basis.Basis
	Rotator   *wigner.Rotator
	Emitted   *solver.Emitted
	Reflected *solver.Reflected
	Filter    *filter.Filter

	// illum[i] multiplies a degree Deg polynomial by x, y or z.
	illum [3]*mat.Dense
}

// New builds everything needed for the given degrees.
func New(ydeg, udeg, fdeg int) (*Ops, error) {
	b, err := basis.New(ydeg, udeg, fdeg)
	if err != nil {
		return nil, err
	}
	rot, err := wigner.New(ydeg)
	if err != nil {
		return nil, err
	}
	em, err := solver.NewEmitted(b.Deg)
	if err != nil {
		return nil, err
	}
	rf, err := solver.NewReflected(b.Deg + 1)
	if err != nil {
		return nil, err
	}
	o := &Ops{
		Ydeg: ydeg, Udeg: udeg, Fdeg: fdeg, Deg: b.Deg,
		Ny: basis.Size(ydeg), Nu: udeg + 1, Nf: basis.Size(fdeg), N: basis.Size(b.Deg),
		Basis:     b,
		Rotator:   rot,
		Emitted:   em,
		Reflected: rf,
		Filter:    filter.New(b),
	}
	for i, slot := range []int{basis.Index(1, 0, 0), basis.Index(0, 1, 0), basis.Index(0, 0, 1)} {
		o.illum[i] = multiplier(b.Deg, slot)
	}
	return o, nil
}

// multiplier returns the matrix multiplying a degree lmax polynomial by
// the degree one monomial in slot.
func multiplier(lmax, slot int) *mat.Dense {
	n := basis.Size(lmax)
	m := mat.NewDense(basis.Size(lmax+1), n, nil)
	e := make([]float64, n)
	mono := make([]float64, basis.Size(1))
	mono[slot] = 1
	for j := 0; j < n; j++ {
		e[j] = 1
		m.SetCol(j, basis.Product(e, lmax, mono, 1))
		e[j] = 0
	}
	return m
}

// SpotYlm returns one coefficient vector per amplitude for a Gaussian spot
// of angular width sigma (radians) centered at lat, lon on a body seen at
// inclination inc with obliquity obl. Rows have length Ny.
func (o *Ops) SpotYlm(amp []float64, sigma, lat, lon, inc, obl float64) ([][]float64, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, errs.Value("spot width must be positive and finite, got %v", sigma)
	}
	zonal := gaussianZonal(o.Ydeg, sigma)

	// The zonal profile is centered on +z. Carry it to (lat, lon) in the
	// body frame, whose pole is +y, then tilt the pole into view.
	y, err := o.Rotator.Rotate(wigner.Vec3{1, 0, 0}, -lat, zonal)
	if err != nil {
		return nil, err
	}
	if y, err = o.Rotator.Rotate(wigner.Vec3{0, 1, 0}, lon, y); err != nil {
		return nil, err
	}
	if y, err = o.Rotator.Rotate(wigner.Vec3{1, 0, 0}, math.Pi/2-inc, y); err != nil {
		return nil, err
	}
	if y, err = o.Rotator.RotateZ(obl, y); err != nil {
		return nil, err
	}

	out := make([][]float64, len(amp))
	for i, a := range amp {
		row := make([]float64, o.Ny)
		for n, v := range y {
			row[n] = a * v
		}
		out[i] = row
	}
	return out, nil
}

// gaussianZonal projects exp(-ψ²/2σ²), ψ the angle from +z, onto the
// zonal harmonics Y_{l,0} = √(2l+1) P_l(z).
func gaussianZonal(lmax int, sigma float64) []float64 {
	n := 8*(lmax+1) + 64
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, math.Pi)

	c := make([]float64, lmax+1)
	pl := make([]float64, lmax+1)
	for k, psi := range x {
		mu := math.Cos(psi)
		g := math.Exp(-psi*psi/(2*sigma*sigma)) * math.Sin(psi) * w[k]
		legendre(mu, pl)
		for l := range c {
			c[l] += g * pl[l]
		}
	}

	y := make([]float64, basis.Size(lmax))
	for l := range c {
		// (1/4π) ∫ g Y_l0 dΩ = (√(2l+1)/2) ∫ g P_l sinψ dψ
		y[l*l+l] = math.Sqrt(float64(2*l+1)) / 2 * c[l]
	}
	return y
}

// legendre fills p with P_0(x) … P_{len(p)-1}(x).
func legendre(x float64, p []float64) {
	p[0] = 1
	if len(p) > 1 {
		p[1] = x
	}
	for l := 2; l < len(p); l++ {
		fl := float64(l)
		p[l] = ((2*fl-1)*x*p[l-1] - (fl-1)*p[l-2]) / fl
	}
}
