// Package filter multiplies a map polynomial by the limb darkening and
// spherical harmonic filter polynomials.
package filter

import (
	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/errs"
)

// Filter applies I(μ)·f(x, y, z) to maps of a fixed degree.
type Filter struct {
	b      *basis.Basis
	ny, nu int
	nf     int
}

// New returns a filter for the degrees of b.
func New(b *basis.Basis) *Filter {
	return &Filter{
		b:  b,
		ny: basis.Size(b.Ydeg),
		nu: b.Udeg + 1,
		nf: basis.Size(b.Fdeg),
	}
}

func (f *Filter) check(u, fc []float64) error {
	if len(u) != f.nu {
		return errs.Shape("limb darkening vector has length %d, want %d", len(u), f.nu)
	}
	if len(fc) != f.nf {
		return errs.Shape("filter vector has length %d, want %d", len(fc), f.nf)
	}
	return nil
}

// Polynomial returns the combined filter (AU·u)·(A1·f) in the polynomial
// basis, of degree Udeg+Fdeg.
func (f *Filter) Polynomial(u, fc []float64) ([]float64, error) {
	if err := f.check(u, fc); err != nil {
		return nil, err
	}
	pu := mat.NewVecDense(basis.Size(f.b.Udeg), nil)
	pu.MulVec(f.b.AU, mat.NewVecDense(f.nu, u))
	pf := f.b.ToPoly(fc)
	return basis.Product(pu.RawVector().Data, f.b.Udeg, pf, f.b.Fdeg), nil
}

// Apply multiplies the map polynomial p (degree Ydeg) by the filters. The
// result has the combined degree Deg.
func (f *Filter) Apply(p, u, fc []float64) ([]float64, error) {
	if len(p) != f.ny {
		return nil, errs.Shape("map polynomial has length %d, want %d", len(p), f.ny)
	}
	pf, err := f.Polynomial(u, fc)
	if err != nil {
		return nil, err
	}
	return basis.Product(p, f.b.Ydeg, pf, f.b.Udeg+f.b.Fdeg), nil
}

// Matrix returns the N×Ny operator taking map polynomials to filtered
// polynomials.
func (f *Filter) Matrix(u, fc []float64) (*mat.Dense, error) {
	pf, err := f.Polynomial(u, fc)
	if err != nil {
		return nil, err
	}
	return f.matrixFor(pf), nil
}

func (f *Filter) matrixFor(pf []float64) *mat.Dense {
	n := basis.Size(f.b.Deg)
	m := mat.NewDense(n, f.ny, nil)
	e := make([]float64, f.ny)
	for j := 0; j < f.ny; j++ {
		e[j] = 1
		col := basis.Product(e, f.b.Ydeg, pf, f.b.Udeg+f.b.Fdeg)
		m.SetCol(j, col)
		e[j] = 0
	}
	return m
}

// DMatrixDu returns ∂Matrix/∂u_i for each limb darkening coefficient. The
// operator is linear in u, so each derivative is the operator for a unit u.
func (f *Filter) DMatrixDu(u, fc []float64) ([]*mat.Dense, error) {
	if err := f.check(u, fc); err != nil {
		return nil, err
	}
	out := make([]*mat.Dense, f.nu)
	e := make([]float64, f.nu)
	for i := range out {
		e[i] = 1
		pf, err := f.Polynomial(e, fc)
		if err != nil {
			return nil, err
		}
		out[i] = f.matrixFor(pf)
		e[i] = 0
	}
	return out, nil
}
