// Package basis builds the change-of-basis matrices between spherical
// harmonics, polynomials and Green's basis functions on the unit disk.
//
// Polynomial slot n = l² + l + m holds x^{μ/2} y^{ν/2} when ν = l+m is even
// and x^{(μ-1)/2} y^{(ν-1)/2} z otherwise, with μ = l-m.
package basis

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// MaxDegree is the largest combined degree supported. The polynomial basis
// is built one degree higher, and the A1 inverse loses about half a digit
// per degree; at this cap the round trip still holds to about 1e-8.
const MaxDegree = 20

// Basis holds the matrices for a (ydeg, udeg, fdeg) configuration. All
// fields are read-only after construction.
type Basis struct {
	Ydeg, Udeg, Fdeg, Deg int

	// A1 maps spherical harmonics of degree Deg to polynomials.
	A1 *mat.Dense
	// A1Inv maps polynomials of degree Deg back to spherical harmonics.
	A1Inv *mat.Dense
	// G2P maps Green's basis coefficients to polynomials; A2 is its inverse.
	G2P *mat.Dense
	A2  *mat.Dense
	// A = A2·A1 maps spherical harmonics to Green's basis.
	A *mat.Dense
	// AU maps limb darkening coefficients to polynomials of degree Udeg.
	AU *mat.Dense
	// RT holds the disk integral of each polynomial slot.
	RT []float64
	// SDisk holds the disk integral of each Green's basis function.
	SDisk []float64
}

// New builds the matrices for a map of degree ydeg with a limb darkening
// filter of degree udeg and a spherical harmonic filter of degree fdeg.
func New(ydeg, udeg, fdeg int) (*Basis, error) {
	switch {
	case ydeg < 0 || ydeg > MaxDegree:
		return nil, errs.Range("ydeg %d outside [0, %d]", ydeg, MaxDegree)
	case udeg < 0 || fdeg < 0:
		return nil, errs.Range("filter degrees must be non-negative, got udeg=%d fdeg=%d", udeg, fdeg)
	case ydeg+udeg+fdeg > MaxDegree:
		return nil, errs.Range("total degree %d exceeds %d", ydeg+udeg+fdeg, MaxDegree)
	}

	deg := ydeg + udeg + fdeg
	// The reflected solver multiplies in a degree-one illumination term.
	gdeg := deg + 1
	b := &Basis{Ydeg: ydeg, Udeg: udeg, Fdeg: fdeg, Deg: deg}

	b.A1 = computeA1(gdeg)
	b.A1Inv = new(mat.Dense)
	if err := b.A1Inv.Inverse(b.A1); err != nil {
		return nil, errs.Range("A1 cannot be inverted at degree %d: %v", gdeg, err)
	}
	b.G2P = GreensToPoly(gdeg)
	b.A2 = new(mat.Dense)
	if err := b.A2.Inverse(b.G2P); err != nil {
		return nil, errs.Range("Green's basis matrix cannot be inverted at degree %d: %v", gdeg, err)
	}
	b.A = new(mat.Dense)
	b.A.Mul(b.A2, b.A1)
	b.AU = computeAU(udeg)
	b.RT = DiskIntegrals(gdeg)

	n := Size(gdeg)
	sd := mat.NewVecDense(n, nil)
	sd.MulVec(b.G2P.T(), mat.NewVecDense(n, b.RT))
	b.SDisk = sd.RawVector().Data
	return b, nil
}

// N returns the number of coefficients of the full product map.
func (b *Basis) N() int {
	return Size(b.Deg)
}

// ToPoly maps spherical harmonic coefficients of any degree ≤ Deg+1 to
// polynomial coefficients of the same degree.
func (b *Basis) ToPoly(y []float64) []float64 {
	return apply(b.A1, y)
}

// FromPoly maps polynomial coefficients back to spherical harmonics.
func (b *Basis) FromPoly(p []float64) []float64 {
	return apply(b.A1Inv, p)
}

// ToGreens maps polynomial coefficients to Green's basis coefficients.
func (b *Basis) ToGreens(p []float64) []float64 {
	return apply(b.A2, p)
}

// apply multiplies the leading len(v)×len(v) block of m by v. The basis
// matrices are block triangular by degree, so the leading block is exact.
func apply(m *mat.Dense, v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := m.RawRowView(i)
		var sum float64
		for j := 0; j < n; j++ {
			sum += row[j] * v[j]
		}
		out[i] = sum
	}
	return out
}

func computeA1(lmax int) *mat.Dense {
	n := Size(lmax)
	a := mat.NewDense(n, n, nil)
	for l := 0; l <= lmax; l++ {
		for m := -l; m <= l; m++ {
			col := l*l + l + m
			for i, v := range Ylm(l, m) {
				if v != 0 {
					a.Set(i, col, v)
				}
			}
		}
	}
	return a
}

// GreensToPoly expresses each Green's basis function g_n = ∇·G_n in the
// polynomial basis.
func GreensToPoly(lmax int) *mat.Dense {
	n := Size(lmax)
	a := mat.NewDense(n, n, nil)
	add := func(col, i, j, c int, v float64) {
		if i < 0 || j < 0 || v == 0 {
			return
		}
		a.Set(Index(i, j, c), col, a.At(Index(i, j, c), col)+v)
	}
	for col := 0; col < n; col++ {
		t := TermOf(col)
		i, j := t.A, t.B
		switch GreensKindOf(col) {
		case GreensPoly, GreensRadial:
			a.Set(col, col, 1)
		case GreensYZ3:
			fi := float64(i)
			add(col, i-2, j, 1, fi-1)
			add(col, i, j, 1, -(fi + 2))
			add(col, i-2, j+2, 1, -(fi - 1))
		case GreensXZ3:
			fj := float64(j)
			add(col, 0, j, 1, fj+2)
			add(col, 0, j-2, 1, -(fj - 1))
			add(col, 2, j-2, 1, fj-1)
		}
	}
	return a
}

// computeAU maps I(μ) = u0 - Σ u_i (1-μ)^i to polynomial coefficients.
func computeAU(udeg int) *mat.Dense {
	a := mat.NewDense(Size(udeg), udeg+1, nil)
	a.Set(0, 0, 1)
	col := make([]float64, Size(udeg))
	for i := 1; i <= udeg; i++ {
		for k := range col {
			col[k] = 0
		}
		for k := 0; k <= i; k++ {
			c := -Choose(i, k)
			if k%2 == 1 {
				c = -c
			}
			addMonomial(col, 0, 0, k, c)
		}
		for k, v := range col {
			a.Set(k, i, v)
		}
	}
	return a
}

// DiskIntegrals integrates each polynomial slot over the unit disk using
//
//	∫∫ x^i y^j (1-x²-y²)^s dA = Γ((i+1)/2) Γ((j+1)/2) Γ(s+1) / Γ((i+j)/2 + s + 2)
//
// for even i and j; odd powers vanish by symmetry.
func DiskIntegrals(lmax int) []float64 {
	rt := make([]float64, Size(lmax))
	for n := range rt {
		t := TermOf(n)
		if t.A%2 != 0 || t.B%2 != 0 {
			continue
		}
		s := 0.5 * float64(t.C)
		ga, _ := math.Lgamma(0.5 * float64(t.A+1))
		gb, _ := math.Lgamma(0.5 * float64(t.B+1))
		gs, _ := math.Lgamma(s + 1)
		gd, _ := math.Lgamma(0.5*float64(t.A+t.B) + s + 2)
		rt[n] = math.Exp(ga + gb + gs - gd)
	}
	return rt
}
