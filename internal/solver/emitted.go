// Package solver integrates Green's basis functions over the visible part
// of an occulted disk.
//
// The emitted solver handles self-luminous bodies in closed form: limb arcs
// reduce to trigonometric moments, occultor arcs to complete elliptic
// integrals and their moment recursions. The reflected solver adds a day
// and night terminator and assembles the boundary from arcs of three curves.
//
// Both solvers work in a frame where the occultor of radius r sits on the
// +y axis at distance b from the disk center.
package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/elliptic"
	"github.com/litescript/ls-lightcurve/internal/errs"
)

// coincident is the |b - r| below which the occultor passes through the
// disk center and the polar-angle limits are used.
const coincident = 1e-9

// Case classifies an occultor configuration.
type Case int

const (
	NoOccultation Case = iota
	TotalOccultation
	// InsideDisk is an occultor wholly inside the disk, concentric included.
	InsideDisk
	// Partial is an occultor crossing the limb.
	Partial
)

func (c Case) String() string {
	switch c {
	case NoOccultation:
		return "none"
	case TotalOccultation:
		return "total"
	case InsideDisk:
		return "inside"
	case Partial:
		return "partial"
	default:
		return "unknown"
	}
}

// Classify returns the occultation case for impact parameter b and occultor
// radius r.
func Classify(b, r float64) Case {
	switch {
	case r == 0 || b >= 1+r:
		return NoOccultation
	case r >= 1+b:
		return TotalOccultation
	case b+r <= 1:
		return InsideDisk
	default:
		return Partial
	}
}

// Solution holds the Green's basis integrals over the visible region and,
// when requested, their derivatives with respect to b, r and a shift of the
// occultor along +x.
type Solution struct {
	Case Case
	S    []float64
	DSDb []float64
	DSDr []float64
	DSDx []float64
}

// Emitted computes occultation integrals for emitted light.
type Emitted struct {
	lay   layout
	g2p   *mat.Dense
	sDisk []float64
}

// NewEmitted prepares a solver for Green's basis functions of degree ≤ lmax.
func NewEmitted(lmax int) (*Emitted, error) {
	if lmax < 0 || lmax > basis.MaxDegree+1 {
		return nil, errs.Range("solver degree %d outside [0, %d]", lmax, basis.MaxDegree+1)
	}
	e := &Emitted{lay: newLayout(lmax), g2p: basis.GreensToPoly(lmax)}
	n := e.lay.n
	sd := mat.NewVecDense(n, nil)
	sd.MulVec(e.g2p.T(), mat.NewVecDense(n, basis.DiskIntegrals(lmax)))
	e.sDisk = sd.RawVector().Data
	return e, nil
}

// Degree returns the Green's basis degree the solver was built for.
func (e *Emitted) Degree() int {
	return e.lay.lmax
}

// Disk returns the integrals over the unocculted disk.
func (e *Emitted) Disk() []float64 {
	out := make([]float64, len(e.sDisk))
	copy(out, e.sDisk)
	return out
}

// Solve integrates every Green's basis function over the part of the unit
// disk not covered by the occultor.
func (e *Emitted) Solve(b, r float64, grad bool) (Solution, error) {
	if err := checkGeometry(b, r); err != nil {
		return Solution{}, err
	}
	n := e.lay.n
	sol := Solution{Case: Classify(b, r), S: make([]float64, n)}
	if grad {
		sol.DSDb = make([]float64, n)
		sol.DSDr = make([]float64, n)
		sol.DSDx = make([]float64, n)
	}

	switch sol.Case {
	case NoOccultation:
		copy(sol.S, e.sDisk)
		return sol, nil
	case TotalOccultation:
		return sol, nil
	}

	arc, err := newOccultorArc(b, r, sol.Case, e.lay.lmax)
	if err != nil {
		return Solution{}, err
	}
	occ := arc.occulted(e.lay)
	for i := range sol.S {
		sol.S[i] = e.sDisk[i] - occ[i]
	}
	if grad {
		i1, icos, isin := arc.polyIntegrals(e.lay)
		toGreens(e.g2p, i1, -r, sol.DSDr)
		toGreens(e.g2p, icos, r, sol.DSDb)
		toGreens(e.g2p, isin, -r, sol.DSDx)
	}
	return sol, nil
}

// toGreens writes scale·G2Pᵀ·v into out, turning integrals of polynomial
// slots into integrals of Green's basis functions.
func toGreens(g2p *mat.Dense, v []float64, scale float64, out []float64) {
	res := mat.NewVecDense(len(out), out)
	res.MulVec(g2p.T(), mat.NewVecDense(len(v), v))
	res.ScaleVec(scale, res)
}

func checkGeometry(b, r float64) error {
	if math.IsNaN(b) || math.IsNaN(r) || math.IsInf(b, 0) || math.IsInf(r, 0) {
		return errs.Value("occultor geometry must be finite, got b=%v r=%v", b, r)
	}
	if b < 0 || r < 0 {
		return errs.Value("occultor geometry must be non-negative, got b=%v r=%v", b, r)
	}
	return nil
}

// occultorArc is the symmetric arc ψ ∈ [-ψ0, ψ0] of the occultor boundary
// lying inside the disk, parametrized as x = r sin ψ, y = b - r cos ψ.
type occultorArc struct {
	b, r   float64
	c      Case
	alphaI float64 // limb angle of the right intersection (partial only)
	mom    arcMoments
	xp, yp []sigmaPoly
	cosp   sigmaPoly
}

func newOccultorArc(b, r float64, c Case, lmax int) (*occultorArc, error) {
	a := &occultorArc{b: b, r: r, c: c}
	nmax := lmax + 2
	var err error
	if c == Partial {
		a.mom, err = partialMoments(b, r, nmax)
		a.alphaI = math.Asin(clamp((1+b*b-r*r)/(2*b), -1, 1))
	} else {
		a.mom, err = insideMoments(b, r, nmax)
	}
	if err != nil {
		return nil, err
	}
	a.xp = powers(sigmaPoly{0, 4 * r * r, -4 * r * r}, (lmax+3)/2)
	a.yp = powers(sigmaPoly{b - r, 2 * r}, lmax+1)
	a.cosp = sigmaPoly{1, -2}
	return a, nil
}

// occulted returns ∫∫ g_n dA over the occulted part of the disk, as the
// counterclockwise line integral along the occultor arc and the limb.
func (a *occultorArc) occulted(lay layout) []float64 {
	out := make([]float64, lay.n)
	var limb [][]float64
	if a.c == Partial {
		limb = trigMoments(a.alphaI, math.Pi-a.alphaI, lay.lmax+2, lay.lmax)
	}
	v0, v3 := a.mom.get(0), a.mom.get(3)
	for n, kind := range lay.kinds {
		i, j := lay.terms[n].A, lay.terms[n].B
		switch kind {
		case basis.GreensPoly:
			fi := float64(i + 1)
			if i%2 == 0 {
				out[n] = a.xp[(i+2)/2].mul(a.yp[j]).dot(v0) / fi
			}
			if limb != nil {
				out[n] += limb[i+2][j] / fi
			}
		case basis.GreensRadial:
			out[n] = a.radial()
		case basis.GreensYZ3:
			if i%2 == 0 {
				out[n] = a.xp[i/2].mul(a.yp[j]).dot(v3)
			}
		case basis.GreensXZ3:
			out[n] = a.yp[j-1].mul(a.cosp).scale(a.r).dot(v3)
		}
	}
	return out
}

// radial returns ∫∫ z dA over the occulted region. Along the occultor arc
// the field reduces to (1 - z³)/3 dθ with θ the polar angle about the disk
// center, and dθ = ½(1 + (r² - b²)/ρ²) dψ.
func (a *occultorArc) radial() float64 {
	b, r := a.b, a.r
	aa := 1 - (b-r)*(b-r)
	d0 := (b - r) * (b - r)
	v0 := a.mom.get(3)[0]
	z1 := a.mom.get(1)[0]

	var limb, core float64
	if a.c == Partial {
		limb = math.Pi - 2*a.alphaI
		if math.Abs(b-r) < coincident {
			core = 2 * a.alphaI
		} else {
			bb := 4 * b * r
			kc := math.Max(math.Sqrt(math.Max(((b+r)*(b+r)-1)/bb, 0)), kcFloor)
			cel, _ := elliptic.Cel(kc, 1/d0, 1, 0)
			zrho := 4 * aa / math.Sqrt(bb) / d0 * cel
			dtheta := -(math.Pi - 2*a.alphaI)
			if b < r {
				dtheta = math.Pi + 2*a.alphaI
			}
			core = dtheta - 0.5*(r*r-b*b)*zrho
		}
	} else {
		if math.Abs(b-r) < coincident {
			core = math.Pi
		} else {
			kc2 := (1 - (b+r)*(b+r)) / aa
			kc := math.Max(math.Sqrt(math.Max(kc2, 0)), kcFloor)
			cel, _ := elliptic.Cel(kc, (b+r)*(b+r)/d0, 1, kc*kc)
			zrho := 4 * math.Sqrt(aa) / d0 * cel
			dtheta := 0.0
			if b < r {
				dtheta = 2 * math.Pi
			}
			core = dtheta - 0.5*(r*r-b*b)*zrho
		}
	}
	return (limb + core - 0.5*v0 + 0.5*(r*r-b*b)*z1) / 3
}

// polyIntegrals returns ∫ p_k w dψ along the occultor arc for every
// polynomial slot k and weights w = 1, cos ψ and sin ψ.
func (a *occultorArc) polyIntegrals(lay layout) (i1, icos, isin []float64) {
	i1 = make([]float64, lay.n)
	icos = make([]float64, lay.n)
	isin = make([]float64, lay.n)
	for k, t := range lay.terms {
		v := a.mom.get(t.C)
		if t.A%2 == 0 {
			p := a.xp[t.A/2].mul(a.yp[t.B])
			i1[k] = p.dot(v)
			icos[k] = p.mul(a.cosp).dot(v)
		} else {
			// x^a sin ψ = x^{a+1} / r
			isin[k] = a.xp[(t.A+1)/2].mul(a.yp[t.B]).dot(v) / a.r
		}
	}
	return i1, icos, isin
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
