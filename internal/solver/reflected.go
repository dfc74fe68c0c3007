package solver

import (
	"math"
	"sort"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// Vec3 is a direction in the observer frame.
type Vec3 [3]float64

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Lighting classifies a reflected-light configuration.
type Lighting int

const (
	FullyLit Lighting = iota
	FullyDark
	Unocculted
	TotallyOcculted
	OccultorNightOnly
	OccultorDayOnly
	OccultorStraddling
)

func (l Lighting) String() string {
	switch l {
	case FullyLit:
		return "fully lit"
	case FullyDark:
		return "fully dark"
	case Unocculted:
		return "no occultation"
	case TotallyOcculted:
		return "total occultation"
	case OccultorNightOnly:
		return "occultor on night side"
	case OccultorDayOnly:
		return "occultor on day side"
	case OccultorStraddling:
		return "occultor straddles terminator"
	default:
		return "unknown"
	}
}

// ReflectedSolution is a Solution over the illuminated visible region.
type ReflectedSolution struct {
	Lighting Lighting
	Solution
}

// Reflected computes occultation integrals over the day side of a body lit
// by a distant point source. Callers multiply the map by the illumination
// polynomial sx x + sy y + sz z before projecting onto Green's basis, so
// the solver degree is one above the map degree.
type Reflected struct {
	emitted *Emitted
	q       rule
}

// NewReflected prepares a solver for Green's basis functions of degree ≤ lmax.
func NewReflected(lmax int) (*Reflected, error) {
	em, err := NewEmitted(lmax)
	if err != nil {
		return nil, err
	}
	return &Reflected{emitted: em, q: newRule(2*lmax + 24)}, nil
}

// Degree returns the Green's basis degree the solver was built for.
func (rf *Reflected) Degree() int {
	return rf.emitted.Degree()
}

// boundary is one oriented arc of the visible day region.
type boundary struct {
	c        curve
	t0, t1   float64
	occultor bool
}

// Solve integrates every Green's basis function over the illuminated part
// of the disk not covered by the occultor. src need not be normalized.
func (rf *Reflected) Solve(b, r float64, src Vec3, grad bool) (ReflectedSolution, error) {
	if err := checkGeometry(b, r); err != nil {
		return ReflectedSolution{}, err
	}
	norm := src.Norm()
	if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
		return ReflectedSolution{}, errs.Value("source direction must be a non-zero finite vector, got %v", src)
	}
	s := Vec3{src[0] / norm, src[1] / norm, src[2] / norm}
	rhoS := math.Hypot(s[0], s[1])
	c := Classify(b, r)

	lay := rf.emitted.lay
	out := ReflectedSolution{Solution: Solution{Case: c, S: make([]float64, lay.n)}}
	if grad {
		out.DSDb = make([]float64, lay.n)
		out.DSDr = make([]float64, lay.n)
		out.DSDx = make([]float64, lay.n)
	}

	// The terminator lies within rhoS²/2 of the limb.
	if rhoS*rhoS < 2*limbTerminatorTol {
		if s[2] < 0 {
			out.Lighting = FullyDark
			return out, nil
		}
		sol, err := rf.emitted.Solve(b, r, grad)
		if err != nil {
			return ReflectedSolution{}, err
		}
		out.Lighting = FullyLit
		out.Solution = sol
		return out, nil
	}
	if c == TotalOccultation {
		out.Lighting = TotallyOcculted
		return out, nil
	}

	ux, uy := s[0]/rhoS, s[1]/rhoS
	term := terminatorCurve{
		v: Vec3{-uy, ux, 0},
		w: Vec3{-s[2] * ux, -s[2] * uy, rhoS},
	}
	var roots []float64
	if c != NoOccultation {
		roots = occultorTerminatorRoots(b, r, s)
	}
	out.Lighting = classifyLighting(b, r, c, s, roots)

	arcs := rf.assemble(b, r, c, s, term, roots)
	for _, a := range arcs {
		rf.q.integrate(a.c, a.t0, a.t1, func(x, y, z, dx, dy, w float64) {
			greensField(lay.kinds, lay.terms, x, y, z, dx, dy, w, out.S)
		})
	}
	if grad {
		i1 := make([]float64, lay.n)
		icos := make([]float64, lay.n)
		isin := make([]float64, lay.n)
		oc := occultorCurve{b: b, r: r}
		for _, a := range arcs {
			if !a.occultor {
				continue
			}
			// Derivative integrals run in increasing ψ.
			lo, hi := math.Min(a.t0, a.t1), math.Max(a.t0, a.t1)
			rf.q.integrate(oc, lo, hi, func(x, y, z, _, _, w float64) {
				cp := (b - y) / r
				sp := x / r
				polyValues(lay.terms, x, y, z, w, i1)
				polyValues(lay.terms, x, y, z, w*cp, icos)
				polyValues(lay.terms, x, y, z, w*sp, isin)
			})
		}
		g2p := rf.emitted.g2p
		toGreens(g2p, i1, -r, out.DSDr)
		toGreens(g2p, icos, r, out.DSDb)
		toGreens(g2p, isin, -r, out.DSDx)
	}
	return out, nil
}

// classifyLighting labels the configuration for reporting.
func classifyLighting(b, r float64, c Case, s Vec3, roots []float64) Lighting {
	switch {
	case c == NoOccultation:
		return Unocculted
	case len(roots) > 0:
		return OccultorStraddling
	}
	// The bottom of the occultor lies inside the disk in every remaining case.
	y := b - r
	z := height(0, y)
	if s[1]*y+s[2]*z > 0 {
		return OccultorDayOnly
	}
	return OccultorNightOnly
}

// assemble collects the oriented arcs bounding the visible day region: the
// limb counterclockwise, the terminator with the day side on its left, and
// the occultor clockwise. An arc is kept when its midpoint lies inside the
// other two regions.
func (rf *Reflected) assemble(b, r float64, c Case, s Vec3, term terminatorCurve, roots []float64) []boundary {
	occulting := c == Partial || c == InsideDisk
	oc := occultorCurve{b: b, r: r}
	outside := func(x, y float64) bool {
		return !occulting || x*x+(y-b)*(y-b) > r*r
	}
	lit := func(x, y, z float64) bool {
		return s[0]*x+s[1]*y+s[2]*z > 0
	}

	var psiLimb float64
	if c == Partial {
		psiLimb = math.Acos(clamp((b*b+r*r-1)/(2*b*r), -1, 1))
	}

	// Limb, cut where the terminator and the occultor meet it.
	limbCuts := []float64{math.Atan2(term.v[1], term.v[0]), math.Atan2(-term.v[1], -term.v[0])}
	if c == Partial {
		for _, psi := range []float64{-psiLimb, psiLimb} {
			x, y, _, _, _ := oc.at(psi)
			limbCuts = append(limbCuts, math.Atan2(y, x))
		}
	}
	var arcs []boundary
	for _, seg := range segments(limbCuts, 2*math.Pi) {
		x, y, _, _, _ := limbCurve{}.at(0.5 * (seg[0] + seg[1]))
		if lit(x, y, 0) && outside(x, y) {
			arcs = append(arcs, boundary{c: limbCurve{}, t0: seg[0], t1: seg[1]})
		}
	}

	// Terminator, cut where the occultor crosses it.
	phiCuts := []float64{0, math.Pi}
	for _, psi := range roots {
		x, y, z, _, _ := oc.at(psi)
		// Projecting onto w keeps φ accurate where z is tiny.
		sw := x*term.w[0] + y*term.w[1] + z*term.w[2]
		phiCuts = append(phiCuts, math.Atan2(sw, x*term.v[0]+y*term.v[1]))
	}
	sort.Float64s(phiCuts)
	for i := 0; i+1 < len(phiCuts); i++ {
		p0, p1 := phiCuts[i], phiCuts[i+1]
		if p1-p0 < 1e-12 {
			continue
		}
		x, y, _, _, _ := term.at(0.5 * (p0 + p1))
		if outside(x, y) {
			arcs = append(arcs, boundary{c: term, t0: p0, t1: p1})
		}
	}

	// Occultor, traversed clockwise.
	if occulting {
		psiCuts := append([]float64(nil), roots...)
		switch c {
		case Partial:
			psiCuts = append(psiCuts, -psiLimb, psiLimb)
		case InsideDisk:
			// The top of the occultor is its closest approach to the limb.
			psiCuts = append(psiCuts, math.Pi)
		}
		for _, seg := range segments(psiCuts, 2*math.Pi) {
			x, y, z, _, _ := oc.at(0.5 * (seg[0] + seg[1]))
			if x*x+y*y < 1 && lit(x, y, z) {
				arcs = append(arcs, boundary{c: oc, t0: seg[1], t1: seg[0], occultor: true})
			}
		}
	}
	return arcs
}

// segments splits a periodic parameter at the given cuts. With no cuts the
// whole period is one segment.
func segments(cuts []float64, period float64) [][2]float64 {
	if len(cuts) == 0 {
		return [][2]float64{{-period / 2, period / 2}}
	}
	norm := make([]float64, len(cuts))
	for i, c := range cuts {
		norm[i] = math.Remainder(c, period)
	}
	norm = dedupe(norm, 1e-12)
	var out [][2]float64
	for i := range norm {
		lo := norm[i]
		hi := norm[0] + period
		if i+1 < len(norm) {
			hi = norm[i+1]
		}
		out = append(out, [2]float64{lo, hi})
	}
	return out
}
