package solver

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// terminatorTol is the residual accepted for an occultor-terminator crossing.
const terminatorTol = 1e-7

// limbTerminatorTol is the largest gap between the terminator and the limb
// that is resolved. Closer terminators are treated as the limb itself.
const limbTerminatorTol = 1e-12

// trigQuadratic is a0 + a1 c + a2 s + a3 c² + a4 sc + a5 s² in c = cos ψ,
// s = sin ψ.
type trigQuadratic [6]float64

func (e trigQuadratic) eval(psi float64) float64 {
	s, c := math.Sincos(psi)
	return e[0] + e[1]*c + e[2]*s + e[3]*c*c + e[4]*s*c + e[5]*s*s
}

func (e trigQuadratic) deriv(psi float64) float64 {
	s, c := math.Sincos(psi)
	return -e[1]*s + e[2]*c - 2*e[3]*c*s + e[4]*(c*c-s*s) + 2*e[5]*s*c
}

// quartic rewrites the equation in t = tan(ψ/2), lowest order first.
func (e trigQuadratic) quartic() [5]float64 {
	return [5]float64{
		e[0] + e[1] + e[3],
		2*e[2] + 2*e[4],
		2*e[0] - 2*e[3] + 4*e[5],
		2*e[2] - 2*e[4],
		e[0] - e[1] + e[3],
	}
}

// polyRoots returns the real roots of Σ c_i t^i from the eigenvalues of its
// companion matrix.
func polyRoots(c []float64) []float64 {
	scale := 0.0
	for _, v := range c {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		return nil
	}
	d := len(c) - 1
	for d > 0 && math.Abs(c[d]) < 1e-14*scale {
		d--
	}
	if d == 0 {
		return nil
	}
	if d == 1 {
		return []float64{-c[0] / c[1]}
	}

	comp := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		if i > 0 {
			comp.Set(i, i-1, 1)
		}
		comp.Set(i, d-1, -c[i]/c[d])
	}
	var eig mat.Eigen
	if !eig.Factorize(comp, mat.EigenNone) {
		return nil
	}
	var roots []float64
	for _, v := range eig.Values(nil) {
		if math.Abs(imag(v)) <= 1e-6*(1+math.Abs(real(v))) {
			roots = append(roots, real(v))
		}
	}
	return roots
}

// occultorTerminatorRoots returns the occultor angles ψ ∈ (-π, π] where
// the occultor circle crosses the visible terminator of a unit source.
func occultorTerminatorRoots(b, r float64, src Vec3) []float64 {
	sx, sy, sz := src[0], src[1], src[2]
	// (sx x + sy y)² = sz² z² on the occultor circle.
	e := trigQuadratic{
		sy*sy*b*b - sz*sz*(1-b*b-r*r),
		-2*sy*sy*b*r - 2*sz*sz*b*r,
		2 * sx * sy * b * r,
		sy * sy * r * r,
		-2 * sx * sy * r * r,
		sx * sx * r * r,
	}
	q := e.quartic()
	cands := []float64{math.Pi}
	for _, t := range polyRoots(q[:]) {
		cands = append(cands, 2*math.Atan(t))
	}

	oc := occultorCurve{b: b, r: r}
	var out []float64
	for _, psi := range cands {
		for i := 0; i < 8; i++ {
			d := e.deriv(psi)
			if d == 0 {
				break
			}
			step := e.eval(psi) / d
			psi -= step
			if math.Abs(step) < 1e-15 {
				break
			}
		}
		x, y, z, _, _ := oc.at(psi)
		if x*x+y*y > 1+1e-12 {
			continue
		}
		// The squared equation also admits sx x + sy y = sz z, the mirror of
		// the terminator through the sky plane. Only opposite signs lie on it.
		a, h := sx*x+sy*y, sz*z
		if a*h > 0 || math.Abs(a+h) > terminatorTol {
			continue
		}
		psi = math.Remainder(psi, 2*math.Pi)
		out = append(out, psi)
	}
	return dedupe(out, 1e-9)
}

// dedupe sorts angles and drops near-duplicates.
func dedupe(a []float64, tol float64) []float64 {
	sort.Float64s(a)
	out := a[:0]
	for _, v := range a {
		if len(out) > 0 && v-out[len(out)-1] < tol {
			continue
		}
		out = append(out, v)
	}
	if len(out) > 1 && out[0]+2*math.Pi-out[len(out)-1] < tol {
		out = out[:len(out)-1]
	}
	return out
}
