package solver

import (
	"math"
)

// shiftedOccultor is an occultor centered at (xo, yo), x = xo + r sin ψ,
// y = yo - r cos ψ.
type shiftedOccultor struct {
	xo, yo, r float64
}

func (o shiftedOccultor) at(psi float64) (x, y, z, dx, dy float64) {
	s, c := math.Sincos(psi)
	x = o.xo + o.r*s
	y = o.yo - o.r*c
	return x, y, height(x, y), o.r * c, o.r * s
}

// referenceVisible integrates each Green's basis function over the disk
// minus an occultor at (xo, yo) by Gauss-Legendre quadrature of the field
// along the boundary of the occulted region.
func referenceVisible(lmax int, xo, yo, r float64) []float64 {
	lay := newLayout(lmax)
	em, err := NewEmitted(lmax)
	if err != nil {
		panic(err)
	}
	out := em.Disk()
	d := math.Hypot(xo, yo)
	if r == 0 || d >= 1+r {
		return out
	}
	if r >= 1+d {
		return make([]float64, lay.n)
	}

	q := newRule(96)
	occ := make([]float64, lay.n)
	field := func(x, y, z, dx, dy, w float64) {
		greensField(lay.kinds, lay.terms, x, y, z, dx, dy, w, occ)
	}
	oc := shiftedOccultor{xo: xo, yo: yo, r: r}
	if d+r <= 1 {
		q.integrate(oc, -math.Pi, math.Pi, field)
	} else {
		gamma := math.Atan2(yo, xo)
		k := math.Asin((1 - d*d - r*r) / (2 * r * d))
		start := gamma + math.Pi - k
		end := gamma + 2*math.Pi + k
		q.integrate(oc, start, end, field)

		xs, ys, _, _, _ := oc.at(start)
		xe, ye, _, _, _ := oc.at(end)
		a0 := math.Atan2(ye, xe)
		a1 := math.Atan2(ys, xs)
		for a1 <= a0 {
			a1 += 2 * math.Pi
		}
		q.integrate(limbCurve{}, a0, a1, field)
	}
	for i := range out {
		out[i] -= occ[i]
	}
	return out
}

func maxAbsDiff(a, b []float64) (float64, int) {
	worst, at := 0.0, -1
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > worst || math.IsNaN(d) {
			worst, at = d, i
		}
	}
	return worst, at
}
