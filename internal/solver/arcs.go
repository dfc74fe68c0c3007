package solver

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// curve is a parametrized boundary curve on the projected disk.
type curve interface {
	// at returns the point, its height above the disk, and the tangent.
	at(t float64) (x, y, z, dx, dy float64)
}

// limbCurve is the unit circle, x = cos α, y = sin α.
type limbCurve struct{}

func (limbCurve) at(a float64) (x, y, z, dx, dy float64) {
	s, c := math.Sincos(a)
	return c, s, 0, -s, c
}

// occultorCurve is x = r sin ψ, y = b - r cos ψ, counterclockwise in ψ.
type occultorCurve struct {
	b, r float64
}

func (o occultorCurve) at(psi float64) (x, y, z, dx, dy float64) {
	s, c := math.Sincos(psi)
	x = o.r * s
	y = o.b - o.r*c
	return x, y, height(x, y), o.r * c, o.r * s
}

// terminatorCurve is the visible half of the great circle perpendicular to
// the source, P(φ) = cos φ v + sin φ w for φ ∈ [0, π]. The day side lies to
// the left of increasing φ.
type terminatorCurve struct {
	v, w Vec3
}

func (tc terminatorCurve) at(phi float64) (x, y, z, dx, dy float64) {
	s, c := math.Sincos(phi)
	x = c*tc.v[0] + s*tc.w[0]
	y = c*tc.v[1] + s*tc.w[1]
	z = c*tc.v[2] + s*tc.w[2]
	dx = -s*tc.v[0] + c*tc.w[0]
	dy = -s*tc.v[1] + c*tc.w[1]
	return x, y, math.Max(z, 0), dx, dy
}

func height(x, y float64) float64 {
	return math.Sqrt(math.Max(0, 1-x*x-y*y))
}

// rule holds Gauss-Legendre nodes on [0, 1].
type rule struct {
	x, w []float64
}

func newRule(n int) rule {
	r := rule{x: make([]float64, n), w: make([]float64, n)}
	quad.Legendre{}.FixedLocations(r.x, r.w, 0, 1)
	return r
}

// integrate evaluates ∫_{t0}^{t1} along c, calling fn at each node with the
// quadrature weight. Each half of the interval is mapped through t = e +
// (m-e)u² from its outer endpoint e, which absorbs square-root behavior
// where the arc meets the limb.
func (q rule) integrate(c curve, t0, t1 float64, fn func(x, y, z, dx, dy, w float64)) {
	mid := 0.5 * (t0 + t1)
	for _, half := range [2]struct{ e, sign float64 }{{t0, 1}, {t1, -1}} {
		span := mid - half.e
		for i, u := range q.x {
			t := half.e + span*u*u
			x, y, z, dx, dy := c.at(t)
			fn(x, y, z, dx, dy, half.sign*q.w[i]*2*span*u)
		}
	}
}
