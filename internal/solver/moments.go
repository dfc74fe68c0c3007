package solver

import (
	"math"

	"github.com/litescript/ls-lightcurve/internal/elliptic"
)

// kcFloor keeps the complementary modulus away from zero at tangency.
const kcFloor = 1e-15

// sigmaPoly is a polynomial in σ = sin²(ψ/2), lowest order first.
type sigmaPoly []float64

func (p sigmaPoly) mul(q sigmaPoly) sigmaPoly {
	if len(p) == 0 || len(q) == 0 {
		return nil
	}
	out := make(sigmaPoly, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			out[i+j] += a * b
		}
	}
	return out
}

func (p sigmaPoly) scale(c float64) sigmaPoly {
	out := make(sigmaPoly, len(p))
	for i, a := range p {
		out[i] = a * c
	}
	return out
}

// dot contracts p against the moment table v.
func (p sigmaPoly) dot(v []float64) float64 {
	var sum float64
	for i, a := range p {
		sum += a * v[i]
	}
	return sum
}

// powers returns base^0 … base^n.
func powers(base sigmaPoly, n int) []sigmaPoly {
	out := make([]sigmaPoly, n+1)
	out[0] = sigmaPoly{1}
	for i := 1; i <= n; i++ {
		out[i] = out[i-1].mul(base)
	}
	return out
}

// ellipticMoments returns S_m = ∫₀^{π/2} sin^{2m}θ / √(1 - m2 sin²θ) dθ for
// m = 0 … mmax. kc2 = 1 - m2 is passed separately to avoid cancellation.
func ellipticMoments(m2, kc2 float64, mmax int) ([]float64, error) {
	s := make([]float64, mmax+1)
	if m2 < 0.5 || float64(mmax)*math.Log(1/m2) > math.Log(1e4) {
		seriesMoments(m2, s)
		return s, nil
	}
	kc := math.Max(math.Sqrt(math.Max(kc2, 0)), kcFloor)
	kk, ek, err := elliptic.KE(kc)
	if err != nil {
		return nil, err
	}
	s[0] = kk
	if mmax == 0 {
		return s, nil
	}
	s[1] = (kk - ek) / m2
	for m := 1; m < mmax; m++ {
		fm := float64(m)
		s[m+1] = (2*fm*(1+m2)*s[m] - (2*fm-1)*s[m-1]) / ((2*fm + 1) * m2)
	}
	return s, nil
}

// seriesMoments expands 1/Δ in powers of m2 sin²θ and sums Wallis integrals.
func seriesMoments(m2 float64, s []float64) {
	for m := range s {
		var sum float64
		c := 1.0
		w := wallis(m)
		for j := 0; j < 100000; j++ {
			if j > 0 {
				c *= m2 * float64(2*j-1) / float64(2*j)
				w *= float64(2*(m+j)-1) / float64(2*(m+j))
			}
			term := c * w
			sum += term
			if term < 1e-17*sum || c == 0 {
				break
			}
		}
		s[m] = sum
	}
}

// wallis returns ∫₀^{π/2} sin^{2n}θ dθ.
func wallis(n int) float64 {
	w := math.Pi / 2
	for i := 1; i <= n; i++ {
		w *= float64(2*i-1) / float64(2*i)
	}
	return w
}

// incompleteWallis returns ∫₀^{t0} sin^{2n}t dt for n = 0 … nmax.
func incompleteWallis(t0 float64, nmax int) []float64 {
	j := make([]float64, nmax+1)
	st, ct := math.Sincos(t0)
	j[0] = t0
	pow := st // sin^{2n-1}
	for n := 1; n <= nmax; n++ {
		fn := float64(n)
		j[n] = (-pow*ct + (2*fn-1)*j[n-1]) / (2 * fn)
		pow *= st * st
	}
	return j
}

// arcMoments holds V^{(e)}_n = ∫ sin^{2n}(ψ/2) z^e dψ over a symmetric
// occultor arc, for e = 0, 1 and 3.
type arcMoments struct {
	v0, v1, v3 []float64
}

// partialMoments evaluates the arc moments when the occultor crosses the
// limb. k2 = A/B, A = 1 - (b-r)², B = 4br.
func partialMoments(b, r float64, nmax int) (arcMoments, error) {
	aa := 1 - (b-r)*(b-r)
	bb := 4 * b * r
	k2 := aa / bb
	kc2 := ((b+r)*(b+r) - 1) / bb
	var am arcMoments
	s, err := ellipticMoments(k2, kc2, nmax+2)
	if err != nil {
		return am, err
	}
	k := math.Sqrt(k2)
	t0 := math.Asin(math.Min(k, 1))
	jw := incompleteWallis(t0, nmax)

	am.v0 = make([]float64, nmax+1)
	am.v1 = make([]float64, nmax+1)
	am.v3 = make([]float64, nmax+1)
	sqA := math.Sqrt(aa)
	kp := k
	for n := 0; n <= nmax; n++ {
		am.v0[n] = 4 * jw[n]
		// cos²φ = 1 - sin²φ, cos⁴φ = 1 - 2 sin²φ + sin⁴φ
		am.v1[n] = 4 * kp * sqA * (s[n] - s[n+1])
		am.v3[n] = 4 * kp * sqA * aa * (s[n] - 2*s[n+1] + s[n+2])
		kp *= k2
	}
	return am, nil
}

// insideMoments evaluates the arc moments for an occultor wholly inside the
// disk, integrating over the full circle.
func insideMoments(b, r float64, nmax int) (arcMoments, error) {
	aa := 1 - (b-r)*(b-r)
	bb := 4 * b * r
	q := bb / aa
	kc2 := (1 - (b+r)*(b+r)) / aa
	var am arcMoments
	s, err := ellipticMoments(q, kc2, nmax+2)
	if err != nil {
		return am, err
	}
	am.v0 = make([]float64, nmax+1)
	am.v1 = make([]float64, nmax+1)
	am.v3 = make([]float64, nmax+1)
	sqA := math.Sqrt(aa)
	for n := 0; n <= nmax; n++ {
		am.v0[n] = 4 * wallis(n)
		am.v1[n] = 4 * sqA * (s[n] - q*s[n+1])
		am.v3[n] = 4 * sqA * aa * (s[n] - 2*q*s[n+1] + q*q*s[n+2])
	}
	return am, nil
}

func (am arcMoments) get(e int) []float64 {
	switch e {
	case 0:
		return am.v0
	case 1:
		return am.v1
	default:
		return am.v3
	}
}

// trigMoments returns T[p][q] = ∫_{a1}^{a2} cos^p α sin^q α dα.
func trigMoments(a1, a2 float64, pmax, qmax int) [][]float64 {
	s1, c1 := math.Sincos(a1)
	s2, c2 := math.Sincos(a2)
	bracket := func(p, q int) float64 {
		return ipow(c2, p)*ipow(s2, q) - ipow(c1, p)*ipow(s1, q)
	}
	t := make([][]float64, pmax+1)
	for p := range t {
		t[p] = make([]float64, qmax+1)
	}
	for p := 0; p <= pmax; p++ {
		for q := 0; q <= qmax; q++ {
			fpq := float64(p + q)
			switch {
			case p == 0 && q == 0:
				t[p][q] = a2 - a1
			case p == 1 && q == 0:
				t[p][q] = s2 - s1
			case p == 0 && q == 1:
				t[p][q] = c1 - c2
			case p == 1 && q == 1:
				t[p][q] = (s2*s2 - s1*s1) / 2
			case q >= 2:
				t[p][q] = (-bracket(p+1, q-1) + float64(q-1)*t[p][q-2]) / fpq
			default:
				t[p][q] = (bracket(p-1, q+1) + float64(p-1)*t[p-2][q]) / fpq
			}
		}
	}
	return t
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= x
	}
	return r
}
