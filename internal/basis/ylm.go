package basis

import "math"

// legendreDeriv returns the coefficients c[p] of d^m/dz^m P_l(z) = Σ c[p] z^p.
func legendreDeriv(l, m int) []float64 {
	c := make([]float64, l+1)
	scale := math.Ldexp(1, -l)
	for k := 0; 2*k <= l; k++ {
		p := l - 2*k
		if p < m {
			continue
		}
		coef := scale * Choose(l, k) * Choose(2*l-2*k, l)
		if k%2 == 1 {
			coef = -coef
		}
		// d^m z^p = p!/(p-m)! z^(p-m)
		for i := 0; i < m; i++ {
			coef *= float64(p - i)
		}
		c[p-m] += coef
	}
	return c
}

// normalization returns the 4π real spherical harmonic normalization,
// without the Condon-Shortley phase.
func normalization(l, m int) float64 {
	am := m
	if am < 0 {
		am = -am
	}
	f := float64(2*l + 1)
	if am != 0 {
		f *= 2
	}
	// (l-|m|)!/(l+|m|)! computed as a running quotient.
	for i := l - am + 1; i <= l+am; i++ {
		f /= float64(i)
	}
	return math.Sqrt(f)
}

// Ylm returns the polynomial expansion of the real spherical harmonic of
// degree l and order m on the visible hemisphere.
func Ylm(l, m int) []float64 {
	p := make([]float64, Size(l))
	am := m
	if am < 0 {
		am = -am
	}
	norm := normalization(l, m)
	q := legendreDeriv(l, am)

	// Re (x + iy)^|m| for m ≥ 0, Im for m < 0.
	for k := 0; k <= am; k++ {
		if m >= 0 && k%2 == 1 {
			continue
		}
		if m < 0 && k%2 == 0 {
			continue
		}
		trig := Choose(am, k)
		if (m >= 0 && (k/2)%2 == 1) || (m < 0 && ((k-1)/2)%2 == 1) {
			trig = -trig
		}
		for pz, qc := range q {
			if qc == 0 {
				continue
			}
			addMonomial(p, am-k, k, pz, norm*trig*qc)
		}
	}
	return p
}
