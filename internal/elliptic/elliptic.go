// Package elliptic evaluates complete elliptic integrals with Bulirsch's
// cel algorithm (Bulirsch 1965, Numerische Mathematik 7, 78 and 353), which
// stays accurate as the modulus approaches one.
package elliptic

import (
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// Tolerance is the slack allowed on the modulus outside [0, 1].
const Tolerance = 1e-12

// celTol controls cel's convergence; the relative error is roughly celTol².
const celTol = 1e-8

// Cel evaluates Bulirsch's general complete elliptic integral
//
//	∫₀^{π/2} (a cos²θ + b sin²θ) / ((cos²θ + p sin²θ) √(cos²θ + kc² sin²θ)) dθ
//
// where kc is the complementary modulus. p may be negative, in which case
// the Cauchy principal value is returned.
func Cel(kc, p, a, b float64) (float64, error) {
	if kc == 0 {
		return 0, errs.Value("cel: complementary modulus is zero")
	}
	if p == 0 {
		return 0, errs.Value("cel: p is zero")
	}

	qc := math.Abs(kc)
	e := qc
	em := 1.0

	if p > 0 {
		p = math.Sqrt(p)
		b /= p
	} else {
		f := qc * qc
		q := 1 - f
		g := 1 - p
		f -= p
		q *= b - a*p
		p = math.Sqrt(f / g)
		a = (a - b) / g
		b = -q/(g*g*p) + a*p
	}

	for i := 0; i < 64; i++ {
		f := a
		a += b / p
		g := e / p
		b += f * g
		b += b
		p += g
		g = em
		em += qc
		if math.Abs(g-qc) <= g*celTol {
			break
		}
		qc = math.Sqrt(e)
		qc += qc
		e = qc * em
	}

	return math.Pi / 2 * (b + a*em) / (em * (em + p)), nil
}

// checkModulus validates k and clamps it into [0, 1].
func checkModulus(k float64) (float64, error) {
	if math.IsNaN(k) || k < -Tolerance || k > 1+Tolerance {
		return 0, errs.Value("elliptic modulus %v outside [0, 1]", k)
	}
	return math.Min(math.Max(k, 0), 1), nil
}

// Complement returns kc = √(1-k²) computed as √((1-k)(1+k)).
func Complement(k float64) float64 {
	return math.Sqrt((1 - k) * (1 + k))
}

// K returns the complete elliptic integral of the first kind.
func K(k float64) (float64, error) {
	k, err := checkModulus(k)
	if err != nil {
		return 0, err
	}
	if k == 1 {
		return math.Inf(1), nil
	}
	return Cel(Complement(k), 1, 1, 1)
}

// E returns the complete elliptic integral of the second kind.
func E(k float64) (float64, error) {
	k, err := checkModulus(k)
	if err != nil {
		return 0, err
	}
	if k == 1 {
		return 1, nil
	}
	kc := Complement(k)
	return Cel(kc, 1, 1, kc*kc)
}

// Pi returns the complete elliptic integral of the third kind
//
//	Π(n, k) = ∫₀^{π/2} dθ / ((1 - n sin²θ) √(1 - k² sin²θ)).
func Pi(n, k float64) (float64, error) {
	k, err := checkModulus(k)
	if err != nil {
		return 0, err
	}
	if k == 1 {
		return math.Inf(1), nil
	}
	if n == 1 {
		return 0, errs.Value("Π(n, k) diverges at n = 1")
	}
	return Cel(Complement(k), 1-n, 1, 1)
}

// KE returns K and E together from the complementary modulus. kc must be
// positive; callers near k = 1 clamp it first.
func KE(kc float64) (kk, ek float64, err error) {
	kk, err = Cel(kc, 1, 1, 1)
	if err != nil {
		return 0, 0, err
	}
	ek, err = Cel(kc, 1, 1, kc*kc)
	return kk, ek, err
}
