package basis

import "math"

// Term is a monomial x^A y^B z^C of the polynomial basis. After reduction
// with z² = 1 - x² - y², C is 0 or 1.
type Term struct {
	A, B, C int
}

// Size returns the number of coefficients of a degree-lmax expansion.
func Size(lmax int) int {
	return (lmax + 1) * (lmax + 1)
}

// LM returns the degree and order of index n.
func LM(n int) (l, m int) {
	l = int(math.Sqrt(float64(n)))
	for l*l > n {
		l--
	}
	for (l+1)*(l+1) <= n {
		l++
	}
	return l, n - l*l - l
}

// TermOf decodes polynomial slot n into its monomial.
func TermOf(n int) Term {
	l, m := LM(n)
	mu, nu := l-m, l+m
	if nu%2 == 0 {
		return Term{A: mu / 2, B: nu / 2}
	}
	return Term{A: (mu - 1) / 2, B: (nu - 1) / 2, C: 1}
}

// Index returns the polynomial slot of x^a y^b z^c with c ∈ {0, 1}.
func Index(a, b, c int) int {
	l := a + b + c
	m := b - a
	return l*l + l + m
}

// Degree returns the slot degree of a reduced monomial.
func (t Term) Degree() int {
	return t.A + t.B + t.C
}

// addMonomial accumulates coef·x^a y^b z^c into p, reducing even powers of
// z through z² = 1 - x² - y².
func addMonomial(p []float64, a, b, c int, coef float64) {
	if coef == 0 {
		return
	}
	h, odd := c/2, c%2
	if h == 0 {
		p[Index(a, b, odd)] += coef
		return
	}
	// (1 - x² - y²)^h = Σ h!/(i! j! k!) (-x²)^i (-y²)^j
	for i := 0; i <= h; i++ {
		for j := 0; i+j <= h; j++ {
			w := multinomial(h, i, j)
			if (i+j)%2 == 1 {
				w = -w
			}
			p[Index(a+2*i, b+2*j, odd)] += coef * w
		}
	}
}

// Poly evaluates the polynomial vector p of degree lmax at (x, y) on the
// projected disk. Points outside the disk return NaN.
func Poly(lmax int, p []float64, x, y float64) float64 {
	if x*x+y*y > 1 {
		return math.NaN()
	}
	z := math.Sqrt(1 - x*x - y*y)
	b := PolyBasis(lmax, x, y, z)
	var sum float64
	for n := range b {
		if n < len(p) {
			sum += p[n] * b[n]
		}
	}
	return sum
}

// PolyBasis returns every basis monomial of degree ≤ lmax at (x, y, z).
func PolyBasis(lmax int, x, y, z float64) []float64 {
	out := make([]float64, Size(lmax))
	for n := range out {
		t := TermOf(n)
		v := ipow(x, t.A) * ipow(y, t.B)
		if t.C == 1 {
			v *= z
		}
		out[n] = v
	}
	return out
}

// Product multiplies polynomial vectors p1 (degree d1) and p2 (degree d2).
// The result has degree d1+d2.
func Product(p1 []float64, d1 int, p2 []float64, d2 int) []float64 {
	out := make([]float64, Size(d1+d2))
	for i := 0; i < Size(d1) && i < len(p1); i++ {
		if p1[i] == 0 {
			continue
		}
		t1 := TermOf(i)
		for j := 0; j < Size(d2) && j < len(p2); j++ {
			if p2[j] == 0 {
				continue
			}
			t2 := TermOf(j)
			addMonomial(out, t1.A+t2.A, t1.B+t2.B, t1.C+t2.C, p1[i]*p2[j])
		}
	}
	return out
}

// Pad returns p extended with zeros to degree lmax.
func Pad(p []float64, lmax int) []float64 {
	out := make([]float64, Size(lmax))
	copy(out, p)
	return out
}

func ipow(x float64, n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= x
	}
	return r
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// Choose returns the binomial coefficient C(n, k) as a float.
func Choose(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	c := 1.0
	for i := 1; i <= k; i++ {
		c = c * float64(n-k+i) / float64(i)
	}
	return c
}

func multinomial(h, i, j int) float64 {
	return Choose(h, i) * Choose(h-i, j)
}
