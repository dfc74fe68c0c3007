package solver

import (
	"github.com/litescript/ls-lightcurve/internal/basis"
)

// greensField evaluates G_n·(dx, dy) for every Green's basis slot at a
// point of the closed disk, adding w times the result into out.
func greensField(kinds []basis.GreensKind, terms []basis.Term, x, y, z, dx, dy, w float64, out []float64) {
	z3 := z * z * z
	for n, kind := range kinds {
		t := terms[n]
		switch kind {
		case basis.GreensPoly:
			gy := ipow(x, t.A+1) * ipow(y, t.B) / float64(t.A+1)
			out[n] += w * gy * dy
		case basis.GreensRadial:
			// (1 - z³)/(3ρ²) written without the ρ → 0 cancellation.
			h := (1 + z + z*z) / (3 * (1 + z))
			out[n] += w * h * (x*dy - y*dx)
		case basis.GreensYZ3:
			gy := ipow(x, t.A-1) * ipow(y, t.B) * z3
			out[n] += w * gy * dy
		case basis.GreensXZ3:
			gx := ipow(y, t.B-1) * z3
			out[n] += w * gx * dx
		}
	}
}

// polyValues adds w·p_k(x, y, z) for every polynomial slot into out.
func polyValues(terms []basis.Term, x, y, z, w float64, out []float64) {
	for n, t := range terms {
		v := ipow(x, t.A) * ipow(y, t.B)
		if t.C == 1 {
			v *= z
		}
		out[n] += w * v
	}
}

// layout caches the slot decomposition for a degree.
type layout struct {
	lmax  int
	n     int
	terms []basis.Term
	kinds []basis.GreensKind
}

func newLayout(lmax int) layout {
	n := basis.Size(lmax)
	l := layout{lmax: lmax, n: n, terms: make([]basis.Term, n), kinds: make([]basis.GreensKind, n)}
	for i := 0; i < n; i++ {
		l.terms[i] = basis.TermOf(i)
		l.kinds[i] = basis.GreensKindOf(i)
	}
	return l
}
