package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/errs"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		b, r float64
		want Case
	}{
		{0.5, 0, NoOccultation},
		{1.5, 0.4, NoOccultation},
		{1.4, 0.4, NoOccultation},
		{0.1, 1.2, TotalOccultation},
		{0, 1, TotalOccultation},
		{0.3, 0.2, InsideDisk},
		{0, 0.5, InsideDisk},
		{0.9, 0.3, Partial},
		{0.5, 0.7, Partial},
	}
	for _, tt := range tests {
		if got := Classify(tt.b, tt.r); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.b, tt.r, got, tt.want)
		}
	}
}

func TestEmittedTrivialCases(t *testing.T) {
	em, err := NewEmitted(4)
	if err != nil {
		t.Fatal(err)
	}
	disk := em.Disk()

	sol, err := em.Solve(2, 0.5, true)
	if err != nil {
		t.Fatal(err)
	}
	if d, i := maxAbsDiff(sol.S, disk); d != 0 {
		t.Errorf("no occultation differs from disk at %d by %v", i, d)
	}
	for i := range sol.DSDb {
		if sol.DSDb[i] != 0 || sol.DSDr[i] != 0 || sol.DSDx[i] != 0 {
			t.Fatalf("no occultation has nonzero gradient at %d", i)
		}
	}

	sol, err = em.Solve(0.2, 3, false)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range sol.S {
		if v != 0 {
			t.Errorf("total occultation S[%d] = %v, want 0", i, v)
		}
	}
}

func TestEmittedVisibleArea(t *testing.T) {
	em, err := NewEmitted(2)
	if err != nil {
		t.Fatal(err)
	}
	lens := func(b, r float64) float64 {
		if b+r <= 1 {
			return math.Pi * r * r
		}
		k0 := math.Acos((b*b + r*r - 1) / (2 * b * r))
		k1 := math.Acos((b*b + 1 - r*r) / (2 * b))
		return r*r*k0 + k1 - 0.5*math.Sqrt((-b+r+1)*(b+r-1)*(b-r+1)*(b+r+1))
	}
	tests := []struct {
		name string
		b, r float64
	}{
		{"inside", 0.3, 0.2},
		{"concentric", 0, 0.5},
		{"partial", 0.9, 0.3},
		{"partial b<r", 0.5, 0.7},
		{"large occultor", 1.5, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := em.Solve(tt.b, tt.r, false)
			if err != nil {
				t.Fatal(err)
			}
			want := math.Pi - lens(tt.b, tt.r)
			if math.Abs(sol.S[0]-want) > 1e-12 {
				t.Errorf("visible area = %.15f, want %.15f", sol.S[0], want)
			}
		})
	}
}

func TestEmittedConcentricRadial(t *testing.T) {
	em, err := NewEmitted(1)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range []float64{0.1, 0.5, 0.99} {
		sol, err := em.Solve(0, r, false)
		if err != nil {
			t.Fatal(err)
		}
		z := math.Sqrt(1 - r*r)
		want := 2 * math.Pi / 3 * z * z * z
		if got := sol.S[basis.Index(0, 0, 1)]; math.Abs(got-want) > 1e-12 {
			t.Errorf("r=%v: ∫∫ z = %v, want %v", r, got, want)
		}
	}
}

func TestEmittedMatchesQuadrature(t *testing.T) {
	const lmax = 6
	em, err := NewEmitted(lmax)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		b, r float64
	}{
		{"inside", 0.3, 0.2},
		{"inside b<r", 0.1, 0.4},
		{"inside b=r", 0.4, 0.4},
		{"concentric", 0, 0.3},
		{"partial", 0.9, 0.3},
		{"partial b<r", 0.5, 0.7},
		{"partial b=r", 0.6, 0.6},
		{"large occultor", 1.5, 1.2},
		{"grazing", 1.05, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := em.Solve(tt.b, tt.r, false)
			if err != nil {
				t.Fatal(err)
			}
			want := referenceVisible(lmax, 0, tt.b, tt.r)
			if d, i := maxAbsDiff(sol.S, want); d > 1e-9 {
				t.Errorf("S[%d] = %v, want %v (|Δ| = %g)", i, sol.S[i], want[i], d)
			}
		})
	}
}

func TestEmittedGradients(t *testing.T) {
	const (
		lmax = 4
		h    = 1e-6
	)
	em, err := NewEmitted(lmax)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		b, r float64
	}{
		{"inside", 0.3, 0.2},
		{"partial", 0.9, 0.3},
		{"partial b<r", 0.5, 0.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol, err := em.Solve(tt.b, tt.r, true)
			if err != nil {
				t.Fatal(err)
			}
			bp, _ := em.Solve(tt.b+h, tt.r, false)
			bm, _ := em.Solve(tt.b-h, tt.r, false)
			rp, _ := em.Solve(tt.b, tt.r+h, false)
			rm, _ := em.Solve(tt.b, tt.r-h, false)
			xp := referenceVisible(lmax, h, tt.b, tt.r)
			xm := referenceVisible(lmax, -h, tt.b, tt.r)
			for i := range sol.S {
				fdb := (bp.S[i] - bm.S[i]) / (2 * h)
				fdr := (rp.S[i] - rm.S[i]) / (2 * h)
				fdx := (xp[i] - xm[i]) / (2 * h)
				if math.Abs(fdb-sol.DSDb[i]) > 1e-6 {
					t.Errorf("dS[%d]/db = %v, finite difference %v", i, sol.DSDb[i], fdb)
				}
				if math.Abs(fdr-sol.DSDr[i]) > 1e-6 {
					t.Errorf("dS[%d]/dr = %v, finite difference %v", i, sol.DSDr[i], fdr)
				}
				if math.Abs(fdx-sol.DSDx[i]) > 1e-5 {
					t.Errorf("dS[%d]/dx = %v, finite difference %v", i, sol.DSDx[i], fdx)
				}
			}
		})
	}
}

func TestEmittedTangency(t *testing.T) {
	em, err := NewEmitted(3)
	if err != nil {
		t.Fatal(err)
	}
	const r = 0.3
	tests := []struct {
		name   string
		b1, b2 float64
	}{
		{"internal", 1 - r - 1e-10, 1 - r + 1e-10},
		{"external", 1 + r - 1e-10, 1 + r + 1e-10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s1, err := em.Solve(tt.b1, r, false)
			if err != nil {
				t.Fatal(err)
			}
			s2, err := em.Solve(tt.b2, r, false)
			if err != nil {
				t.Fatal(err)
			}
			if d, i := maxAbsDiff(s1.S, s2.S); d > 1e-6 {
				t.Errorf("S[%d] jumps by %g across tangency", i, d)
			}
		})
	}
}

func TestEmittedInvalidGeometry(t *testing.T) {
	em, err := NewEmitted(2)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range [][2]float64{{-0.1, 0.2}, {0.3, -1}, {math.NaN(), 0.1}, {0.5, math.Inf(1)}} {
		if _, err := em.Solve(g[0], g[1], false); !errors.Is(err, errs.ErrValue) {
			t.Errorf("Solve(%v, %v) error = %v, want value error", g[0], g[1], err)
		}
	}
	if _, err := NewEmitted(basis.MaxDegree + 2); !errors.Is(err, errs.ErrRange) {
		t.Errorf("NewEmitted above cap error = %v, want range error", err)
	}
}

func TestEllipticMomentBranchesAgree(t *testing.T) {
	for _, m2 := range []float64{0.55, 0.8, 0.95} {
		up, err := ellipticMoments(m2, 1-m2, 4)
		if err != nil {
			t.Fatal(err)
		}
		ser := make([]float64, 5)
		seriesMoments(m2, ser)
		for m := range ser {
			if math.Abs(up[m]-ser[m]) > 1e-10*ser[m] {
				t.Errorf("m2=%v S_%d: recursion %v, series %v", m2, m, up[m], ser[m])
			}
		}
	}
}

func TestEmittedAtTopDegree(t *testing.T) {
	lmax := basis.MaxDegree + 1
	em, err := NewEmitted(lmax)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range [][2]float64{{0.5, 0.7}, {0.3, 0.2}, {0.9, 0.3}} {
		sol, err := em.Solve(g[0], g[1], false)
		if err != nil {
			t.Fatal(err)
		}
		want := referenceVisible(lmax, 0, g[0], g[1])
		if d, i := maxAbsDiff(sol.S, want); d > 1e-9 {
			t.Errorf("b=%v r=%v: S[%d] = %v, want %v (|Δ| = %g)", g[0], g[1], i, sol.S[i], want[i], d)
		}
	}
}
