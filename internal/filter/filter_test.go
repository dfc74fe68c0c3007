package filter

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/errs"
)

func newFilter(t *testing.T, ydeg, udeg, fdeg int) (*basis.Basis, *Filter) {
	t.Helper()
	b, err := basis.New(ydeg, udeg, fdeg)
	if err != nil {
		t.Fatal(err)
	}
	return b, New(b)
}

func TestIdentityFilter(t *testing.T) {
	b, f := newFilter(t, 2, 1, 1)
	y := []float64{1, 0.2, -0.1, 0.3, 0.05, 0, 0.1, 0, -0.2}
	p := b.ToPoly(y)
	got, err := f.Apply(p, []float64{1, 0}, []float64{1, 0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	want := basis.Pad(p, b.Deg)
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-14 {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestQuadraticLimbDarkening(t *testing.T) {
	_, f := newFilter(t, 0, 2, 0)
	u := []float64{1, 0.4, 0.26}
	got, err := f.Apply([]float64{1}, u, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	points := [][2]float64{{0, 0}, {0.3, 0.4}, {-0.7, 0.2}, {0.1, -0.95}}
	for _, pt := range points {
		mu := math.Sqrt(1 - pt[0]*pt[0] - pt[1]*pt[1])
		want := 1 - 0.4*(1-mu) - 0.26*(1-mu)*(1-mu)
		if v := basis.Poly(2, got, pt[0], pt[1]); math.Abs(v-want) > 1e-13 {
			t.Errorf("I(%v) = %v, want %v", pt, v, want)
		}
	}
}

func TestMatrixMatchesApply(t *testing.T) {
	b, f := newFilter(t, 2, 2, 1)
	u := []float64{1, 0.3, 0.1}
	fc := []float64{1, 0.1, 0.2, -0.05}
	y := []float64{1, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}
	p := b.ToPoly(y)

	m, err := f.Matrix(u, fc)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := f.Apply(p, u, fc)
	var got mat.VecDense
	got.MulVec(m, mat.NewVecDense(len(p), p))
	for i := range want {
		if math.Abs(got.AtVec(i)-want[i]) > 1e-13 {
			t.Errorf("[%d] = %v, want %v", i, got.AtVec(i), want[i])
		}
	}

	d, err := f.DMatrixDu(u, fc)
	if err != nil {
		t.Fatal(err)
	}
	var sum mat.Dense
	for i, di := range d {
		var scaled mat.Dense
		scaled.Scale(u[i], di)
		if i == 0 {
			sum.CloneFrom(&scaled)
		} else {
			sum.Add(&sum, &scaled)
		}
	}
	if !mat.EqualApprox(&sum, m, 1e-13) {
		t.Error("Σ u_i ∂M/∂u_i does not reproduce M")
	}
}

func TestFilterShapeErrors(t *testing.T) {
	_, f := newFilter(t, 1, 1, 0)
	tests := []struct {
		name    string
		p, u, f []float64
	}{
		{"map", []float64{1}, []float64{1, 0}, []float64{1}},
		{"limb darkening", []float64{1, 0, 0, 0}, []float64{1}, []float64{1}},
		{"filter", []float64{1, 0, 0, 0}, []float64{1, 0}, []float64{1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.Apply(tt.p, tt.u, tt.f); !errors.Is(err, errs.ErrShape) {
				t.Errorf("error = %v, want shape error", err)
			}
		})
	}
}
