package elliptic

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mathext"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

func TestCompleteKnownValues(t *testing.T) {
	tests := []struct {
		name  string
		k     float64
		wantK float64
		wantE float64
	}{
		{"k=0", 0, math.Pi / 2, math.Pi / 2},
		{"k=0.5", 0.5, 1.6857503548125961, 1.4674622093394272},
		{"k=1/sqrt2", 1 / math.Sqrt2, 1.8540746773013719, 1.3506438810476755},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kk, err := K(tt.k)
			if err != nil {
				t.Fatalf("K(%v) error: %v", tt.k, err)
			}
			if math.Abs(kk-tt.wantK) > 1e-14 {
				t.Errorf("K(%v) = %.16f, want %.16f", tt.k, kk, tt.wantK)
			}
			ek, err := E(tt.k)
			if err != nil {
				t.Fatalf("E(%v) error: %v", tt.k, err)
			}
			if math.Abs(ek-tt.wantE) > 1e-14 {
				t.Errorf("E(%v) = %.16f, want %.16f", tt.k, ek, tt.wantE)
			}
		})
	}
}

func TestCompleteNearOne(t *testing.T) {
	// K diverges logarithmically: K ≈ ln(4/kc) for small kc.
	kc := 1e-9
	kk, ek, err := KE(kc)
	if err != nil {
		t.Fatalf("KE error: %v", err)
	}
	want := math.Log(4 / kc)
	if math.Abs(kk-want) > 1e-6 {
		t.Errorf("K near 1 = %v, want ~%v", kk, want)
	}
	if math.Abs(ek-1) > 1e-6 {
		t.Errorf("E near 1 = %v, want ~1", ek)
	}

	k1, err := K(1)
	if err != nil || !math.IsInf(k1, 1) {
		t.Errorf("K(1) = %v, %v; want +Inf", k1, err)
	}
	e1, err := E(1)
	if err != nil || e1 != 1 {
		t.Errorf("E(1) = %v, %v; want 1", e1, err)
	}
}

func TestPiComplete(t *testing.T) {
	// Π(0, k) = K(k)
	for _, k := range []float64{0.1, 0.5, 0.9} {
		pi, err := Pi(0, k)
		if err != nil {
			t.Fatal(err)
		}
		kk, _ := K(k)
		if math.Abs(pi-kk) > 1e-14 {
			t.Errorf("Π(0, %v) = %v, want K = %v", k, pi, kk)
		}
	}

	// Π(n, 0) = π / (2√(1-n))
	for _, n := range []float64{-5, -0.5, 0.3, 0.9} {
		pi, err := Pi(n, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := math.Pi / (2 * math.Sqrt(1-n))
		if math.Abs(pi-want) > 1e-13 {
			t.Errorf("Π(%v, 0) = %v, want %v", n, pi, want)
		}
	}
}

func TestDomainErrors(t *testing.T) {
	for _, k := range []float64{-0.1, 1.01, math.NaN()} {
		if _, err := K(k); !errors.Is(err, errs.ErrValue) {
			t.Errorf("K(%v) error = %v, want value error", k, err)
		}
		if _, err := E(k); !errors.Is(err, errs.ErrValue) {
			t.Errorf("E(%v) error = %v, want value error", k, err)
		}
	}
	// Inside the tolerance is clamped, not rejected.
	if _, err := K(1 - 1e-13); err != nil {
		t.Errorf("K just below 1 should succeed: %v", err)
	}
	if _, err := Cel(0, 1, 1, 1); !errors.Is(err, errs.ErrValue) {
		t.Errorf("Cel(kc=0) error = %v, want value error", err)
	}
}

func TestCompleteMatchesMathext(t *testing.T) {
	for _, k := range []float64{0, 0.1, 0.5, 0.9, 0.999} {
		m := k * k
		kk, err := K(k)
		if err != nil {
			t.Fatal(err)
		}
		if want := mathext.CompleteK(m); math.Abs(kk-want) > 1e-12*want {
			t.Errorf("K(%v) = %v, mathext %v", k, kk, want)
		}
		ek, err := E(k)
		if err != nil {
			t.Fatal(err)
		}
		if want := mathext.CompleteE(m); math.Abs(ek-want) > 1e-12*want {
			t.Errorf("E(%v) = %v, mathext %v", k, ek, want)
		}
	}
}
