package orbit

import (
	"errors"
	"math"
	"testing"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit z", Vec3{0, 0, 1}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Norm(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
	if got := (Vec3{}).Normalized(); got != (Vec3{}) {
		t.Errorf("zero Normalized() = %v", got)
	}
}

func TestPositionAtKeyPhases(t *testing.T) {
	o := Orbit{Period: 3, T0: 1, A: 10, Inc: 87, Omega: 0}
	b := 10 * math.Cos(87*math.Pi/180)

	tests := []struct {
		name string
		t    float64
		want Vec3
	}{
		{"mid-transit", 1, Vec3{0, -b, 10 * math.Sin(87 * math.Pi / 180)}},
		{"quadrature", 1.75, Vec3{10, 0, 0}},
		{"eclipse", 2.5, Vec3{0, b, -10 * math.Sin(87 * math.Pi / 180)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := o.Position(tt.t)
			if math.Abs(got.X-tt.want.X) > 1e-12 || math.Abs(got.Y-tt.want.Y) > 1e-12 || math.Abs(got.Z-tt.want.Z) > 1e-12 {
				t.Errorf("Position(%v) = %+v, want %+v", tt.t, got, tt.want)
			}
		})
	}
	if got := o.ImpactParameter(); math.Abs(got-b) > 1e-12 {
		t.Errorf("ImpactParameter() = %v, want %v", got, b)
	}
}

func TestOmegaRotatesSkyOnly(t *testing.T) {
	a := Orbit{Period: 2, A: 5, Inc: 80}
	b := a
	b.Omega = 90
	for _, tm := range []float64{0, 0.3, 1.1} {
		pa, pb := a.Position(tm), b.Position(tm)
		if math.Abs(pb.X+pa.Y) > 1e-12 || math.Abs(pb.Y-pa.X) > 1e-12 || pb.Z != pa.Z {
			t.Errorf("t=%v: Omega=90 gives %+v from %+v", tm, pb, pa)
		}
	}
}

func TestPhaseAngleAndEvents(t *testing.T) {
	o := Orbit{Period: 4, A: 8, Inc: 90}
	tests := []struct {
		t     float64
		phase float64
		event Event
	}{
		{0, 180, Transit},
		{1, 90, NoEvent},
		{2, 0, Eclipse},
	}
	for _, tt := range tests {
		if got := o.PhaseAngle(tt.t); math.Abs(got-tt.phase) > 1e-9 {
			t.Errorf("PhaseAngle(%v) = %v, want %v", tt.t, got, tt.phase)
		}
		if got := o.EventAt(tt.t, 0.1); got != tt.event {
			t.Errorf("EventAt(%v) = %v, want %v", tt.t, got, tt.event)
		}
	}
}

func TestDuration(t *testing.T) {
	o := Orbit{Period: 10, A: 10, Inc: 90}
	r := 0.1
	want := 10 / math.Pi * math.Asin(1.1/10)
	if got := o.Duration(r); math.Abs(got-want) > 1e-12 {
		t.Errorf("Duration = %v, want %v", got, want)
	}
	// Contact points sit at separation 1+r.
	p := o.Position(want / 2)
	if math.Abs(p.SkySeparation()-1.1) > 1e-12 {
		t.Errorf("separation at fourth contact = %v, want 1.1", p.SkySeparation())
	}
	grazing := Orbit{Period: 10, A: 10, Inc: 80}
	if got := grazing.Duration(r); got != 0 {
		t.Errorf("non-transiting Duration = %v, want 0", got)
	}
}

func TestReversed(t *testing.T) {
	o := Orbit{Period: 1, A: 20, Inc: 89}
	p, ro := o.Reversed(0.5, 0.1)
	if ro != 10 {
		t.Errorf("primary radius = %v, want 10", ro)
	}
	want := o.Position(0.5).Scale(-10)
	if p != want {
		t.Errorf("Reversed position = %+v, want %+v", p, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		o    Orbit
		ok   bool
	}{
		{"good", Orbit{Period: 1, A: 3, Inc: 90}, true},
		{"zero period", Orbit{Period: 0, A: 3, Inc: 90}, false},
		{"negative axis", Orbit{Period: 1, A: -1, Inc: 90}, false},
		{"inclination", Orbit{Period: 1, A: 3, Inc: 200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.o.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if !tt.ok && !errors.Is(err, errs.ErrValue) {
				t.Errorf("Validate() = %v, want value error", err)
			}
		})
	}
}
