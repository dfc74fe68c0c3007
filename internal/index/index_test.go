package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

func TestLM(t *testing.T) {
	tests := []struct {
		l, m, lmax int
		want       int
		wantErr    bool
	}{
		{0, 0, 2, 0, false},
		{1, -1, 2, 1, false},
		{2, 2, 2, 8, false},
		{3, 0, 2, 0, true},
		{1, 2, 2, 0, true},
		{-1, 0, 2, 0, true},
	}
	for _, tt := range tests {
		got, err := LM(tt.l, tt.m, tt.lmax)
		if tt.wantErr {
			if !errors.Is(err, errs.ErrIndex) {
				t.Errorf("LM(%d, %d) error = %v, want index error", tt.l, tt.m, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("LM(%d, %d) = %d, %v; want %d", tt.l, tt.m, got, err, tt.want)
		}
	}
}

func TestDegreeInverse(t *testing.T) {
	for n := 0; n < Len(10); n++ {
		l, m := Degree(n)
		if got, err := LM(l, m, 10); err != nil || got != n {
			t.Errorf("Degree(%d) = (%d, %d) does not round trip", n, l, m)
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		lmax   int
		ls, ms Span
		want   []int
	}{
		{"negative orders of l=3", 3, Between(3, 4), Between(-3, 0), []int{9, 10, 11}},
		{"all of l=1..2", 2, Between(1, 3), All(), []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{"m=0 column", 2, All(), Between(0, 1), []int{0, 2, 6}},
		{"clipped orders", 2, Between(1, 2), Between(-5, 5), []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.lmax, tt.ls, tt.ms)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDegrees(t *testing.T) {
	got, err := Degrees(3, All(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{8, 14}; !reflect.DeepEqual(got, want) {
		t.Errorf("Degrees(m=2) = %v, want %v", got, want)
	}
}

func TestSpanErrors(t *testing.T) {
	if _, err := Select(3, Span{Step: 2}, All()); !errors.Is(err, errs.ErrValue) {
		t.Errorf("step 2 error = %v, want value error", err)
	}
	if _, err := Select(3, Between(5, 6), All()); !errors.Is(err, errs.ErrIndex) {
		t.Errorf("degree above lmax error = %v, want index error", err)
	}
	if _, err := Orders(3, 2, Span{Step: -1}); !errors.Is(err, errs.ErrValue) {
		t.Errorf("negative step error = %v, want value error", err)
	}
}
