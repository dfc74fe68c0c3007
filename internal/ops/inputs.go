package ops

import (
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
	"github.com/litescript/ls-lightcurve/internal/solver"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

// Inputs describes a batch of flux evaluations. Every per-sample vector is
// either empty (default), length one (broadcast) or length nt, where nt is
// the longest of them.
type Inputs struct {
	// Y holds the map as Taylor terms in time: y(t) = Σ Y[k] t^k / k!.
	// Each term has length Ny.
	Y [][]float64
	// U holds the limb darkening coefficients u1 … u_Udeg.
	U []float64
	// F holds the filter coefficients. Nil means no filter.
	F []float64
	// Axis is the unit rotation axis. The zero vector means DefaultAxis.
	Axis wigner.Vec3

	Time  []float64 // default 0
	Theta []float64 // rotation angle in radians, default 0
	Xo    []float64 // default 0
	Yo    []float64 // default 0
	Zo    []float64 // default 1; zo ≤ 0 puts the occultor behind the body
	Ro    []float64 // default 0

	// Source holds the direction toward the illuminating star for reflected
	// light. An empty Source selects emitted light.
	Source []solver.Vec3

	// Grad requests derivatives with respect to every input.
	Grad bool
}

// sample is one broadcast row of Inputs.
type sample struct {
	t, theta       float64
	xo, yo, zo, ro float64
	src            solver.Vec3
}

// batch is a validated Inputs.
type batch struct {
	nt        int
	samples   []sample
	y         [][]float64
	u, f      []float64
	axis      wigner.Vec3
	reflected bool
	grad      bool
}

func column(name string, v []float64, nt int, def float64) ([]float64, error) {
	switch len(v) {
	case 0:
		v = []float64{def}
	case 1, nt:
	default:
		return nil, errs.Shape("%s has length %d, want 1 or %d", name, len(v), nt)
	}
	out := make([]float64, nt)
	for i := range out {
		if len(v) == 1 {
			out[i] = v[0]
		} else {
			out[i] = v[i]
		}
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, errs.Value("%s[%d] is not finite", name, i)
		}
	}
	return out, nil
}

// prepare validates in and broadcasts it to nt samples.
func (o *Ops) prepare(in *Inputs) (*batch, error) {
	if len(in.Y) == 0 {
		return nil, errs.Shape("map needs at least one coefficient vector")
	}
	for k, yk := range in.Y {
		if len(yk) != o.Ny {
			return nil, errs.Shape("map term %d has length %d, want %d", k, len(yk), o.Ny)
		}
	}
	if len(in.U) != o.Udeg {
		return nil, errs.Shape("limb darkening has %d coefficients, want %d", len(in.U), o.Udeg)
	}
	f := in.F
	if f == nil {
		f = make([]float64, o.Nf)
		f[0] = 1
	} else if len(f) != o.Nf {
		return nil, errs.Shape("filter has length %d, want %d", len(f), o.Nf)
	}
	axis := in.Axis
	if axis == (wigner.Vec3{}) {
		axis = DefaultAxis
	}
	if n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2]); math.Abs(n-1) > 1e-8 {
		return nil, errs.Value("rotation axis %v is not a unit vector", axis)
	}

	nt := 1
	for _, n := range []int{len(in.Time), len(in.Theta), len(in.Xo), len(in.Yo), len(in.Zo), len(in.Ro), len(in.Source)} {
		nt = max(nt, n)
	}
	cols := make([][]float64, 6)
	var err error
	for i, c := range []struct {
		name string
		v    []float64
		def  float64
	}{
		{"time", in.Time, 0}, {"theta", in.Theta, 0},
		{"xo", in.Xo, 0}, {"yo", in.Yo, 0}, {"zo", in.Zo, 1}, {"ro", in.Ro, 0},
	} {
		if cols[i], err = column(c.name, c.v, nt, c.def); err != nil {
			return nil, err
		}
	}
	switch len(in.Source) {
	case 0, 1, nt:
	default:
		return nil, errs.Shape("source has %d rows, want 1 or %d", len(in.Source), nt)
	}

	u := make([]float64, o.Udeg+1)
	u[0] = 1
	copy(u[1:], in.U)
	bt := &batch{
		nt:        nt,
		samples:   make([]sample, nt),
		y:         in.Y,
		u:         u,
		f:         f,
		axis:      axis,
		reflected: len(in.Source) > 0,
		grad:      in.Grad,
	}
	for i := range bt.samples {
		s := sample{
			t: cols[0][i], theta: cols[1][i],
			xo: cols[2][i], yo: cols[3][i], zo: cols[4][i], ro: cols[5][i],
		}
		if s.ro < 0 {
			return nil, errs.Value("ro[%d] = %v is negative", i, s.ro)
		}
		if bt.reflected {
			if len(in.Source) == 1 {
				s.src = in.Source[0]
			} else {
				s.src = in.Source[i]
			}
			if n := s.src.Norm(); n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
				return nil, errs.Value("source[%d] = %v is not a usable direction", i, s.src)
			}
		}
		bt.samples[i] = s
	}
	return bt, nil
}

// mapAt evaluates the Taylor expansion of the map, or its time derivative,
// at t.
func mapAt(y [][]float64, t float64, deriv bool) []float64 {
	out := make([]float64, len(y[0]))
	coef := 1.0
	start := 0
	if deriv {
		start = 1
	}
	for k := start; k < len(y); k++ {
		if k > start {
			coef *= t / float64(k-start)
		}
		for i, v := range y[k] {
			out[i] += coef * v
		}
	}
	return out
}
