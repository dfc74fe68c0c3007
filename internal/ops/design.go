package ops

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/solver"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

// DesignMatrix returns the nt × (Ny·K) matrix X with Flux = X·vec(Y), where
// K is the number of Taylor terms in in.Y (one when Y is empty) and vec
// stacks the terms in order. Only the shapes of in.Y are used.
func (o *Ops) DesignMatrix(in Inputs) (*mat.Dense, error) {
	if len(in.Y) == 0 {
		in.Y = [][]float64{make([]float64, o.Ny)}
	}
	in.Grad = false
	bt, err := o.prepare(&in)
	if err != nil {
		return nil, err
	}
	op, _, err := o.operators(bt)
	if err != nil {
		return nil, err
	}

	k := len(bt.y)
	x := mat.NewDense(bt.nt, o.Ny*k, nil)
	err = each(bt.nt, func(i int) error {
		s := bt.samples[i]
		ev, err := o.evaluate(bt, op, nil, bt.axis, s, false, true)
		if err != nil {
			return err
		}
		row := x.RawRowView(i)
		coef := 1.0
		for j := 0; j < k; j++ {
			if j > 0 {
				coef *= s.t / float64(j)
			}
			for n, v := range ev.row {
				row[j*o.Ny+n] = coef * v
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return x, nil
}

// Points describes a batch of intensity evaluations on the projected disk.
// Per-sample vectors broadcast as in Inputs.
type Points struct {
	Y    [][]float64
	U    []float64
	F    []float64
	Axis wigner.Vec3

	Time   []float64
	Theta  []float64
	Px, Py []float64
	// Source selects reflected light when non-empty.
	Source []solver.Vec3
}

// Intensity returns the specific intensity at each (Px, Py) point, scaled so
// that the disk average divided by π matches Flux. Points off the disk are
// NaN. In reflected light the night side is zero.
func (o *Ops) Intensity(pt Points) ([]float64, error) {
	nt := max(1, len(pt.Time), len(pt.Theta), len(pt.Px), len(pt.Py), len(pt.Source))
	xs, err := column("px", pt.Px, nt, 0)
	if err != nil {
		return nil, err
	}
	ys, err := column("py", pt.Py, nt, 0)
	if err != nil {
		return nil, err
	}
	// Time is broadcast here so the batch takes its length from the points.
	ts, err := column("time", pt.Time, nt, 0)
	if err != nil {
		return nil, err
	}
	in := Inputs{
		Y: pt.Y, U: pt.U, F: pt.F, Axis: pt.Axis,
		Time: ts, Theta: pt.Theta, Source: pt.Source,
	}
	bt, err := o.prepare(&in)
	if err != nil {
		return nil, err
	}

	mf, err := o.Filter.Matrix(bt.u, bt.f)
	if err != nil {
		return nil, err
	}
	norm := o.ldNorm(bt.u)

	out := make([]float64, nt)
	err = each(nt, func(i int) error {
		s := bt.samples[i]
		yr, err := o.Rotator.Rotate(bt.axis, s.theta, mapAt(bt.y, s.t, false))
		if err != nil {
			return err
		}
		p := mulVec(mf, o.Basis.ToPoly(yr))
		v := basis.Poly(o.Deg, p, xs[i], ys[i]) / norm
		if bt.reflected && !math.IsNaN(v) {
			z := math.Sqrt(math.Max(0, 1-xs[i]*xs[i]-ys[i]*ys[i]))
			n := s.src.Norm()
			v *= math.Max(0, (s.src[0]*xs[i]+s.src[1]*ys[i]+s.src[2]*z)/n)
		}
		out[i] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
