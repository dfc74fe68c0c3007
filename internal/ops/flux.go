package ops

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/basis"
	"github.com/litescript/ls-lightcurve/internal/solver"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

// fdStep is the step for the finite difference source and axis gradients.
const fdStep = 1e-6

// Result holds fluxes and, when requested, their gradients.
type Result struct {
	Flux []float64
	Grad *Gradient
}

// Gradient holds per-sample derivatives of the flux. U has one row per
// sample and one column per limb darkening coefficient.
type Gradient struct {
	Time, Theta []float64
	Xo, Yo, Ro  []float64
	Source      []solver.Vec3
	Axis        []wigner.Vec3
	U           [][]float64
}

// operator maps rotated map coefficients to Green's basis coefficients for
// one choice of limb darkening and filter.
type operator struct {
	// emit is N×Ny; refl[i] is the (N+1)×Ny operator for illumination by
	// the x, y or z component of the source.
	emit *mat.Dense
	refl [3]*mat.Dense
	// norm is the unocculted flux of the limb darkening profile alone.
	norm float64
}

func (o *Ops) operator(u, f []float64, reflected bool) (*operator, error) {
	mf, err := o.Filter.Matrix(u, f)
	if err != nil {
		return nil, err
	}
	var pf mat.Dense
	pf.Mul(mf, o.Basis.A1.Slice(0, o.Ny, 0, o.Ny))

	op := &operator{}
	if reflected {
		n1 := basis.Size(o.Deg + 1)
		a2 := o.Basis.A2.Slice(0, n1, 0, n1)
		for i := range op.refl {
			var lit mat.Dense
			lit.Mul(o.illum[i], &pf)
			op.refl[i] = new(mat.Dense)
			op.refl[i].Mul(a2, &lit)
		}
	} else {
		op.emit = new(mat.Dense)
		op.emit.Mul(o.Basis.A2.Slice(0, o.N, 0, o.N), &pf)
	}

	op.norm = o.ldNorm(u)
	return op, nil
}

// ldNorm returns (1/π)∫∫ I(μ) over the disk for the full coefficient
// vector u = (u_0, u_1, …).
func (o *Ops) ldNorm(u []float64) float64 {
	pu := mat.NewVecDense(basis.Size(o.Udeg), nil)
	pu.MulVec(o.Basis.AU, mat.NewVecDense(len(u), u))
	return floats.Dot(pu.RawVector().Data, o.Basis.RT[:pu.Len()]) / math.Pi
}

// forSource returns the Green's operator for a unit source direction.
func (op *operator) forSource(s solver.Vec3) *mat.Dense {
	if op.emit != nil {
		return op.emit
	}
	r, c := op.refl[0].Dims()
	out := mat.NewDense(r, c, nil)
	for i := range op.refl {
		var t mat.Dense
		t.Scale(s[i], op.refl[i])
		out.Add(out, &t)
	}
	return out
}

// evaluation is the outcome for one sample.
type evaluation struct {
	flux          float64
	dt, dtheta    float64
	dxo, dyo, dro float64
	du            []float64

	// row is ∂flux/∂y(t), the design matrix row before Taylor expansion.
	row []float64
}

// frame returns the impact parameter and the angle turning the occultor
// onto the +y axis. Masked samples are moved out of the way.
func frame(s sample) (b, r, alpha float64) {
	b = math.Hypot(s.xo, s.yo)
	if s.zo <= 0 || s.ro == 0 || b >= 1+s.ro {
		return 0, 0, 0
	}
	return b, s.ro, math.Atan2(s.xo, s.yo)
}

// unitSource rotates the source into the occultor frame and normalizes it.
func unitSource(src solver.Vec3, alpha float64) solver.Vec3 {
	n := src.Norm()
	sn, cs := math.Sincos(alpha)
	return solver.Vec3{
		(src[0]*cs - src[1]*sn) / n,
		(src[0]*sn + src[1]*cs) / n,
		src[2] / n,
	}
}

// evaluate computes the flux for one sample. With grad it also fills the
// analytic derivatives; with row it fills the design matrix row.
func (o *Ops) evaluate(bt *batch, op *operator, dops []*operator, axis wigner.Vec3, s sample, grad, row bool) (evaluation, error) {
	var ev evaluation
	y := mapAt(bt.y, s.t, false)
	yr, err := o.Rotator.Rotate(axis, s.theta, y)
	if err != nil {
		return ev, err
	}
	b, r, alpha := frame(s)
	yz, err := o.Rotator.RotateZ(alpha, yr)
	if err != nil {
		return ev, err
	}

	var sol solver.Solution
	var src solver.Vec3
	if bt.reflected {
		src = unitSource(s.src, alpha)
		rs, err := o.Reflected.Solve(b, r, src, grad)
		if err != nil {
			return ev, err
		}
		sol = rs.Solution
	} else {
		if sol, err = o.Emitted.Solve(b, r, grad); err != nil {
			return ev, err
		}
	}

	c := op.forSource(src)
	scale := 1 / (math.Pi * op.norm)
	g := mulVec(c, yz)
	ev.flux = floats.Dot(sol.S, g) * scale
	if !grad && !row {
		return ev, nil
	}

	// ∂flux/∂yz, carried back through both rotations.
	rz := mulVecT(c, sol.S)
	floats.Scale(scale, rz)
	rr, err := o.Rotator.RotateZ(-alpha, rz)
	if err != nil {
		return ev, err
	}
	ry, err := o.Rotator.Rotate(axis, -s.theta, rr)
	if err != nil {
		return ev, err
	}
	if row {
		ev.row = ry
	}
	if !grad {
		return ev, nil
	}

	ev.dt = floats.Dot(ry, mapAt(bt.y, s.t, true))
	dyr, err := o.Rotator.DRotate(axis, s.theta, y)
	if err != nil {
		return ev, err
	}
	ev.dtheta = floats.Dot(rr, dyr)

	db := floats.Dot(sol.DSDb, g) * scale
	dx := floats.Dot(sol.DSDx, g) * scale
	sn, cs := math.Sincos(alpha)
	ev.dxo = dx*cs + db*sn
	ev.dyo = -dx*sn + db*cs
	ev.dro = floats.Dot(sol.DSDr, g) * scale

	// flux = Σ u_i n_i / Σ u_i d_i with u_0 = 1.
	ev.du = make([]float64, o.Udeg)
	for i := range ev.du {
		d := dops[i]
		ni := floats.Dot(sol.S, mulVec(d.forSource(src), yz)) / math.Pi
		ev.du[i] = (ni - ev.flux*d.norm) / op.norm
	}
	return ev, nil
}

func mulVec(m *mat.Dense, v []float64) []float64 {
	r, _ := m.Dims()
	out := mat.NewVecDense(r, nil)
	out.MulVec(m, mat.NewVecDense(len(v), v))
	return out.RawVector().Data
}

func mulVecT(m *mat.Dense, v []float64) []float64 {
	_, c := m.Dims()
	out := mat.NewVecDense(c, nil)
	out.MulVec(m.T(), mat.NewVecDense(len(v), v))
	return out.RawVector().Data
}

// operators builds the operator for the batch and, with grad, the unit
// operators for each limb darkening coefficient u_1 … u_Udeg.
func (o *Ops) operators(bt *batch) (*operator, []*operator, error) {
	op, err := o.operator(bt.u, bt.f, bt.reflected)
	if err != nil {
		return nil, nil, err
	}
	if !bt.grad {
		return op, nil, nil
	}
	dops := make([]*operator, o.Udeg)
	for i := range dops {
		e := make([]float64, o.Udeg+1)
		e[i+1] = 1
		if dops[i], err = o.operator(e, bt.f, bt.reflected); err != nil {
			return nil, nil, err
		}
	}
	return op, dops, nil
}

// each runs fn for every sample index on a bounded pool of goroutines.
func each(nt int, fn func(i int) error) error {
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < nt; i++ {
		i := i
		g.Go(func() error { return fn(i) })
	}
	return g.Wait()
}

// Flux evaluates the disk-integrated flux for every sample. The flux of an
// unocculted uniform map with Y_{0,0} = 1 is one, with or without limb
// darkening.
func (o *Ops) Flux(in Inputs) (*Result, error) {
	bt, err := o.prepare(&in)
	if err != nil {
		return nil, err
	}
	op, dops, err := o.operators(bt)
	if err != nil {
		return nil, err
	}

	res := &Result{Flux: make([]float64, bt.nt)}
	var gr *Gradient
	if bt.grad {
		gr = &Gradient{
			Time:  make([]float64, bt.nt),
			Theta: make([]float64, bt.nt),
			Xo:    make([]float64, bt.nt),
			Yo:    make([]float64, bt.nt),
			Ro:    make([]float64, bt.nt),
			Axis:  make([]wigner.Vec3, bt.nt),
			U:     make([][]float64, bt.nt),
		}
		if bt.reflected {
			gr.Source = make([]solver.Vec3, bt.nt)
		}
		res.Grad = gr
	}

	err = each(bt.nt, func(i int) error {
		s := bt.samples[i]
		ev, err := o.evaluate(bt, op, dops, bt.axis, s, bt.grad, false)
		if err != nil {
			return err
		}
		res.Flux[i] = ev.flux
		if gr == nil {
			return nil
		}
		gr.Time[i], gr.Theta[i] = ev.dt, ev.dtheta
		gr.Xo[i], gr.Yo[i], gr.Ro[i] = ev.dxo, ev.dyo, ev.dro
		gr.U[i] = ev.du
		if gr.Axis[i], err = o.axisGradient(bt, op, s); err != nil {
			return err
		}
		if bt.reflected {
			gr.Source[i], err = o.sourceGradient(bt, op, s)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// fluxOnly evaluates a single sample without derivatives.
func (o *Ops) fluxOnly(bt *batch, op *operator, axis wigner.Vec3, s sample) (float64, error) {
	ev, err := o.evaluate(bt, op, nil, axis, s, false, false)
	return ev.flux, err
}

// sourceGradient differentiates the flux with respect to each component of
// the unnormalized source vector by central differences.
func (o *Ops) sourceGradient(bt *batch, op *operator, s sample) (solver.Vec3, error) {
	var d solver.Vec3
	for k := range d {
		hi, lo := s, s
		hi.src[k] += fdStep
		lo.src[k] -= fdStep
		fh, err := o.fluxOnly(bt, op, bt.axis, hi)
		if err != nil {
			return d, err
		}
		fl, err := o.fluxOnly(bt, op, bt.axis, lo)
		if err != nil {
			return d, err
		}
		d[k] = (fh - fl) / (2 * fdStep)
	}
	return d, nil
}

// axisGradient differentiates the flux with respect to each component of
// the rotation axis, renormalizing the perturbed axis.
func (o *Ops) axisGradient(bt *batch, op *operator, s sample) (wigner.Vec3, error) {
	var d wigner.Vec3
	if s.theta == 0 {
		return d, nil
	}
	for k := range d {
		fh, err := o.fluxOnly(bt, op, perturb(bt.axis, k, fdStep), s)
		if err != nil {
			return d, err
		}
		fl, err := o.fluxOnly(bt, op, perturb(bt.axis, k, -fdStep), s)
		if err != nil {
			return d, err
		}
		d[k] = (fh - fl) / (2 * fdStep)
	}
	return d, nil
}

func perturb(a wigner.Vec3, k int, h float64) wigner.Vec3 {
	a[k] += h
	n := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	return wigner.Vec3{a[0] / n, a[1] / n, a[2] / n}
}
