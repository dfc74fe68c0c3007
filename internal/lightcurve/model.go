// Package lightcurve evaluates time series of fluxes for a body and an
// orbiting companion, and exports them.
package lightcurve

import (
	"fmt"
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
	"github.com/litescript/ls-lightcurve/internal/ops"
	"github.com/litescript/ls-lightcurve/internal/orbit"
	"github.com/litescript/ls-lightcurve/internal/solver"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

// Mode selects which body is observed.
type Mode int

const (
	// Transit observes the primary in emitted light, occulted by the
	// companion.
	Transit Mode = iota
	// Phase observes the companion in light reflected from the primary,
	// occulted by the primary at secondary eclipse.
	Phase
)

// String returns the mode name used in scenario files.
func (m Mode) String() string {
	if m == Phase {
		return "phase"
	}
	return "transit"
}

// ParseMode converts a scenario string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "transit":
		return Transit, nil
	case "phase":
		return Phase, nil
	}
	return Transit, errs.Value("unknown mode %q", s)
}

// Model is a body with a surface map and a companion on a circular orbit.
type Model struct {
	Mode  Mode
	Ops   *ops.Ops
	Map   [][]float64 // Taylor terms of the map in time
	U     []float64   // limb darkening u1 … u_Udeg
	F     []float64   // optional filter
	Axis  wigner.Vec3 // rotation axis of the observed body, zero for sky north
	Orbit orbit.Orbit
	// Radius is the companion radius in primary radii.
	Radius float64
	// RotPeriod is the rotation period of the observed body in days; zero
	// means the body does not rotate. Theta0 is its angle at T0 in radians.
	RotPeriod float64
	Theta0    float64
	// Exposure is the integration time of each sample in days, and
	// Oversample the number of Simpson nodes per exposure (odd, ≥ 3).
	Exposure   float64
	Oversample int
}

// Validate checks the model before any evaluation.
func (m *Model) Validate() error {
	if m.Ops == nil {
		return errs.Value("model has no operator")
	}
	if err := m.Orbit.Validate(); err != nil {
		return fmt.Errorf("orbit: %w", err)
	}
	switch {
	case !(m.Radius > 0):
		return errs.Value("companion radius must be positive, got %v", m.Radius)
	case m.RotPeriod < 0:
		return errs.Value("rotation period must not be negative, got %v", m.RotPeriod)
	case m.Exposure < 0:
		return errs.Value("exposure must not be negative, got %v", m.Exposure)
	case m.Exposure > 0 && (m.Oversample < 3 || m.Oversample%2 == 0):
		return errs.Value("oversample must be odd and at least 3, got %d", m.Oversample)
	}
	return nil
}

// theta returns the rotation angle at time t.
func (m *Model) theta(t float64) float64 {
	if m.RotPeriod == 0 {
		return m.Theta0
	}
	return m.Theta0 + 2*math.Pi*(t-m.Orbit.T0)/m.RotPeriod
}

// simpson returns node offsets and weights for averaging over an exposure.
func simpson(exposure float64, n int) (offsets, weights []float64) {
	if exposure == 0 {
		return []float64{0}, []float64{1}
	}
	offsets = make([]float64, n)
	weights = make([]float64, n)
	h := exposure / float64(n-1)
	for i := range offsets {
		offsets[i] = -exposure/2 + float64(i)*h
		switch {
		case i == 0 || i == n-1:
			weights[i] = 1
		case i%2 == 1:
			weights[i] = 4
		default:
			weights[i] = 2
		}
		weights[i] *= h / 3 / exposure
	}
	return offsets, weights
}

// inputs lays out one flux evaluation per Simpson node.
func (m *Model) inputs(times []float64) ops.Inputs {
	offsets, _ := simpson(m.Exposure, m.Oversample)
	n := len(times) * len(offsets)
	in := ops.Inputs{
		Y: m.Map, U: m.U, F: m.F, Axis: m.Axis,
		Time:  make([]float64, n),
		Theta: make([]float64, n),
		Xo:    make([]float64, n),
		Yo:    make([]float64, n),
		Zo:    make([]float64, n),
		Ro:    make([]float64, n),
	}
	if m.Mode == Phase {
		in.Source = make([]solver.Vec3, n)
	}
	for i, t0 := range times {
		for j, dt := range offsets {
			k := i*len(offsets) + j
			t := t0 + dt
			in.Time[k] = t - m.Orbit.T0
			in.Theta[k] = m.theta(t)
			switch m.Mode {
			case Transit:
				p := m.Orbit.Position(t)
				in.Xo[k], in.Yo[k], in.Zo[k], in.Ro[k] = p.X, p.Y, p.Z, m.Radius
			case Phase:
				p, ro := m.Orbit.Reversed(t, m.Radius)
				in.Xo[k], in.Yo[k], in.Zo[k], in.Ro[k] = p.X, p.Y, p.Z, ro
				in.Source[k] = m.Orbit.Illumination(t).Array()
			}
		}
	}
	return in
}

// Compute evaluates the exposure-averaged flux at each time.
func (m *Model) Compute(times []float64) (*Curve, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(times) == 0 {
		return nil, errs.Shape("no sample times")
	}
	res, err := m.Ops.Flux(m.inputs(times))
	if err != nil {
		return nil, fmt.Errorf("flux: %w", err)
	}

	_, weights := simpson(m.Exposure, m.Oversample)
	c := &Curve{
		Mode:   m.Mode,
		Time:   append([]float64(nil), times...),
		Flux:   make([]float64, len(times)),
		Events: make([]orbit.Event, len(times)),
	}
	for i, t := range times {
		var f float64
		for j, w := range weights {
			f += w * res.Flux[i*len(weights)+j]
		}
		c.Flux[i] = f
		c.Events[i] = m.Orbit.EventAt(t, m.Radius)
	}
	return c, nil
}

// Times returns n evenly spaced times covering [start, stop].
func Times(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + (stop-start)*float64(i)/float64(n-1)
	}
	return out
}
