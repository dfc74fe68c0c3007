package config

import (
	"fmt"
	"slices"
	"sync"

	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/ops"
	"github.com/litescript/ls-lightcurve/internal/state"
)

// Runner recomputes a scenario with interactive parameters swapped in.
// The operator is built once and shared by every run.
type Runner struct {
	base *Config

	mu  sync.Mutex
	ops *ops.Ops
}

// NewRunner returns a runner for cfg. cfg must not be modified afterwards.
func NewRunner(cfg *Config) *Runner {
	return &Runner{base: cfg}
}

// Params returns the interactive parameters of the base scenario.
func (r *Runner) Params() state.Params {
	return state.Params{
		Radius: r.base.Orbit.Radius,
		Impact: r.base.Impact(),
		LD:     slices.Clone(r.base.Map.LimbDarkening),
	}
}

// With returns a copy of the base scenario carrying p.
func (r *Runner) With(p state.Params) *Config {
	c := *r.base
	c.Orbit.Radius = p.Radius
	c.Orbit.Inc = InclinationForImpact(p.Impact, c.Orbit.A)
	c.Map.LimbDarkening = slices.Clone(p.LD)
	c.Map.Udeg = len(p.LD)
	return &c
}

func (r *Runner) operator(c *Config) (*ops.Ops, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := c.Map
	if r.ops != nil && r.ops.Ydeg == m.Ydeg && r.ops.Udeg == m.Udeg && r.ops.Fdeg == m.Fdeg {
		return r.ops, nil
	}
	o, err := ops.New(m.Ydeg, m.Udeg, m.Fdeg)
	if err != nil {
		return nil, err
	}
	r.ops = o
	return o, nil
}

// Compute evaluates the scenario with p over the configured time grid.
func (r *Runner) Compute(p state.Params) (*lightcurve.Curve, error) {
	c := r.With(p)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o, err := r.operator(c)
	if err != nil {
		return nil, err
	}
	model, err := c.build(o)
	if err != nil {
		return nil, err
	}
	curve, err := model.Compute(c.Times())
	if err != nil {
		return nil, fmt.Errorf("computing %s: %w", c.Name, err)
	}
	curve.Name = c.Name
	return curve, nil
}
