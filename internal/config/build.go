package config

import (
	"fmt"
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
	"github.com/litescript/ls-lightcurve/internal/index"
	"github.com/litescript/ls-lightcurve/internal/lightcurve"
	"github.com/litescript/ls-lightcurve/internal/ops"
	"github.com/litescript/ls-lightcurve/internal/orbit"
	"github.com/litescript/ls-lightcurve/internal/wigner"
)

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Validate checks the scenario without building any operators.
func (c *Config) Validate() error {
	if _, err := lightcurve.ParseMode(c.Mode); err != nil {
		return err
	}
	m := c.Map
	if len(m.LimbDarkening) != m.Udeg {
		return errs.Shape("limb_darkening has %d coefficients, want udeg = %d", len(m.LimbDarkening), m.Udeg)
	}
	if !finite(m.LimbDarkening...) {
		return errs.Value("limb_darkening must be finite, got %v", m.LimbDarkening)
	}
	for _, cf := range m.Coeffs {
		if _, err := index.LM(cf.L, cf.M, m.Ydeg); err != nil {
			return fmt.Errorf("map coefficient: %w", err)
		}
		if cf.Order < 0 {
			return errs.Value("coefficient (%d, %d) has negative order %d", cf.L, cf.M, cf.Order)
		}
		if !finite(cf.Value) {
			return errs.Value("coefficient (%d, %d) is not finite", cf.L, cf.M)
		}
	}
	for _, cf := range m.Filter {
		if _, err := index.LM(cf.L, cf.M, m.Fdeg); err != nil {
			return fmt.Errorf("filter coefficient: %w", err)
		}
	}
	for i, s := range m.Spots {
		if !(s.Sigma > 0) || !finite(s.Amp, s.Sigma, s.Lat, s.Lon) {
			return errs.Value("spot %d: width must be positive and values finite", i)
		}
	}
	if m.RotPeriod < 0 || !finite(m.Inc, m.Obl, m.RotPeriod, m.Theta0) {
		return errs.Value("map orientation or rotation is invalid")
	}

	if err := c.orbit().Validate(); err != nil {
		return fmt.Errorf("orbit: %w", err)
	}
	if !(c.Orbit.Radius > 0) || !finite(c.Orbit.T0, c.Orbit.Omega, c.Orbit.Radius) {
		return errs.Value("companion radius must be positive, got %v", c.Orbit.Radius)
	}

	s := c.Sampling
	switch {
	case s.Samples < 1:
		return errs.Value("samples must be at least 1, got %d", s.Samples)
	case !finite(s.Start, s.Stop, s.Exposure) || s.Stop < s.Start:
		return errs.Value("sampling window [%v, %v] is invalid", s.Start, s.Stop)
	case s.Exposure < 0:
		return errs.Value("exposure must not be negative, got %v", s.Exposure)
	case s.Exposure > 0 && (s.Oversample < 3 || s.Oversample%2 == 0):
		return errs.Value("oversample must be odd and at least 3, got %d", s.Oversample)
	}
	return nil
}

func (c *Config) orbit() orbit.Orbit {
	return orbit.Orbit{
		Period: c.Orbit.Period,
		T0:     c.Orbit.T0,
		A:      c.Orbit.A,
		Inc:    c.Orbit.Inc,
		Omega:  c.Orbit.Omega,
	}
}

// Impact returns the impact parameter of the configured orbit.
func (c *Config) Impact() float64 {
	return c.orbit().ImpactParameter()
}

// Model builds the light curve model described by the scenario.
func (c *Config) Model() (*lightcurve.Model, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o, err := ops.New(c.Map.Ydeg, c.Map.Udeg, c.Map.Fdeg)
	if err != nil {
		return nil, err
	}
	return c.build(o)
}

// build assembles the model on an operator of matching degrees.
func (c *Config) build(o *ops.Ops) (*lightcurve.Model, error) {
	m := c.Map
	mode, _ := lightcurve.ParseMode(c.Mode)

	terms := 1
	for _, cf := range m.Coeffs {
		terms = max(terms, cf.Order+1)
	}
	y := make([][]float64, terms)
	for k := range y {
		y[k] = make([]float64, o.Ny)
	}
	for _, cf := range m.Coeffs {
		n, _ := index.LM(cf.L, cf.M, m.Ydeg)
		y[cf.Order][n] += cf.Value
	}
	for i, s := range m.Spots {
		spot, err := o.SpotYlm([]float64{s.Amp}, radians(s.Sigma), radians(s.Lat),
			radians(s.Lon), radians(m.Inc), radians(m.Obl))
		if err != nil {
			return nil, fmt.Errorf("spot %d: %w", i, err)
		}
		for n, v := range spot[0] {
			y[0][n] += v
		}
	}

	var f []float64
	if len(m.Filter) > 0 {
		f = make([]float64, o.Nf)
		for _, cf := range m.Filter {
			n, _ := index.LM(cf.L, cf.M, m.Fdeg)
			f[n] += cf.Value
		}
	}

	return &lightcurve.Model{
		Mode:       mode,
		Ops:        o,
		Map:        y,
		U:          append([]float64(nil), m.LimbDarkening...),
		F:          f,
		Axis:       wigner.AxisFromAngles(radians(m.Inc), radians(m.Obl)),
		Orbit:      c.orbit(),
		Radius:     c.Orbit.Radius,
		RotPeriod:  m.RotPeriod,
		Theta0:     radians(m.Theta0),
		Exposure:   c.Sampling.Exposure,
		Oversample: c.Sampling.Oversample,
	}, nil
}

// Times returns the sample grid.
func (c *Config) Times() []float64 {
	return lightcurve.Times(c.Sampling.Start, c.Sampling.Stop, c.Sampling.Samples)
}
