package config

import (
	"flag"
	"math"
	"strconv"
	"strings"
)

// Flags holds command-line overrides. Only flags set explicitly on the
// command line override the scenario.
type Flags struct {
	fs *flag.FlagSet

	Config   string
	Mode     string
	Radius   float64
	Impact   float64
	Period   float64
	LD       string
	Start    float64
	Stop     float64
	Samples  int
	Exposure float64
	LogLevel string
	LogFile  string
	Debug    bool
}

// Bind registers scenario flags on fs.
func Bind(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to scenario file")
	fs.StringVar(&f.Mode, "mode", "", "Observation mode: transit or phase")
	fs.Float64Var(&f.Radius, "radius", 0, "Companion radius in primary radii")
	fs.Float64Var(&f.Impact, "impact", 0, "Impact parameter, overrides orbit inclination")
	fs.Float64Var(&f.Period, "period", 0, "Orbital period in days")
	fs.StringVar(&f.LD, "ld", "", "Comma-separated limb darkening coefficients")
	fs.Float64Var(&f.Start, "start", 0, "First sample time in days")
	fs.Float64Var(&f.Stop, "stop", 0, "Last sample time in days")
	fs.IntVar(&f.Samples, "samples", 0, "Number of samples")
	fs.Float64Var(&f.Exposure, "exposure", 0, "Exposure time in days")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to a rotating file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	return f
}

// set reports which flags were given on the command line.
func (f *Flags) set() map[string]bool {
	seen := make(map[string]bool)
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) { seen[fl.Name] = true })
	}
	return seen
}

// apply overlays explicitly set flags onto cfg.
func (f *Flags) apply(cfg *Config) {
	seen := f.set()
	if seen["mode"] {
		cfg.Mode = f.Mode
	}
	if seen["radius"] {
		cfg.Orbit.Radius = f.Radius
	}
	if seen["period"] {
		cfg.Orbit.Period = f.Period
	}
	if seen["impact"] && cfg.Orbit.A > 0 {
		cfg.Orbit.Inc = InclinationForImpact(f.Impact, cfg.Orbit.A)
	}
	if seen["ld"] {
		cfg.Map.LimbDarkening = parseList(f.LD)
		cfg.Map.Udeg = len(cfg.Map.LimbDarkening)
	}
	if seen["start"] {
		cfg.Sampling.Start = f.Start
	}
	if seen["stop"] {
		cfg.Sampling.Stop = f.Stop
	}
	if seen["samples"] {
		cfg.Sampling.Samples = f.Samples
	}
	if seen["exposure"] {
		cfg.Sampling.Exposure = f.Exposure
	}
	if seen["log-level"] {
		cfg.Logging.Level = f.LogLevel
	}
	if seen["log-file"] {
		cfg.Logging.LogFile = f.LogFile
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
}

// InclinationForImpact returns the inclination in degrees that gives
// impact parameter b on an orbit of semi-major axis a.
func InclinationForImpact(b, a float64) float64 {
	c := math.Max(-1, math.Min(1, b/a))
	return math.Acos(c) * 180 / math.Pi
}

// parseList parses comma-separated floats. Unparseable entries become NaN
// so that validation rejects them.
func parseList(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return []float64{}
	}
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
