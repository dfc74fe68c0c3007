// Package config handles scenario configuration loaded from YAML and flags.
package config

// Config holds a complete light curve scenario.
type Config struct {
	Name     string         `yaml:"name"`
	Mode     string         `yaml:"mode"`
	Map      MapConfig      `yaml:"map"`
	Orbit    OrbitConfig    `yaml:"orbit"`
	Sampling SamplingConfig `yaml:"sampling"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Coeff places one spherical harmonic coefficient. Order selects the
// Taylor term in time the value belongs to.
type Coeff struct {
	L     int     `yaml:"l"`
	M     int     `yaml:"m"`
	Value float64 `yaml:"value"`
	Order int     `yaml:"order,omitempty"`
}

// SpotConfig describes a Gaussian spot. Angles are in degrees.
type SpotConfig struct {
	Amp   float64 `yaml:"amp"`
	Sigma float64 `yaml:"sigma"`
	Lat   float64 `yaml:"lat"`
	Lon   float64 `yaml:"lon"`
}

// MapConfig describes the surface of the observed body.
type MapConfig struct {
	Ydeg          int          `yaml:"ydeg"`
	Udeg          int          `yaml:"udeg"`
	Fdeg          int          `yaml:"fdeg"`
	Coeffs        []Coeff      `yaml:"coeffs"`
	LimbDarkening []float64    `yaml:"limb_darkening"`
	Filter        []Coeff      `yaml:"filter,omitempty"`
	Spots         []SpotConfig `yaml:"spots,omitempty"`

	// Inc and Obl orient the rotation axis, in degrees.
	Inc float64 `yaml:"inc"`
	Obl float64 `yaml:"obl"`

	// RotPeriod in days; zero for a body that does not rotate.
	RotPeriod float64 `yaml:"rot_period"`
	Theta0    float64 `yaml:"theta0"` // degrees
}

// OrbitConfig describes the companion and its circular orbit.
type OrbitConfig struct {
	Period float64 `yaml:"period"`
	T0     float64 `yaml:"t0"`
	A      float64 `yaml:"a"`
	Inc    float64 `yaml:"inc"`
	Omega  float64 `yaml:"omega"`
	Radius float64 `yaml:"radius"`
}

// SamplingConfig sets the output time grid and exposure integration.
type SamplingConfig struct {
	Start      float64 `yaml:"start"`
	Stop       float64 `yaml:"stop"`
	Samples    int     `yaml:"samples"`
	Exposure   float64 `yaml:"exposure"`
	Oversample int     `yaml:"oversample"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a hot Jupiter transiting a quadratically limb-darkened star.
func Default() *Config {
	return &Config{
		Name: "Hot Jupiter",
		Mode: "transit",
		Map: MapConfig{
			Ydeg:          0,
			Udeg:          2,
			Coeffs:        []Coeff{{L: 0, M: 0, Value: 1}},
			LimbDarkening: []float64{0.4, 0.26},
			Inc:           90,
		},
		Orbit: OrbitConfig{
			Period: 3,
			A:      10,
			Inc:    89,
			Radius: 0.1,
		},
		Sampling: SamplingConfig{
			Start:      -0.15,
			Stop:       0.15,
			Samples:    300,
			Oversample: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
