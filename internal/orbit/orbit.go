package orbit

import (
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// Orbit is a circular orbit of a companion around the primary.
type Orbit struct {
	Period float64 // days
	T0     float64 // time of mid-transit, days
	A      float64 // semi-major axis in primary radii
	Inc    float64 // inclination in degrees, 90 is edge-on
	Omega  float64 // sky position angle of the orbit normal, degrees
}

// Validate checks the orbit parameters.
func (o Orbit) Validate() error {
	switch {
	case !(o.Period > 0) || math.IsInf(o.Period, 0):
		return errs.Value("period must be positive, got %v", o.Period)
	case !(o.A > 0) || math.IsInf(o.A, 0):
		return errs.Value("semi-major axis must be positive, got %v", o.A)
	case o.Inc < 0 || o.Inc > 180 || math.IsNaN(o.Inc):
		return errs.Value("inclination %v outside [0, 180]", o.Inc)
	}
	return nil
}

// MeanAnomaly returns the orbital phase in radians, zero at mid-transit.
func (o Orbit) MeanAnomaly(t float64) float64 {
	return 2 * math.Pi * (t - o.T0) / o.Period
}

// Position returns the companion's position relative to the primary.
// Z > 0 means the companion is in front of the primary.
func (o Orbit) Position(t float64) Vec3 {
	s, c := math.Sincos(o.MeanAnomaly(t))
	si, ci := math.Sincos(degToRad(o.Inc))
	x := o.A * s
	y := -o.A * c * ci
	z := o.A * c * si

	so, co := math.Sincos(degToRad(o.Omega))
	return Vec3{X: x*co - y*so, Y: x*so + y*co, Z: z}
}

// ImpactParameter is the sky separation at mid-transit.
func (o Orbit) ImpactParameter() float64 {
	return o.A * math.Abs(math.Cos(degToRad(o.Inc)))
}

// Duration returns the time between first and last contact for a
// companion of radius r, or zero when it never transits.
func (o Orbit) Duration(r float64) float64 {
	b := o.ImpactParameter()
	if b >= 1+r {
		return 0
	}
	si := math.Sin(degToRad(o.Inc))
	arg := math.Sqrt((1+r)*(1+r)-b*b) / (o.A * si)
	if arg >= 1 {
		return o.Period / 2
	}
	return o.Period / math.Pi * math.Asin(arg)
}

// Illumination returns the unit vector from the companion toward the
// primary, the source direction when the companion is the observed body.
func (o Orbit) Illumination(t float64) Vec3 {
	return o.Position(t).Scale(-1).Normalized()
}

// PhaseAngle returns the star-planet-observer angle in degrees: 0 at full
// phase, 180 at new phase.
func (o Orbit) PhaseAngle(t float64) float64 {
	return AngleBetween(o.Illumination(t), Vec3{Z: 1})
}

// Reversed returns the primary's position as seen from a companion of
// radius r, in companion radii, and the primary's radius in those units.
func (o Orbit) Reversed(t, r float64) (Vec3, float64) {
	return o.Position(t).Scale(-1 / r), 1 / r
}

// Event labels the occultation state at one time.
type Event int

const (
	NoEvent   Event = iota // no overlap on the sky
	Transit                // companion in front of the primary
	Eclipse                // companion behind the primary
)

// String returns a short label.
func (e Event) String() string {
	switch e {
	case Transit:
		return "transit"
	case Eclipse:
		return "eclipse"
	default:
		return "none"
	}
}

// EventAt classifies the geometry for a companion of radius r.
func (o Orbit) EventAt(t, r float64) Event {
	p := o.Position(t)
	switch {
	case p.SkySeparation() >= 1+r:
		return NoEvent
	case p.Z > 0:
		return Transit
	default:
		return Eclipse
	}
}

// Sky samples the companion's sky coordinates at each time.
func (o Orbit) Sky(times []float64) (xo, yo, zo []float64) {
	xo = make([]float64, len(times))
	yo = make([]float64, len(times))
	zo = make([]float64, len(times))
	for i, t := range times {
		p := o.Position(t)
		xo[i], yo[i], zo[i] = p.X, p.Y, p.Z
	}
	return xo, yo, zo
}
