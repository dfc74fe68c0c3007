// Package orbit places an occulting companion on a circular orbit around
// the primary and gives the sky geometry seen by a distant observer.
//
// Sky coordinates follow the map frame: X right, Y up (sky north), Z toward
// the observer. Lengths are in primary radii.
package orbit

import "math"

// Vec3 represents a 3D vector in the sky frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Array returns the components as an array.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// SkySeparation is the projected distance from the primary's center.
func (v Vec3) SkySeparation() float64 {
	return math.Hypot(v.X, v.Y)
}

// AngleBetween returns the angle between two vectors in degrees.
func AngleBetween(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	c := (a.X*b.X + a.Y*b.Y + a.Z*b.Z) / (na * nb)
	return radToDeg(math.Acos(math.Max(-1, math.Min(1, c))))
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func radToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}
