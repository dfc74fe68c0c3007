// Package wigner rotates real spherical harmonic coefficient vectors.
//
// Each degree l rotates independently through a (2l+1)×(2l+1) block. The
// blocks come from the Ivanic-Ruedenberg recursion (J. Phys. Chem. 1996,
// 100, 6342; errata 1998), seeded with the 3×3 rotation in (y, z, x) order.
// Coefficients c rotated by R describe f∘R⁻¹: the surface turns with R.
package wigner

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// MaxDegree is the largest degree a rotator accepts.
const MaxDegree = 51

// axisTol is the slack allowed on the norm of a rotation axis.
const axisTol = 1e-8

// Vec3 is a direction in the observer frame.
type Vec3 [3]float64

// Matrix3 is a 3×3 rotation matrix, row major.
type Matrix3 [3][3]float64

// alignCacheSize bounds the memoized alignments. A flux batch with axis
// gradients touches its axis and six perturbations of it.
const alignCacheSize = 8

type cachedAlignment struct {
	axis   Vec3
	blocks []*mat.Dense
}

// Rotator applies rotations to coefficient vectors of degree ≤ Lmax. The
// alignment blocks D(A) of the most recently used axes are memoized, so
// repeated rotations about the same axis only rebuild the diagonal z
// rotation.
type Rotator struct {
	Lmax int

	mu sync.Mutex
	// cache is ordered most recently used first.
	cache []cachedAlignment
}

// New returns a rotator for degrees up to lmax.
func New(lmax int) (*Rotator, error) {
	if lmax < 0 || lmax > MaxDegree {
		return nil, errs.Range("rotation degree %d outside [0, %d]", lmax, MaxDegree)
	}
	return &Rotator{Lmax: lmax}, nil
}

// AxisFromAngles returns the rotation axis for inclination inc and
// obliquity obl, both in radians. inc = π/2, obl = 0 is the +y axis.
func AxisFromAngles(inc, obl float64) Vec3 {
	si, ci := math.Sincos(inc)
	so, co := math.Sincos(obl)
	return Vec3{-so * si, co * si, ci}
}

// RotationMatrix returns the right-handed rotation by angle about a unit axis.
func RotationMatrix(axis Vec3, angle float64) Matrix3 {
	s, c := math.Sincos(angle)
	x, y, z := axis[0], axis[1], axis[2]
	t := 1 - c
	return Matrix3{
		{c + x*x*t, x*y*t - z*s, x*z*t + y*s},
		{y*x*t + z*s, c + y*y*t, y*z*t - x*s},
		{z*x*t - y*s, z*y*t + x*s, c + z*z*t},
	}
}

// Blocks returns D^l(R) for l = 0 … lmax.
func Blocks(r Matrix3, lmax int) []*mat.Dense {
	out := make([]*mat.Dense, lmax+1)
	out[0] = mat.NewDense(1, 1, []float64{1})
	if lmax == 0 {
		return out
	}
	// (y, z, x) ordering: index 0 ↔ y, 1 ↔ z, 2 ↔ x.
	perm := [3]int{1, 2, 0}
	r1 := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r1.Set(i, j, r[perm[i]][perm[j]])
		}
	}
	out[1] = r1
	for l := 2; l <= lmax; l++ {
		out[l] = bandRotation(l, out)
	}
	return out
}

// centered reads element (i, j) of a band matrix indexed from -l to l.
func centered(m *mat.Dense, i, j int) float64 {
	off, _ := m.Dims()
	off = (off - 1) / 2
	return m.At(i+off, j+off)
}

func p(i, a, b, l int, bands []*mat.Dense) float64 {
	r1, prev := bands[1], bands[l-1]
	switch b {
	case l:
		return centered(r1, i, 1)*centered(prev, a, l-1) - centered(r1, i, -1)*centered(prev, a, -l+1)
	case -l:
		return centered(r1, i, 1)*centered(prev, a, -l+1) + centered(r1, i, -1)*centered(prev, a, l-1)
	default:
		return centered(r1, i, 0) * centered(prev, a, b)
	}
}

func delta(a, b int) float64 {
	if a == b {
		return 1
	}
	return 0
}

func uTerm(m, n, l int, bands []*mat.Dense) float64 {
	return p(0, m, n, l, bands)
}

func vTerm(m, n, l int, bands []*mat.Dense) float64 {
	switch {
	case m == 0:
		return p(1, 1, n, l, bands) + p(-1, -1, n, l, bands)
	case m > 0:
		return p(1, m-1, n, l, bands)*math.Sqrt(1+delta(m, 1)) - p(-1, -m+1, n, l, bands)*(1-delta(m, 1))
	default:
		return p(1, m+1, n, l, bands)*(1-delta(m, -1)) + p(-1, -m-1, n, l, bands)*math.Sqrt(1+delta(m, -1))
	}
}

func wTerm(m, n, l int, bands []*mat.Dense) float64 {
	switch {
	case m == 0:
		return 0
	case m > 0:
		return p(1, m+1, n, l, bands) + p(-1, -m-1, n, l, bands)
	default:
		return p(1, m-1, n, l, bands) - p(-1, -m+1, n, l, bands)
	}
}

func bandRotation(l int, bands []*mat.Dense) *mat.Dense {
	size := 2*l + 1
	out := mat.NewDense(size, size, nil)
	fl := float64(l)
	for m := -l; m <= l; m++ {
		am := math.Abs(float64(m))
		d := delta(m, 0)
		for n := -l; n <= l; n++ {
			var denom float64
			if n == l || n == -l {
				denom = 2 * fl * (2*fl - 1)
			} else {
				denom = float64((l + n) * (l - n))
			}
			u := math.Sqrt(float64((l+m)*(l-m)) / denom)
			v := 0.5 * math.Sqrt((1+d)*(fl+am-1)*(fl+am)/denom) * (1 - 2*d)
			w := -0.5 * math.Sqrt(math.Max((fl-am-1)*(fl-am), 0)/denom) * (1 - d)
			var sum float64
			if u != 0 {
				sum += u * uTerm(m, n, l, bands)
			}
			if v != 0 {
				sum += v * vTerm(m, n, l, bands)
			}
			if w != 0 {
				sum += w * wTerm(m, n, l, bands)
			}
			out.Set(m+l, n+l, sum)
		}
	}
	return out
}

// degreeOf returns l for a coefficient vector of length (l+1)².
func (rt *Rotator) degreeOf(y []float64) (int, error) {
	l := int(math.Sqrt(float64(len(y)))) - 1
	if l < 0 || (l+1)*(l+1) != len(y) {
		return 0, errs.Shape("coefficient vector length %d is not a perfect square", len(y))
	}
	if l > rt.Lmax {
		return 0, errs.Range("coefficient degree %d exceeds rotator degree %d", l, rt.Lmax)
	}
	return l, nil
}

// RotateZ rotates y by theta about the line of sight.
func (rt *Rotator) RotateZ(theta float64, y []float64) ([]float64, error) {
	l, err := rt.degreeOf(y)
	if err != nil {
		return nil, err
	}
	return rotateZ(l, theta, y, false), nil
}

// DRotateZ returns the derivative of RotateZ with respect to theta.
func (rt *Rotator) DRotateZ(theta float64, y []float64) ([]float64, error) {
	l, err := rt.degreeOf(y)
	if err != nil {
		return nil, err
	}
	return rotateZ(l, theta, y, true), nil
}

func rotateZ(lmax int, theta float64, y []float64, deriv bool) []float64 {
	out := make([]float64, len(y))
	for l := 0; l <= lmax; l++ {
		c := l*l + l
		if !deriv {
			out[c] = y[c]
		}
		for m := 1; m <= l; m++ {
			fm := float64(m)
			s, co := math.Sincos(fm * theta)
			a, b := y[c+m], y[c-m]
			if deriv {
				out[c+m] = -fm * (a*s + b*co)
				out[c-m] = fm * (a*co - b*s)
			} else {
				out[c+m] = a*co - b*s
				out[c-m] = a*s + b*co
			}
		}
	}
	return out
}

// checkAxis validates a unit rotation axis.
func checkAxis(axis Vec3) error {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if math.IsNaN(n) || math.Abs(n-1) > axisTol {
		return errs.Value("rotation axis %v is not a unit vector", axis)
	}
	return nil
}

// alignment returns D(A) with A taking ẑ onto axis.
func (rt *Rotator) alignment(axis Vec3) []*mat.Dense {
	if d, ok := rt.lookup(axis); ok {
		return d
	}

	theta := math.Acos(math.Max(-1, math.Min(1, axis[2])))
	phi := math.Atan2(axis[1], axis[0])
	a := mul3(RotationMatrix(Vec3{0, 0, 1}, phi), RotationMatrix(Vec3{0, 1, 0}, theta))
	d := Blocks(a, rt.Lmax)

	rt.mu.Lock()
	defer rt.mu.Unlock()
	for _, e := range rt.cache {
		if e.axis == axis {
			return e.blocks
		}
	}
	if len(rt.cache) < alignCacheSize {
		rt.cache = append(rt.cache, cachedAlignment{})
	}
	copy(rt.cache[1:], rt.cache[:len(rt.cache)-1])
	rt.cache[0] = cachedAlignment{axis: axis, blocks: d}
	return d
}

// lookup returns the memoized blocks for axis and marks them most recent.
func (rt *Rotator) lookup(axis Vec3) ([]*mat.Dense, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for i, e := range rt.cache {
		if e.axis == axis {
			copy(rt.cache[1:i+1], rt.cache[:i])
			rt.cache[0] = e
			return e.blocks, true
		}
	}
	return nil, false
}

// Rotate turns y by angle about axis.
func (rt *Rotator) Rotate(axis Vec3, angle float64, y []float64) ([]float64, error) {
	return rt.rotate(axis, angle, y, false)
}

// DRotate returns the derivative of Rotate with respect to angle.
func (rt *Rotator) DRotate(axis Vec3, angle float64, y []float64) ([]float64, error) {
	return rt.rotate(axis, angle, y, true)
}

func (rt *Rotator) rotate(axis Vec3, angle float64, y []float64, deriv bool) ([]float64, error) {
	l, err := rt.degreeOf(y)
	if err != nil {
		return nil, err
	}
	if err := checkAxis(axis); err != nil {
		return nil, err
	}
	if angle == 0 && !deriv {
		out := make([]float64, len(y))
		copy(out, y)
		return out, nil
	}
	d := rt.alignment(axis)
	tmp := applyBlocks(d, l, y, true)
	tmp = rotateZ(l, angle, tmp, deriv)
	return applyBlocks(d, l, tmp, false), nil
}

// Apply rotates y with precomputed blocks.
func Apply(blocks []*mat.Dense, y []float64) []float64 {
	l := int(math.Sqrt(float64(len(y)))) - 1
	return applyBlocks(blocks, l, y, false)
}

func applyBlocks(blocks []*mat.Dense, lmax int, y []float64, transpose bool) []float64 {
	out := make([]float64, len(y))
	for l := 0; l <= lmax; l++ {
		off := l * l
		size := 2*l + 1
		blk := blocks[l]
		for i := 0; i < size; i++ {
			var sum float64
			for j := 0; j < size; j++ {
				if transpose {
					sum += blk.At(j, i) * y[off+j]
				} else {
					sum += blk.At(i, j) * y[off+j]
				}
			}
			out[off+i] = sum
		}
	}
	return out
}

func mul3(a, b Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}
