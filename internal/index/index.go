// Package index maps spherical harmonic (l, m) pairs to flat coefficient
// positions n = l² + l + m.
package index

import (
	"math"

	"github.com/litescript/ls-lightcurve/internal/errs"
)

// LM returns the flat index of (l, m) in a vector of degree lmax.
func LM(l, m, lmax int) (int, error) {
	n := l*l + l + m
	if l < 0 || l > lmax || m < -l || m > l {
		return 0, errs.Index("invalid (l, m) = (%d, %d) for lmax %d", l, m, lmax)
	}
	return n, nil
}

// Degree returns (l, m) for flat index n ≥ 0.
func Degree(n int) (l, m int) {
	l = int(math.Sqrt(float64(n)))
	for l*l > n {
		l--
	}
	for (l+1)*(l+1) <= n {
		l++
	}
	return l, n - l*l - l
}

// Len returns the coefficient count for degree lmax.
func Len(lmax int) int {
	return (lmax + 1) * (lmax + 1)
}

// Span selects a run of degrees or orders. Bounds are literal values, so a
// span over m may start negative: Between(-3, 0) selects m = -3, -2, -1.
// Stop is exclusive. Nil bounds are open.
type Span struct {
	Start, Stop *int
	Step        int
}

// All selects every degree or order.
func All() Span {
	return Span{}
}

// Between selects [start, stop).
func Between(start, stop int) Span {
	return Span{Start: &start, Stop: &stop}
}

// bounds resolves the span against [lo, hi] as inclusive limits.
func (s Span) bounds(lo, hi int) (start, stop int, err error) {
	if s.Step != 0 && s.Step != 1 {
		return 0, 0, errs.Value("spans with steps different from one are not supported, got %d", s.Step)
	}
	start, stop = lo, hi
	if s.Start != nil {
		start = *s.Start
	}
	if s.Stop != nil {
		stop = *s.Stop - 1
	}
	return start, stop, nil
}

// Select returns the flat indices for degrees in ls and orders in ms, in
// ascending (l, m) order. Orders outside [-l, l] are clipped per degree.
func Select(lmax int, ls, ms Span) ([]int, error) {
	lstart, lstop, err := ls.bounds(0, lmax)
	if err != nil {
		return nil, err
	}
	if lstart < 0 || lstart > lmax {
		return nil, errs.Index("invalid degree %d for lmax %d", lstart, lmax)
	}
	var out []int
	for l := lstart; l <= lstop; l++ {
		mstart, mstop, err := ms.bounds(-l, l)
		if err != nil {
			return nil, err
		}
		mstart = max(mstart, -l)
		mstop = min(mstop, l)
		for m := mstart; m <= mstop; m++ {
			n, err := LM(l, m, lmax)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}
	return out, nil
}

// Orders returns the flat indices of degree l for orders in ms.
func Orders(lmax, l int, ms Span) ([]int, error) {
	return Select(lmax, Between(l, l+1), ms)
}

// Degrees returns the flat indices of order m for degrees in ls. Degrees
// with |m| > l are skipped.
func Degrees(lmax int, ls Span, m int) ([]int, error) {
	lstart, lstop, err := ls.bounds(0, lmax)
	if err != nil {
		return nil, err
	}
	if lstart < 0 || lstart > lmax {
		return nil, errs.Index("invalid degree %d for lmax %d", lstart, lmax)
	}
	var out []int
	for l := lstart; l <= lstop; l++ {
		if m < -l || m > l {
			continue
		}
		n, err := LM(l, m, lmax)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
