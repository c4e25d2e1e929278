// Package vmath holds the 2D geometry used by the spatial topology
// Vectors and points are golang/geo r2 values; this package only adds the
// strip-oriented operations r2 does not provide
package vmath

import (
	"math"

	"github.com/golang/geo/r2"
)

const (
	// Epsilon is the tolerance for degenerate lengths and parallel tests
	Epsilon = 1e-9
	// Tau is one full turn in radians
	Tau = 2 * math.Pi
)

// Lerp returns the point at fraction t along a→b
func Lerp(a, b r2.Point, t float64) r2.Point {
	return a.Add(b.Sub(a).Mul(t))
}

// Distance returns the Euclidean distance between a and b
func Distance(a, b r2.Point) float64 {
	return a.Sub(b).Norm()
}

// DistanceSq returns the squared distance, used for comparisons
func DistanceSq(a, b r2.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// FromAngle returns the unit vector at angle radians, counter-clockwise from +X
func FromAngle(angle float64) r2.Point {
	return r2.Point{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Angle returns the direction of v in [0, 2π), zero for the zero vector
func Angle(v r2.Point) float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	return NormalizeAngle(math.Atan2(v.Y, v.X))
}

// NormalizeAngle wraps a into [0, 2π)
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	// math.Mod can round -tiny up to exactly Tau
	if a >= Tau {
		a = 0
	}
	return a
}

// Direction returns the unit vector from→to, zero when the points coincide
func Direction(from, to r2.Point) r2.Point {
	d := to.Sub(from)
	n := d.Norm()
	if n < Epsilon {
		return r2.Point{}
	}
	return d.Mul(1 / n)
}

// Clamp01 limits t to [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
