package vmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// ClosestOnSegment returns the point of segment a→b nearest to p and its
// fraction along the segment in [0, 1]
func ClosestOnSegment(a, b, p r2.Point) (r2.Point, float64) {
	e := b.Sub(a)
	lenSq := e.Dot(e)
	if lenSq < Epsilon {
		return a, 0
	}
	t := Clamp01(p.Sub(a).Dot(e) / lenSq)
	return a.Add(e.Mul(t)), t
}

// SegmentCircle returns the fractions along a→b where the segment crosses the
// circle of radius r around c, ascending; a tangent contact yields one value
func SegmentCircle(a, b, c r2.Point, r float64) []float64 {
	d := b.Sub(a)
	f := a.Sub(c)
	qa := d.Dot(d)
	if qa < Epsilon {
		if math.Abs(f.Norm()-r) < Epsilon {
			return []float64{0}
		}
		return nil
	}
	qb := 2 * f.Dot(d)
	qc := f.Dot(f) - r*r

	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return nil
	}
	if disc == 0 {
		t := -qb / (2 * qa)
		if t >= 0 && t <= 1 {
			return []float64{t}
		}
		return nil
	}

	sq := math.Sqrt(disc)
	t1 := (-qb - sq) / (2 * qa)
	t2 := (-qb + sq) / (2 * qa)

	out := make([]float64, 0, 2)
	if t1 >= 0 && t1 <= 1 {
		out = append(out, t1)
	}
	if t2 >= 0 && t2 <= 1 {
		out = append(out, t2)
	}
	return out
}

// RaySegment intersects the ray origin+t·dir (t >= 0) with segment a→b
// Returns the ray parameter, the fraction along the segment and whether they meet
// Parallel and collinear configurations report no hit
func RaySegment(origin, dir, a, b r2.Point) (t, alpha float64, ok bool) {
	e := b.Sub(a)
	denom := dir.Cross(e)
	if math.Abs(denom) < Epsilon {
		return 0, 0, false
	}
	w := a.Sub(origin)
	t = w.Cross(e) / denom
	alpha = w.Cross(dir) / denom
	if t < 0 || alpha < -Epsilon || alpha > 1+Epsilon {
		return 0, 0, false
	}
	return t, Clamp01(alpha), true
}
