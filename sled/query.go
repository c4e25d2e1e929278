package sled

import (
	"math"
	"sort"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/spatial-led/vmath"
)

// edges walks every strip edge (consecutive points of one segment) in index
// order; single-point segments yield a degenerate edge from the point to itself
func (s *Sled[T]) edges(fn func(i, j int) bool) {
	for _, seg := range s.segments {
		if seg.Start == seg.End {
			if !fn(seg.Start, seg.Start) {
				return
			}
			continue
		}
		for i := seg.Start; i < seg.End; i++ {
			if !fn(i, i+1) {
				return
			}
		}
	}
}

// snap returns whichever end of edge i→j lies closer to the fraction alpha
func snap(i, j int, alpha float64) int {
	if alpha <= 0.5 {
		return i
	}
	return j
}

// AtDistance returns the ascending indices of points where the strips cross
// the circle of radius dist around of, each crossing snapped to the nearer
// point of its edge
func (s *Sled[T]) AtDistance(of r2.Point, dist float64) []int {
	if dist < 0 || math.IsNaN(dist) {
		return nil
	}
	seen := make(map[int]struct{})
	s.edges(func(i, j int) bool {
		for _, a := range vmath.SegmentCircle(s.points[i].Position, s.points[j].Position, of, dist) {
			seen[snap(i, j, a)] = struct{}{}
		}
		return true
	})
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// NearestOnStrip projects p onto every strip and returns the point nearest to
// the closest projection together with the distance from p to the strip
// Unlike Nearest this measures to the strip line, so a query between two
// sparse points reports how far it sits off the strip, not off a point
func (s *Sled[T]) NearestOnStrip(p r2.Point) (int, float64) {
	best, bestD := 0, math.Inf(1)
	s.edges(func(i, j int) bool {
		q, alpha := vmath.ClosestOnSegment(s.points[i].Position, s.points[j].Position, p)
		if d := vmath.Distance(q, p); d < bestD {
			best, bestD = snap(i, j, alpha), d
		}
		return true
	})
	return best, bestD
}

// AtDirectionFrom casts a ray from origin along dir and returns the point
// nearest to the closest strip hit
func (s *Sled[T]) AtDirectionFrom(origin, dir r2.Point) (int, bool) {
	n := dir.Norm()
	if n < vmath.Epsilon {
		return 0, false
	}
	// Unit direction: lone-point and strip hits are then both measured in layout units
	dir = dir.Mul(1 / n)
	best, bestT := -1, math.Inf(1)
	s.edges(func(i, j int) bool {
		a, b := s.points[i].Position, s.points[j].Position
		if i == j {
			// Lone point: hit only if it lies on the ray
			w := a.Sub(origin)
			if math.Abs(dir.Cross(w)) < vmath.Epsilon && dir.Dot(w) >= 0 {
				if t := w.Norm(); t < bestT {
					best, bestT = i, t
				}
			}
			return true
		}
		if t, alpha, ok := vmath.RaySegment(origin, dir, a, b); ok && t < bestT {
			best, bestT = snap(i, j, alpha), t
		}
		return true
	})
	return best, best >= 0
}

// AtDirection casts a ray from the reference center along dir
func (s *Sled[T]) AtDirection(dir r2.Point) (int, bool) {
	return s.AtDirectionFrom(s.center, dir)
}

// AtAngle casts a ray from the reference center at angle radians
func (s *Sled[T]) AtAngle(angle float64) (int, bool) {
	return s.AtDirectionFrom(s.center, vmath.FromAngle(angle))
}
