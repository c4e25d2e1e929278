package sled

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/spatial-led/vmath"
)

// SegmentSpec describes how one strip's points are produced
// Implemented by PointList, LineSpec and CurveSpec
type SegmentSpec interface {
	generate() (pts []r2.Point, start, end r2.Point, err error)
}

// PointList is a strip given as explicit positions, in strip order
type PointList []r2.Point

// LineSpec places Count evenly spaced points from Start to End inclusive
// A single point sits at Start
type LineSpec struct {
	Start r2.Point
	End   r2.Point
	Count int
}

// CurveSpec samples a parametric curve at Count values of t in [0, 1]
type CurveSpec struct {
	Sample func(t float64) r2.Point
	Count  int
}

// Points returns an explicit point list specification
func Points(pts ...r2.Point) PointList {
	return PointList(pts)
}

// Line returns a straight strip specification
func Line(start, end r2.Point, count int) LineSpec {
	return LineSpec{Start: start, End: end, Count: count}
}

// Curve returns a parametric strip specification
func Curve(sample func(t float64) r2.Point, count int) CurveSpec {
	return CurveSpec{Sample: sample, Count: count}
}

func (p PointList) generate() ([]r2.Point, r2.Point, r2.Point, error) {
	if len(p) == 0 {
		return nil, r2.Point{}, r2.Point{}, ErrEmptySegment
	}
	pts := make([]r2.Point, len(p))
	copy(pts, p)
	return pts, pts[0], pts[len(pts)-1], nil
}

func (l LineSpec) generate() ([]r2.Point, r2.Point, r2.Point, error) {
	if l.Count < 1 {
		return nil, l.Start, l.End, fmt.Errorf("%w: count %d", ErrEmptySegment, l.Count)
	}
	pts := make([]r2.Point, l.Count)
	if l.Count == 1 {
		pts[0] = l.Start
		return pts, l.Start, l.End, nil
	}
	last := float64(l.Count - 1)
	for i := range pts {
		pts[i] = vmath.Lerp(l.Start, l.End, float64(i)/last)
	}
	// Pin the far end exactly; lerp at t=1 may be off by an ulp
	pts[l.Count-1] = l.End
	return pts, l.Start, l.End, nil
}

func (c CurveSpec) generate() ([]r2.Point, r2.Point, r2.Point, error) {
	if c.Sample == nil {
		return nil, r2.Point{}, r2.Point{}, fmt.Errorf("%w: nil curve sampler", ErrInvalidSegment)
	}
	if c.Count < 1 {
		return nil, r2.Point{}, r2.Point{}, fmt.Errorf("%w: count %d", ErrEmptySegment, c.Count)
	}
	pts := make([]r2.Point, c.Count)
	if c.Count == 1 {
		pts[0] = c.Sample(0)
		return pts, pts[0], c.Sample(1), nil
	}
	last := float64(c.Count - 1)
	for i := range pts {
		pts[i] = c.Sample(float64(i) / last)
	}
	return pts, pts[0], pts[c.Count-1], nil
}

// Segment is one physical strip: a contiguous index range of the point store
type Segment struct {
	ID       int
	Start    int
	End      int
	StartPos r2.Point
	EndPos   r2.Point
}

// Range returns the segment's inclusive index range
func (s Segment) Range() Range {
	return Range{Start: s.Start, End: s.End}
}

// Len returns the number of points on the segment
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

// Length returns the straight-line distance between the endpoints
func (s Segment) Length() float64 {
	return vmath.Distance(s.StartPos, s.EndPos)
}

// Direction returns the unit vector from StartPos to EndPos
func (s Segment) Direction() r2.Point {
	return vmath.Direction(s.StartPos, s.EndPos)
}

// Contains reports whether point index i belongs to the segment
func (s Segment) Contains(i int) bool {
	return i >= s.Start && i <= s.End
}

// alpha returns how far along the segment index i sits: 0 first, 1 last
func (s Segment) alpha(i int) float64 {
	n := s.End - s.Start
	if n == 0 {
		return 0
	}
	return float64(i-s.Start) / float64(n)
}
