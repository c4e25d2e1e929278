// Package sled stores addressable light points as connected strip segments in
// continuous 2D space and answers spatial queries over them
//
// A Sled is built once from segment specifications. Indices and positions are
// fixed for its lifetime; only the per-point payload of type T changes. A Sled
// is owned by a single writer (normally the scheduler's tick loop) and is not
// safe for concurrent use.
package sled

import (
	"fmt"
	"iter"
	"math"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"github.com/lixenwraith/spatial-led/core"
	"github.com/lixenwraith/spatial-led/vmath"
)

// DefaultGridThreshold is the point count at which the grid index is built
const DefaultGridThreshold = 512

// Option configures construction
type Option func(*options)

type options struct {
	center        *r2.Point
	gridThreshold int
}

// WithCenter sets the reference center used for per-point direction, angle
// and distance; defaults to the centroid
func WithCenter(c r2.Point) Option {
	return func(o *options) {
		o.center = &c
	}
}

// WithGridThreshold builds the grid index when the point count reaches n
// Zero always builds it, a negative value never does
func WithGridThreshold(n int) Option {
	return func(o *options) {
		o.gridThreshold = n
	}
}

// Sled is the complete spatial layout of one installation
type Sled[T any] struct {
	id         uuid.UUID
	generation uint64

	points   []Point[T]
	segments []Segment
	vertices []int

	bounds   r2.Rect
	centroid r2.Point
	center   r2.Point

	grid *spatialGrid
}

// New builds a Sled from specs in declaration order
// Fails without a partial result on an empty segment or empty topology
func New[T any](specs []SegmentSpec, opts ...Option) (*Sled[T], error) {
	o := options{gridThreshold: DefaultGridThreshold}
	for _, opt := range opts {
		opt(&o)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no segments", ErrEmptyTopology)
	}

	var positions []r2.Point
	segments := make([]Segment, 0, len(specs))
	for id, spec := range specs {
		if spec == nil {
			return nil, fmt.Errorf("%w: segment %d is nil", ErrInvalidSegment, id)
		}
		pts, startPos, endPos, err := spec.generate()
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", id, err)
		}
		if len(pts) == 0 {
			return nil, fmt.Errorf("%w: segment %d", ErrEmptySegment, id)
		}
		start := len(positions)
		positions = append(positions, pts...)
		segments = append(segments, Segment{
			ID:       id,
			Start:    start,
			End:      len(positions) - 1,
			StartPos: startPos,
			EndPos:   endPos,
		})
	}
	if len(positions) == 0 {
		return nil, ErrEmptyTopology
	}

	s := &Sled[T]{
		id:       uuid.New(),
		segments: segments,
		bounds:   vmath.Bounds(positions),
		centroid: vmath.Centroid(positions),
	}
	s.center = s.centroid
	if o.center != nil {
		s.center = *o.center
	}

	s.points = make([]Point[T], len(positions))
	for _, seg := range segments {
		for i := seg.Start; i <= seg.End; i++ {
			pos := positions[i]
			s.points[i] = Point[T]{
				Index:     i,
				Segment:   seg.ID,
				Position:  pos,
				Direction: vmath.Direction(s.center, pos),
				Angle:     vmath.Angle(pos.Sub(s.center)),
				Distance:  vmath.Distance(s.center, pos),
			}
		}
	}
	s.vertices = vertexIndices(segments)

	if o.gridThreshold >= 0 && len(positions) >= o.gridThreshold {
		s.grid = newSpatialGrid(positions, s.bounds)
	}

	core.Logger().Debug("sled built",
		"id", s.id,
		"points", len(s.points),
		"segments", len(s.segments),
		"vertices", len(s.vertices),
		"grid", s.grid != nil,
	)
	return s, nil
}

// vertexIndices returns the corner points of the layout: every segment end,
// plus every segment start not joined to the previous segment's end
func vertexIndices(segments []Segment) []int {
	out := make([]int, 0, len(segments)*2)
	for i, seg := range segments {
		joined := i > 0 && vmath.DistanceSq(segments[i-1].EndPos, seg.StartPos) < vmath.Epsilon
		if !joined && (len(out) == 0 || out[len(out)-1] != seg.Start) {
			out = append(out, seg.Start)
		}
		if len(out) == 0 || out[len(out)-1] != seg.End {
			out = append(out, seg.End)
		}
	}
	return out
}

// ID returns the identity shared by every Filter derived from this Sled
func (s *Sled[T]) ID() uuid.UUID { return s.id }

// Generation is bumped on every payload mutation
func (s *Sled[T]) Generation() uint64 { return s.generation }

// PointCount returns the number of points
func (s *Sled[T]) PointCount() int { return len(s.points) }

// SegmentCount returns the number of segments
func (s *Sled[T]) SegmentCount() int { return len(s.segments) }

// VertexCount returns the number of layout corners
func (s *Sled[T]) VertexCount() int { return len(s.vertices) }

// Bounds returns the bounding rectangle of all positions
func (s *Sled[T]) Bounds() r2.Rect { return s.bounds }

// Centroid returns the mean of all positions
func (s *Sled[T]) Centroid() r2.Point { return s.centroid }

// Center returns the reference center for direction, angle and distance
func (s *Sled[T]) Center() r2.Point { return s.center }

// Indexed reports whether the grid index backs Nearest and WithinDistance
func (s *Sled[T]) Indexed() bool { return s.grid != nil }

// Segments returns a copy of the segment table, ordered by id
func (s *Sled[T]) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Segment returns the segment with the given id
func (s *Sled[T]) Segment(id int) (Segment, error) {
	if id < 0 || id >= len(s.segments) {
		return Segment{}, fmt.Errorf("%w: %d of %d", ErrUnknownSegment, id, len(s.segments))
	}
	return s.segments[id], nil
}

// All yields every point in index order
// The sequence is finite and may be ranged over any number of times
func (s *Sled[T]) All() iter.Seq[Point[T]] {
	return func(yield func(Point[T]) bool) {
		for i := range s.points {
			if !yield(s.points[i]) {
				return
			}
		}
	}
}

// Data returns a copy of every payload in index order
func (s *Sled[T]) Data() []T {
	out := make([]T, len(s.points))
	for i := range s.points {
		out[i] = s.points[i].Data
	}
	return out
}

func (s *Sled[T]) checkIndex(i int) error {
	if i < 0 || i >= len(s.points) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(s.points))
	}
	return nil
}

// Point returns the point at index i
func (s *Sled[T]) Point(i int) (Point[T], error) {
	if err := s.checkIndex(i); err != nil {
		return Point[T]{}, err
	}
	return s.points[i], nil
}

// PointAt returns the position and payload at index i
func (s *Sled[T]) PointAt(i int) (r2.Point, T, error) {
	if err := s.checkIndex(i); err != nil {
		var zero T
		return r2.Point{}, zero, err
	}
	p := &s.points[i]
	return p.Position, p.Data, nil
}

// Nearest returns the index of the point closest to p, lowest index on ties
func (s *Sled[T]) Nearest(p r2.Point) int {
	if s.grid != nil {
		return s.grid.nearest(p)
	}
	best, bestD := 0, math.Inf(1)
	for i := range s.points {
		if d := vmath.DistanceSq(s.points[i].Position, p); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// WithinDistance returns the ascending indices of points no further than radius from p
func (s *Sled[T]) WithinDistance(p r2.Point, radius float64) []int {
	if radius < 0 || math.IsNaN(radius) {
		return nil
	}
	if s.grid != nil {
		return s.grid.within(p, radius)
	}
	r2max := radius * radius
	var out []int
	for i := range s.points {
		if vmath.DistanceSq(s.points[i].Position, p) <= r2max {
			out = append(out, i)
		}
	}
	return out
}

// WithinSegment returns the contiguous index range of segment id
func (s *Sled[T]) WithinSegment(id int) (Range, error) {
	seg, err := s.Segment(id)
	if err != nil {
		return Range{}, err
	}
	return seg.Range(), nil
}
