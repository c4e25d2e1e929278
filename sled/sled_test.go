package sled

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y float64) r2.Point { return r2.Point{X: x, Y: y} }

// squareSpecs is a 3x3 room traced by four joined 4-point strips:
//
//	0..3   (0,0)→(3,0)
//	4..7   (3,0)→(3,3)
//	8..11  (3,3)→(0,3)
//	12..15 (0,3)→(0,0)
func squareSpecs() []SegmentSpec {
	return []SegmentSpec{
		Line(pt(0, 0), pt(3, 0), 4),
		Line(pt(3, 0), pt(3, 3), 4),
		Line(pt(3, 3), pt(0, 3), 4),
		Line(pt(0, 3), pt(0, 0), 4),
	}
}

func newSquare(t testing.TB, opts ...Option) *Sled[int] {
	t.Helper()
	s, err := New[int](squareSpecs(), opts...)
	require.NoError(t, err)
	return s
}

func TestNewAssignsDenseIndices(t *testing.T) {
	s := newSquare(t)

	assert.Equal(t, 16, s.PointCount())
	assert.Equal(t, 4, s.SegmentCount())

	i := 0
	for p := range s.All() {
		assert.Equal(t, i, p.Index)
		assert.Equal(t, i/4, p.Segment)
		i++
	}
	assert.Equal(t, 16, i)

	for id, seg := range s.Segments() {
		assert.Equal(t, id, seg.ID)
		assert.Equal(t, id*4, seg.Start)
		assert.Equal(t, id*4+3, seg.End)
		assert.Equal(t, 4, seg.Len())
		assert.InDelta(t, 3.0, seg.Length(), 1e-12)
	}

	pos, _, err := s.PointAt(5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, pos.X, 1e-12)
	assert.InDelta(t, 1.0, pos.Y, 1e-12)
}

func TestNewDerivedMetadata(t *testing.T) {
	s := newSquare(t)

	assert.InDelta(t, 1.5, s.Centroid().X, 1e-12)
	assert.InDelta(t, 1.5, s.Centroid().Y, 1e-12)
	assert.Equal(t, s.Centroid(), s.Center())
	assert.Equal(t, 0.0, s.Bounds().X.Lo)
	assert.Equal(t, 3.0, s.Bounds().X.Hi)

	p, err := s.Point(0)
	require.NoError(t, err)
	assert.InDelta(t, math.Hypot(1.5, 1.5), p.Distance, 1e-12)
	assert.InDelta(t, 5*math.Pi/4, p.Angle, 1e-12)
	assert.InDelta(t, 1.0, p.Direction.Norm(), 1e-12)

	c := newSquare(t, WithCenter(pt(0, 0)))
	p, err = c.Point(3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, p.Distance, 1e-12)
	assert.InDelta(t, 0.0, p.Angle, 1e-12)
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []SegmentSpec
		want  error
	}{
		{"no specs", nil, ErrEmptyTopology},
		{"empty point list", []SegmentSpec{Points()}, ErrEmptySegment},
		{"zero count line", []SegmentSpec{Line(pt(0, 0), pt(1, 0), 4), Line(pt(1, 0), pt(2, 0), 0)}, ErrEmptySegment},
		{"nil curve", []SegmentSpec{Curve(nil, 4)}, ErrInvalidSegment},
		{"nil spec", []SegmentSpec{nil}, ErrInvalidSegment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New[int](tt.specs)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, s)
		})
	}
}

func TestSegmentSpecs(t *testing.T) {
	s, err := New[int]([]SegmentSpec{
		Line(pt(5, 5), pt(9, 9), 1),
		Curve(func(t float64) r2.Point { return pt(math.Cos(t*math.Pi), math.Sin(t*math.Pi)) }, 3),
		Points(pt(-1, -1), pt(-2, -2)),
	})
	require.NoError(t, err)
	require.Equal(t, 6, s.PointCount())

	pos, _, _ := s.PointAt(0)
	assert.Equal(t, pt(5, 5), pos)

	pos, _, _ = s.PointAt(2)
	assert.InDelta(t, 0.0, pos.X, 1e-12)
	assert.InDelta(t, 1.0, pos.Y, 1e-12)

	r, err := s.WithinSegment(2)
	require.NoError(t, err)
	assert.Equal(t, Range{Start: 4, End: 5}, r)

	_, err = s.WithinSegment(3)
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestNearest(t *testing.T) {
	for _, threshold := range []int{-1, 0} {
		s := newSquare(t, WithGridThreshold(threshold))
		assert.Equal(t, threshold == 0, s.Indexed())

		// (0,0) is both 0 and 15; (3,0) is both 3 and 4
		assert.Equal(t, 0, s.Nearest(pt(0, 0)))
		assert.Equal(t, 3, s.Nearest(pt(3, 0)))
		assert.Equal(t, 6, s.Nearest(pt(3.4, 2.1)))
		assert.Equal(t, 11, s.Nearest(pt(-5, 10)))
	}
}

func TestWithinDistance(t *testing.T) {
	for _, threshold := range []int{-1, 0} {
		s := newSquare(t, WithGridThreshold(threshold))
		assert.Equal(t, []int{0, 1, 14, 15}, s.WithinDistance(pt(0, 0), 1.01))
		assert.Empty(t, s.WithinDistance(pt(1.5, 1.5), 1))
		assert.Empty(t, s.WithinDistance(pt(0, 0), -1))
		assert.Len(t, s.WithinDistance(pt(1.5, 1.5), 10), 16)
	}
}

func TestPointAtOutOfRange(t *testing.T) {
	s := newSquare(t)
	for _, i := range []int{-1, 16, 100} {
		_, _, err := s.PointAt(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = s.Point(i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
}

func TestVertices(t *testing.T) {
	s := newSquare(t)
	assert.Equal(t, []int{0, 3, 7, 11, 15}, s.Vertices().Indices())
	assert.Equal(t, 5, s.VertexCount())

	// Disjoint strips contribute both ends
	d, err := New[int]([]SegmentSpec{
		Line(pt(0, 0), pt(1, 0), 3),
		Line(pt(5, 5), pt(6, 5), 3),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3, 5}, d.Vertices().Indices())
}

func TestAtDistance(t *testing.T) {
	s := newSquare(t)
	// Circle of 2.2 around a corner crosses the bottom strip between 2 and 3
	// (nearer 2) and the left strip between 12 and 13 (nearer 13)
	assert.Equal(t, []int{2, 13}, s.AtDistance(pt(0, 0), 2.2))
	assert.Empty(t, s.AtDistance(pt(0, 0), 10))
	assert.Empty(t, s.AtDistance(pt(0, 0), -1))
}

func TestAtDirection(t *testing.T) {
	s := newSquare(t)

	i, ok := s.AtDirectionFrom(pt(0.5, 1.2), pt(1, 0))
	require.True(t, ok)
	assert.Equal(t, 5, i)

	_, ok = s.AtDirectionFrom(pt(10, 10), pt(1, 0))
	assert.False(t, ok)

	_, ok = s.AtDirection(r2.Point{})
	assert.False(t, ok)

	c := newSquare(t, WithCenter(pt(0.5, 1.8)))
	i, ok = c.AtAngle(0)
	require.True(t, ok)
	assert.Equal(t, 6, i)

	i, ok = c.AtDirection(pt(-1, 0))
	require.True(t, ok)
	assert.Equal(t, 13, i)
}

func TestNearestOnStrip(t *testing.T) {
	s := newSquare(t)

	tests := []struct {
		name string
		p    r2.Point
		idx  int
		dist float64
	}{
		{"below bottom strip", pt(1.4, -1), 1, 1},
		{"inside near bottom", pt(1.6, 0.5), 2, 0.5},
		{"right of right strip", pt(4, 2.2), 6, 1},
		{"on a point", pt(3, 3), 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, d := s.NearestOnStrip(tt.p)
			assert.Equal(t, tt.idx, i)
			assert.InDelta(t, tt.dist, d, 1e-9)
		})
	}

	lone, err := New[int]([]SegmentSpec{Points(pt(2, 0))})
	require.NoError(t, err)
	i, d := lone.NearestOnStrip(pt(2, 3))
	assert.Equal(t, 0, i)
	assert.InDelta(t, 3.0, d, 1e-9)
}

func TestAtDirectionIgnoresDirLength(t *testing.T) {
	// Lone point at (5,0) in front of a vertical strip at x=8
	s, err := New[int]([]SegmentSpec{
		Points(pt(5, 0)),
		Line(pt(8, -1), pt(8, 1), 3),
	}, WithCenter(pt(0, 0)))
	require.NoError(t, err)

	for _, k := range []float64{0.01, 1, 10, 1e4} {
		i, ok := s.AtDirection(pt(k, 0))
		require.True(t, ok, "scale %v", k)
		assert.Equal(t, 0, i, "scale %v", k)
	}

	// Past the lone point only the strip is hit
	for _, k := range []float64{0.5, 20} {
		i, ok := s.AtDirectionFrom(pt(6, 0), pt(k, 0))
		require.True(t, ok)
		assert.Equal(t, 2, i, "scale %v", k)
	}
}

func TestSetDataRoundTrip(t *testing.T) {
	s := newSquare(t)
	gen := s.Generation()

	require.NoError(t, s.SetData(7, 42))
	_, v, err := s.PointAt(7)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Greater(t, s.Generation(), gen)

	before := s.Data()
	gen = s.Generation()
	assert.ErrorIs(t, s.SetData(16, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.SetData(-1, 1), ErrIndexOutOfRange)
	assert.Equal(t, before, s.Data())
	assert.Equal(t, gen, s.Generation())
}

func TestSetDataWhere(t *testing.T) {
	s := newSquare(t)
	n := s.SetDataWhere(
		func(p r2.Point, _ int) bool { return p.Y == 0 },
		func(p Point[int]) int { return p.Index + 100 },
	)
	// bottom strip plus the shared corners 4 and 15
	assert.Equal(t, 6, n)
	for p := range s.All() {
		if p.Position.Y == 0 {
			assert.Equal(t, p.Index+100, p.Data)
		} else {
			assert.Zero(t, p.Data)
		}
	}

	// Predicate sees current data on every call
	n = s.SetDataWhere(
		func(_ r2.Point, v int) bool { return v >= 100 },
		func(p Point[int]) int { return p.Data + 1 },
	)
	assert.Equal(t, 6, n)
}

func TestSetDataIn(t *testing.T) {
	s := newSquare(t)
	f := s.FilterByPosition(func(p r2.Point) bool { return p.X > 2.5 })

	var visited []int
	require.NoError(t, s.SetDataIn(f, func(p Point[int]) int {
		visited = append(visited, p.Index)
		return 1
	}))
	assert.Equal(t, f.Indices(), visited)

	for p := range s.All() {
		assert.Equal(t, f.Contains(p.Index), p.Data == 1, "index %d", p.Index)
	}

	other := newSquare(t)
	assert.ErrorIs(t, s.SetDataIn(other.FilterAll(), func(Point[int]) int { return 2 }), ErrMismatchedTopology)
	assert.ErrorIs(t, s.SetDataIn(Filter{}, func(Point[int]) int { return 2 }), ErrMismatchedTopology)
}

func TestBulkSetters(t *testing.T) {
	s := newSquare(t)

	s.SetAll(3)
	for _, v := range s.Data() {
		assert.Equal(t, 3, v)
	}

	s.Map(func(p Point[int]) int { return p.Data * p.Index })
	assert.Equal(t, 45, s.Data()[15])

	require.NoError(t, s.SetSegment(1, -1))
	assert.Equal(t, []int{-1, -1, -1, -1}, s.Data()[4:8])
	assert.ErrorIs(t, s.SetSegment(4, 0), ErrUnknownSegment)

	require.NoError(t, s.SetRange(Range{Start: 14, End: 15}, 9))
	assert.Equal(t, []int{9, 9}, s.Data()[14:])
	assert.ErrorIs(t, s.SetRange(Range{Start: 15, End: 16}, 0), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.SetRange(Range{Start: 3, End: 2}, 0), ErrIndexOutOfRange)
}

func TestForEachInSegment(t *testing.T) {
	s, err := New[float64]([]SegmentSpec{
		Line(pt(0, 0), pt(1, 0), 5),
		Line(pt(1, 0), pt(1, 1), 1),
	})
	require.NoError(t, err)

	require.NoError(t, s.ForEachInSegment(0, func(_ Point[float64], alpha float64) float64 { return alpha }))
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, s.Data()[:5])

	require.NoError(t, s.ForEachInSegment(1, func(_ Point[float64], alpha float64) float64 { return alpha + 7 }))
	assert.Equal(t, 7.0, s.Data()[5])

	assert.ErrorIs(t, s.ForEachInSegment(2, nil), ErrUnknownSegment)
}

func TestAllIsRestartable(t *testing.T) {
	s := newSquare(t)
	count := func() int {
		n := 0
		for range s.All() {
			n++
		}
		return n
	}
	assert.Equal(t, 16, count())
	assert.Equal(t, 16, count())

	n := 0
	for range s.All() {
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
}
