package sled

import (
	"slices"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strip(t testing.TB, n int) *Sled[int] {
	t.Helper()
	s, err := New[int]([]SegmentSpec{Line(pt(0, 0), pt(float64(n-1), 0), n)})
	require.NoError(t, err)
	return s
}

func TestFilterAlgebra(t *testing.T) {
	s := strip(t, 30)
	evens := s.Filter(func(p Point[int]) bool { return p.Index%2 == 0 })
	thirds := s.Filter(func(p Point[int]) bool { return p.Index%3 == 0 })
	all := s.FilterAll()
	empty := s.EmptyFilter()

	and, err := evens.And(thirds)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 6, 12, 18, 24}, and.Indices())

	or, err := evens.Or(thirds)
	require.NoError(t, err)
	assert.Equal(t, 20, or.Len())
	assert.True(t, or.Contains(3))
	assert.False(t, or.Contains(5))

	diff, err := thirds.Difference(evens)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 9, 15, 21, 27}, diff.Indices())

	t.Run("identities", func(t *testing.T) {
		x, err := evens.And(all)
		require.NoError(t, err)
		assert.True(t, x.Equal(evens))

		x, err = evens.Or(empty)
		require.NoError(t, err)
		assert.True(t, x.Equal(evens))

		x, err = evens.And(evens.Not())
		require.NoError(t, err)
		assert.True(t, x.IsEmpty())

		assert.True(t, evens.Not().Not().Equal(evens))
		assert.True(t, all.Not().IsEmpty())
		assert.True(t, empty.Not().Equal(all))
	})

	t.Run("de morgan", func(t *testing.T) {
		lhs, err := evens.Or(thirds)
		require.NoError(t, err)
		rhs, err := evens.Not().And(thirds.Not())
		require.NoError(t, err)
		assert.True(t, lhs.Not().Equal(rhs))

		// a − b = a ∧ ¬b
		d1, err := evens.Difference(thirds)
		require.NoError(t, err)
		d2, err := evens.And(thirds.Not())
		require.NoError(t, err)
		assert.True(t, d1.Equal(d2))
	})

	t.Run("commutative", func(t *testing.T) {
		ab, _ := evens.And(thirds)
		ba, _ := thirds.And(evens)
		assert.True(t, ab.Equal(ba))
		ab, _ = evens.Or(thirds)
		ba, _ = thirds.Or(evens)
		assert.True(t, ab.Equal(ba))
	})
}

func TestFilterIsFrozen(t *testing.T) {
	s := strip(t, 10)
	lit := s.Filter(func(p Point[int]) bool { return p.Data > 0 })
	assert.True(t, lit.IsEmpty())

	s.SetAll(1)
	assert.True(t, lit.IsEmpty())
	assert.Less(t, lit.Generation(), s.Generation())

	// Indices hands out a copy
	f := s.FilterAll()
	idx := f.Indices()
	idx[0] = 99
	assert.Equal(t, 0, f.Indices()[0])
}

func TestFilterOwnership(t *testing.T) {
	a, b := strip(t, 10), strip(t, 10)
	fa, fb := a.FilterAll(), b.FilterAll()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), fa.Owner())

	_, err := fa.And(fb)
	assert.ErrorIs(t, err, ErrMismatchedTopology)
	_, err = fa.Or(fb)
	assert.ErrorIs(t, err, ErrMismatchedTopology)
	_, err = fa.Difference(fb)
	assert.ErrorIs(t, err, ErrMismatchedTopology)
	_, err = Filter{}.And(Filter{})
	assert.ErrorIs(t, err, ErrMismatchedTopology)

	_, err = a.Complement(fb)
	assert.ErrorIs(t, err, ErrMismatchedTopology)
	c, err := a.Complement(fa)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestFilterConstructors(t *testing.T) {
	s := newSquare(t)

	f, err := s.FromIndices(5, 1, 5, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, f.Indices())
	_, err = s.FromIndices(1, 16)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	seg, err := s.SegmentFilter(2)
	require.NoError(t, err)
	assert.Equal(t, []int{8, 9, 10, 11}, seg.Indices())

	span, err := s.SegmentsFilter(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, span.Len())
	assert.True(t, span.Contains(4))
	assert.True(t, span.Contains(11))
	assert.False(t, span.Contains(12))

	_, err = s.SegmentsFilter(2, 5)
	assert.ErrorIs(t, err, ErrUnknownSegment)
	_, err = s.SegmentFilter(-1)
	assert.ErrorIs(t, err, ErrUnknownSegment)

	far := s.FilterByDistance(func(d float64) bool { return d > 2 })
	assert.Equal(t, []int{0, 3, 4, 7, 8, 11, 12, 15}, far.Indices())

	near := s.FilterByDistanceFrom(pt(0, 0), func(d float64) bool { return d < 0.5 })
	assert.Equal(t, []int{0, 15}, near.Indices())

	right := s.FilterByDirection(func(d r2.Point) bool { return d.X > 0.9 })
	assert.Equal(t, []int{5, 6}, right.Indices())

	upper := s.FilterByAngle(func(a float64) bool { return a > 0 && a < 3.14 })
	assert.True(t, upper.Contains(9))
	assert.False(t, upper.Contains(1))

	var seen []int
	seg.Each(func(i int) { seen = append(seen, i) })
	assert.Equal(t, seg.Indices(), seen)
	assert.Equal(t, seg.Indices(), slices.Collect(seg.All()))
}
