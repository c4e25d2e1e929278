package sled

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
)

// Filter is an immutable, ascending set of point indices bound to the Sled
// it was computed from
// Copies share the index buffer, which is never written after construction
type Filter struct {
	owner      uuid.UUID
	total      int
	generation uint64
	indices    []int
}

// Len returns the number of indices
func (f Filter) Len() int { return len(f.indices) }

// IsEmpty reports whether the filter selects nothing
func (f Filter) IsEmpty() bool { return len(f.indices) == 0 }

// Owner returns the id of the Sled the filter belongs to
func (f Filter) Owner() uuid.UUID { return f.owner }

// Generation returns the Sled generation the filter was computed against
func (f Filter) Generation() uint64 { return f.generation }

// Contains reports whether index i is selected
func (f Filter) Contains(i int) bool {
	k := sort.SearchInts(f.indices, i)
	return k < len(f.indices) && f.indices[k] == i
}

// Indices returns a copy of the selected indices
func (f Filter) Indices() []int {
	return slices.Clone(f.indices)
}

// Each calls fn for every index in ascending order
func (f Filter) Each(fn func(i int)) {
	for _, i := range f.indices {
		fn(i)
	}
}

// All yields every index in ascending order
func (f Filter) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, i := range f.indices {
			if !yield(i) {
				return
			}
		}
	}
}

// Equal reports whether both filters select the same indices of the same Sled
func (f Filter) Equal(o Filter) bool {
	return f.owner == o.owner && slices.Equal(f.indices, o.indices)
}

func (f Filter) compatible(o Filter) error {
	if f.owner == uuid.Nil || f.owner != o.owner {
		return ErrMismatchedTopology
	}
	return nil
}

func (f Filter) derive(o Filter, indices []int) Filter {
	return Filter{
		owner:      f.owner,
		total:      f.total,
		generation: max(f.generation, o.generation),
		indices:    indices,
	}
}

// And returns the indices selected by both filters
func (f Filter) And(o Filter) (Filter, error) {
	if err := f.compatible(o); err != nil {
		return Filter{}, err
	}
	out := make([]int, 0, min(len(f.indices), len(o.indices)))
	a, b := f.indices, o.indices
	for len(a) > 0 && len(b) > 0 {
		switch {
		case a[0] < b[0]:
			a = a[1:]
		case a[0] > b[0]:
			b = b[1:]
		default:
			out = append(out, a[0])
			a, b = a[1:], b[1:]
		}
	}
	return f.derive(o, out), nil
}

// Or returns the indices selected by either filter
func (f Filter) Or(o Filter) (Filter, error) {
	if err := f.compatible(o); err != nil {
		return Filter{}, err
	}
	out := make([]int, 0, len(f.indices)+len(o.indices))
	a, b := f.indices, o.indices
	for len(a) > 0 && len(b) > 0 {
		switch {
		case a[0] < b[0]:
			out = append(out, a[0])
			a = a[1:]
		case a[0] > b[0]:
			out = append(out, b[0])
			b = b[1:]
		default:
			out = append(out, a[0])
			a, b = a[1:], b[1:]
		}
	}
	out = append(out, a...)
	out = append(out, b...)
	return f.derive(o, out), nil
}

// Difference returns the indices selected by f but not by o
func (f Filter) Difference(o Filter) (Filter, error) {
	if err := f.compatible(o); err != nil {
		return Filter{}, err
	}
	out := make([]int, 0, len(f.indices))
	a, b := f.indices, o.indices
	for len(a) > 0 {
		switch {
		case len(b) == 0 || a[0] < b[0]:
			out = append(out, a[0])
			a = a[1:]
		case a[0] > b[0]:
			b = b[1:]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return f.derive(o, out), nil
}

// Not returns every index of the owning Sled the filter does not select
func (f Filter) Not() Filter {
	out := make([]int, 0, f.total-len(f.indices))
	next := 0
	for _, i := range f.indices {
		for ; next < i; next++ {
			out = append(out, next)
		}
		next = i + 1
	}
	for ; next < f.total; next++ {
		out = append(out, next)
	}
	return Filter{owner: f.owner, total: f.total, generation: f.generation, indices: out}
}

// newFilter wraps an ascending, duplicate-free index slice
func (s *Sled[T]) newFilter(indices []int) Filter {
	return Filter{owner: s.id, total: len(s.points), generation: s.generation, indices: indices}
}

func (s *Sled[T]) owns(f Filter) error {
	if f.owner != s.id {
		return fmt.Errorf("%w: filter owner %s, sled %s", ErrMismatchedTopology, f.owner, s.id)
	}
	return nil
}

// Filter evaluates pred once per point and freezes the matches
func (s *Sled[T]) Filter(pred func(Point[T]) bool) Filter {
	var out []int
	for i := range s.points {
		if pred(s.points[i]) {
			out = append(out, i)
		}
	}
	return s.newFilter(out)
}

// FilterByPosition selects points whose position satisfies pred
func (s *Sled[T]) FilterByPosition(pred func(r2.Point) bool) Filter {
	return s.Filter(func(p Point[T]) bool { return pred(p.Position) })
}

// FilterByAngle selects points whose angle around the reference center satisfies pred
func (s *Sled[T]) FilterByAngle(pred func(float64) bool) Filter {
	return s.Filter(func(p Point[T]) bool { return pred(p.Angle) })
}

// FilterByDistance selects points whose distance from the reference center satisfies pred
func (s *Sled[T]) FilterByDistance(pred func(float64) bool) Filter {
	return s.Filter(func(p Point[T]) bool { return pred(p.Distance) })
}

// FilterByDistanceFrom selects points whose distance from origin satisfies pred
func (s *Sled[T]) FilterByDistanceFrom(origin r2.Point, pred func(float64) bool) Filter {
	return s.Filter(func(p Point[T]) bool { return pred(p.Position.Sub(origin).Norm()) })
}

// FilterByDirection selects points whose unit direction from the reference center satisfies pred
func (s *Sled[T]) FilterByDirection(pred func(r2.Point) bool) Filter {
	return s.Filter(func(p Point[T]) bool { return pred(p.Direction) })
}

// FilterAll selects every point
func (s *Sled[T]) FilterAll() Filter {
	out := make([]int, len(s.points))
	for i := range out {
		out[i] = i
	}
	return s.newFilter(out)
}

// EmptyFilter selects nothing
func (s *Sled[T]) EmptyFilter() Filter {
	return s.newFilter(nil)
}

// Complement returns every point f does not select
func (s *Sled[T]) Complement(f Filter) (Filter, error) {
	if err := s.owns(f); err != nil {
		return Filter{}, err
	}
	return f.Not(), nil
}

// FromIndices builds a filter from arbitrary indices, sorting and
// deduplicating them
func (s *Sled[T]) FromIndices(indices ...int) (Filter, error) {
	out := slices.Clone(indices)
	for _, i := range out {
		if err := s.checkIndex(i); err != nil {
			return Filter{}, err
		}
	}
	slices.Sort(out)
	return s.newFilter(slices.Compact(out)), nil
}

// Vertices selects the layout corners: segment ends and unjoined segment starts
func (s *Sled[T]) Vertices() Filter {
	return s.newFilter(slices.Clone(s.vertices))
}

// SegmentFilter selects every point of segment id
func (s *Sled[T]) SegmentFilter(id int) (Filter, error) {
	return s.SegmentsFilter(id, id+1)
}

// SegmentsFilter selects every point of segments in [from, to)
func (s *Sled[T]) SegmentsFilter(from, to int) (Filter, error) {
	if from < 0 || to > len(s.segments) || from >= to {
		return Filter{}, fmt.Errorf("%w: [%d, %d) of %d", ErrUnknownSegment, from, to, len(s.segments))
	}
	lo, hi := s.segments[from].Start, s.segments[to-1].End
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return s.newFilter(out), nil
}
