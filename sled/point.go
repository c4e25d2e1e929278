package sled

import "github.com/golang/geo/r2"

// Point is a read-only snapshot of one light point
// Position, Direction, Angle and Distance are fixed at construction; the
// latter three are relative to the sled's reference center
type Point[T any] struct {
	Index     int
	Segment   int
	Position  r2.Point
	Direction r2.Point
	Angle     float64
	Distance  float64
	Data      T
}

// Range is an inclusive span of point indices
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Contains reports whether i lies within the range
func (r Range) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}
