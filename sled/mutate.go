package sled

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// SetData replaces the payload at index i
// On error nothing changes
func (s *Sled[T]) SetData(i int, v T) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.points[i].Data = v
	s.generation++
	return nil
}

// SetDataWhere evaluates pred against every point now and replaces matching
// payloads with fn's result; returns the number of points changed
func (s *Sled[T]) SetDataWhere(pred func(r2.Point, T) bool, fn func(Point[T]) T) int {
	n := 0
	for i := range s.points {
		p := &s.points[i]
		if pred(p.Position, p.Data) {
			p.Data = fn(*p)
			n++
		}
	}
	if n > 0 {
		s.generation++
	}
	return n
}

// SetDataIn replaces the payload of every index in f with fn's result
// Only f's indices are visited
func (s *Sled[T]) SetDataIn(f Filter, fn func(Point[T]) T) error {
	if err := s.owns(f); err != nil {
		return err
	}
	for _, i := range f.indices {
		p := &s.points[i]
		p.Data = fn(*p)
	}
	if len(f.indices) > 0 {
		s.generation++
	}
	return nil
}

// SetAll replaces every payload with v
func (s *Sled[T]) SetAll(v T) {
	for i := range s.points {
		s.points[i].Data = v
	}
	s.generation++
}

// Map replaces every payload with fn's result
func (s *Sled[T]) Map(fn func(Point[T]) T) {
	for i := range s.points {
		p := &s.points[i]
		p.Data = fn(*p)
	}
	s.generation++
}

// SetRange replaces the payload of every index in r with v
func (s *Sled[T]) SetRange(r Range, v T) error {
	if r.End < r.Start {
		return fmt.Errorf("%w: range [%d, %d] is reversed", ErrIndexOutOfRange, r.Start, r.End)
	}
	if err := s.checkIndex(r.Start); err != nil {
		return err
	}
	if err := s.checkIndex(r.End); err != nil {
		return err
	}
	for i := r.Start; i <= r.End; i++ {
		s.points[i].Data = v
	}
	s.generation++
	return nil
}

// SetSegment replaces the payload of every point on segment id with v
func (s *Sled[T]) SetSegment(id int, v T) error {
	seg, err := s.Segment(id)
	if err != nil {
		return err
	}
	return s.SetRange(seg.Range(), v)
}

// ForEachInSegment replaces each payload on segment id with fn's result
// alpha runs from 0 at the segment's first point to 1 at its last
func (s *Sled[T]) ForEachInSegment(id int, fn func(p Point[T], alpha float64) T) error {
	seg, err := s.Segment(id)
	if err != nil {
		return err
	}
	for i := seg.Start; i <= seg.End; i++ {
		p := &s.points[i]
		p.Data = fn(*p, seg.alpha(i))
	}
	s.generation++
	return nil
}
