package sled

import "errors"

var (
	// ErrEmptyTopology is returned when construction yields no points at all
	ErrEmptyTopology = errors.New("sled: topology has no points")

	// ErrEmptySegment is returned when a segment specification produces no points
	ErrEmptySegment = errors.New("sled: segment has no points")

	// ErrInvalidSegment is returned for malformed segment specifications
	ErrInvalidSegment = errors.New("sled: invalid segment specification")

	// ErrIndexOutOfRange is returned when a point index is outside [0, PointCount)
	ErrIndexOutOfRange = errors.New("sled: index out of range")

	// ErrUnknownSegment is returned when a segment id does not exist
	ErrUnknownSegment = errors.New("sled: unknown segment")

	// ErrMismatchedTopology is returned when filters from different topologies meet
	ErrMismatchedTopology = errors.New("sled: filter belongs to a different topology")
)
