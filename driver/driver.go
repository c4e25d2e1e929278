// Package driver turns sled payloads into hardware frames
//
// A Sink consumes one frame as the sled's point sequence. Encoder and
// PacketSink cover RGB strips addressed by point index; Throttle caps the
// frame rate of any sink; Data carries typed state shared between an
// application's update function and its drivers.
package driver

import (
	"iter"

	"github.com/lixenwraith/spatial-led/sled"
)

// Sink receives one frame per call, points in index order
type Sink[T any] interface {
	Write(points iter.Seq[sled.Point[T]]) error
}

// SinkFunc adapts a function to Sink
type SinkFunc[T any] func(points iter.Seq[sled.Point[T]]) error

func (f SinkFunc[T]) Write(points iter.Seq[sled.Point[T]]) error {
	return f(points)
}

// Flush writes every point of s to sink
func Flush[T any](s *sled.Sled[T], sink Sink[T]) error {
	return sink.Write(s.All())
}

// Multi fans a frame out to every sink, stopping at the first error
func Multi[T any](sinks ...Sink[T]) Sink[T] {
	return SinkFunc[T](func(points iter.Seq[sled.Point[T]]) error {
		for _, s := range sinks {
			if err := s.Write(points); err != nil {
				return err
			}
		}
		return nil
	})
}
