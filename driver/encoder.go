package driver

import (
	"fmt"
	"io"
	"iter"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/spatial-led/sled"
	"github.com/lixenwraith/spatial-led/status"
)

// Header opens every packet; the strip controller syncs on it
var Header = [3]byte{'*', 238, 2}

// Encoder serializes color payloads into RGB packets:
// Header followed by one R, G, B byte triple per point
type Encoder struct {
	brightness status.AtomicFloat
}

// NewEncoder creates an encoder scaling every channel by brightness in [0, 1]
func NewEncoder(brightness float64) *Encoder {
	e := &Encoder{}
	e.SetBrightness(brightness)
	return e
}

// Brightness returns the channel scale factor
func (e *Encoder) Brightness() float64 {
	return e.brightness.Get()
}

// SetBrightness changes the scale factor for subsequent packets; safe while encoding
func (e *Encoder) SetBrightness(b float64) {
	e.brightness.SetClamped(b, 0, 1)
}

// PacketSize returns the encoded size of n points
func PacketSize(n int) int {
	return len(Header) + 3*n
}

// Encode appends a packet for points to dst[:0] and returns it
// Out-of-gamut colors are clamped after scaling
func (e *Encoder) Encode(dst []byte, points iter.Seq[sled.Point[colorful.Color]]) []byte {
	b := e.Brightness()
	dst = append(dst[:0], Header[:]...)
	for p := range points {
		c := colorful.Color{R: p.Data.R * b, G: p.Data.G * b, B: p.Data.B * b}
		r, g, bl := c.Clamped().RGB255()
		dst = append(dst, r, g, bl)
	}
	return dst
}

// PacketSink encodes each frame and writes it to w in a single Write call
type PacketSink struct {
	enc *Encoder
	w   io.Writer

	mu     sync.Mutex
	buf    []byte
	frames uint64
}

// NewPacketSink creates a sink over w; a nil enc uses full brightness
func NewPacketSink(w io.Writer, enc *Encoder) *PacketSink {
	if enc == nil {
		enc = NewEncoder(1)
	}
	return &PacketSink{enc: enc, w: w}
}

// Encoder returns the sink's encoder
func (s *PacketSink) Encoder() *Encoder {
	return s.enc
}

// Frames returns the number of packets written
func (s *PacketSink) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *PacketSink) Write(points iter.Seq[sled.Point[colorful.Color]]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = s.enc.Encode(s.buf, points)
	if _, err := s.w.Write(s.buf); err != nil {
		return fmt.Errorf("driver: write packet %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}
