package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"iter"
	"math"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/lixenwraith/spatial-led/sled"
)

// Circle-to-cubic control point distance for a unit radius
const kappa = 0.5522847498

// SnapshotOption configures a Snapshot
type SnapshotOption func(*Snapshot)

// WithRadius sets the disk radius in pixels
func WithRadius(r float64) SnapshotOption {
	return func(s *Snapshot) {
		s.radius = r
	}
}

// WithBackground sets the fill behind the disks
func WithBackground(c color.Color) SnapshotOption {
	return func(s *Snapshot) {
		s.background = image.NewUniform(c)
	}
}

// WithCaption draws text in the top-left corner of every image
func WithCaption(text string) SnapshotOption {
	return func(s *Snapshot) {
		s.caption = text
	}
}

// Snapshot rasterizes frames into RGBA images, one anti-aliased disk per point
// As a driver sink it keeps the latest frame
type Snapshot struct {
	width, height int
	radius        float64
	margin        float64
	background    *image.Uniform
	caption       string
	view          viewport

	mu   sync.Mutex
	last *image.RGBA
}

// NewSnapshot creates a width×height rasterizer for layouts within bounds
func NewSnapshot(bounds r2.Rect, width, height int, opts ...SnapshotOption) *Snapshot {
	s := &Snapshot{
		width:      width,
		height:     height,
		radius:     max(2, float64(min(width, height))/100),
		background: image.NewUniform(color.Black),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.margin = 2*s.radius + 2
	s.view = newViewport(bounds, float64(width)-2*s.margin, float64(height)-2*s.margin, 1)
	return s
}

// Project returns the pixel center of a layout position
func (s *Snapshot) Project(p r2.Point) (float64, float64) {
	x, y := s.view.project(p)
	return x + s.margin, y + s.margin
}

// Render draws one frame into a new image
func (s *Snapshot) Render(points iter.Seq[sled.Point[colorful.Color]]) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(img, img.Bounds(), s.background, image.Point{}, draw.Src)

	// One small rasterizer is reused for every disk
	side := int(math.Ceil(2*s.radius)) + 2
	z := vector.NewRasterizer(side, side)
	for p := range points {
		r, g, b := p.Data.Clamped().RGB255()
		if r == 0 && g == 0 && b == 0 {
			continue
		}
		cx, cy := s.Project(p.Position)
		ox, oy := int(math.Floor(cx-s.radius))-1, int(math.Floor(cy-s.radius))-1

		rect := image.Rect(ox, oy, ox+side, oy+side)
		if !rect.In(img.Bounds()) {
			continue
		}

		z.Reset(side, side)
		disk(z, float32(cx-float64(ox)), float32(cy-float64(oy)), float32(s.radius))
		z.Draw(img, rect, image.NewUniform(color.RGBA{R: r, G: g, B: b, A: 255}), image.Point{})
	}

	if s.caption != "" {
		d := font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(4, 4+basicfont.Face7x13.Ascent),
		}
		d.DrawString(s.caption)
	}
	return img
}

// disk adds a circle of radius r centered at (cx, cy) as four cubic arcs
func disk(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// Write renders the frame and keeps it as the latest image
func (s *Snapshot) Write(points iter.Seq[sled.Point[colorful.Color]]) error {
	img := s.Render(points)
	s.mu.Lock()
	s.last = img
	s.mu.Unlock()
	return nil
}

// Last returns the most recently written frame, nil before the first
func (s *Snapshot) Last() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// WritePNG encodes img to w
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("preview: encode png: %w", err)
	}
	return nil
}
