// Package layout reads declarative room layouts and turns them into segment
// specifications for sled.New
//
// A layout is a list of straight strips, each given by its endpoints and either
// an explicit LED count or a density in LEDs per unit length; a document-wide
// density applies to strips that set neither. YAML, TOML and GeoJSON documents
// decode into the same Config.
package layout

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/lixenwraith/spatial-led/core"
	"github.com/lixenwraith/spatial-led/sled"
	"github.com/lixenwraith/spatial-led/vmath"
)

var (
	// ErrUnknownFormat is returned for an unsupported format or file extension
	ErrUnknownFormat = errors.New("layout: unknown format")

	// ErrInvalidLayout is returned for documents that decode but describe no usable layout
	ErrInvalidLayout = errors.New("layout: invalid layout")
)

// Format identifies a layout document encoding
type Format int

const (
	FormatYAML Format = iota + 1
	FormatTOML
	FormatGeoJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatGeoJSON:
		return "geojson"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// FormatFromPath infers the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Vec is a point written as a two-element array
type Vec [2]float64

// Point converts to r2
func (v Vec) Point() r2.Point { return r2.Point{X: v[0], Y: v[1]} }

// Segment is one straight strip
type Segment struct {
	Start   Vec     `yaml:"start" toml:"start"`
	End     Vec     `yaml:"end" toml:"end"`
	Density float64 `yaml:"density,omitempty" toml:"density,omitempty"`
	Count   int     `yaml:"count,omitempty" toml:"count,omitempty"`
}

// Length returns the distance between the endpoints
func (s Segment) Length() float64 {
	return vmath.Distance(s.Start.Point(), s.End.Point())
}

// Config is a decoded layout document
type Config struct {
	Center   *Vec      `yaml:"center_point,omitempty" toml:"center_point,omitempty"`
	Density  float64   `yaml:"density" toml:"density"`
	Segments []Segment `yaml:"line_segment" toml:"line_segment"`
}

// MaxSegmentCount bounds the LEDs on one segment, explicit or density derived
const MaxSegmentCount = 1 << 20

// Count returns the number of LEDs on segment i: its explicit count, else its
// length times its own or the document density, rounded
func (c *Config) Count(i int) int {
	return int(c.count(i))
}

func (c *Config) count(i int) float64 {
	s := c.Segments[i]
	if s.Count > 0 {
		return float64(s.Count)
	}
	d := s.Density
	if d <= 0 {
		d = c.Density
	}
	return math.Round(d * s.Length())
}

// Validate reports layouts no Sled can be built from
func (c *Config) Validate() error {
	if len(c.Segments) == 0 {
		return fmt.Errorf("%w: no line segments", ErrInvalidLayout)
	}
	if !finite(c.Density) || c.Density < 0 {
		return fmt.Errorf("%w: density %v", ErrInvalidLayout, c.Density)
	}
	for i, s := range c.Segments {
		if s.Count < 0 || !finite(s.Density) || s.Density < 0 {
			return fmt.Errorf("%w: segment %d: count %d density %v", ErrInvalidLayout, i, s.Count, s.Density)
		}
		if n := c.count(i); !finite(n) || n > MaxSegmentCount {
			return fmt.Errorf("%w: segment %d: %v LEDs exceeds %d", ErrInvalidLayout, i, n, MaxSegmentCount)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Specs converts every segment to an evenly spaced line specification
func (c *Config) Specs() []sled.SegmentSpec {
	specs := make([]sled.SegmentSpec, len(c.Segments))
	for i, s := range c.Segments {
		specs[i] = sled.Line(s.Start.Point(), s.End.Point(), c.Count(i))
	}
	return specs
}

// Options returns the construction options the document implies
func (c *Config) Options() []sled.Option {
	if c.Center == nil {
		return nil
	}
	return []sled.Option{sled.WithCenter(c.Center.Point())}
}

// Build constructs a Sled from cfg; opts apply after the document's own options
func Build[T any](cfg *Config, opts ...sled.Option) (*sled.Sled[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return sled.New[T](cfg.Specs(), append(cfg.Options(), opts...)...)
}

// Parse decodes a layout document
func Parse(data []byte, f Format) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	switch f {
	case FormatYAML:
		cfg, err = parseYAML(data)
	case FormatTOML:
		cfg, err = parseTOML(data)
	case FormatGeoJSON:
		cfg, err = parseGeoJSON(data)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("layout: decode %v: %w", f, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and decodes the layout file at path, inferring its format
func Load(path string) (*Config, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	cfg, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	core.Logger().Debug("layout loaded", "path", path, "format", f, "segments", len(cfg.Segments))
	return cfg, nil
}
