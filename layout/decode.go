package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func parseTOML(data []byte) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// parseGeoJSON reads a FeatureCollection in layout units (not degrees)
// Every LineString edge becomes one segment, MultiLineStrings contribute each
// line; feature properties "density" and "count" apply to the feature's edges.
// A Point feature with property "center": true sets the center and the
// collection's foreign member "density" sets the document density
func parseGeoJSON(data []byte) (*Config, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if cfg.Density, err = number(fc.ExtraMembers, "density"); err != nil {
		return nil, err
	}

	for i, f := range fc.Features {
		density, err := number(f.Properties, "density")
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		count, err := integer(f.Properties, "count")
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		addLine := func(ls orb.LineString) {
			for k := 1; k < len(ls); k++ {
				cfg.Segments = append(cfg.Segments, Segment{
					Start:   Vec(ls[k-1]),
					End:     Vec(ls[k]),
					Density: density,
					Count:   count,
				})
			}
		}

		switch g := f.Geometry.(type) {
		case orb.LineString:
			addLine(g)
		case orb.MultiLineString:
			for _, ls := range g {
				addLine(ls)
			}
		case orb.Point:
			if center, _ := f.Properties["center"].(bool); center {
				c := Vec(g)
				cfg.Center = &c
			}
		case nil:
			return nil, fmt.Errorf("feature %d: no geometry", i)
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %s", i, g.GeoJSONType())
		}
	}
	return &cfg, nil
}

// number reads an optional numeric property; absent is zero
func number(p geojson.Properties, key string) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("property %q is %T, want number", key, v)
	}
}

// integer reads an optional LED count property; it must be a whole number in
// [0, MaxSegmentCount]
func integer(p geojson.Properties, key string) (int, error) {
	n, err := number(p, key)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < 0 || n > MaxSegmentCount {
		return 0, fmt.Errorf("%w: property %q is %v, want a whole number in [0, %d]", ErrInvalidLayout, key, n, MaxSegmentCount)
	}
	return int(n), nil
}
