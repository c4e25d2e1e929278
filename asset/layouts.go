// Package asset embeds the built-in layout documents
// The three encodings describe the same room: a 4x2 rectangle with a gabled top
package asset

// DefaultRoomName is the layout used when none is configured
const DefaultRoomName = "room"

// DefaultRoomTOML is the built-in room in TOML
const DefaultRoomTOML = `
center_point = [0.0, 0.25]
density = 30.0

[[line_segment]]
start = [-2.0, -1.0]
end = [2.0, -1.0]

[[line_segment]]
start = [2.0, -1.0]
end = [2.0, 1.0]

[[line_segment]]
start = [2.0, 1.0]
end = [0.0, 2.0]

[[line_segment]]
start = [0.0, 2.0]
end = [-2.0, 1.0]

[[line_segment]]
start = [-2.0, 1.0]
end = [-2.0, -1.0]
`

// DefaultRoomYAML is the built-in room in YAML
const DefaultRoomYAML = `
center_point: [0.0, 0.25]
density: 30
line_segment:
  - {start: [-2, -1], end: [2, -1]}
  - {start: [2, -1], end: [2, 1]}
  - {start: [2, 1], end: [0, 2]}
  - {start: [0, 2], end: [-2, 1]}
  - {start: [-2, 1], end: [-2, -1]}
`

// DefaultRoomGeoJSON is the built-in room as a GeoJSON FeatureCollection in
// layout units
const DefaultRoomGeoJSON = `{
  "type": "FeatureCollection",
  "density": 30,
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "walls"},
      "geometry": {
        "type": "LineString",
        "coordinates": [[-2, -1], [2, -1], [2, 1], [0, 2], [-2, 1], [-2, -1]]
      }
    },
    {
      "type": "Feature",
      "properties": {"center": true},
      "geometry": {"type": "Point", "coordinates": [0, 0.25]}
    }
  ]
}`

// StripTOML is a single 2m run along the X axis, handy for bench setups
const StripTOML = `
density = 60.0

[[line_segment]]
start = [0.0, 0.0]
end = [2.0, 0.0]
`

// Layouts maps built-in names to their TOML documents
var Layouts = map[string]string{
	DefaultRoomName: DefaultRoomTOML,
	"strip":         StripTOML,
}
