// Package preview renders color sleds for humans: a live terminal view and
// PNG snapshots
//
// Both previews fit the layout bounds into their surface with the Y axis
// pointing up, preserving the layout's aspect ratio.
package preview

import (
	"math"

	"github.com/golang/geo/r2"
)

// viewport maps layout coordinates onto a width×height surface
// aspect is the height of one surface unit measured in widths
type viewport struct {
	bounds r2.Rect
	scale  float64 // surface x-units per layout unit
	aspect float64
	offX   float64
	offY   float64
}

func newViewport(bounds r2.Rect, width, height, aspect float64) viewport {
	size := bounds.Size()
	scale := math.Inf(1)
	if size.X > 0 {
		scale = width / size.X
	}
	if size.Y > 0 {
		scale = min(scale, height*aspect/size.Y)
	}
	if math.IsInf(scale, 1) {
		scale = 0
	}
	return viewport{
		bounds: bounds,
		scale:  scale,
		aspect: aspect,
		offX:   (width - size.X*scale) / 2,
		offY:   (height - size.Y*scale/aspect) / 2,
	}
}

// project returns surface coordinates of p; Y grows downward on the surface
func (v viewport) project(p r2.Point) (float64, float64) {
	x := v.offX + (p.X-v.bounds.X.Lo)*v.scale
	y := v.offY + (v.bounds.Y.Hi-p.Y)*v.scale/v.aspect
	return x, y
}
