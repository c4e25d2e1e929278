package vmath

import "github.com/golang/geo/r2"

// Centroid returns the arithmetic mean of pts, zero for an empty slice
func Centroid(pts []r2.Point) r2.Point {
	if len(pts) == 0 {
		return r2.Point{}
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return r2.Point{X: sx / n, Y: sy / n}
}

// Bounds returns the smallest rectangle containing pts, empty for no points
func Bounds(pts []r2.Point) r2.Rect {
	if len(pts) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(pts...)
}

// RectDistanceSq returns the squared distance from p to the nearest point of r
// Zero when p lies inside r
func RectDistanceSq(r r2.Rect, p r2.Point) float64 {
	var dx, dy float64
	switch {
	case p.X < r.X.Lo:
		dx = r.X.Lo - p.X
	case p.X > r.X.Hi:
		dx = p.X - r.X.Hi
	}
	switch {
	case p.Y < r.Y.Lo:
		dy = r.Y.Lo - p.Y
	case p.Y > r.Y.Hi:
		dy = p.Y - r.Y.Hi
	}
	return dx*dx + dy*dy
}
