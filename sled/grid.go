package sled

import (
	"math"
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/lixenwraith/spatial-led/vmath"
)

// targetPerCell is the average number of points aimed for in one cell
const targetPerCell = 2

// spatialGrid is a dense uniform grid over the layout bounds for nearest and
// radius queries without full scans
// Geometry never changes after construction, so the grid is built once and
// never updated; cells are stored compressed: the points of cell c are
// items[cellStart[c]:cellStart[c+1]], ascending by index
type spatialGrid struct {
	origin   r2.Point
	cellSize float64
	width    int
	height   int

	cellStart []int32 // len = width*height + 1
	items     []int32
	positions []r2.Point
}

func newSpatialGrid(positions []r2.Point, bounds r2.Rect) *spatialGrid {
	n := len(positions)
	w, h := bounds.X.Length(), bounds.Y.Length()

	cells := max(n/targetPerCell, 1)
	var cellSize float64
	switch {
	case w > 0 && h > 0:
		cellSize = math.Sqrt(w * h / float64(cells))
	case w > 0 || h > 0:
		cellSize = max(w, h) / float64(cells)
	default:
		cellSize = 1
	}

	g := &spatialGrid{
		origin:    r2.Point{X: bounds.X.Lo, Y: bounds.Y.Lo},
		cellSize:  cellSize,
		positions: positions,
	}
	g.width, g.height = g.dims(w, h)
	// Long thin layouts can explode the cell count; coarsen until bounded
	for g.width*g.height > 4*n+16 {
		g.cellSize *= 2
		g.width, g.height = g.dims(w, h)
	}

	counts := make([]int32, g.width*g.height+1)
	cellOf := make([]int32, n)
	for i, p := range positions {
		cx, cy := g.cellOf(p)
		c := int32(cy*g.width + cx)
		cellOf[i] = c
		counts[c+1]++
	}
	for c := 1; c < len(counts); c++ {
		counts[c] += counts[c-1]
	}
	g.cellStart = counts

	// Fill in index order so every cell lists ascending indices
	g.items = make([]int32, n)
	next := make([]int32, g.width*g.height)
	copy(next, counts[:len(counts)-1])
	for i, c := range cellOf {
		g.items[next[c]] = int32(i)
		next[c]++
	}
	return g
}

func (g *spatialGrid) dims(w, h float64) (int, int) {
	return int(w/g.cellSize) + 1, int(h/g.cellSize) + 1
}

// cellOf returns the cell containing p, clamped onto the grid
func (g *spatialGrid) cellOf(p r2.Point) (int, int) {
	cx := int(math.Floor((p.X - g.origin.X) / g.cellSize))
	cy := int(math.Floor((p.Y - g.origin.Y) / g.cellSize))
	return min(max(cx, 0), g.width-1), min(max(cy, 0), g.height-1)
}

// cellRect returns the region whose points land in cell (x, y), padded by a
// hair so float rounding in cellOf never leaves a point outside it
// Border cells are open-ended because cellOf clamps onto them
func (g *spatialGrid) cellRect(x, y int) r2.Rect {
	pad := g.cellSize * 1e-9
	lo := r2.Point{X: g.origin.X + float64(x)*g.cellSize - pad, Y: g.origin.Y + float64(y)*g.cellSize - pad}
	hi := r2.Point{X: lo.X + g.cellSize + 2*pad, Y: lo.Y + g.cellSize + 2*pad}
	if x == 0 {
		lo.X = math.Inf(-1)
	}
	if y == 0 {
		lo.Y = math.Inf(-1)
	}
	if x == g.width-1 {
		hi.X = math.Inf(1)
	}
	if y == g.height-1 {
		hi.Y = math.Inf(1)
	}
	return r2.Rect{X: r1.Interval{Lo: lo.X, Hi: hi.X}, Y: r1.Interval{Lo: lo.Y, Hi: hi.Y}}
}

// cell returns the point indices in cell (x, y)
// INTERNAL USE ONLY - slice aliases grid storage
func (g *spatialGrid) cell(x, y int) []int32 {
	c := y*g.width + x
	return g.items[g.cellStart[c]:g.cellStart[c+1]]
}

// visitRing calls fn for every cell at Chebyshev distance k from (cx, cy)
func (g *spatialGrid) visitRing(cx, cy, k int, fn func([]int32)) {
	if k == 0 {
		fn(g.cell(cx, cy))
		return
	}
	x0, x1 := cx-k, cx+k
	y0, y1 := cy-k, cy+k
	for x := max(x0, 0); x <= min(x1, g.width-1); x++ {
		if y0 >= 0 {
			fn(g.cell(x, y0))
		}
		if y1 < g.height {
			fn(g.cell(x, y1))
		}
	}
	for y := max(y0+1, 0); y <= min(y1-1, g.height-1); y++ {
		if x0 >= 0 {
			fn(g.cell(x0, y))
		}
		if x1 < g.width {
			fn(g.cell(x1, y))
		}
	}
}

// outsideBound returns a lower bound on the distance from p to any point in a
// cell outside the ring box of radius k, and whether such cells exist
func (g *spatialGrid) outsideBound(p r2.Point, cx, cy, k int) (float64, bool) {
	bound := math.Inf(1)
	more := false
	if cx-k > 0 {
		more = true
		bound = min(bound, max(0, p.X-(g.origin.X+float64(cx-k)*g.cellSize)))
	}
	if cx+k < g.width-1 {
		more = true
		bound = min(bound, max(0, g.origin.X+float64(cx+k+1)*g.cellSize-p.X))
	}
	if cy-k > 0 {
		more = true
		bound = min(bound, max(0, p.Y-(g.origin.Y+float64(cy-k)*g.cellSize)))
	}
	if cy+k < g.height-1 {
		more = true
		bound = min(bound, max(0, g.origin.Y+float64(cy+k+1)*g.cellSize-p.Y))
	}
	return bound, more
}

// nearest expands rings around p's cell until no unvisited cell can hold a
// closer point; ties resolve to the lowest index
func (g *spatialGrid) nearest(p r2.Point) int {
	cx, cy := g.cellOf(p)
	best, bestD := -1, math.Inf(1)

	visit := func(cell []int32) {
		for _, idx := range cell {
			i := int(idx)
			d := vmath.DistanceSq(g.positions[i], p)
			if d < bestD || (d == bestD && i < best) {
				best, bestD = i, d
			}
		}
	}

	for k := 0; ; k++ {
		g.visitRing(cx, cy, k, visit)
		bound, more := g.outsideBound(p, cx, cy, k)
		if !more {
			break
		}
		// Strict: a point exactly at the bound may still win on index
		if best >= 0 && bestD < bound*bound {
			break
		}
	}
	if best < 0 {
		// Non-finite query; fall back to the scan's answer
		return 0
	}
	return best
}

// within returns ascending indices of points no further than r from p
func (g *spatialGrid) within(p r2.Point, r float64) []int {
	lo := r2.Point{X: p.X - r, Y: p.Y - r}
	hi := r2.Point{X: p.X + r, Y: p.Y + r}
	x0, y0 := g.cellOf(lo)
	x1, y1 := g.cellOf(hi)
	rr := r * r

	var out []int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Corner cells of the box can lie entirely outside the circle
			if vmath.RectDistanceSq(g.cellRect(x, y), p) > rr {
				continue
			}
			for _, idx := range g.cell(x, y) {
				if vmath.DistanceSq(g.positions[idx], p) <= rr {
					out = append(out, int(idx))
				}
			}
		}
	}
	sort.Ints(out)
	return out
}
