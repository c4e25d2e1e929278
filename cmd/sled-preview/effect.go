package main

import (
	"maps"
	"math"
	"slices"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/lixenwraith/spatial-led/driver"
	"github.com/lixenwraith/spatial-led/scheduler"
	"github.com/lixenwraith/spatial-led/sled"
)

// Keys of the shared driver data
const (
	keySpeed   = "speed"
	keyPalette = "palette"
)

type topology = sled.Sled[colorful.Color]

// step is the per-frame input of an effect
type step struct {
	phase float64 // effect seconds, scaled by speed
	dt    float64 // effect seconds since the previous frame
	pal   palette
}

type effect interface {
	step(s *topology, c step) error
}

var effects = map[string]func(s *topology, seed int64) effect{
	"sweep":  func(*topology, int64) effect { return sweep{} },
	"ripple": newRipple,
	"noise":  newNoise,
	"chase":  func(*topology, int64) effect { return chase{} },
	"trail":  newTrail,
}

func effectNames() []string {
	return slices.Sorted(maps.Keys(effects))
}

// animator turns scheduler frames into effect steps, reading speed and palette
// from the shared data on every frame so key handlers can change them live
type animator struct {
	fx    effect
	data  *driver.Data
	prev  time.Duration
	phase float64
}

func newAnimator(fx effect, data *driver.Data) *animator {
	return &animator{fx: fx, data: data}
}

func (a *animator) update(s *topology, f scheduler.Frame) error {
	speed := driver.GetOr(a.data, keySpeed, 1.0)
	pal, err := driver.Get[palette](a.data, keyPalette)
	if err != nil {
		return err
	}

	dt := (f.Elapsed - a.prev).Seconds() * speed
	a.prev = f.Elapsed
	a.phase += dt
	return a.fx.step(s, step{phase: a.phase, dt: dt, pal: pal})
}

func scale(c colorful.Color, k float64) colorful.Color {
	return colorful.Color{R: c.R * k, G: c.G * k, B: c.B * k}
}

// fade dims every point so that brightness halves every halfLife seconds
func fade(s *topology, dt, halfLife float64) {
	k := math.Pow(0.5, dt/halfLife)
	s.Map(func(p sled.Point[colorful.Color]) colorful.Color {
		return scale(p.Data, k)
	})
}

// reach is the largest distance of any point from the center
func reach(s *topology) float64 {
	r := 0.0
	for p := range s.All() {
		r = max(r, p.Distance)
	}
	return r
}

// sweep lights the point in the direction of a hand rotating once per 2π seconds
type sweep struct{}

func (sweep) step(s *topology, c step) error {
	fade(s, c.dt, 0.5)
	if i, ok := s.AtAngle(c.phase); ok {
		return s.SetData(i, c.pal.at(c.phase/(2*math.Pi)))
	}
	return nil
}

// ripple sends rings outward from the center
type ripple struct {
	reach float64
	width float64
}

func newRipple(s *topology, _ int64) effect {
	r := reach(s)
	return &ripple{reach: r, width: r / 12}
}

func (r *ripple) step(s *topology, c step) error {
	fade(s, c.dt, 0.3)
	if r.reach == 0 {
		return nil
	}
	radius := math.Mod(c.phase*r.reach/2, r.reach)
	band := s.FilterByDistance(func(d float64) bool {
		return math.Abs(d-radius) <= r.width
	})
	tint := c.pal.at(c.phase / 10)
	return s.SetDataIn(band, func(p sled.Point[colorful.Color]) colorful.Color {
		k := 1 - math.Abs(p.Distance-radius)/r.width
		return scale(tint, k)
	})
}

// noise colors each point by a slowly drifting simplex field over its position
type noise struct {
	field opensimplex.Noise
	scale float64
}

func newNoise(s *topology, seed int64) effect {
	size := s.Bounds().Size()
	extent := max(size.X, size.Y)
	if extent == 0 {
		extent = 1
	}
	return &noise{field: opensimplex.NewNormalized(seed), scale: 2 / extent}
}

func (n *noise) step(s *topology, c step) error {
	s.Map(func(p sled.Point[colorful.Color]) colorful.Color {
		v := n.field.Eval3(p.Position.X*n.scale, p.Position.Y*n.scale, c.phase*0.2)
		return c.pal.at(v)
	})
	return nil
}

// chase scrolls the palette along every segment, offset per segment
type chase struct{}

func (chase) step(s *topology, c step) error {
	n := s.SegmentCount()
	for id := range n {
		offset := float64(id)/float64(n) + c.phase*0.25
		err := s.ForEachInSegment(id, func(_ sled.Point[colorful.Color], alpha float64) colorful.Color {
			return c.pal.at(alpha/2 + offset)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// trail runs a glowing head around the layout in index order, leaving a fading tail
type trail struct {
	radius float64
	lap    float64 // seconds per lap
}

func newTrail(s *topology, _ int64) effect {
	return &trail{radius: max(reach(s)/15, 1e-3), lap: 6}
}

func (t *trail) step(s *topology, c step) error {
	fade(s, c.dt, 0.25)
	n := s.PointCount()
	head := int(c.phase/t.lap*float64(n)) % n
	pos, _, err := s.PointAt(head)
	if err != nil {
		return err
	}
	tint := c.pal.at(c.phase / t.lap)
	for _, i := range s.WithinDistance(pos, t.radius) {
		if err := s.SetData(i, tint); err != nil {
			return err
		}
	}
	return nil
}
