package main

import (
	"maps"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// stop is one palette key color at position pos in [0, 1]
type stop struct {
	col colorful.Color
	pos float64
}

// palette is a cyclic gradient sampled by effects; stops ascend by pos and
// the last stop blends back into the first
type palette []stop

var palettes = map[string]palette{
	"aurora": {
		{mustHex("#0b3d2e"), 0},
		{mustHex("#1fd19f"), 0.3},
		{mustHex("#5a4fcf"), 0.65},
		{mustHex("#c04bd6"), 0.85},
	},
	"ember": {
		{mustHex("#200000"), 0},
		{mustHex("#c1121f"), 0.35},
		{mustHex("#ff8800"), 0.6},
		{mustHex("#ffd166"), 0.8},
	},
	"ocean": {
		{mustHex("#001219"), 0},
		{mustHex("#005f73"), 0.3},
		{mustHex("#0a9396"), 0.55},
		{mustHex("#94d2bd"), 0.8},
	},
	"rainbow": rainbow(6),
}

func paletteNames() []string {
	return slices.Sorted(maps.Keys(palettes))
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// rainbow spreads n fully saturated hues evenly
func rainbow(n int) palette {
	p := make(palette, n)
	for i := range p {
		pos := float64(i) / float64(n)
		p[i] = stop{colorful.Hsv(pos*360, 1, 1), pos}
	}
	return p
}

// at samples the gradient at t, wrapping t into [0, 1)
// Neighbouring stops blend in HCL, which keeps perceived brightness even
func (p palette) at(t float64) colorful.Color {
	t -= math.Floor(t)
	for i := range p {
		a := p[i]
		b := p[(i+1)%len(p)]
		end := b.pos
		if i == len(p)-1 {
			end = 1 + p[0].pos
		}
		if t >= a.pos && t <= end {
			return a.col.BlendHcl(b.col, (t-a.pos)/(end-a.pos)).Clamped()
		}
	}
	// t lies before the first stop: blend from the last stop across the wrap
	last := p[len(p)-1]
	span := 1 - last.pos + p[0].pos
	return last.col.BlendHcl(p[0].col, (t+1-last.pos)/span).Clamped()
}
