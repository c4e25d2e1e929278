package main

import (
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/spatial-led/driver"
	"github.com/lixenwraith/spatial-led/scheduler"
	"github.com/lixenwraith/spatial-led/sled"
)

func newRoom(t testing.TB) *topology {
	t.Helper()
	topo, err := loadTopology(&Config{Preset: "room"})
	require.NoError(t, err)
	return topo
}

func newData(pal string) *driver.Data {
	d := driver.NewData()
	driver.Set(d, keySpeed, 1.0)
	driver.Set(d, keyPalette, palettes[pal])
	return d
}

func lit(c colorful.Color) bool {
	return c.R+c.G+c.B > 1e-3
}

func TestPaletteSampling(t *testing.T) {
	for name, p := range palettes {
		assert.True(t, p.at(0).AlmostEqualRgb(p[0].col), name)
		assert.True(t, p.at(1).AlmostEqualRgb(p.at(0)), "%s must wrap", name)
		assert.True(t, p.at(-0.25).AlmostEqualRgb(p.at(0.75)), name)
		for i := range 100 {
			assert.True(t, p.at(float64(i)/100).IsValid(), "%s at %d", name, i)
		}
	}
	aurora := palettes["aurora"]
	assert.True(t, aurora.at(0.3).AlmostEqualRgb(aurora[1].col))
}

func TestEffectsRun(t *testing.T) {
	for _, name := range effectNames() {
		t.Run(name, func(t *testing.T) {
			topo := newRoom(t)
			anim := newAnimator(effects[name](topo, 7), newData("rainbow"))
			for i := range 120 {
				f := scheduler.Frame{Elapsed: time.Duration(i) * 16 * time.Millisecond, Tick: uint64(i)}
				require.NoError(t, anim.update(topo, f))
			}
			litCount := 0
			for p := range topo.All() {
				assert.True(t, p.Data.IsValid(), "index %d", p.Index)
				if lit(p.Data) {
					litCount++
				}
			}
			assert.Positive(t, litCount)
			assert.InDelta(t, 120*0.016-0.016, anim.phase, 1e-9)
		})
	}
}

func TestSweepLightsHand(t *testing.T) {
	topo := newRoom(t)
	anim := newAnimator(effects["sweep"](topo, 0), newData("aurora"))
	require.NoError(t, anim.update(topo, scheduler.Frame{}))

	i, ok := topo.AtAngle(0)
	require.True(t, ok)
	_, c, err := topo.PointAt(i)
	require.NoError(t, err)
	assert.True(t, c.AlmostEqualRgb(palettes["aurora"].at(0)))
}

func TestAnimatorSpeedAndMissingPalette(t *testing.T) {
	topo := newRoom(t)
	data := newData("ember")
	driver.Set(data, keySpeed, 2.0)
	anim := newAnimator(effects["chase"](topo, 0), data)

	require.NoError(t, anim.update(topo, scheduler.Frame{Elapsed: time.Second}))
	assert.InDelta(t, 2.0, anim.phase, 1e-9)

	data.Delete(keyPalette)
	err := anim.update(topo, scheduler.Frame{Elapsed: 2 * time.Second})
	assert.ErrorIs(t, err, driver.ErrMissingKey)
}

func TestRippleSkipsDegenerateLayout(t *testing.T) {
	topo, err := sled.New[colorful.Color]([]sled.SegmentSpec{sled.Points(r2.Point{X: 1, Y: 1})})
	require.NoError(t, err)
	fx := newRipple(topo, 0)
	assert.NoError(t, fx.step(topo, step{phase: 1, dt: 0.1, pal: palettes["ocean"]}))
	assert.Equal(t, colorful.Color{}, topo.Data()[0])
}

// BenchmarkTrail simulates 30 seconds of the trail effect at 144Hz
func BenchmarkTrail(b *testing.B) {
	topo := newRoom(b)
	const hz = 144
	steps := 30 * hz
	for b.Loop() {
		anim := newAnimator(effects["trail"](topo, 0), newData("aurora"))
		for i := range steps {
			f := scheduler.Frame{Elapsed: time.Duration(i) * time.Second / hz, Tick: uint64(i)}
			if err := anim.update(topo, f); err != nil {
				b.Fatal(err)
			}
		}
	}
}
