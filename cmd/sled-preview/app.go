package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/spatial-led/asset"
	"github.com/lixenwraith/spatial-led/coop"
	"github.com/lixenwraith/spatial-led/core"
	"github.com/lixenwraith/spatial-led/driver"
	"github.com/lixenwraith/spatial-led/layout"
	"github.com/lixenwraith/spatial-led/preview"
	"github.com/lixenwraith/spatial-led/scheduler"
	"github.com/lixenwraith/spatial-led/status"
)

const (
	previewInterval = time.Second / 60
	statusInterval  = 250 * time.Millisecond
	keyPaletteName  = "palette.name"

	snapshotWidth  = 960
	snapshotHeight = 540
)

// app wires one layout, one effect and the configured sinks to a scheduler
type app struct {
	cfg   *Config
	topo  *topology
	data  *driver.Data
	reg   *status.Registry
	sched *scheduler.Scheduler[colorful.Color]
	anim  *animator

	enc     *driver.Encoder
	packets *driver.PacketSink
	view    *driver.Throttle[colorful.Color]
	term    *preview.Terminal
	sink    driver.Sink[colorful.Color]
	closers []io.Closer
}

func loadTopology(cfg *Config) (*topology, error) {
	var (
		lc  *layout.Config
		err error
	)
	if cfg.Layout != "" {
		lc, err = layout.Load(cfg.Layout)
	} else {
		lc, err = layout.Parse([]byte(asset.Layouts[cfg.Preset]), layout.FormatTOML)
	}
	if err != nil {
		return nil, err
	}
	return layout.Build[colorful.Color](lc)
}

// newApp builds the pipeline; screen replaces the process terminal when non-nil
func newApp(cfg *Config, screen tcell.Screen) (*app, error) {
	topo, err := loadTopology(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:  cfg,
		topo: topo,
		data: driver.NewData(),
		reg:  status.NewRegistry(),
		enc:  driver.NewEncoder(cfg.Brightness),
	}
	driver.Set(a.data, keySpeed, 1.0)
	driver.Set(a.data, keyPalette, palettes[cfg.Palette])
	driver.Set(a.data, keyPaletteName, cfg.Palette)

	a.sched, err = scheduler.New[colorful.Color](cfg.Rate,
		scheduler.WithSpin(cfg.Spin),
		scheduler.WithStatus(a.reg),
	)
	if err != nil {
		return nil, err
	}
	a.anim = newAnimator(effects[cfg.Effect](topo, cfg.Seed), a.data)

	var sinks []driver.Sink[colorful.Color]
	if cfg.Packets != "" {
		f, err := os.OpenFile(cfg.Packets, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open packet output: %w", err)
		}
		a.closers = append(a.closers, f)
		a.packets = driver.NewPacketSink(f, a.enc)
		sinks = append(sinks, a.packets)
	}

	if !cfg.Headless {
		if screen != nil {
			a.term = preview.NewTerminal(screen, topo.Bounds())
		} else {
			cfg.applyColorMode()
			if a.term, err = preview.OpenTerminal(topo.Bounds()); err != nil {
				a.close()
				return nil, fmt.Errorf("open terminal: %w", err)
			}
		}
		a.term.OnKey(a.handleKey)
		a.view = driver.NewThrottle[colorful.Color](a.term, previewInterval, nil)
		sinks = append(sinks, a.view)
	}
	a.sink = driver.Multi(sinks...)

	core.Logger().Info("pipeline ready",
		"points", topo.PointCount(),
		"segments", topo.SegmentCount(),
		"effect", cfg.Effect,
		"rate", cfg.Rate,
		"cooperative", cfg.Cooperative,
	)
	return a, nil
}

func (a *app) update(s *topology, f scheduler.Frame) error {
	if err := a.anim.update(s, f); err != nil {
		return err
	}
	return driver.Flush(s, a.sink)
}

func (a *app) handleKey(r rune) {
	switch r {
	case '+':
		_ = driver.Update(a.data, keySpeed, func(v float64) float64 { return min(v*1.25, 16) })
	case '-':
		_ = driver.Update(a.data, keySpeed, func(v float64) float64 { return max(v/1.25, 1.0/16) })
	case 'b':
		a.enc.SetBrightness(a.enc.Brightness() - 0.1)
	case 'B':
		a.enc.SetBrightness(a.enc.Brightness() + 0.1)
	case 'p':
		names := paletteNames()
		cur := driver.GetOr(a.data, keyPaletteName, names[0])
		next := names[0]
		for i, n := range names {
			if n == cur {
				next = names[(i+1)%len(names)]
				break
			}
		}
		driver.Set(a.data, keyPaletteName, next)
		driver.Set(a.data, keyPalette, palettes[next])
	}
}

// refreshStatus publishes sink counters and redraws the overlay text
func (a *app) refreshStatus() {
	a.reg.Floats.Get("driver.brightness").Set(a.enc.Brightness())
	a.reg.Floats.Get("effect.speed").Set(driver.GetOr(a.data, keySpeed, 1.0))
	a.reg.Strings.Get("effect.palette").Store(driver.GetOr(a.data, keyPaletteName, ""))
	if a.packets != nil {
		a.reg.Ints.Get("driver.packets").Store(int64(a.packets.Frames()))
	}
	if a.view != nil {
		a.reg.Ints.Get("preview.dropped").Store(int64(a.view.Dropped()))
	}
	if a.term == nil {
		return
	}

	var b strings.Builder
	for _, e := range a.reg.Snapshot() {
		if b.Len() > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s=%s", e.Key, e.Value)
	}
	a.term.SetOverlay(
		fmt.Sprintf("sled-preview  %s  [q]uit [+/-]speed [b/B]rightness [p]alette", a.cfg.Effect),
		b.String(),
	)
}

// quiet maps cancellation to a clean exit
func quiet(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// guard reports a panic in an errgroup goroutine through the crash handler
func guard(fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				core.HandleCrash(r)
			}
		}()
		return fn()
	}
}

// run drives the pipeline until quit, the configured duration or ctx ends
func (a *app) run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.cfg.Duration > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(runCtx, a.cfg.Duration)
		defer stop()
	}

	a.refreshStatus()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(guard(func() error {
		defer cancel()
		if a.cfg.Cooperative {
			return quiet(a.runCooperative(gctx))
		}
		return quiet(a.runBlocking(gctx))
	}))
	if a.term != nil {
		g.Go(guard(func() error {
			defer cancel()
			return quiet(a.term.Poll(gctx))
		}))
	}
	err := g.Wait()

	a.refreshStatus()
	core.Logger().Info("pipeline stopped", "ticks", a.sched.Ticks(), "overruns", a.sched.Overruns(), "error", err)
	if err != nil {
		return err
	}
	return a.writeSnapshot()
}

func (a *app) runBlocking(ctx context.Context) error {
	core.Go(func() {
		ticker := time.NewTicker(statusInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				a.refreshStatus()
			}
		}
	})
	return a.sched.Start(ctx, a.topo, a.update)
}

// runCooperative shares one token between the scheduler and the status task
func (a *app) runCooperative(ctx context.Context) error {
	rt := coop.New(coop.WithSpin(a.cfg.Spin))
	h := a.sched.Spawn(rt, a.topo, a.update)
	rt.Go(func(task *coop.Task) error {
		for {
			select {
			case <-h.Done():
				return nil
			default:
			}
			a.refreshStatus()
			if err := task.Wait(task.Context(), statusInterval); err != nil {
				return err
			}
		}
	})
	return rt.Run(ctx)
}

func (a *app) writeSnapshot() error {
	if a.cfg.Snapshot == "" {
		return nil
	}
	snap := preview.NewSnapshot(a.topo.Bounds(), snapshotWidth, snapshotHeight,
		preview.WithCaption(fmt.Sprintf("%s  tick %d", a.cfg.Effect, a.sched.Ticks())),
	)
	if err := snap.Write(a.topo.All()); err != nil {
		return err
	}

	f, err := os.Create(a.cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := preview.WritePNG(f, snap.Last()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) close() {
	if a.term != nil {
		a.term.Close()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			core.Logger().Warn("close", "error", err)
		}
	}
}
