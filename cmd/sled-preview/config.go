package main

import (
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/lixenwraith/spatial-led/asset"
)

// Config is read from SLED_* environment variables; flags override
type Config struct {
	Layout      string        `envconfig:"LAYOUT"`
	Preset      string        `envconfig:"PRESET" default:"room"`
	Effect      string        `envconfig:"EFFECT" default:"sweep"`
	Palette     string        `envconfig:"PALETTE" default:"aurora"`
	Rate        float64       `envconfig:"RATE" default:"60"`
	Spin        time.Duration `envconfig:"SPIN" default:"2ms"`
	Brightness  float64       `envconfig:"BRIGHTNESS" default:"1"`
	Cooperative bool          `envconfig:"COOPERATIVE"`
	Headless    bool          `envconfig:"HEADLESS"`
	Duration    time.Duration `envconfig:"DURATION"`
	Packets     string        `envconfig:"PACKETS"`
	Snapshot    string        `envconfig:"SNAPSHOT"`
	ColorMode   string        `envconfig:"COLOR" default:"auto"`
	Seed        int64         `envconfig:"SEED" default:"1"`
	Debug       bool          `envconfig:"DEBUG"`
}

// loadConfig applies the environment, then args
func loadConfig(args []string, stderr io.Writer) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("SLED", &cfg); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("sled-preview", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Layout, "layout", cfg.Layout, "Layout file (.toml, .yaml, .geojson); overrides -preset")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "Built-in layout: "+strings.Join(presetNames(), ", "))
	fs.StringVar(&cfg.Effect, "effect", cfg.Effect, "Effect: "+strings.Join(effectNames(), ", "))
	fs.StringVar(&cfg.Palette, "palette", cfg.Palette, "Palette: "+strings.Join(paletteNames(), ", "))
	fs.Float64Var(&cfg.Rate, "rate", cfg.Rate, "Ticks per second")
	fs.DurationVar(&cfg.Spin, "spin", cfg.Spin, "Busy-wait window before each tick")
	fs.Float64Var(&cfg.Brightness, "brightness", cfg.Brightness, "Packet brightness 0..1")
	fs.BoolVar(&cfg.Cooperative, "cooperative", cfg.Cooperative, "Run the scheduler as a cooperative task")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "No terminal preview")
	fs.DurationVar(&cfg.Duration, "duration", cfg.Duration, "Stop after this long; 0 runs until quit")
	fs.StringVar(&cfg.Packets, "packets", cfg.Packets, "Write RGB packets to this file or device")
	fs.StringVar(&cfg.Snapshot, "snapshot", cfg.Snapshot, "Write a PNG of the last frame on exit")
	fs.StringVar(&cfg.ColorMode, "color", cfg.ColorMode, "Color mode: auto, truecolor, 256")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Noise seed")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Write logs to "+logDir+"/"+logFileName)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func presetNames() []string {
	return slices.Sorted(maps.Keys(asset.Layouts))
}

func (c *Config) validate() error {
	if c.Layout == "" && !slices.Contains(presetNames(), c.Preset) {
		return fmt.Errorf("unknown preset %q", c.Preset)
	}
	if _, ok := effects[c.Effect]; !ok {
		return fmt.Errorf("unknown effect %q", c.Effect)
	}
	if _, ok := palettes[c.Palette]; !ok {
		return fmt.Errorf("unknown palette %q", c.Palette)
	}
	if c.Headless && c.Duration <= 0 {
		return fmt.Errorf("headless runs need a positive duration")
	}
	switch c.ColorMode {
	case "auto", "truecolor", "256":
	default:
		return fmt.Errorf("unknown color mode %q", c.ColorMode)
	}
	return nil
}

// applyColorMode steers tcell's color detection before the screen opens
func (c *Config) applyColorMode() {
	switch c.ColorMode {
	case "256":
		os.Setenv("TCELL_TRUECOLOR", "disable")
	case "truecolor":
		os.Setenv("COLORTERM", "truecolor")
	}
}
