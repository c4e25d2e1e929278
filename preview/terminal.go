package preview

import (
	"context"
	"iter"
	"math"
	"slices"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/spatial-led/core"
	"github.com/lixenwraith/spatial-led/sled"
)

const (
	// LitGlyph marks a point with a non-black color
	LitGlyph = '●'
	// DarkGlyph marks a point that is off
	DarkGlyph = '·'

	// Terminal cells are roughly twice as tall as wide
	cellAspect = 2.0
)

var darkStyle = tcell.StyleDefault.Foreground(tcell.NewRGBColor(64, 64, 64))

// Terminal draws each frame onto a tcell screen, one cell per point
// Overlay lines occupy the top rows; the layout fills the rest
type Terminal struct {
	screen tcell.Screen
	bounds r2.Rect

	mu      sync.Mutex
	overlay []string
	onKey   func(rune)
}

// OpenTerminal initializes the process terminal and registers it for crash restore
func OpenTerminal(bounds r2.Rect) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	core.SetCrashScreen(screen)
	return NewTerminal(screen, bounds), nil
}

// NewTerminal wraps an initialized screen
func NewTerminal(screen tcell.Screen, bounds r2.Rect) *Terminal {
	screen.HideCursor()
	return &Terminal{screen: screen, bounds: bounds}
}

// Screen returns the underlying screen
func (t *Terminal) Screen() tcell.Screen {
	return t.screen
}

// Close restores the terminal
func (t *Terminal) Close() {
	core.SetCrashScreen(nil)
	t.screen.Fini()
}

// SetOverlay replaces the text lines drawn above the layout
// A frame being drawn keeps the lines it started with
func (t *Terminal) SetOverlay(lines ...string) {
	lines = slices.Clone(lines)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overlay = lines
}

// OnKey sets the handler for rune keys other than the quit keys
func (t *Terminal) OnKey(fn func(rune)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onKey = fn
}

// Cell returns the screen cell of a layout position; ok is false off screen
func (t *Terminal) Cell(p r2.Point) (x, y int, ok bool) {
	t.mu.Lock()
	top := len(t.overlay)
	t.mu.Unlock()
	return t.cell(t.viewport(top), top, p)
}

func (t *Terminal) viewport(top int) viewport {
	w, h := t.screen.Size()
	return newViewport(t.bounds, float64(w-1), float64(h-top-1), cellAspect)
}

func (t *Terminal) cell(v viewport, top int, p r2.Point) (int, int, bool) {
	fx, fy := v.project(p)
	x, y := int(math.Round(fx)), int(math.Round(fy))+top
	w, h := t.screen.Size()
	if x < 0 || x >= w || y < top || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// Write draws one frame; points sharing a cell overwrite in index order
func (t *Terminal) Write(points iter.Seq[sled.Point[colorful.Color]]) error {
	t.mu.Lock()
	overlay := t.overlay
	t.mu.Unlock()

	t.screen.Clear()
	for row, line := range overlay {
		col := 0
		for _, r := range line {
			t.screen.SetContent(col, row, r, nil, tcell.StyleDefault)
			col++
		}
	}

	top := len(overlay)
	v := t.viewport(top)
	for p := range points {
		x, y, ok := t.cell(v, top, p.Position)
		if !ok {
			continue
		}
		r, g, b := p.Data.Clamped().RGB255()
		if r == 0 && g == 0 && b == 0 {
			t.screen.SetContent(x, y, DarkGlyph, nil, darkStyle)
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
		t.screen.SetContent(x, y, LitGlyph, nil, style)
	}
	t.screen.Show()
	return nil
}

// Poll handles terminal events until a quit key (Esc, Ctrl-C, q) is pressed,
// the screen is closed or ctx ends
// Returns nil on quit or close, ctx.Err() on cancellation
func (t *Terminal) Poll(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		t.screen.PostEventWait(tcell.NewEventInterrupt(nil))
	})
	defer stop()

	for {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		case *tcell.EventResize:
			t.screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				if ev.Rune() == 'q' {
					return nil
				}
				t.mu.Lock()
				fn := t.onKey
				t.mu.Unlock()
				if fn != nil {
					fn(ev.Rune())
				}
			}
		}
	}
}
