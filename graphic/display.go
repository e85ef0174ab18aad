// Package graphic draws bars on the terminal with termbox.
package graphic

import (
	"context"
	"math"
	"sync"

	"github.com/fhtscope/fhtscope/util"
	"github.com/nsf/termbox-go"
	"github.com/pkg/errors"
)

// Constants
const (
	// ScalingWindow in seconds
	ScalingWindow = 1.5
	// PeakThreshold is the threshold to not draw if the peak is less.
	PeakThreshold = 0.001
)

// DrawType is the type
type DrawType int

// Draw Types
const (
	DrawDefault DrawType = iota
	DrawUp
	DrawUpDown
	DrawDown
	drawTypeCount
)

// Valid reports whether dt is a known draw type.
func (dt DrawType) Valid() bool {
	return dt >= DrawDefault && dt < drawTypeCount
}

// canvas is the part of termbox the drawing code needs.
type canvas interface {
	Size() (int, int)
	SetCell(x, y int, ch rune, fg, bg termbox.Attribute)
	Clear(fg, bg termbox.Attribute) error
	Flush() error
}

type termboxCanvas struct{}

func (termboxCanvas) Size() (int, int) {
	return termbox.Size()
}

func (termboxCanvas) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	termbox.SetCell(x, y, ch, fg, bg)
}

func (termboxCanvas) Clear(fg, bg termbox.Attribute) error {
	return termbox.Clear(fg, bg)
}

func (termboxCanvas) Flush() error {
	return termbox.Flush()
}

// Config is the bar layout.
type Config struct {
	BarWidth   int      // columns per bar
	SpaceWidth int      // columns between bars
	BaseThick  int      // rows of the base line
	DrawType   DrawType // bar direction
	Invert     bool     // draw high frequencies first
	Styles     Styles
}

func (cfg Config) binWidth() int {
	return cfg.BarWidth + cfg.SpaceWidth
}

// Display handles drawing our visualizer.
type Display struct {
	mu  sync.Mutex
	cfg Config

	window    *util.MovingWindow
	trackZero int

	canvas  canvas
	restore func()
}

// NewDisplay returns a display with default sizes. Call Init before use.
func NewDisplay() *Display {
	return &Display{
		cfg: Config{
			BarWidth:   2,
			SpaceWidth: 1,
			BaseThick:  1,
			Styles:     DefaultStyles(),
		},
		canvas: termboxCanvas{},
		window: util.NewMovingWindow(1),
	}
}

// Init takes over the terminal.
// Should be called before any other display method.
func (d *Display) Init(sampleRate float64, sampleSize int) error {
	restore, err := normalizeTerminal()
	if err != nil {
		return err
	}

	if err := termbox.Init(); err != nil {
		restore()
		return errors.Wrap(err, "failed to init termbox")
	}

	termbox.SetInputMode(termbox.InputEsc)
	termbox.SetOutputMode(termbox.Output256)

	d.restore = restore
	d.window = util.NewMovingWindow(ScalingWindowSize(sampleRate, sampleSize))

	return nil
}

// ScalingWindowSize is the length of the peak history kept by outputs, in frames.
func ScalingWindowSize(sampleRate float64, sampleSize int) int {
	return (int(ScalingWindow*sampleRate) / sampleSize) * 2
}

// Close will stop display and clean up the terminal.
func (d *Display) Close() error {
	termbox.Close()

	if d.restore != nil {
		d.restore()
	}

	return nil
}

// Configure replaces the layout.
func (d *Display) Configure(cfg Config) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg = cfg
	d.setSizes(cfg.BarWidth, cfg.SpaceWidth)

	if d.cfg.BaseThick < 0 {
		d.cfg.BaseThick = 0
	}
}

func (d *Display) setSizes(bar, space int) {
	if bar < 1 {
		bar = 1
	}

	if space < 0 {
		space = 0
	}

	d.cfg.BarWidth = bar
	d.cfg.SpaceWidth = space
}

// Start polls terminal events. The returned context ends when the user quits
// or Stop is called.
func (d *Display) Start(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go d.poll(ctx, cancel)
	return ctx
}

// Stop ends the event poller.
func (d *Display) Stop() error {
	termbox.Interrupt()
	return nil
}

func (d *Display) poll(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	for {
		ev := termbox.PollEvent()

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch ev.Type {
		case termbox.EventKey:
			if d.handleKey(ev) {
				return
			}

		case termbox.EventInterrupt, termbox.EventError:
			return
		}
	}
}

// handleKey applies a key press and reports whether it asks to quit.
func (d *Display) handleKey(ev termbox.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch ev.Key {
	case termbox.KeyCtrlC, termbox.KeyEsc:
		return true

	case termbox.KeyArrowUp:
		d.setSizes(d.cfg.BarWidth+1, d.cfg.SpaceWidth)

	case termbox.KeyArrowDown:
		d.setSizes(d.cfg.BarWidth-1, d.cfg.SpaceWidth)

	case termbox.KeyArrowRight:
		d.setSizes(d.cfg.BarWidth, d.cfg.SpaceWidth+1)

	case termbox.KeyArrowLeft:
		d.setSizes(d.cfg.BarWidth, d.cfg.SpaceWidth-1)

	default:
		switch ev.Ch {
		case 'q', 'Q':
			return true
		case 'i', 'I':
			d.cfg.Invert = !d.cfg.Invert
		}
	}

	return false
}

// Bins returns the number of bars we will draw per channel.
func (d *Display) Bins(chCount int) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	width, _ := d.canvas.Size()
	bars := (width + d.cfg.SpaceWidth) / d.cfg.binWidth()

	switch d.cfg.DrawType {
	case DrawUp, DrawDown:
		if chCount > 1 {
			bars /= chCount
		}
	}

	if bars < 1 {
		return 1
	}

	return bars
}

// Write draws one frame of bars.
func (d *Display) Write(bars [][]float64, channels int) error {
	if channels < 1 || len(bars) < channels {
		return errors.New("not enough sets to draw")
	}

	bars = bars[:channels]
	if channels > 2 {
		bars = bars[:2]
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	scale := d.scale(peakOf(bars))

	if err := d.canvas.Clear(d.cfg.Styles.Foreground, d.cfg.Styles.Background); err != nil {
		return errors.Wrap(err, "failed to clear screen")
	}

	switch d.cfg.DrawType {
	case DrawUp:
		drawUp(d.canvas, d.cfg, bars, scale)
	case DrawDown:
		drawDown(d.canvas, d.cfg, bars, scale)
	default:
		drawUpDown(d.canvas, d.cfg, bars, scale)
	}

	return errors.Wrap(d.canvas.Flush(), "failed to flush screen")
}

// scale tracks recent peaks and returns the value that maps to a full bar.
func (d *Display) scale(peak float64) float64 {
	if peak >= PeakThreshold {
		d.trackZero = 0
		d.window.Update(peak)
	} else if d.trackZero++; d.trackZero == 5 {
		d.window.Recalculate()
	}

	mean, sd := d.window.Stats()

	return math.Max(mean+2*sd, 1)
}

func peakOf(bars [][]float64) float64 {
	peak := 0.0
	for _, set := range bars {
		for _, v := range set {
			if v > peak {
				peak = v
			}
		}
	}
	return peak
}
