package graphic

import (
	"testing"

	"github.com/fhtscope/fhtscope/util"
	"github.com/nsf/termbox-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct {
	ch rune
	fg termbox.Attribute
}

type testCanvas struct {
	width, height int
	cells         map[[2]int]cell
	flushes       int
}

func newTestCanvas(width, height int) *testCanvas {
	return &testCanvas{width: width, height: height, cells: map[[2]int]cell{}}
}

func (c *testCanvas) Size() (int, int) {
	return c.width, c.height
}

func (c *testCanvas) SetCell(x, y int, ch rune, fg, _ termbox.Attribute) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		panic("cell out of range")
	}
	c.cells[[2]int{x, y}] = cell{ch, fg}
}

func (c *testCanvas) Clear(_, _ termbox.Attribute) error {
	c.cells = map[[2]int]cell{}
	return nil
}

func (c *testCanvas) Flush() error {
	c.flushes++
	return nil
}

func (c *testCanvas) at(x, y int) rune {
	if v, ok := c.cells[[2]int{x, y}]; ok {
		return v.ch
	}
	return ' '
}

// columnHeight counts full blocks drawn with the foreground in column x.
func (c *testCanvas) columnHeight(x int) int {
	n := 0
	for y := 0; y < c.height; y++ {
		if v, ok := c.cells[[2]int{x, y}]; ok && v.ch == BarRune && v.fg == termbox.ColorDefault {
			n++
		}
	}
	return n
}

func newTestDisplay(c *testCanvas, cfg Config) *Display {
	d := NewDisplay()
	d.canvas = c
	d.window = util.NewMovingWindow(4)
	d.Configure(cfg)
	return d
}

func TestColumn(t *testing.T) {
	full, part := column(2.5, 10)
	assert.Equal(t, 2, full)
	assert.Equal(t, 4, part)

	full, part = column(12, 10)
	assert.Equal(t, 10, full)
	assert.Zero(t, part)

	for _, v := range []float64{-1, 0} {
		full, part = column(v, 10)
		assert.Zero(t, full)
		assert.Zero(t, part)
	}
}

func TestBins(t *testing.T) {
	c := newTestCanvas(80, 20)
	d := newTestDisplay(c, Config{BarWidth: 2, SpaceWidth: 1, DrawType: DrawUpDown})

	// 27 bars of 3 columns fit in 81 columns with the last space dropped
	assert.Equal(t, 27, d.Bins(2))

	d.Configure(Config{BarWidth: 2, SpaceWidth: 1, DrawType: DrawUp})
	assert.Equal(t, 13, d.Bins(2))
	assert.Equal(t, 27, d.Bins(1))

	c.width = 0
	assert.Equal(t, 1, d.Bins(1))
}

func TestHandleKey(t *testing.T) {
	d := newTestDisplay(newTestCanvas(10, 10), Config{BarWidth: 1, SpaceWidth: 0})

	assert.False(t, d.handleKey(termbox.Event{Key: termbox.KeyArrowUp}))
	assert.False(t, d.handleKey(termbox.Event{Key: termbox.KeyArrowRight}))
	assert.Equal(t, 2, d.cfg.BarWidth)
	assert.Equal(t, 1, d.cfg.SpaceWidth)

	for i := 0; i < 4; i++ {
		d.handleKey(termbox.Event{Key: termbox.KeyArrowDown})
		d.handleKey(termbox.Event{Key: termbox.KeyArrowLeft})
	}
	assert.Equal(t, 1, d.cfg.BarWidth)
	assert.Equal(t, 0, d.cfg.SpaceWidth)

	d.handleKey(termbox.Event{Ch: 'i'})
	assert.True(t, d.cfg.Invert)

	assert.True(t, d.handleKey(termbox.Event{Ch: 'q'}))
	assert.True(t, d.handleKey(termbox.Event{Key: termbox.KeyCtrlC}))
}

func TestWriteUp(t *testing.T) {
	c := newTestCanvas(5, 11)
	d := newTestDisplay(c, Config{
		BarWidth:   1,
		SpaceWidth: 1,
		BaseThick:  1,
		DrawType:   DrawUp,
		Styles:     DefaultStyles(),
	})

	// peak below one keeps a scale of one
	require.NoError(t, d.Write([][]float64{{0.5, 0.25, 0.95}}, 1))
	assert.Equal(t, 1, c.flushes)

	// bars sit at columns 0, 2 and 4 over a 10 row area
	assert.Equal(t, 5, c.columnHeight(0))
	assert.Equal(t, 2, c.columnHeight(2))
	assert.Equal(t, 9, c.columnHeight(4))

	assert.Equal(t, barRunes[4], c.at(2, 7))
	assert.Equal(t, barRunes[4], c.at(4, 0))

	// base line
	for _, x := range []int{0, 2, 4} {
		assert.Equal(t, BarRune, c.at(x, 10))
		assert.Equal(t, termbox.ColorMagenta, c.cells[[2]int{x, 10}].fg)
	}

	// spaces stay empty
	assert.Equal(t, ' ', c.at(1, 10))
}

func TestWriteUpDown(t *testing.T) {
	c := newTestCanvas(3, 21)
	d := newTestDisplay(c, Config{
		BarWidth:  1,
		BaseThick: 1,
		DrawType:  DrawUpDown,
		Styles:    DefaultStyles(),
	})

	require.NoError(t, d.Write([][]float64{{1, 0.5, 0}, {0, 0.5, 1}}, 2))

	// center line at row 10, ten rows each way
	for x := 0; x < 3; x++ {
		assert.Equal(t, termbox.ColorMagenta, c.cells[[2]int{x, 10}].fg)
	}

	assert.Equal(t, 10, c.columnHeight(0))
	assert.Equal(t, 10, c.columnHeight(1))
	assert.Equal(t, 10, c.columnHeight(2))

	assert.Equal(t, BarRune, c.at(0, 0))
	assert.Equal(t, ' ', c.at(0, 11))
	assert.Equal(t, BarRune, c.at(2, 20))
}

func TestWriteDownPartial(t *testing.T) {
	c := newTestCanvas(1, 9)
	d := newTestDisplay(c, Config{
		BarWidth:  1,
		BaseThick: 1,
		DrawType:  DrawDown,
		Styles:    DefaultStyles(),
	})

	require.NoError(t, d.Write([][]float64{{0.3125}}, 1))

	// 2.5 rows below the base line
	assert.Equal(t, 2, c.columnHeight(0))
	got := c.cells[[2]int{0, 3}]
	assert.Equal(t, barRunes[4], got.ch)
	assert.NotZero(t, got.fg&termbox.AttrReverse)
}

func TestInvert(t *testing.T) {
	c := newTestCanvas(3, 5)
	d := newTestDisplay(c, Config{BarWidth: 1, BaseThick: 1, DrawType: DrawUp, Invert: true, Styles: DefaultStyles()})

	require.NoError(t, d.Write([][]float64{{1, 0, 0}}, 1))

	assert.Equal(t, 0, c.columnHeight(0))
	assert.Equal(t, 4, c.columnHeight(2))
}

func TestWriteErrors(t *testing.T) {
	d := newTestDisplay(newTestCanvas(10, 10), Config{BarWidth: 1})

	assert.Error(t, d.Write(nil, 1))
	assert.Error(t, d.Write([][]float64{{1}}, 2))
}

func TestScaleFollowsPeaks(t *testing.T) {
	d := newTestDisplay(newTestCanvas(10, 10), Config{BarWidth: 1})

	assert.Equal(t, 1.0, d.scale(0))

	for i := 0; i < 4; i++ {
		d.scale(10)
	}
	assert.InDelta(t, 10, d.scale(10), 1e-9)

	// quiet frames do not pull the scale down
	for i := 0; i < 10; i++ {
		assert.InDelta(t, 10, d.scale(0), 1e-9)
	}
}

func TestScalingWindowSize(t *testing.T) {
	assert.Equal(t, 128, ScalingWindowSize(44100, 1024))
}
