package graphic

import (
	"math"

	"github.com/nsf/termbox-go"
)

const (
	// BarRune is the full block.
	BarRune = '█'

	// NumRunes is the number of eighth steps in one cell.
	NumRunes = 8
)

// barRunes are the lower block elements, indexed by eighths.
var barRunes = [NumRunes]rune{
	' ',
	'▁',
	'▂',
	'▃',
	'▄',
	'▅',
	'▆',
	'▇',
}

// column splits a bar of v cells into full cells and remaining eighths.
func column(v float64, limit int) (int, int) {
	if !(v > 0) || limit <= 0 {
		return 0, 0
	}

	if v >= float64(limit) {
		return limit, 0
	}

	full, frac := math.Modf(v)

	return int(full), int(frac * NumRunes)
}

// leftEdge returns the first column so that used columns are centered.
func leftEdge(width, used int) int {
	if x := (width - used) / 2; x > 0 {
		return x
	}
	return 0
}

// barIndex returns the bar drawn at position i of count for channel ch.
// The second channel mirrors the first.
func barIndex(cfg Config, ch, i, count int) int {
	idx := i
	if ch%2 == 1 {
		idx = count - 1 - i
	}

	if cfg.Invert {
		idx = count - 1 - idx
	}

	return idx
}

func fillRows(c canvas, x, from, to int, ch rune, fg, bg termbox.Attribute) {
	for y := from; y < to; y++ {
		c.SetCell(x, y, ch, fg, bg)
	}
}

// barUp draws a bar standing on row base, growing toward row 0.
func barUp(c canvas, cfg Config, x, base, height int, v float64) {
	st := cfg.Styles
	full, part := column(v, height)

	fillRows(c, x, base-full, base, BarRune, st.Foreground, st.Background)

	if part > 0 {
		c.SetCell(x, base-full-1, barRunes[part], st.Foreground, st.Background)
	}
}

// barDown draws a bar hanging from row top, growing away from row 0.
func barDown(c canvas, cfg Config, x, top, height int, v float64) {
	st := cfg.Styles
	full, part := column(v, height)

	fillRows(c, x, top, top+full, BarRune, st.Foreground, st.Background)

	// reversed lower blocks fill from the top of the cell
	if part > 0 {
		c.SetCell(x, top+full, barRunes[NumRunes-part],
			st.Foreground|termbox.AttrReverse, st.Background)
	}
}

func baseThick(cfg Config, height int) int {
	if cfg.BaseThick > height {
		return height
	}
	return cfg.BaseThick
}

// drawUp draws all channels side by side, standing on the bottom row.
func drawUp(c canvas, cfg Config, bars [][]float64, scale float64) {
	width, height := c.Size()
	thick := baseThick(cfg, height)
	vHeight := height - thick

	count := len(bars[0])
	xCol := leftEdge(width, cfg.binWidth()*count*len(bars)-cfg.SpaceWidth)

	st := cfg.Styles

	for ch, set := range bars {
		for i := 0; i < count; i++ {
			v := set[barIndex(cfg, ch, i, count)] / scale * float64(vHeight)

			for x := xCol; x < xCol+cfg.BarWidth && x < width; x++ {
				barUp(c, cfg, x, vHeight, vHeight, v)
				fillRows(c, x, vHeight, height, BarRune, st.CenterLine, st.Background)
			}

			xCol += cfg.binWidth()
		}
	}
}

// drawDown draws all channels side by side, hanging from the top row.
func drawDown(c canvas, cfg Config, bars [][]float64, scale float64) {
	width, height := c.Size()
	thick := baseThick(cfg, height)
	vHeight := height - thick

	count := len(bars[0])
	xCol := leftEdge(width, cfg.binWidth()*count*len(bars)-cfg.SpaceWidth)

	st := cfg.Styles

	for ch, set := range bars {
		for i := 0; i < count; i++ {
			v := set[barIndex(cfg, ch, i, count)] / scale * float64(vHeight)

			for x := xCol; x < xCol+cfg.BarWidth && x < width; x++ {
				fillRows(c, x, 0, thick, BarRune, st.CenterLine, st.Background)
				barDown(c, cfg, x, thick, vHeight, v)
			}

			xCol += cfg.binWidth()
		}
	}
}

// drawUpDown draws the first channel above a center line and the last one
// below it.
func drawUpDown(c canvas, cfg Config, bars [][]float64, scale float64) {
	width, height := c.Size()
	thick := baseThick(cfg, height)

	centerStart := (height - thick) / 2
	centerStop := centerStart + thick

	upHeight := centerStart
	downHeight := height - centerStop

	up := bars[0]
	down := bars[len(bars)-1]

	count := len(up)
	xCol := leftEdge(width, cfg.binWidth()*count-cfg.SpaceWidth)

	st := cfg.Styles

	for i := 0; i < count; i++ {
		idx := barIndex(cfg, 0, i, count)
		upV := up[idx] / scale * float64(upHeight)
		downV := down[idx] / scale * float64(downHeight)

		for x := xCol; x < xCol+cfg.BarWidth && x < width; x++ {
			barUp(c, cfg, x, centerStart, upHeight, upV)
			fillRows(c, x, centerStart, centerStop, BarRune, st.CenterLine, st.Background)
			barDown(c, cfg, x, centerStop, downHeight, downV)
		}

		xCol += cfg.binWidth()
	}
}
