package main

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/fhtscope/fhtscope/graphic"
	"github.com/fhtscope/fhtscope/processor"
	"github.com/fhtscope/fhtscope/util"
	"github.com/pkg/errors"
)

// RawOutput prints one line of bar values per frame, scaled to [0, 100].
type RawOutput struct {
	w          *bufio.Writer
	trackZero  int
	binCount   int
	invertDraw bool
	window     *util.MovingWindow
}

var _ processor.Output = &RawOutput{}

// NewRawOutput returns a RawOutput printing binCount bars per channel to w.
func NewRawOutput(w io.Writer, binCount int) *RawOutput {
	return &RawOutput{
		w:        bufio.NewWriter(w),
		binCount: binCount,
		window:   util.NewMovingWindow(1),
	}
}

// Init sizes the peak window for the frame rate.
func (d *RawOutput) Init(sampleRate float64, sampleSize int) error {
	d.window = util.NewMovingWindow(graphic.ScalingWindowSize(sampleRate, sampleSize))

	return nil
}

// SetInvertDraw reverses the bar order.
func (d *RawOutput) SetInvertDraw(invert bool) {
	d.invertDraw = invert
}

// Write prints one frame. Sets shorter than the bar count are printed as
// they are; the analyzer caps bars at half the sample size.
func (d *RawOutput) Write(buffers [][]float64, channels int) error {
	if len(buffers) < channels {
		return errors.New("not enough sets to write")
	}

	buffers = buffers[:channels]

	bars := d.binCount
	peak := 0.0
	for _, set := range buffers {
		if len(set) < bars {
			bars = len(set)
		}
	}

	for _, set := range buffers {
		for _, val := range set[:bars] {
			peak = math.Max(peak, val)
		}
	}

	if peak >= graphic.PeakThreshold {
		d.trackZero = 0

		// do some scaling if we are above the PeakThreshold
		d.window.Update(peak)

	} else if d.trackZero++; d.trackZero == 5 {
		d.window.Recalculate()
	}

	scale := 1.0

	vMean, vSD := d.window.Stats()
	if t := vMean + (2.0 * vSD); t > 1.0 {
		scale = t
	}

	scale = 100.0 / scale

	for xSet, chBins := range buffers {
		for xBar := 0; xBar < bars; xBar++ {
			xBin := xBar
			if xSet%2 == 1 {
				xBin = bars - 1 - xBar
			}

			if d.invertDraw {
				xBin = bars - 1 - xBin
			}

			if _, err := fmt.Fprintf(d.w, "%6.3f ", chBins[xBin]*scale); err != nil {
				return errors.Wrap(err, "failed to write bar")
			}
		}
	}

	if err := d.w.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "failed to end line")
	}

	return errors.Wrap(d.w.Flush(), "failed to flush output")
}

// Bins returns the number of bars we will print.
func (d *RawOutput) Bins(int) int {
	return d.binCount
}
