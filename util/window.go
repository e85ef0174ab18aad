// Package util holds small helpers shared by the outputs.
package util

import "math"

// MovingWindow keeps the last Cap() values and their running mean and
// standard deviation. Values are stored in a ring; head is the oldest.
type MovingWindow struct {
	ring []float64
	head int
	size int

	sum   float64
	sumSq float64

	average float64
	stddev  float64
}

// NewMovingWindow returns a window holding at most capacity values. A
// capacity below one is raised to one.
func NewMovingWindow(capacity int) *MovingWindow {
	if capacity < 1 {
		capacity = 1
	}

	return &MovingWindow{ring: make([]float64, capacity)}
}

// Update adds value, evicting the oldest value when full, and returns the new
// mean and standard deviation.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.size == len(mw.ring) {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.ring[mw.head] = value
		mw.head = (mw.head + 1) % len(mw.ring)
	} else {
		mw.ring[(mw.head+mw.size)%len(mw.ring)] = value
		mw.size++
	}

	mw.sum += value
	mw.sumSq += value * value

	return mw.calcFinal()
}

// Drop removes up to count of the oldest values.
func (mw *MovingWindow) Drop(count int) (float64, float64) {
	if count > mw.size {
		count = mw.size
	}

	for ; count > 0; count-- {
		old := mw.ring[mw.head]
		mw.sum -= old
		mw.sumSq -= old * old

		mw.head = (mw.head + 1) % len(mw.ring)
		mw.size--
	}

	if mw.size == 0 {
		// clear rounding leftovers
		mw.sum, mw.sumSq = 0, 0
	}

	return mw.calcFinal()
}

// Recalculate rebuilds the running sums from the stored values.
func (mw *MovingWindow) Recalculate() (float64, float64) {
	mw.sum, mw.sumSq = 0, 0
	for i := 0; i < mw.size; i++ {
		v := mw.ring[(mw.head+i)%len(mw.ring)]
		mw.sum += v
		mw.sumSq += v * v
	}

	return mw.calcFinal()
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.size == 0 {
		mw.average, mw.stddev = 0, 0
		return 0, 0
	}

	n := float64(mw.size)
	mw.average = mw.sum / n

	if mw.size > 1 {
		variance := (mw.sumSq - n*mw.average*mw.average) / (n - 1)
		mw.stddev = math.Sqrt(math.Max(variance, 0))
	} else {
		mw.stddev = 0
	}

	return mw.average, mw.stddev
}

// Len returns how many values are in the window.
func (mw *MovingWindow) Len() int {
	return mw.size
}

// Cap returns the window capacity.
func (mw *MovingWindow) Cap() int {
	return len(mw.ring)
}

// Mean is the moving window average.
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the sample standard deviation of the window.
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the mean and standard deviation.
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}
