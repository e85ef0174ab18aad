package fht

import "gonum.org/v1/gonum/floats"

// Copy copies src into dst and returns dst.
func (t *Transformer) Copy(dst, src []float64) []float64 {
	t.must("copy", dst, src)

	copy(dst[:t.num], src[:t.num])
	return dst
}

// Clear zeroes p and returns it.
func (t *Transformer) Clear(p []float64) []float64 {
	t.must("clear", p)

	for i := range p[:t.num] {
		p[i] = 0
	}
	return p
}

// Scale multiplies every element of p by f.
func (t *Transformer) Scale(p []float64, f float64) {
	t.must("scale", p)

	floats.Scale(f, p[:t.num])
}

// Ewma folds src into dst with weight alpha on the new values:
//
//	dst[i] = alpha*src[i] + (1-alpha)*dst[i]
func (t *Transformer) Ewma(dst, src []float64, alpha float64) {
	t.must("ewma", dst, src)

	ewma(dst, src[:t.num], alpha)
}

func ewma(dst, src []float64, alpha float64) {
	keep := 1 - alpha
	for i, v := range src {
		dst[i] = alpha*v + keep*dst[i]
	}
}

// Smooth folds src into the transformer's own accumulator and returns the
// accumulator. The returned slice stays valid until the next call.
func (t *Transformer) Smooth(src []float64, alpha float64) []float64 {
	t.Ewma(t.acc, src, alpha)
	return t.acc
}

// SmoothSpectrum is Smooth over bins [0, N/2] only, the part the spectrum
// post passes fill. It returns that part of the accumulator; the rest is left
// alone.
func (t *Transformer) SmoothSpectrum(src []float64, alpha float64) []float64 {
	t.must("smooth spectrum", src)

	half := t.num/2 + 1
	ewma(t.acc[:half], src[:half], alpha)
	return t.acc[:half]
}

// Smoothed returns the accumulator without changing it.
func (t *Transformer) Smoothed() []float64 {
	return t.acc
}

// ResetSmoothing zeroes the accumulator.
func (t *Transformer) ResetSmoothing() {
	t.Clear(t.acc)
}

// Pattern fills p with a test signal: a unit impulse at index 0 (flat
// spectrum), or with rect set an alternating +1/-1 square wave (all energy in
// the N/2 bin).
func (t *Transformer) Pattern(p []float64, rect bool) {
	t.must("pattern", p)

	p = p[:t.num]

	if !rect {
		t.Clear(p)
		p[0] = 1
		return
	}

	for i := range p {
		if i&1 == 0 {
			p[i] = 1
		} else {
			p[i] = -1
		}
	}
}
