package fht

import "math"

// The post passes below expect p to hold Hartley coefficients, normally the
// output of Transform. They write bins [0, N/2] and leave the rest of p as it
// was. For 0 < k < N/2, H[k] and H[N-k] are the two halves of one Fourier
// bin; bin 0 and bin N/2 are their own mirror.

// Power2 converts p to energy per bin without normalisation:
//
//	p[k] = H[k]^2 + H[N-k]^2
//
// with p[0] = 2*H[0]^2 and p[N/2] = 2*H[N/2]^2.
func (t *Transformer) Power2(p []float64) {
	t.must("power2", p)

	n := t.num
	half := n / 2

	p[0] = 2 * p[0] * p[0]
	if half == 0 {
		return
	}

	for k := 1; k < half; k++ {
		p[k] = p[k]*p[k] + p[n-k]*p[n-k]
	}

	p[half] = 2 * p[half] * p[half]
}

// Power converts p to power per bin, |X[k]|^2 of the matching Fourier
// transform.
func (t *Transformer) Power(p []float64) {
	t.Power2(p)

	for k := range p[:t.num/2+1] {
		p[k] *= 0.5
	}
}

// Spectrum converts p to amplitude per bin, the square root of Power.
func (t *Transformer) Spectrum(p []float64) {
	t.Power(p)

	for k, v := range p[:t.num/2+1] {
		p[k] = math.Sqrt(v)
	}
}

// Decibels converts p to 10*log10 of the amplitude per bin, clamped at 0.
func (t *Transformer) Decibels(p []float64) {
	t.Power2(p)

	for k, v := range p[:t.num/2+1] {
		db := 10.0 * math.Log10(math.Sqrt(v*0.5))
		if db < 0 || math.IsNaN(db) {
			db = 0
		}
		p[k] = db
	}
}

// SemiLogSpectrum runs Spectrum and then stretches the low end: the lowest
// N/8 bins are kept as they are and bins N/8 to N/2 are resampled from a
// geometric scale of source bins, so the top of the range is compressed.
// The mapping is fixed at construction.
func (t *Transformer) SemiLogSpectrum(p []float64) {
	t.Spectrum(p)

	if len(t.semi) == 0 {
		return
	}

	half := t.num / 2
	src := t.buf[:half+1]
	copy(src, p[:half+1])

	dst := p[t.semiLin:half]
	for i, b := range t.semi {
		dst[i] = b.at(src, half)
	}
}

// LogSpectrum runs Spectrum on src and resamples bins [0, N/2] onto dst on a
// logarithmic frequency axis, multiplying by factor. dst may have any
// length.
func (t *Transformer) LogSpectrum(dst, src []float64, factor float64) {
	t.Spectrum(src)
	t.RemapLog(dst, src, factor)
}

// RemapLog is LogSpectrum without the Spectrum pass, for callers that already
// hold amplitudes in spectrum[0:N/2+1].
//
// dst[j] reads source position (N/2+1)^(j/(M-1)) - 1 with linear
// interpolation, so dst[0] is bin 0 and dst[M-1] is bin N/2. The position
// table is rebuilt only when len(dst) changes.
func (t *Transformer) RemapLog(dst, spectrum []float64, factor float64) {
	if len(dst) == 0 {
		return
	}

	if len(t.logMap) != len(dst) {
		t.makeLogMap(len(dst))
	}

	half := t.num / 2
	for j, b := range t.logMap {
		dst[j] = factor * b.at(spectrum, half)
	}
}
