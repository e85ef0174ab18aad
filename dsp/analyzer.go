// Package dsp turns Hartley transformed audio frames into display bars.
//
// Some notes:
//
// https://dlbeer.co.nz/articles/fftvis.html
// https://www.cg.tuwien.ac.at/courses/WissArbeiten/WS2010/processing.pdf
// https://stackoverflow.com/questions/3694918/how-to-extract-frequency-associated-with-fft-values-in-python
package dsp

import (
	"math"

	"github.com/fhtscope/fhtscope/fht"
	"github.com/pkg/errors"
)

// BinMethod folds one spectrum value into a bar. count is the number of
// spectrum bins feeding the bar.
type BinMethod func(count int, current, new float64) float64

// Scale selects the post pass that turns coefficients into a spectrum.
type Scale int

// Spectrum scales.
const (
	ScaleLinear  Scale = iota // amplitude, fht.Spectrum
	ScaleSemiLog              // amplitude with a compressed top, fht.SemiLogSpectrum
	ScaleDecibel              // 10*log10 amplitude, fht.Decibels
)

// Distribution selects how spectrum bins are spread over bars.
type Distribution int

// Distributions.
const (
	DistributeFrequency Distribution = iota // log spaced frequency bands
	DistributeLog                           // fht.RemapLog over the whole range
)

// ErrUnknownMode is returned when a scale or distribution name is not known.
var ErrUnknownMode = errors.New("unknown analyzer mode")

// ParseScale maps a flag value to a Scale.
func ParseScale(name string) (Scale, error) {
	switch name {
	case "linear", "":
		return ScaleLinear, nil
	case "semilog":
		return ScaleSemiLog, nil
	case "decibel", "db":
		return ScaleDecibel, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "scale %q", name)
}

// ParseDistribution maps a flag value to a Distribution.
func ParseDistribution(name string) (Distribution, error) {
	switch name {
	case "frequency", "":
		return DistributeFrequency, nil
	case "log":
		return DistributeLog, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "distribution %q", name)
}

type AnalyzerConfig struct {
	SampleRate    float64      // audio sample rate
	SampleSize    int          // number of samples per frame, a power of two
	Scale         Scale        // spectrum post pass
	Distribution  Distribution // bar layout
	SquashLow     bool         // squash the low end the spectrum
	DontNormalize bool         // dont run math.Log on linear output
	Gain          float64      // bar multiplier, 0 means 1
	BinMethod     BinMethod    // method used for calculating bar value
}

// Analyzer turns one transformed frame into bars. The Transformer passed in
// must match SampleSize; it is only used for the duration of the call.
type Analyzer interface {
	BinCount() int
	Recalculate(int) int
	// Spectrum converts coeffs in place so that [0, N/2] holds the spectrum.
	Spectrum(tr *fht.Transformer, coeffs []float64)
	// Bins writes BinCount bars read from spectrum into dst.
	Bins(tr *fht.Transformer, dst, spectrum []float64)
}

// analyzer is an audio spectrum in a buffer
type analyzer struct {
	cfg      AnalyzerConfig // the analyzer config
	bands    []band         // bands for frequency distribution
	binCount int            // number of bars we fill
	fftSize  int            // number of spectrum bins, N/2+1
}

// band is the spectrum range [floor, ceil) feeding one bar.
type band struct {
	floor  int
	ceil   int
	weight float64
}

// frequencies are the dividing frequencies
var frequencies = []float64{
	// sub sub bass
	20.0, // 0
	// sub bass
	60.0, // 1
	// bass
	250.0, // 2
	// midrange
	4000.0, // 3
	// treble
	8000.0, // 4
	// brilliance
	22050.0, // 5
	// everything else
}

// AverageSamples averages all the samples together.
func AverageSamples() BinMethod {
	return func(count int, current, new float64) float64 {
		return current + (new / float64(count))
	}
}

// SumSamples sums all the samples together.
func SumSamples() BinMethod {
	return func(_ int, current, new float64) float64 {
		return current + new
	}
}

// MaxSampleValue returns the maximum value of all the samples.
func MaxSampleValue() BinMethod {
	return func(_ int, current, new float64) float64 {
		if current < new {
			return new
		}
		return current
	}
}

// NewAnalyzer returns an Analyzer for cfg. A nil BinMethod means
// MaxSampleValue.
func NewAnalyzer(cfg AnalyzerConfig) Analyzer {
	if cfg.BinMethod == nil {
		cfg.BinMethod = MaxSampleValue()
	}

	if cfg.Gain == 0 {
		cfg.Gain = 1
	}

	return &analyzer{
		cfg:     cfg,
		bands:   make([]band, cfg.SampleSize/2+2),
		fftSize: cfg.SampleSize/2 + 1,
	}
}

// BinCount returns the number of bars each channel has.
func (az *analyzer) BinCount() int {
	return az.binCount
}

func (az *analyzer) Spectrum(tr *fht.Transformer, coeffs []float64) {
	switch az.cfg.Scale {
	case ScaleSemiLog:
		tr.SemiLogSpectrum(coeffs)
	case ScaleDecibel:
		tr.Decibels(coeffs)
	default:
		tr.Spectrum(coeffs)
	}
}

func (az *analyzer) Bins(tr *fht.Transformer, dst, spectrum []float64) {
	dst = dst[:az.binCount]

	switch az.cfg.Distribution {
	case DistributeLog:
		tr.RemapLog(dst, spectrum, az.cfg.Gain)

	default:
		for idx := range dst {
			dst[idx] = az.cfg.Gain * az.bandValue(idx, spectrum)
		}
	}

	if az.cfg.Scale != ScaleLinear || az.cfg.DontNormalize {
		return
	}

	for idx, v := range dst {
		dst[idx] = normalize(v)
	}
}

func normalize(v float64) float64 {
	if v <= 0 {
		return 0
	}

	if v = math.Log(v); v < 0 {
		return 0
	}

	return v
}

func (az *analyzer) bandValue(idx int, spectrum []float64) float64 {
	b := az.bands[idx]

	src := spectrum[b.floor:b.ceil]
	mag := 0.0
	count := len(src)
	for _, v := range src {
		mag = az.cfg.BinMethod(count, mag, v)
	}

	return mag * b.weight
}

// Recalculate rebuilds the bands for binCount bars and returns the number of
// bars the analyzer will fill.
func (az *analyzer) Recalculate(binCount int) int {
	switch {
	case binCount < 1:
		binCount = 1
	case binCount >= az.fftSize:
		binCount = az.fftSize - 1
	}

	if binCount == az.binCount {
		return binCount
	}

	az.binCount = binCount

	if az.cfg.Distribution == DistributeFrequency {
		az.distribute(binCount)
	}

	return binCount
}

// distribute spreads bars log evenly between the sub bass and treble
// dividers. Every bar gets at least one spectrum bin.
func (az *analyzer) distribute(bars int) {
	lo := frequencies[1]
	hi := math.Min(az.cfg.SampleRate/2, frequencies[4])

	loLog := math.Log10(lo)
	hiLog := math.Log10(hi)
	step := (hiLog - loLog) / float64(bars)

	squashCut := az.freqToIdx(600.0, math.Floor)

	for idx := range az.bands[:bars+1] {
		freq := math.Pow(10.0, loLog+float64(idx)*step)

		floor := az.freqToIdx(freq, math.Floor)
		if idx > 0 && az.bands[idx-1].floor >= floor {
			floor = az.bands[idx-1].floor + 1
		}

		az.bands[idx].floor = floor
		az.bands[idx].weight = 1.0

		if az.cfg.SquashLow && floor < squashCut {
			az.bands[idx].weight = 0.55 * math.Min(1.0, float64(floor+1)/float64(squashCut))
		}

		if idx > 0 {
			az.bands[idx-1].ceil = floor
		}
	}

	// bands pushed past the top collapse onto the last bin
	for idx := range az.bands[:bars] {
		b := &az.bands[idx]
		if b.ceil > az.fftSize {
			b.ceil = az.fftSize
		}
		if b.floor >= az.fftSize {
			b.floor = az.fftSize - 1
		}
		if b.ceil <= b.floor {
			b.ceil = b.floor + 1
		}
	}
}

func (az *analyzer) freqToIdx(freq float64, round func(float64) float64) int {
	b := int(round(freq / (az.cfg.SampleRate / float64(az.cfg.SampleSize))))

	if b < az.fftSize {
		return b
	}

	return az.fftSize - 1
}
