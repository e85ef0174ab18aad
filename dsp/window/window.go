// Package window provides window functions for signal analysis. They shape a
// frame in place before it is transformed, to cut leakage between bins.
//
// See https://wikipedia.org/wiki/Window_function
package window

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Function shapes buf in place.
type Function func(buf []float64)

// ErrUnknown is returned by Lookup for an unregistered name.
var ErrUnknown = errors.New("unknown window function")

var byName = map[string]Function{
	"rectangle": Rectangle,
	"hann":      Hann,
	"hamming":   Hamming,
	"blackman":  Blackman,
	"bartlett":  Bartlett,
	"lanczos":   Lanczos,
}

// Lookup returns the window function called name.
func Lookup(name string) (Function, error) {
	if fn, ok := byName[name]; ok {
		return fn, nil
	}
	return nil, errors.Wrapf(ErrUnknown, "%q", name)
}

// Names returns the names Lookup accepts, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rectangle leaves buf as it is.
func Rectangle([]float64) {}

// CosSum applies a two term cosine sum window with coefficient a0.
func CosSum(buf []float64, a0 float64) {
	a1 := 1.0 - a0
	coef := 2.0 * math.Pi / float64(len(buf))
	for n := range buf {
		buf[n] *= a0 - a1*math.Cos(coef*float64(n))
	}
}

// Hamming applies a Hamming window.
func Hamming(buf []float64) {
	CosSum(buf, 25.0/46.0)
}

// Hann applies a Hann window.
func Hann(buf []float64) {
	CosSum(buf, 0.5)
}

// Bartlett applies a triangular window.
func Bartlett(buf []float64) {
	size := float64(len(buf))
	for n := range buf {
		buf[n] *= 1.0 - math.Abs((2.0*float64(n)-size)/size)
	}
}

// Blackman applies a three term Blackman window.
func Blackman(buf []float64) {
	coef := 2.0 * math.Pi / float64(len(buf))
	for n := range buf {
		x := coef * float64(n)
		buf[n] *= 0.42 - 0.5*math.Cos(x) + 0.08*math.Cos(2*x)
	}
}

// Lanczos applies a sinc window centred on the frame.
func Lanczos(buf []float64) {
	size := float64(len(buf))
	for n := range buf {
		x := 2.0*float64(n)/size - 1.0
		if x == 0 {
			continue
		}
		x *= math.Pi
		buf[n] *= math.Sin(x) / x
	}
}
