package fht

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyClearScale(t *testing.T) {
	r := rand.New(rand.NewSource(12))
	tr := newTransformer(t, 4)

	src := randomSignal(r, tr.Size())
	dst := make([]float64, tr.Size())

	out := tr.Copy(dst, src)
	assert.Equal(t, src, out)
	assert.Same(t, &dst[0], &out[0])

	tr.Scale(dst, -3)
	for i := range dst {
		assert.InDelta(t, -3*src[i], dst[i], 1e-15)
	}

	out = tr.Clear(dst)
	assert.Equal(t, make([]float64, tr.Size()), out)
}

func TestEwma(t *testing.T) {
	tr := newTransformer(t, 3)

	dst := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	src := []float64{8, 8, 8, 8, 8, 8, 8, 8}

	tr.Ewma(dst, src, 0.25)
	for i, v := range dst {
		assert.InDelta(t, 0.25*8+0.75*float64(i), v, 1e-12)
	}

	tr.Ewma(dst, src, 1)
	assert.Equal(t, src, dst)
}

func TestEwmaConverges(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	tr := newTransformer(t, 6)

	target := randomSignal(r, tr.Size())
	acc := make([]float64, tr.Size())

	for _, alpha := range []float64{0.1, 0.5, 0.9} {
		tr.Clear(acc)
		prev := math.Inf(1)

		for step := 0; step < 10; step++ {
			tr.Ewma(acc, target, alpha)

			dist := 0.0
			for i := range acc {
				dist = math.Max(dist, math.Abs(acc[i]-target[i]))
			}

			if dist == 0 {
				prev = 0
				break
			}

			require.Less(t, dist, prev, "alpha %v step %d", alpha, step)
			prev = dist
		}

		assert.InDelta(t, 0, prev, math.Pow(1-alpha, 10)+1e-12)
	}
}

func TestSmoothAccumulator(t *testing.T) {
	tr := newTransformer(t, 3)

	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	acc := tr.Smooth(ones, 0.5)
	assert.Equal(t, 0.5, acc[0])

	acc = tr.Smooth(ones, 0.5)
	assert.Equal(t, 0.75, acc[3])
	assert.Equal(t, acc, tr.Smoothed())

	tr.ResetSmoothing()
	assert.Equal(t, make([]float64, 8), tr.Smoothed())
}

func TestSmoothSpectrumHalf(t *testing.T) {
	tr := newTransformer(t, 3)

	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1}

	acc := tr.SmoothSpectrum(ones, 0.5)
	require.Len(t, acc, 5)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 0.5}, acc)

	// bins above N/2 keep their history
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0, 0, 0}, tr.Smoothed())
}

func TestPatternImpulse(t *testing.T) {
	tr := newTransformer(t, 5)

	p := make([]float64, tr.Size())
	for i := range p {
		p[i] = 9
	}

	tr.Pattern(p, false)
	assert.Equal(t, 1.0, p[0])
	for _, v := range p[1:] {
		assert.Zero(t, v)
	}

	tr.Transform(p)
	for k, v := range p {
		assert.InDelta(t, 1, v, 1e-12, "bin %d", k)
	}
}

func TestPatternSquare(t *testing.T) {
	tr := newTransformer(t, 4)

	p := make([]float64, tr.Size())
	tr.Pattern(p, true)

	for i, v := range p {
		if i%2 == 0 {
			assert.Equal(t, 1.0, v)
		} else {
			assert.Equal(t, -1.0, v)
		}
	}
}
