// Package fht provides a table driven Fast Hartley Transform for power of two
// sizes, plus the post passes used to turn a transformed audio block into a
// power, amplitude or log scaled spectrum.
//
// The discrete Hartley transform of x is
//
//	H[k] = sum x[n] * cas(2*pi*n*k/N),  cas(t) = cos(t) + sin(t)
//
// It is real valued and self inverse up to a factor of N.
//
// A Transformer is not safe for concurrent use. Buffers handed to it must have
// exactly Size() elements; this is only checked when built with the fhtdebug
// tag.
//
// See https://en.wikipedia.org/wiki/Discrete_Hartley_transform
package fht

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// MaxSizeExp is the largest size exponent New accepts.
const MaxSizeExp = 24

// ErrInvalidSize is returned when a transformer cannot be built for the
// requested size.
var ErrInvalidSize = errors.New("invalid transform size")

// Transformer holds the lookup tables for one transform length.
type Transformer struct {
	exp2 int
	num  int

	unrolled bool // num == 8

	tab []float64 // cas(2*pi*k/num)
	rev []int     // bit reversed index of k

	buf []float64 // scratch for in place remaps
	acc []float64 // ewma accumulator owned by Smooth

	semi    []logBin // source positions for SemiLogSpectrum
	semiLin int      // bins below this stay linear

	logMap []logBin // source positions for RemapLog, rebuilt on size change
}

// logBin is a fractional source position split into index and weight.
type logBin struct {
	idx  int
	frac float64
}

// New returns a Transformer for N = 2^exp samples.
func New(exp int) (*Transformer, error) {
	if exp < 0 || exp > MaxSizeExp {
		return nil, errors.Wrapf(ErrInvalidSize, "size exponent %d not in [0, %d]", exp, MaxSizeExp)
	}

	num := 1 << uint(exp)

	t := &Transformer{
		exp2:     exp,
		num:      num,
		unrolled: num == 8,
		tab:      make([]float64, num),
		rev:      make([]int, num),
		buf:      make([]float64, num),
		acc:      make([]float64, num),
	}

	t.makeCasTable()
	t.makeRevTable()
	t.makeSemiLogTable()

	return t, nil
}

// NewSize returns a Transformer for n samples. n must be a power of two.
func NewSize(n int) (*Transformer, error) {
	exp, err := SizeExp(n)
	if err != nil {
		return nil, err
	}
	return New(exp)
}

// SizeExp returns log2(n), or an error if n is not a power of two.
func SizeExp(n int) (int, error) {
	if n < 1 || n&(n-1) != 0 {
		return 0, errors.Wrapf(ErrInvalidSize, "size %d is not a power of two", n)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// SizeExp returns log2 of the transform length.
func (t *Transformer) SizeExp() int {
	return t.exp2
}

// Size returns the transform length.
func (t *Transformer) Size() int {
	return t.num
}

// octants holds cas(j*pi/4) exactly.
var octants = [8]float64{1, math.Sqrt2, 1, 0, -1, -math.Sqrt2, -1, 0}

func (t *Transformer) makeCasTable() {
	coef := 2.0 * math.Pi / float64(t.num)
	for k := range t.tab {
		if (8*k)%t.num == 0 {
			t.tab[k] = octants[8*k/t.num]
			continue
		}

		s, c := math.Sincos(coef * float64(k))
		t.tab[k] = c + s
	}
}

func (t *Transformer) makeRevTable() {
	if t.exp2 == 0 {
		return
	}

	shift := uint(bits.UintSize - t.exp2)
	for k := range t.rev {
		t.rev[k] = int(bits.Reverse(uint(k)) >> shift)
	}
}

// makeSemiLogTable lays bins [semiLin, N/2) on a geometric scale running
// from semiLin up to N/2.
func (t *Transformer) makeSemiLogTable() {
	half := t.num / 2

	t.semiLin = half / 4
	if t.semiLin < 1 {
		t.semiLin = 1
	}

	if half <= t.semiLin {
		return
	}

	lin := float64(t.semiLin)
	span := float64(half - t.semiLin)
	ratio := float64(half) / lin

	t.semi = make([]logBin, half-t.semiLin)
	for i := range t.semi {
		t.semi[i] = splitPos(lin * math.Pow(ratio, float64(i)/span))
	}
}

// makeLogMap lays count destination bins over source positions [0, N/2] so
// that pos_j + 1 grows geometrically from 1 to N/2 + 1.
func (t *Transformer) makeLogMap(count int) {
	if cap(t.logMap) >= count {
		t.logMap = t.logMap[:count]
	} else {
		t.logMap = make([]logBin, count)
	}

	if count == 1 {
		t.logMap[0] = logBin{}
		return
	}

	top := float64(t.num/2 + 1)
	last := float64(count - 1)
	for j := range t.logMap {
		t.logMap[j] = splitPos(math.Pow(top, float64(j)/last) - 1)
	}
}

func splitPos(pos float64) logBin {
	whole, frac := math.Modf(pos)
	return logBin{idx: int(whole), frac: frac}
}

// at reads src at the fractional position b, never past limit.
func (b logBin) at(src []float64, limit int) float64 {
	if b.idx >= limit {
		return src[limit]
	}
	return src[b.idx] + (src[b.idx+1]-src[b.idx])*b.frac
}
