package fht

import "math"

// Transform replaces p with its Hartley transform. Applying it twice scales
// the original signal by N.
func (t *Transformer) Transform(p []float64) {
	t.must("transform", p)

	if t.unrolled {
		t.Transform8(p)
		return
	}

	t.butterfly(p)
}

// Transform8 is the fully unrolled transform for 8 samples. It does not use
// the lookup tables and may be called on any Transformer. It performs the
// same operations as the butterfly network at N=8, so both give identical
// results.
func (t *Transformer) Transform8(p []float64) {
	_ = p[7]

	a, b, c, d := p[0], p[1], p[2], p[3]
	e, f, g, h := p[4], p[5], p[6], p[7]

	// pairs four samples apart
	a0, a1 := a+e, a-e
	c0, c1 := c+g, c-g
	b0, b1 := b+f, b-f
	d0, d1 := d+h, d-h

	// 4 point transforms of the even and odd samples
	e0, e1, e2, e3 := a0+c0, a1+c1, a0-c0, a1-c1
	o0, o1, o2, o3 := b0+d0, b1+d1, b0-d0, b1-d1

	// cas(pi/4) = sqrt2, cas(-pi/4) = 0
	t1 := 0.5 * (math.Sqrt2 * (o1 + o3))
	t2 := 0.5 * (math.Sqrt2 * (o1 - o3))

	p[0], p[4] = e0+o0, e0-o0
	p[2], p[6] = e2+o2, e2-o2
	p[1], p[5] = e1+t1, e1-t1
	p[3], p[7] = e3+t2, e3-t2
}

// butterfly is the general radix 2 decimation in time network. After the bit
// reversal every block of size L holds the half size transforms of its even
// samples (E) followed by its odd samples (O), which combine as
//
//	H[k]   = E[k] + cos(a) O[k] + sin(a) O[L/2-k]
//	H[k+L/2] = E[k] - cos(a) O[k] - sin(a) O[L/2-k],   a = 2*pi*k/L
//
// k and L/2-k are handled together so each pass stays in place.
func (t *Transformer) butterfly(p []float64) {
	n := t.num

	for i, j := range t.rev {
		if i < j {
			p[i], p[j] = p[j], p[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		quarter := half >> 1
		stride := n / size

		for e := 0; e < n; e += size {
			o := e + half

			x, y := p[e], p[o]
			p[e], p[o] = x+y, x-y

			if quarter == 0 {
				continue
			}

			// a = pi/2
			x, y = p[e+quarter], p[o+quarter]
			p[e+quarter], p[o+quarter] = x+y, x-y

			for k := 1; k < quarter; k++ {
				m := k * stride

				// cas(a) and cas(-a)
				cp, cn := t.tab[m], t.tab[n-m]

				ok, om := p[o+k], p[o+half-k]
				sum, diff := ok+om, ok-om

				t1 := 0.5 * (cp*sum + cn*diff)
				t2 := 0.5 * (cp*diff - cn*sum)

				ek, em := p[e+k], p[e+half-k]

				p[e+k], p[o+k] = ek+t1, ek-t1
				p[e+half-k], p[o+half-k] = em+t2, em-t2
			}
		}
	}
}
