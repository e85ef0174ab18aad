package fht

import "fmt"

// must panics on a buffer of the wrong length. It compiles away unless the
// package is built with the fhtdebug tag.
func (t *Transformer) must(op string, bufs ...[]float64) {
	if !debug {
		return
	}

	for _, buf := range bufs {
		if len(buf) != t.num {
			panic(fmt.Sprintf("fht: %s: buffer length %d, want %d", op, len(buf), t.num))
		}
	}
}
