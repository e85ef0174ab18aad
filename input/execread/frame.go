package execread

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/fhtscope/fhtscope/input"
	"github.com/pkg/errors"
)

// FrameReader assembles one buffer worth of interleaved little endian
// samples. A read cut short by a deadline keeps its bytes, so the stream
// never loses its alignment.
type FrameReader struct {
	raw      []byte
	filled   int
	width    int
	channels int
	f64      bool
}

// NewFrameReader returns a FrameReader for the layout in cfg.
func NewFrameReader(cfg input.SessionConfig) *FrameReader {
	return &FrameReader{
		raw:      make([]byte, cfg.FrameBytes()),
		width:    cfg.Format.Width(),
		channels: cfg.FrameSize,
		f64:      cfg.Format == input.FormatF64,
	}
}

// ReadFrom reads until the frame is complete or r fails. It reports whether a
// whole frame is ready. A deadline error is not returned: the partial frame
// is kept and ready is false.
func (fr *FrameReader) ReadFrom(r io.Reader) (bool, error) {
	n, err := io.ReadFull(r, fr.raw[fr.filled:])
	fr.filled += n

	switch {
	case err == nil:
		fr.filled = 0
		return true, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return false, nil
	}

	return false, err
}

// Pending returns the number of bytes of the next frame already read.
func (fr *FrameReader) Pending() int {
	return fr.filled
}

// Decode splits the last complete frame into channels.
func (fr *FrameReader) Decode(dst [][]float64) {
	order := binary.LittleEndian

	for n := 0; n*fr.width < len(fr.raw); n++ {
		b := fr.raw[n*fr.width:]

		var v float64
		if fr.f64 {
			v = math.Float64frombits(order.Uint64(b))
		} else {
			v = float64(math.Float32frombits(order.Uint32(b)))
		}

		dst[n%fr.channels][n/fr.channels] = v
	}
}
