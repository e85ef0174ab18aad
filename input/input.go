// Package input reads audio from recording backends into per channel sample
// buffers sized for one transform frame.
package input

import (
	"context"
	"fmt"
	"sync"

	"github.com/fhtscope/fhtscope/fht"
	"github.com/pkg/errors"
)

// MaxChannels is the largest FrameSize a session accepts.
const MaxChannels = 2

// ErrSessionConfig is wrapped by every SessionConfig.Validate error.
var ErrSessionConfig = errors.New("invalid session config")

// Device is an input device of a backend.
type Device interface {
	fmt.Stringer
}

// Describer is a Device with a human readable name.
type Describer interface {
	Description() string
}

// SampleFormat is the encoding of one sample in a raw stream. Streams are
// always interleaved and little endian.
type SampleFormat int

// Sample formats.
const (
	FormatF32 SampleFormat = iota // float32
	FormatF64                     // float64
)

// ParseSampleFormat maps a flag value to a SampleFormat.
func ParseSampleFormat(name string) (SampleFormat, error) {
	switch name {
	case "f32", "f32le", "":
		return FormatF32, nil
	case "f64", "f64le":
		return FormatF64, nil
	}
	return 0, errors.Wrapf(ErrSessionConfig, "sample format %q", name)
}

// Width returns the number of bytes per sample.
func (f SampleFormat) Width() int {
	if f == FormatF64 {
		return 8
	}
	return 4
}

func (f SampleFormat) String() string {
	switch f {
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	}
	return fmt.Sprintf("SampleFormat(%d)", int(f))
}

// SessionConfig describes the frames a session delivers.
type SessionConfig struct {
	Device     Device
	Format     SampleFormat // encoding asked of the recorder
	FrameSize  int          // number of channels per frame
	SampleSize int          // number of frames per buffer, a power of two
	SampleRate float64      // frames per second
}

// Validate checks that the buffers of cfg can be fed straight to a
// fht.Transformer and that the stream layout is one the readers decode.
func (cfg SessionConfig) Validate() error {
	if cfg.Device == nil {
		return errors.Wrap(ErrSessionConfig, "no device")
	}

	if cfg.FrameSize < 1 || cfg.FrameSize > MaxChannels {
		return errors.Wrapf(ErrSessionConfig, "%d channels, want 1 to %d", cfg.FrameSize, MaxChannels)
	}

	exp, err := fht.SizeExp(cfg.SampleSize)
	if err != nil {
		return errors.Wrapf(ErrSessionConfig, "sample size: %v", err)
	}

	if exp > fht.MaxSizeExp {
		return errors.Wrapf(ErrSessionConfig, "sample size %d above 2^%d", cfg.SampleSize, fht.MaxSizeExp)
	}

	if cfg.SampleRate < float64(cfg.SampleSize) {
		return errors.Wrapf(ErrSessionConfig, "sample rate %.0f below sample size %d", cfg.SampleRate, cfg.SampleSize)
	}

	switch cfg.Format {
	case FormatF32, FormatF64:
	default:
		return errors.Wrapf(ErrSessionConfig, "unknown %v", cfg.Format)
	}

	return nil
}

// FrameBytes is the size of one buffer worth of raw stream.
func (cfg SessionConfig) FrameBytes() int {
	return cfg.Format.Width() * cfg.FrameSize * cfg.SampleSize
}

// Session streams audio into the buffers handed to Start.
type Session interface {
	// Start writes SampleSize frames into dst under mu and then sends on
	// kickChan, until ctx ends or the source runs dry.
	Start(ctx context.Context, dst [][]float64, kickChan chan bool, mu *sync.Mutex) error
}

// MakeBuffers allocates one buffer of size samples per channel.
func MakeBuffers(channels, size int) [][]float64 {
	buf := make([]float64, channels*size)
	out := make([][]float64, channels)
	for i := range out {
		out[i] = buf[size*i : size*(i+1)]
	}

	return out
}

// EnsureBufferLen reports whether buffers match cfg.
func EnsureBufferLen(cfg SessionConfig, buffers [][]float64) bool {
	if len(buffers) != cfg.FrameSize {
		return false
	}

	for _, buf := range buffers {
		if len(buf) != cfg.SampleSize {
			return false
		}
	}

	return true
}
