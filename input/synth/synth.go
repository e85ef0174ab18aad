// Package synth generates test signals in process, for running without a
// sound server and for checking the analyzer against known input.
package synth

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/fhtscope/fhtscope/fht"
	"github.com/fhtscope/fhtscope/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("synth", Backend{})
}

// Signal names a generated waveform.
type Signal string

// Signals the backend can produce.
const (
	Sine    Signal = "sine"    // 440 Hz tone
	Sweep   Signal = "sweep"   // tone gliding from 40 Hz to Nyquist/2 over 8s
	Impulse Signal = "impulse" // one click per frame, flat spectrum
	Square  Signal = "square"  // alternating +1/-1, all energy at Nyquist
)

const (
	// SineFreq is the frequency of the Sine signal.
	SineFreq = 440.0

	sweepLow    = 40.0
	sweepPeriod = 8.0
)

// Backend serves the synthetic signals as devices.
type Backend struct{}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Devices() ([]input.Device, error) {
	return []input.Device{Sine, Sweep, Impulse, Square}, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Sweep, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

func (s Signal) String() string {
	return string(s)
}

// Session writes one generated frame per frame period.
type Session struct {
	cfg    input.SessionConfig
	signal Signal
	tr     *fht.Transformer

	// sample clock, in frames since start
	clock int
}

// NewSession returns a session for the signal in cfg.Device.
func NewSession(cfg input.SessionConfig) (*Session, error) {
	sig, ok := cfg.Device.(Signal)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	switch sig {
	case Sine, Sweep, Impulse, Square:
	default:
		return nil, errors.Errorf("unknown signal %q", sig)
	}

	tr, err := fht.NewSize(cfg.SampleSize)
	if err != nil {
		return nil, errors.Wrap(err, "synth needs a power of two sample size")
	}

	return &Session{cfg: cfg, signal: sig, tr: tr}, nil
}

// Start generates frames until ctx ends.
func (s *Session) Start(ctx context.Context, dst [][]float64, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(s.cfg, dst) {
		return errors.New("invalid dst length given")
	}

	frame := time.Duration(
		float64(s.cfg.SampleSize) / s.cfg.SampleRate * float64(time.Second))

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		mu.Lock()
		s.Fill(dst)
		mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case kickChan <- true:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Fill writes the next frame of the signal into every channel and advances
// the sample clock.
func (s *Session) Fill(dst [][]float64) {
	if len(dst) == 0 {
		return
	}

	first := dst[0]

	switch s.signal {
	case Impulse:
		s.tr.Pattern(first, false)

	case Square:
		s.tr.Pattern(first, true)

	case Sine:
		s.tone(first, func(float64) float64 { return SineFreq })

	case Sweep:
		top := s.cfg.SampleRate / 4
		ratio := top / sweepLow
		s.tone(first, func(sec float64) float64 {
			pos := math.Mod(sec, sweepPeriod) / sweepPeriod
			return sweepLow * math.Pow(ratio, pos)
		})
	}

	for _, buf := range dst[1:] {
		s.tr.Copy(buf, first)
	}

	s.clock += s.cfg.SampleSize
}

// tone writes a unit sine whose frequency follows freq(seconds). The phase
// is taken from the absolute sample clock so frames join up.
func (s *Session) tone(buf []float64, freq func(float64) float64) {
	rate := s.cfg.SampleRate
	hz := freq(float64(s.clock) / rate)

	for i := range buf {
		n := float64(s.clock + i)
		buf[i] = math.Sin(2 * math.Pi * hz * n / rate)
	}
}
