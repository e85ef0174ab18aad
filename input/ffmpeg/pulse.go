package ffmpeg

import (
	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/parec"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-pulse", Pulse{})
}

// Pulse records PulseAudio sources through ffmpeg's pulse demuxer. It lists
// the same sources as parec and can also deliver f64 samples.
type Pulse struct {
	parec.Backend
}

func (p Pulse) Start(cfg input.SessionConfig) (input.Session, error) {
	if _, ok := cfg.Device.(parec.PulseDevice); !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(cfg)
}
