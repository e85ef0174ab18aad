// Package ffmpeg records through an ffmpeg child process.
package ffmpeg

import (
	"strconv"

	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/execread"
	"github.com/pkg/errors"
)

// Device is a device ffmpeg can open.
type Device interface {
	input.Device
	InputArgs() []string
}

// muxers maps sample formats to ffmpeg's raw muxer names.
var muxers = map[input.SampleFormat]string{
	input.FormatF32: "f32le",
	input.FormatF64: "f64le",
}

// Args returns the ffmpeg command line reading dv in cfg.Format.
func Args(dv Device, cfg input.SessionConfig) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel", "panic"}
	args = append(args, dv.InputArgs()...)
	args = append(args,
		"-ar", strconv.FormatFloat(cfg.SampleRate, 'f', 0, 64),
		"-ac", strconv.Itoa(cfg.FrameSize),
		"-f", muxers[cfg.Format],
		"-",
	)

	return args
}

// NewSession starts ffmpeg on the device in cfg.
func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(Device)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if _, ok := muxers[cfg.Format]; !ok {
		return nil, errors.Wrapf(input.ErrSessionConfig, "ffmpeg cannot write %v", cfg.Format)
	}

	s, err := execread.NewSession(Args(dv, cfg), cfg)
	if err != nil {
		return nil, err
	}

	// ffmpeg prints its banner and progress even at low log levels
	s.DisconnectedStderr = true

	return s, nil
}
