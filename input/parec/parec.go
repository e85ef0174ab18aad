// Package parec records from PulseAudio through the parec tool.
package parec

import (
	"strconv"

	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/execread"
	"github.com/lawl/pulseaudio"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("parec", Backend{})
}

// Default names the server's default source.
const Default = "default"

// Backend lists PulseAudio sources and records them with parec.
type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

// Devices asks the PulseAudio server for its sources. The first entry is
// always the server's default source.
func (p Backend) Devices() ([]input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}
	defer c.Close()

	sources, err := c.Sources()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sources")
	}

	devices := make([]input.Device, 0, len(sources)+1)
	devices = append(devices, PulseDevice{Name: Default, Desc: "server default source"})
	for _, source := range sources {
		devices = append(devices, PulseDevice{Name: source.Name, Desc: source.Description})
	}

	return devices, nil
}

// DefaultDevice is the monitor of the default sink, so the analyzer shows
// what is playing. Without a server it falls back to Default.
func (p Backend) DefaultDevice() (input.Device, error) {
	c, err := pulseaudio.NewClient()
	if err != nil {
		return PulseDevice{Name: Default}, nil
	}
	defer c.Close()

	info, err := c.ServerInfo()
	if err != nil || info.DefaultSink == "" {
		return PulseDevice{Name: Default}, nil
	}

	return PulseDevice{Name: info.DefaultSink + ".monitor"}, nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// PulseDevice is a PulseAudio source.
type PulseDevice struct {
	Name string
	Desc string
}

// InputArgs returns the ffmpeg arguments that open this source.
func (d PulseDevice) InputArgs() []string {
	return []string{"-f", "pulse", "-i", d.Name}
}

// Description is the server's human readable name for the source.
func (d PulseDevice) Description() string {
	return d.Desc
}

func (d PulseDevice) String() string {
	return d.Name
}

// Args returns the parec command line for cfg. parec has no 64 bit float
// format, so cfg.Format must be input.FormatF32.
func Args(dv PulseDevice, cfg input.SessionConfig) []string {
	return []string{
		"parec",
		"--format=float32le",
		"--rate=" + strconv.FormatFloat(cfg.SampleRate, 'f', 0, 64),
		"--channels=" + strconv.Itoa(cfg.FrameSize),
		// one transform frame of buffering keeps the display current
		"--latency=" + strconv.Itoa(cfg.FrameBytes()),
		"-d", dv.Name,
	}
}

// NewSession starts parec on the device in cfg.
func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(PulseDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if cfg.Format != input.FormatF32 {
		return nil, errors.Wrapf(input.ErrSessionConfig, "parec cannot record %v", cfg.Format)
	}

	return execread.NewSession(Args(dv, cfg), cfg)
}
