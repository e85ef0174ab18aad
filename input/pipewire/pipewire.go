// Package pipewire records PipeWire nodes through pw-cat.
package pipewire

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("pipewire", Backend{})
}

// Auto lets the session manager pick the node to record.
const Auto = "auto"

// Backend lists PipeWire nodes from pw-dump and records them with pw-cat.
type Backend struct{}

func (p Backend) Init() error {
	return nil
}

func (p Backend) Close() error {
	return nil
}

// Devices lists sinks, sources and playback streams after the Auto device.
func (p Backend) Devices() ([]input.Device, error) {
	r, err := dumpCommand(context.Background())
	if err != nil {
		return nil, err
	}

	nodes, err := parseNodes(r)
	if err != nil {
		return nil, err
	}

	devices := make([]input.Device, 0, len(nodes)+1)
	devices = append(devices, AudioDevice{Name: Auto, Desc: "session manager default"})
	for _, n := range nodes {
		devices = append(devices, n)
	}

	return devices, nil
}

func (p Backend) DefaultDevice() (input.Device, error) {
	return AudioDevice{Name: Auto}, nil
}

func (p Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	return NewSession(cfg)
}

// AudioDevice is a PipeWire node.
type AudioDevice struct {
	Name string
	Desc string
}

// Description is the node's description property.
func (d AudioDevice) Description() string {
	return d.Desc
}

func (d AudioDevice) String() string {
	return d.Name
}

type streamProps struct {
	ApplicationName string `json:"application.name"`
	MediaName       string `json:"media.name"`
}

// helpCommand returns the output of pw-cat --help. It is swapped in tests.
var helpCommand = func() ([]byte, error) {
	return exec.Command("pw-cat", "--help").Output()
}

// hasRawFlag reports whether the pw-cat help text lists --raw. pw-cat 1.4
// needs it to write samples to stdout.
func hasRawFlag(help []byte) bool {
	for _, line := range strings.Split(string(help), "\n") {
		if strings.Contains(line, "--raw") {
			return true
		}
	}
	return false
}

// Args returns the pw-cat command line recording dv.
func Args(dv AudioDevice, cfg input.SessionConfig, raw bool) ([]string, error) {
	props, err := json.Marshal(streamProps{
		ApplicationName: "fhtscope",
		MediaName:       "spectrum",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal props")
	}

	args := []string{
		"pw-cat",
		"--record",
		"--format", cfg.Format.String(),
		"--rate", strconv.FormatFloat(cfg.SampleRate, 'f', 0, 64),
		"--latency", strconv.Itoa(cfg.SampleSize),
		"--channels", strconv.Itoa(cfg.FrameSize),
		"--target", dv.Name,
		"--quality", "0",
		"--media-category", "Capture",
		"--media-role", "DSP",
		"--properties", string(props),
	}

	if raw {
		args = append(args, "--raw")
	}

	return append(args, "-"), nil
}

// NewSession starts pw-cat on the node in cfg.
func NewSession(cfg input.SessionConfig) (*execread.Session, error) {
	dv, ok := cfg.Device.(AudioDevice)
	if !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	help, err := helpCommand()
	if err != nil {
		return nil, errors.Wrap(err, "failed to run pw-cat --help")
	}

	args, err := Args(dv, cfg, hasRawFlag(help))
	if err != nil {
		return nil, err
	}

	s, err := execread.NewSession(args, cfg)
	if err != nil {
		return nil, err
	}

	// pw-cat reports xruns on stderr while the display owns the terminal
	s.DisconnectedStderr = true

	return s, nil
}
