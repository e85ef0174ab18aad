package ffmpeg

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/fhtscope/fhtscope/input"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("ffmpeg-alsa", ALSA{})
}

// pcmList is the kernel's list of PCM devices.
var pcmList = "/proc/asound/pcm"

// ALSA records ALSA hardware devices through ffmpeg.
type ALSA struct{}

func (p ALSA) Init() error {
	return nil
}

func (p ALSA) Close() error {
	return nil
}

// Devices lists the PCM devices that can capture, after the default device.
func (p ALSA) Devices() ([]input.Device, error) {
	f, err := os.Open(pcmList)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pcm list")
	}
	defer f.Close()

	devices, err := readALSADevices(f)
	if err != nil {
		return nil, err
	}

	return append([]input.Device{ALSADevice{Name: "default"}}, devices...), nil
}

// readALSADevices parses lines like
//
//	00-02: ALC892 Alt Analog : ALC892 Alt Analog : capture 1
//
// and keeps the devices with a capture stream.
func readALSADevices(r io.Reader) ([]input.Device, error) {
	var devices []input.Device

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < 2 {
			continue
		}

		if !strings.Contains(scanner.Text(), "capture") {
			continue
		}

		d, err := ParseALSADevice(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse device %q", fields[0])
		}

		d.Desc = strings.TrimSpace(fields[1])
		devices = append(devices, d)
	}

	return devices, errors.Wrap(scanner.Err(), "failed to read pcm list")
}

func (p ALSA) DefaultDevice() (input.Device, error) {
	return ALSADevice{Name: "default"}, nil
}

func (p ALSA) Start(cfg input.SessionConfig) (input.Session, error) {
	if _, ok := cfg.Device.(ALSADevice); !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	return NewSession(cfg)
}

// ALSADevice is an ALSA device such as hw:0,3.
type ALSADevice struct {
	Name string
	Desc string
}

// ParseALSADevice turns a /proc/asound/pcm prefix such as 00-03 into hw:0,3.
func ParseALSADevice(hwString string) (ALSADevice, error) {
	parts := strings.Split(strings.TrimSpace(hwString), "-")
	if len(parts) > 2 {
		return ALSADevice{}, errors.Errorf("want card-device, got %d parts", len(parts))
	}

	name := "hw"
	for i, part := range parts {
		part = strings.TrimLeft(part, "0")
		if part == "" {
			part = "0"
		}

		if i == 0 {
			name += ":" + part
		} else {
			name += "," + part
		}
	}

	return ALSADevice{Name: name}, nil
}

func (d ALSADevice) InputArgs() []string {
	return []string{"-f", "alsa", "-i", d.Name}
}

// Description is the card's name for the device.
func (d ALSADevice) Description() string {
	return d.Desc
}

func (d ALSADevice) String() string {
	return d.Name
}
