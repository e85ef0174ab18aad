package input

import (
	"io"
	"os/exec"

	"github.com/fhtscope/fhtscope/util"
	"github.com/pkg/errors"
)

var (
	// ErrBackendNotFound is returned for an unknown backend name.
	ErrBackendNotFound = errors.New("backend not found")
	// ErrDeviceNotFound is returned for an unknown device name.
	ErrDeviceNotFound = errors.New("device not found")
)

// Backend opens sessions on its devices.
type Backend interface {
	// Init should do nothing if called more than once.
	Init() error
	Close() error

	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
	Start(SessionConfig) (Session, error)
}

// NamedBackend is a registered backend.
type NamedBackend struct {
	Name string
	Backend
}

// Backends holds every registered backend in registration order.
var Backends []NamedBackend

// RegisterBackend registers a backend globally. Call it from init().
func RegisterBackend(name string, b Backend) {
	Backends = append(Backends, NamedBackend{Name: name, Backend: b})
}

// GetAllBackendNames returns the names of all registered backends.
func GetAllBackendNames() []string {
	names := make([]string, 0, len(Backends))
	for _, nb := range Backends {
		names = append(names, nb.Name)
	}
	return names
}

// preferred lists capture backends by preference with the program each one
// runs. The first registered one whose program is installed wins.
var preferred = []struct {
	backend string
	program string
}{
	{"pipewire", "pw-cat"},
	{"parec", "parec"},
	{"ffmpeg-alsa", "ffmpeg"},
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// DefaultBackend picks the first installed capture backend, falling back to
// the synthetic signal generator.
func DefaultBackend() string {
	for _, p := range preferred {
		if !HasBackend(p.backend) {
			continue
		}

		if _, err := lookPath(p.program); err == nil {
			return p.backend
		}
	}

	if HasBackend("synth") {
		return "synth"
	}

	return ""
}

func indexOf(name string) int {
	for i, nb := range Backends {
		if nb.Name == name {
			return i
		}
	}
	return -1
}

// FindBackend returns the backend called name, or nil.
func FindBackend(name string) Backend {
	if i := indexOf(name); i >= 0 {
		return Backends[i].Backend
	}
	return nil
}

// HasBackend reports whether name is registered.
func HasBackend(name string) bool {
	return indexOf(name) >= 0
}

// InitBackend finds and initializes the named backend. An empty name picks
// DefaultBackend.
func InitBackend(name string) (Backend, error) {
	if name == "" {
		name = DefaultBackend()
	}

	backend := FindBackend(name)
	if backend == nil {
		return nil, errors.Wrapf(ErrBackendNotFound, "%q; check list-backends", name)
	}

	if err := backend.Init(); err != nil {
		return nil, errors.Wrapf(err, "failed to initialize %s", name)
	}

	return backend, nil
}

// GetDevice returns the device named device, or the default device when the
// name is empty.
func GetDevice(backend Backend, device string) (Device, error) {
	if device == "" {
		def, err := backend.DefaultDevice()
		return def, errors.Wrap(err, "failed to get default device")
	}

	devices, err := backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}

	for _, dv := range devices {
		if dv.String() == device {
			return dv, nil
		}
	}

	return nil, errors.Wrapf(ErrDeviceNotFound, "%q; check list-devices", device)
}

// StartSession validates cfg and starts a session on backend.
func StartSession(backend Backend, cfg SessionConfig) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := backend.Start(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to start %v", cfg.Device)
	}

	return s, nil
}

// ListBackends writes the registered backends, marking the default one.
func ListBackends(w io.Writer) error {
	def := DefaultBackend()

	t := util.NewTable(w)
	for _, nb := range Backends {
		t.Row("-", nb.Name, util.Marker(nb.Name == def))
	}

	return t.Flush()
}

// ListDevices writes the devices of backend, marking the default one.
func ListDevices(w io.Writer, backend Backend) error {
	devices, err := backend.Devices()
	if err != nil {
		return errors.Wrap(err, "failed to get devices")
	}

	// a backend without a default still lists its devices
	def, _ := backend.DefaultDevice()

	t := util.NewTable(w)
	for _, dv := range devices {
		var desc string
		if d, ok := dv.(Describer); ok {
			desc = d.Description()
		}

		t.Row("-", dv, util.Marker(def != nil && dv.String() == def.String()), desc)
	}

	return t.Flush()
}
