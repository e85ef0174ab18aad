// Package stdin reads raw interleaved samples piped into the program.
package stdin

import (
	"context"
	"os"
	"sync"

	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/execread"
	"github.com/pkg/errors"
)

func init() {
	input.RegisterBackend("stdin", Backend{})
}

// Backend reads from File, or os.Stdin when File is nil.
type Backend struct {
	File *os.File
}

func (b Backend) Init() error {
	return nil
}

func (b Backend) Close() error {
	return nil
}

func (b Backend) Devices() ([]input.Device, error) {
	return []input.Device{Device{}}, nil
}

func (b Backend) DefaultDevice() (input.Device, error) {
	return Device{}, nil
}

func (b Backend) Start(cfg input.SessionConfig) (input.Session, error) {
	if _, ok := cfg.Device.(Device); !ok {
		return nil, errors.Errorf("invalid device type %T", cfg.Device)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := b.File
	if f == nil {
		f = os.Stdin
	}

	return &Session{file: f, cfg: cfg}, nil
}

// Device is the only device of the backend.
type Device struct{}

// Description tells how to feed the device.
func (d Device) Description() string {
	return "raw little endian samples, interleaved"
}

func (d Device) String() string {
	return "stdin"
}

// Session streams the file until it ends. Pipes that cannot take read
// deadlines block instead of filling gaps with silence.
type Session struct {
	file *os.File
	cfg  input.SessionConfig
}

func (s *Session) Start(ctx context.Context, dst [][]float64, kickChan chan bool, mu *sync.Mutex) error {
	return execread.Stream(ctx, s.file, s.cfg, dst, kickChan, mu)
}
