// Package execread reads interleaved floating point audio from a raw stream:
// the stdout of a recorder process, or any pollable file.
package execread

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/fhtscope/fhtscope/input"
	"github.com/pkg/errors"
)

// ErrBufferLen is returned when the buffers given to Start do not match the
// session config.
var ErrBufferLen = errors.New("invalid dst length given")

// Session is a session that reads floating-point audio values from a Cmd.
type Session struct {
	// OnStart is called after the process starts. Nil by default.
	OnStart func(ctx context.Context, cmd *exec.Cmd) error

	// DisconnectedStderr keeps the recorder's stderr away from the terminal.
	DisconnectedStderr bool

	argv []string
	cfg  input.SessionConfig
}

// NewSession creates a session for argv. The recorder must write samples in
// cfg.Format.
func NewSession(argv []string, cfg input.SessionConfig) (*Session, error) {
	if len(argv) < 1 {
		return nil, errors.New("argv has no arg0")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Session{argv: argv, cfg: cfg}, nil
}

// Start runs the recorder until ctx ends or the recorder exits.
func (s *Session) Start(ctx context.Context, dst [][]float64, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(s.cfg, dst) {
		return ErrBufferLen
	}

	cmd := exec.CommandContext(ctx, s.argv[0], s.argv[1:]...)

	if !s.DisconnectedStderr {
		cmd.Stderr = os.Stderr
	}

	o, err := cmd.StdoutPipe()
	if err != nil {
		return errors.Wrap(err, "failed to get stdout pipe")
	}
	defer o.Close()

	// SetReadDeadline needs the *os.File.
	of, ok := o.(*os.File)
	if !ok {
		return errors.New("stdout pipe is not an *os.File (bug)")
	}

	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "failed to start "+s.argv[0])
	}

	if s.OnStart != nil {
		if err := s.OnStart(ctx, cmd); err != nil {
			return err
		}
	}

	return Stream(ctx, of, s.cfg, dst, kickChan, mu)
}

// Stream reads frames of cfg layout from f into dst and kicks after each
// one, until ctx ends or f reaches EOF. When f supports read deadlines a late
// frame shows up as silence; the bytes that did arrive are kept and the
// frame is completed on the next read.
func Stream(ctx context.Context, f *os.File, cfg input.SessionConfig, dst [][]float64, kickChan chan bool, mu *sync.Mutex) error {
	if !input.EnsureBufferLen(cfg, dst) {
		return ErrBufferLen
	}

	fr := NewFrameReader(cfg)

	frame := time.Duration(
		float64(cfg.SampleSize) / cfg.SampleRate * float64(time.Second))

	deadlines := true

	// Recorders drop audio on overflow, so the first wait is generous. After
	// a miss we only wait one frame so the display keeps moving.
	var missed bool

	for {
		if deadlines {
			timeout := frame
			if !missed {
				timeout *= 6
			}

			err := f.SetReadDeadline(time.Now().Add(timeout))
			switch {
			case errors.Is(err, os.ErrNoDeadline):
				deadlines = false
			case err != nil:
				return errors.Wrap(err, "failed to set read deadline")
			}
		}

		ready, err := fr.ReadFrom(f)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return nil
		default:
			return errors.Wrap(err, "failed to read samples")
		}

		missed = !ready

		mu.Lock()
		if ready {
			fr.Decode(dst)
		} else {
			zero(dst)
		}
		mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case kickChan <- true:
		}
	}
}

func zero(dst [][]float64) {
	for _, buf := range dst {
		for i := range buf {
			buf[i] = 0
		}
	}
}
