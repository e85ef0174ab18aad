package stdin

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/fhtscope/fhtscope/input"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartReadsFile(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	raw := make([]byte, 8*4)
	for i, v := range []float64{0.5, -0.5, 0.25, -0.25} {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cfg := input.SessionConfig{
		Device:     Device{},
		Format:     input.FormatF64,
		FrameSize:  2,
		SampleSize: 2,
		SampleRate: 2,
	}

	s, err := input.StartSession(Backend{File: r}, cfg)
	require.NoError(t, err)

	dst := input.MakeBuffers(2, 2)
	kick := make(chan bool, 2)

	require.NoError(t, s.Start(context.Background(), dst, kick, &sync.Mutex{}))

	assert.Len(t, kick, 1)
	assert.Equal(t, []float64{0.5, 0.25}, dst[0])
	assert.Equal(t, []float64{-0.5, -0.25}, dst[1])
}

func TestStartErrors(t *testing.T) {
	cfg := input.SessionConfig{Device: Device{}, FrameSize: 1, SampleSize: 6, SampleRate: 8000}

	_, err := Backend{}.Start(cfg)
	assert.ErrorIs(t, err, input.ErrSessionConfig)

	cfg.SampleSize = 8
	cfg.Device = nil
	_, err = Backend{}.Start(cfg)
	assert.Error(t, err)
}

func TestDevices(t *testing.T) {
	devices, err := Backend{}.Devices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "stdin", devices[0].String())

	def, err := Backend{}.DefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, devices[0], def)
}
