package ffmpeg

import (
	"strings"
	"testing"

	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/input/parec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseALSADevice(t *testing.T) {
	for in, want := range map[string]string{
		"00-03": "hw:0,3",
		"01-00": "hw:1,0",
		"10":    "hw:10",
	} {
		got, err := ParseALSADevice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got.String(), in)
	}

	_, err := ParseALSADevice("0-1-2")
	assert.Error(t, err)
}

func TestReadALSADevices(t *testing.T) {
	pcm := "00-00: ALC892 Analog : ALC892 Analog : playback 1 : capture 1\n" +
		"00-01: ALC892 Digital : ALC892 Digital : playback 1\n" +
		"00-02: ALC892 Alt Analog : ALC892 Alt Analog : capture 1\n"

	devices, err := readALSADevices(strings.NewReader(pcm))
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, ALSADevice{Name: "hw:0,0", Desc: "ALC892 Analog"}, devices[0])
	assert.Equal(t, ALSADevice{Name: "hw:0,2", Desc: "ALC892 Alt Analog"}, devices[1])
}

func TestArgs(t *testing.T) {
	cfg := input.SessionConfig{FrameSize: 1, SampleSize: 512, SampleRate: 48000, Format: input.FormatF64}

	args := Args(ALSADevice{Name: "hw:0,0"}, cfg)
	assert.Equal(t, []string{
		"ffmpeg", "-hide_banner", "-loglevel", "panic",
		"-f", "alsa", "-i", "hw:0,0",
		"-ar", "48000", "-ac", "1", "-f", "f64le", "-",
	}, args)

	cfg.Format = input.FormatF32
	args = Args(parec.PulseDevice{Name: "default"}, cfg)
	assert.Equal(t, []string{"-f", "pulse", "-i", "default"}, args[4:8])
	assert.Equal(t, "f32le", args[len(args)-2])
}

func TestStartWrongDevice(t *testing.T) {
	cfg := input.SessionConfig{Device: ALSADevice{Name: "hw:0"}, FrameSize: 1, SampleSize: 8, SampleRate: 8000}

	_, err := Pulse{}.Start(cfg)
	assert.Error(t, err)

	s, err := ALSA{}.Start(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)

	cfg.Device = parec.PulseDevice{Name: "default"}
	s, err = Pulse{}.Start(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestStartValidates(t *testing.T) {
	cfg := input.SessionConfig{Device: ALSADevice{Name: "hw:0"}, FrameSize: 1, SampleSize: 100, SampleRate: 8000}

	_, err := ALSA{}.Start(cfg)
	assert.ErrorIs(t, err, input.ErrSessionConfig)
}
