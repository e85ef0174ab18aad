package input

import (
	"bytes"
	"os/exec"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDevice string

func (d testDevice) String() string { return string(d) }

type describedDevice string

func (d describedDevice) String() string      { return string(d) }
func (d describedDevice) Description() string { return "the " + string(d) }

type testBackend struct {
	inits   int
	started int
}

func (b *testBackend) Init() error  { b.inits++; return nil }
func (b *testBackend) Close() error { return nil }

func (b *testBackend) Devices() ([]Device, error) {
	return []Device{testDevice("one"), describedDevice("two")}, nil
}

func (b *testBackend) DefaultDevice() (Device, error) {
	return testDevice("one"), nil
}

func (b *testBackend) Start(SessionConfig) (Session, error) {
	b.started++
	return nil, errors.New("not implemented")
}

func withBackend(t *testing.T, name string, b Backend) {
	saved := Backends
	t.Cleanup(func() { Backends = saved })

	Backends = nil
	RegisterBackend(name, b)
}

func TestRegistry(t *testing.T) {
	b := &testBackend{}
	withBackend(t, "test", b)

	assert.True(t, HasBackend("test"))
	assert.False(t, HasBackend("nope"))
	assert.Equal(t, []string{"test"}, GetAllBackendNames())
	assert.Nil(t, FindBackend("nope"))

	got, err := InitBackend("test")
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.Equal(t, 1, b.inits)

	_, err = InitBackend("nope")
	assert.True(t, errors.Is(err, ErrBackendNotFound))
}

func TestGetDevice(t *testing.T) {
	b := &testBackend{}

	dv, err := GetDevice(b, "")
	require.NoError(t, err)
	assert.Equal(t, "one", dv.String())

	dv, err = GetDevice(b, "two")
	require.NoError(t, err)
	assert.Equal(t, "two", dv.String())

	_, err = GetDevice(b, "three")
	assert.True(t, errors.Is(err, ErrDeviceNotFound))
}

func TestMakeBuffers(t *testing.T) {
	bufs := MakeBuffers(2, 16)
	require.Len(t, bufs, 2)

	cfg := SessionConfig{FrameSize: 2, SampleSize: 16}
	assert.True(t, EnsureBufferLen(cfg, bufs))

	cfg.SampleSize = 8
	assert.False(t, EnsureBufferLen(cfg, bufs))

	cfg = SessionConfig{FrameSize: 1, SampleSize: 16}
	assert.False(t, EnsureBufferLen(cfg, bufs))

	bufs[0][15] = 1
	assert.Zero(t, bufs[1][0])
}

func stubLookPath(t *testing.T, installed ...string) {
	saved := lookPath
	t.Cleanup(func() { lookPath = saved })

	lookPath = func(file string) (string, error) {
		for _, p := range installed {
			if p == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDefaultBackend(t *testing.T) {
	withBackend(t, "synth", &testBackend{})
	RegisterBackend("parec", &testBackend{})
	RegisterBackend("pipewire", &testBackend{})

	stubLookPath(t)
	assert.Equal(t, "synth", DefaultBackend())

	stubLookPath(t, "parec")
	assert.Equal(t, "parec", DefaultBackend())

	stubLookPath(t, "parec", "pw-cat")
	assert.Equal(t, "pipewire", DefaultBackend())

	// installed but not registered
	stubLookPath(t, "ffmpeg")
	assert.Equal(t, "synth", DefaultBackend())
}

func TestListBackends(t *testing.T) {
	withBackend(t, "synth", &testBackend{})
	RegisterBackend("parec", &testBackend{})
	stubLookPath(t, "parec")

	var buf bytes.Buffer
	require.NoError(t, ListBackends(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"-", "synth"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"-", "parec", "*"}, strings.Fields(lines[1]))

	// names share a column
	assert.Equal(t, strings.Index(lines[0], "synth"), strings.Index(lines[1], "parec"))
}

func TestListDevices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ListDevices(&buf, &testBackend{}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"-", "one", "*"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"-", "two", "the", "two"}, strings.Fields(lines[1]))
}

func TestStartSessionValidates(t *testing.T) {
	b := &testBackend{}

	cfg := SessionConfig{Device: testDevice("one"), FrameSize: 1, SampleSize: 100, SampleRate: 44100}
	_, err := StartSession(b, cfg)
	assert.True(t, errors.Is(err, ErrSessionConfig))
	assert.Zero(t, b.started)

	cfg.SampleSize = 128
	_, err = StartSession(b, cfg)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionConfig))
	assert.Equal(t, 1, b.started)
}

func TestSessionConfigValidate(t *testing.T) {
	valid := SessionConfig{Device: testDevice("one"), FrameSize: 2, SampleSize: 1024, SampleRate: 44100}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 8192, valid.FrameBytes())

	for name, mod := range map[string]func(*SessionConfig){
		"no device":     func(c *SessionConfig) { c.Device = nil },
		"no channels":   func(c *SessionConfig) { c.FrameSize = 0 },
		"surround":      func(c *SessionConfig) { c.FrameSize = 6 },
		"odd size":      func(c *SessionConfig) { c.SampleSize = 1000 },
		"huge size":     func(c *SessionConfig) { c.SampleSize, c.SampleRate = 1 << 26, 1 << 27 },
		"slow rate":     func(c *SessionConfig) { c.SampleRate = 512 },
		"unknown codec": func(c *SessionConfig) { c.Format = SampleFormat(7) },
	} {
		cfg := valid
		mod(&cfg)
		assert.True(t, errors.Is(cfg.Validate(), ErrSessionConfig), name)
	}
}

func TestParseSampleFormat(t *testing.T) {
	for in, want := range map[string]SampleFormat{
		"":      FormatF32,
		"f32":   FormatF32,
		"f32le": FormatF32,
		"f64":   FormatF64,
		"f64le": FormatF64,
	} {
		got, err := ParseSampleFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSampleFormat("s16")
	assert.True(t, errors.Is(err, ErrSessionConfig))

	assert.Equal(t, 8, FormatF64.Width())
	assert.Equal(t, "f32", FormatF32.String())
}
