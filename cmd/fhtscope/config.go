package main

import (
	"math/bits"
	"os"
	"strconv"

	"github.com/fhtscope/fhtscope/dsp"
	"github.com/fhtscope/fhtscope/dsp/window"
	"github.com/fhtscope/fhtscope/graphic"
	"github.com/fhtscope/fhtscope/input"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	minSampleSize = 8
	maxSampleSize = 1 << 16

	// envPrefix is prepended to the upper case long flag name.
	envPrefix = "FHTSCOPE_"
)

// config holds everything the command line controls.
type config struct {
	// backend is the backend name from list-backends
	backend string
	// device is the device name from list-devices
	device string
	// sampleRate is the rate at which samples are read
	sampleRate float64
	// sampleSize is the transform length. A power of two
	sampleSize int
	// smoothFactor is 0-100 on the command line, the newest frame weight
	// after validate
	smoothFactor float64
	// frameRate is the number of frames to draw every second (0 draws it every
	// time the input has a frame)
	frameRate int
	// baseSize number of cells wide/high the base is
	baseSize int
	// barSize is the size of bars, in columns
	barSize int
	// spaceSize is the size of spaces, in columns
	spaceSize int
	// channelCount is the number of channels we read
	channelCount int
	// drawType is the graphic.DrawType
	drawType int
	// combine merges all channels into one (stereo -> mono)
	combine bool
	// invertDraw reverses the order of bars
	invertDraw bool
	// styles is the configuration for bar color styles
	styles graphic.Styles
	// scale is the spectrum scale name
	scale string
	// distribution is the bar distribution name
	distribution string
	// window is the window function name
	window string
	// gain multiplies every bar
	gain float64
	// monstercat is the bar falloff factor, 0 to disable
	monstercat float64
	// raw prints numbers instead of drawing
	raw bool
	// rawBars is the number of numbers per channel the raw output prints
	rawBars int
	// format is the sample format asked of the recorder
	format string

	// resolved by validate
	scaleMode   dsp.Scale
	distMode    dsp.Distribution
	windowFunc  window.Function
	smoothAlpha float64
	sampleFmt   input.SampleFormat
}

// newZeroConfig returns the defaults.
func newZeroConfig() config {
	return config{
		sampleRate:   44100,
		sampleSize:   1024,
		smoothFactor: 80.15,
		frameRate:    0,
		baseSize:     1,
		barSize:      2,
		spaceSize:    1,
		channelCount: 2,
		drawType:     int(graphic.DrawDefault),
		styles:       graphic.DefaultStyles(),
		scale:        "linear",
		distribution: "frequency",
		window:       "lanczos",
		gain:         1,
		rawBars:      50,
		format:       "f32",
	}
}

// loadDotEnv reads a .env file into the environment when there is one.
// Variables already set are not overwritten.
func loadDotEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "failed to stat %s", file)
		}

		if err := godotenv.Load(file); err != nil {
			return errors.Wrapf(err, "failed to load %s", file)
		}
	}

	return nil
}

// applyEnv sets defaults from FHTSCOPE_* variables found by lookup.
func (cfg *config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	var err error
	num := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok && err == nil {
			if *dst, err = strconv.Atoi(v); err != nil {
				err = errors.Wrapf(err, "bad %s%s", envPrefix, name)
			}
		}
	}

	flt := func(name string, dst *float64) {
		if v, ok := lookup(envPrefix + name); ok && err == nil {
			if *dst, err = strconv.ParseFloat(v, 64); err != nil {
				err = errors.Wrapf(err, "bad %s%s", envPrefix, name)
			}
		}
	}

	flag := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok && err == nil {
			if *dst, err = strconv.ParseBool(v); err != nil {
				err = errors.Wrapf(err, "bad %s%s", envPrefix, name)
			}
		}
	}

	str("BACKEND", &cfg.backend)
	str("DEVICE", &cfg.device)
	str("SCALE", &cfg.scale)
	str("DISTRIBUTION", &cfg.distribution)
	str("WINDOW", &cfg.window)
	str("FORMAT", &cfg.format)

	flt("RATE", &cfg.sampleRate)
	flt("SMOOTHING", &cfg.smoothFactor)
	flt("GAIN", &cfg.gain)
	flt("MONSTERCAT", &cfg.monstercat)

	num("SAMPLES", &cfg.sampleSize)
	num("FPS", &cfg.frameRate)
	num("CHANNELS", &cfg.channelCount)
	num("BASE", &cfg.baseSize)
	num("BAR", &cfg.barSize)
	num("SPACE", &cfg.spaceSize)
	num("DRAW", &cfg.drawType)
	num("RAW_BARS", &cfg.rawBars)

	flag("COMBINE", &cfg.combine)
	flag("INVERT", &cfg.invertDraw)
	flag("RAW", &cfg.raw)

	return err
}

// validate checks the config and resolves names into modes.
func (cfg *config) validate() error {
	switch {
	case cfg.sampleSize < minSampleSize || cfg.sampleSize > maxSampleSize:
		return errors.Errorf("sample size %d outside [%d, %d]", cfg.sampleSize, minSampleSize, maxSampleSize)

	case bits.OnesCount(uint(cfg.sampleSize)) != 1:
		return errors.Errorf("sample size %d is not a power of two", cfg.sampleSize)

	case cfg.sampleRate < float64(cfg.sampleSize):
		return errors.New("sample rate lower than sample size")

	case cfg.channelCount > 2:
		return errors.New("too many channels (2 max)")

	case cfg.channelCount < 1:
		return errors.New("too few channels (1 min)")

	case cfg.frameRate < 0:
		return errors.New("frame rate must not be negative")

	case !graphic.DrawType(cfg.drawType).Valid():
		return errors.Errorf("unknown draw type %d", cfg.drawType)

	case cfg.rawBars < 1:
		return errors.New("raw output needs at least one bar")

	case cfg.raw && cfg.rawBars > cfg.sampleSize/2:
		return errors.Errorf("%d raw bars need a sample size of at least %d", cfg.rawBars, 2*cfg.rawBars)
	}

	var err error

	if cfg.scaleMode, err = dsp.ParseScale(cfg.scale); err != nil {
		return err
	}

	if cfg.distMode, err = dsp.ParseDistribution(cfg.distribution); err != nil {
		return err
	}

	if cfg.windowFunc, err = window.Lookup(cfg.window); err != nil {
		return err
	}

	if cfg.sampleFmt, err = input.ParseSampleFormat(cfg.format); err != nil {
		return err
	}

	// 0 keeps every frame as it is, 100 barely moves
	switch {
	case cfg.smoothFactor > 99.99:
		cfg.smoothAlpha = 0.0001
	case cfg.smoothFactor < 0:
		cfg.smoothAlpha = 1
	default:
		cfg.smoothAlpha = 1 - cfg.smoothFactor/100.0
	}

	return nil
}
