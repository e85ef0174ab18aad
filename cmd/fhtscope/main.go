package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/fhtscope/fhtscope/dsp"
	"github.com/fhtscope/fhtscope/dsp/window"
	"github.com/fhtscope/fhtscope/graphic"
	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/internal/selftest"
	"github.com/fhtscope/fhtscope/processor"

	_ "github.com/fhtscope/fhtscope/input/all"

	"github.com/integrii/flaggy"
	"github.com/pkg/errors"
)

// AppName is the app name
const AppName = "fhtscope"

// AppDesc is the app description
const AppDesc = "Terminal audio spectrum on a Fast Hartley Transform"

// AppSite is the app website
const AppSite = "https://github.com/fhtscope/fhtscope"

var version = "unknown"

func main() {
	log.SetFlags(0)

	chk(loadDotEnv(".env"), "failed to load environment")

	cfg := newZeroConfig()
	chk(cfg.applyEnv(os.LookupEnv), "invalid environment")

	if doFlags(&cfg) {
		return
	}

	chk(cfg.validate(), "invalid config")

	// Root Context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	chk(run(ctx, &cfg), "failed to run fhtscope")
}

// run reads from the input backend and draws until ctx ends or the input
// runs dry.
func run(ctx context.Context, cfg *config) error {
	backend, err := input.InitBackend(cfg.backend)
	if err != nil {
		return err
	}
	defer backend.Close()

	sessConfig := input.SessionConfig{
		Format:     cfg.sampleFmt,
		FrameSize:  cfg.channelCount,
		SampleSize: cfg.sampleSize,
		SampleRate: cfg.sampleRate,
	}

	if sessConfig.Device, err = input.GetDevice(backend, cfg.device); err != nil {
		return err
	}

	audio, err := input.StartSession(backend, sessConfig)
	if err != nil {
		return errors.Wrap(err, "failed to start the input backend")
	}

	var out processor.Output

	if cfg.raw {
		raw := NewRawOutput(os.Stdout, cfg.rawBars)
		if err := raw.Init(cfg.sampleRate, cfg.sampleSize); err != nil {
			return err
		}

		raw.SetInvertDraw(cfg.invertDraw)
		out = raw
	} else {
		display := graphic.NewDisplay()
		if err := display.Init(cfg.sampleRate, cfg.sampleSize); err != nil {
			return err
		}
		defer display.Close()

		display.Configure(graphic.Config{
			BarWidth:   cfg.barSize,
			SpaceWidth: cfg.spaceSize,
			BaseThick:  cfg.baseSize,
			DrawType:   graphic.DrawType(cfg.drawType),
			Invert:     cfg.invertDraw,
			Styles:     cfg.styles,
		})

		ctx = display.Start(ctx)
		defer display.Stop()

		out = display
	}

	inputBuffers := input.MakeBuffers(cfg.channelCount, cfg.sampleSize)

	proc, err := processor.New(processor.Config{
		SampleRate:   cfg.sampleRate,
		SampleSize:   cfg.sampleSize,
		ChannelCount: cfg.channelCount,
		ProcessRate:  cfg.frameRate,
		Combine:      cfg.combine,
		Smoothing:    cfg.smoothAlpha,
		Monstercat:   cfg.monstercat,
		Buffers:      inputBuffers,
		Output:       out,
		Windower:     cfg.windowFunc,
		Analyzer: dsp.NewAnalyzer(dsp.AnalyzerConfig{
			SampleRate:   cfg.sampleRate,
			SampleSize:   cfg.sampleSize,
			Scale:        cfg.scaleMode,
			Distribution: cfg.distMode,
			SquashLow:    true,
			Gain:         cfg.gain,
			BinMethod:    dsp.MaxSampleValue(),
		}),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	kickChan := make(chan bool, 1)
	mu := &sync.Mutex{}

	procErr := make(chan error, 1)
	go func() {
		procErr <- proc.Run(ctx, kickChan, mu)
		cancel()
	}()

	if err := audio.Start(ctx, inputBuffers, kickChan, mu); err != nil {
		if !errors.Is(ctx.Err(), context.Canceled) {
			return errors.Wrap(err, "failed to start input session")
		}
	}

	cancel()

	return <-procErr
}

func doFlags(cfg *config) bool {
	parser := flaggy.NewParser(AppName)
	parser.Description = AppDesc
	parser.AdditionalHelpPrepend = AppSite
	parser.Version = version

	listBackendsCmd := flaggy.Subcommand{
		Name:                 "list-backends",
		ShortName:            "lb",
		Description:          "list all supported backends",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listBackendsCmd, 1)

	listDevicesCmd := flaggy.Subcommand{
		Name:                 "list-devices",
		ShortName:            "ld",
		Description:          "list all devices for a backend",
		AdditionalHelpAppend: "\nuse the full name after the '-'",
	}

	parser.AttachSubcommand(&listDevicesCmd, 1)

	selftestCmd := flaggy.Subcommand{
		Name:        "selftest",
		ShortName:   "st",
		Description: "check the transform against a reference FFT",
	}

	maxExp := selftest.DefaultMaxExp
	selftestCmd.Int(&maxExp, "x", "max-exp", "largest size exponent to check")

	parser.AttachSubcommand(&selftestCmd, 1)

	parser.String(&cfg.backend, "b", "backend", "backend name")
	parser.String(&cfg.device, "d", "device", "device name")
	parser.Float64(&cfg.sampleRate, "r", "rate", "sample rate")
	parser.Int(&cfg.sampleSize, "n", "samples", "sample size, a power of two")
	parser.Int(&cfg.frameRate, "f", "fps", "frame rate (0 to draw on every sample)")
	parser.Int(&cfg.channelCount, "ch", "channels", "channel count (1 or 2)")
	parser.Float64(&cfg.smoothFactor, "sf", "smoothing", "smooth factor (0-100)")
	parser.Int(&cfg.baseSize, "bt", "base", "base thickness [0, +Inf)")
	parser.Int(&cfg.barSize, "bw", "bar", "bar width [1, +Inf)")
	parser.Int(&cfg.spaceSize, "sw", "space", "space width [0, +Inf)")
	parser.Int(&cfg.drawType, "dt", "draw", "draw type (0 default, 1 up, 2 updown, 3 down)")
	parser.Bool(&cfg.invertDraw, "i", "invert", "invert the direction of bin drawing")
	parser.Bool(&cfg.combine, "cb", "combine", "combine all channels into one")
	parser.String(&cfg.scale, "sc", "scale", "spectrum scale (linear, semilog, decibel)")
	parser.String(&cfg.distribution, "ds", "distribution", "bar distribution (frequency, log)")
	parser.String(&cfg.window, "w", "window",
		"window function ("+strings.Join(window.Names(), ", ")+")")
	parser.Float64(&cfg.gain, "g", "gain", "bar gain")
	parser.Float64(&cfg.monstercat, "mc", "monstercat", "bar falloff factor (0 to disable)")
	parser.Bool(&cfg.raw, "", "raw", "print bar values instead of drawing")
	parser.Int(&cfg.rawBars, "rb", "raw-bars", "number of bars per channel printed by -raw")
	parser.String(&cfg.format, "fm", "format", "sample format asked of the recorder (f32, f64)")

	fg, bg, center := cfg.styles.AsUInt16s()
	parser.UInt16(&fg, "fg", "foreground",
		"foreground color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&bg, "bg", "background",
		"background color within the 256-color range [0, 255] with attributes")
	parser.UInt16(&center, "ct", "center",
		"center line color within the 256-color range [0, 255] with attributes")

	chk(parser.Parse(), "failed to parse arguments")

	// Manually set the styles.
	cfg.styles = graphic.StylesFromUInt16(fg, bg, center)

	switch {
	case listBackendsCmd.Used:
		chk(input.ListBackends(os.Stdout), "failed to list backends")
		return true

	case listDevicesCmd.Used:
		backend, err := input.InitBackend(cfg.backend)
		chk(err, "failed to init backend")
		defer backend.Close()

		chk(input.ListDevices(os.Stdout, backend), "failed to list devices")
		return true

	case selftestCmd.Used:
		report, err := selftest.Run(maxExp, 1)
		chk(err, "failed to run selftest")
		chk(report.Print(os.Stdout), "failed to print report")
		chk(report.Check(selftest.Tolerance), "selftest failed")

		return true
	}

	return false
}

func chk(err error, wrap string) {
	if err != nil {
		log.Fatalln(wrap+": ", err)
	}
}
