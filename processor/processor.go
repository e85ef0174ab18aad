// Package processor runs the per frame pipeline: copy the input buffers,
// window, Hartley transform, spectrum, smoothing, bars, output.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/fhtscope/fhtscope/dsp"
	"github.com/fhtscope/fhtscope/dsp/window"
	"github.com/fhtscope/fhtscope/fht"
	"github.com/pkg/errors"
)

// Output receives the bars of every frame.
type Output interface {
	// Bins returns the number of bars to draw for count channels.
	Bins(count int) int
	// Write draws one frame. bars holds one slice per channel.
	Write(bars [][]float64, channels int) error
}

type Config struct {
	SampleRate   float64         // rate at which samples are read
	SampleSize   int             // number of samples per buffer, a power of two
	ChannelCount int             // number of channels
	ProcessRate  int             // target framerate, 0 for input driven
	Combine      bool            // merge all channels into one
	Smoothing    float64         // weight of the newest frame in (0, 1], 0 for none
	Monstercat   float64         // bar falloff factor, <= 1 to disable
	Buffers      [][]float64     // sample buffers shared with the input
	Analyzer     dsp.Analyzer    // audio analyzer
	Output       Output          // data output
	Windower     window.Function // data windower
}

// Processor owns one transformer and work buffer per channel.
type Processor struct {
	cfg Config

	channels int // channels after combining
	bars     int

	trs     []*fht.Transformer
	work    [][]float64
	barBufs [][]float64
	out     [][]float64
}

// New builds a Processor for cfg.
func New(cfg Config) (*Processor, error) {
	switch {
	case cfg.Analyzer == nil:
		return nil, errors.New("processor needs an analyzer")
	case cfg.Output == nil:
		return nil, errors.New("processor needs an output")
	case len(cfg.Buffers) != cfg.ChannelCount:
		return nil, errors.Errorf("got %d buffers for %d channels", len(cfg.Buffers), cfg.ChannelCount)
	}

	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = 1
	}

	if cfg.Windower == nil {
		cfg.Windower = window.Rectangle
	}

	channels := cfg.ChannelCount
	if cfg.Combine {
		channels = 1
	}

	p := &Processor{
		cfg:      cfg,
		channels: channels,
		trs:      make([]*fht.Transformer, channels),
		work:     make([][]float64, channels),
		barBufs:  make([][]float64, channels),
		out:      make([][]float64, channels),
	}

	for ch := range p.trs {
		tr, err := fht.NewSize(cfg.SampleSize)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create transformer")
		}

		p.trs[ch] = tr
		p.work[ch] = make([]float64, cfg.SampleSize)
		p.barBufs[ch] = make([]float64, cfg.SampleSize/2)
	}

	return p, nil
}

// Channels returns the number of bar sets written per frame.
func (p *Processor) Channels() int {
	return p.channels
}

// Reset drops the smoothing history.
func (p *Processor) Reset() {
	for _, tr := range p.trs {
		tr.ResetSmoothing()
	}
}

// Process runs one frame and writes it to the output.
func (p *Processor) Process(mu *sync.Mutex) error {
	mu.Lock()
	p.load()
	mu.Unlock()

	if n := p.cfg.Output.Bins(p.channels); n != p.bars {
		p.bars = p.cfg.Analyzer.Recalculate(n)
	}

	for ch, tr := range p.trs {
		buf := p.work[ch]

		p.cfg.Windower(buf)
		tr.Transform(buf)
		p.cfg.Analyzer.Spectrum(tr, buf)

		spectrum := tr.SmoothSpectrum(buf, p.cfg.Smoothing)

		bars := p.barBufs[ch][:p.bars]
		p.cfg.Analyzer.Bins(tr, bars, spectrum)
		dsp.Monstercat(bars, p.cfg.Monstercat)

		p.out[ch] = bars
	}

	return p.cfg.Output.Write(p.out, p.channels)
}

// load copies the shared input buffers into the work buffers, averaging them
// when channels are combined.
func (p *Processor) load() {
	if !p.cfg.Combine {
		for ch, tr := range p.trs {
			tr.Copy(p.work[ch], p.cfg.Buffers[ch])
		}
		return
	}

	tr := p.trs[0]
	dst := tr.Copy(p.work[0], p.cfg.Buffers[0])

	for _, src := range p.cfg.Buffers[1:] {
		for i, v := range src {
			dst[i] += v
		}
	}

	tr.Scale(dst, 1/float64(len(p.cfg.Buffers)))
}

// Run processes a frame whenever the input kicks, or at ProcessRate when it
// is set, until ctx ends.
func (p *Processor) Run(ctx context.Context, kickChan chan bool, mu *sync.Mutex) error {
	rate := p.cfg.ProcessRate
	if rate <= 0 {
		// if we do not have a framerate set, allow at most 1 second per frame
		rate = 1
	}

	dur := time.Second / time.Duration(rate)
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-kickChan:
			if p.cfg.ProcessRate > 0 {
				continue
			}
		case <-ticker.C:
		}

		if err := p.Process(mu); err != nil {
			return errors.Wrap(err, "failed to write frame")
		}
	}
}
