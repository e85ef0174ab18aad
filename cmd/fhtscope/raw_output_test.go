package main

import (
	"bytes"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/fhtscope/fhtscope/dsp"
	"github.com/fhtscope/fhtscope/input"
	"github.com/fhtscope/fhtscope/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	line, err := buf.ReadString('\n')
	require.NoError(t, err)
	return strings.Fields(line)
}

func TestRawOutputWrite(t *testing.T) {
	var buf bytes.Buffer
	out := NewRawOutput(&buf, 3)
	require.NoError(t, out.Init(44100, 1024))
	assert.Equal(t, 3, out.Bins(2))

	require.NoError(t, out.Write([][]float64{{0.5, 0.25, 0}, {0.1, 0.2, 0.3}}, 2))

	// peaks under one are not scaled up; the second channel is mirrored
	assert.Equal(t,
		[]string{"50.000", "25.000", "0.000", "30.000", "20.000", "10.000"},
		fields(t, &buf))
}

func TestRawOutputScalesPeaks(t *testing.T) {
	var buf bytes.Buffer
	out := NewRawOutput(&buf, 2)
	out.SetInvertDraw(true)

	require.NoError(t, out.Write([][]float64{{4, 8}}, 1))
	assert.Equal(t, []string{"100.000", "50.000"}, fields(t, &buf))
}

func TestRawOutputErrors(t *testing.T) {
	out := NewRawOutput(&bytes.Buffer{}, 4)

	assert.Error(t, out.Write(nil, 1))
	assert.Error(t, out.Write([][]float64{{1}}, 2))
}

func TestRawOutputShortSets(t *testing.T) {
	var buf bytes.Buffer
	out := NewRawOutput(&buf, 4)

	require.NoError(t, out.Write([][]float64{{0.5, 0.25}, {0.1, 0.2, 0.3}}, 2))
	assert.Equal(t, []string{"50.000", "25.000", "20.000", "10.000"}, fields(t, &buf))
}

func TestRawOutputSmallFrames(t *testing.T) {
	const size = 64

	var buf bytes.Buffer
	out := NewRawOutput(&buf, 50)
	require.NoError(t, out.Init(44100, size))

	bufs := input.MakeBuffers(1, size)
	for i := range bufs[0] {
		bufs[0][i] = math.Sin(2 * math.Pi * 4 * float64(i) / size)
	}

	proc, err := processor.New(processor.Config{
		SampleRate:   44100,
		SampleSize:   size,
		ChannelCount: 1,
		Buffers:      bufs,
		Output:       out,
		Analyzer: dsp.NewAnalyzer(dsp.AnalyzerConfig{
			SampleRate:   44100,
			SampleSize:   size,
			Distribution: dsp.DistributeFrequency,
		}),
	})
	require.NoError(t, err)

	require.NoError(t, proc.Process(&sync.Mutex{}))
	assert.Len(t, fields(t, &buf), size/2)
}
