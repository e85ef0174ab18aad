// Package all imports all backends implemented by the input package.
package all

import (
	_ "github.com/fhtscope/fhtscope/input/ffmpeg"
	_ "github.com/fhtscope/fhtscope/input/parec"
	_ "github.com/fhtscope/fhtscope/input/pipewire"
	_ "github.com/fhtscope/fhtscope/input/stdin"
	_ "github.com/fhtscope/fhtscope/input/synth"
)
