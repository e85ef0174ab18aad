package pipewire

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"

	"github.com/pkg/errors"
)

type pwObjectType string

const pwInterfaceNode pwObjectType = "PipeWire:Interface:Node"

// Media classes of the nodes worth recording.
const (
	pwAudioSink         = "Audio/Sink"
	pwAudioSource       = "Audio/Source"
	pwStreamOutputAudio = "Stream/Output/Audio"
)

type pwObject struct {
	ID   int64        `json:"id"`
	Type pwObjectType `json:"type"`
	Info struct {
		Props struct {
			MediaClass      string `json:"media.class"`
			NodeName        string `json:"node.name"`
			NodeDescription string `json:"node.description"`
		} `json:"props"`
	} `json:"info"`
}

// recordable reports whether pw-cat can target the object.
func (o pwObject) recordable() bool {
	if o.Type != pwInterfaceNode || o.Info.Props.NodeName == "" {
		return false
	}

	switch o.Info.Props.MediaClass {
	case pwAudioSink, pwAudioSource, pwStreamOutputAudio:
		return true
	}
	return false
}

// dumpCommand runs pw-dump. It is swapped in tests.
var dumpCommand = func(ctx context.Context) (io.Reader, error) {
	out, err := exec.CommandContext(ctx, "pw-dump").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.Wrapf(err, "failed to run pw-dump: %s", exitErr.Stderr)
		}
		return nil, errors.Wrap(err, "failed to run pw-dump")
	}

	return bytes.NewReader(out), nil
}

// parseNodes decodes a pw-dump document into the recordable nodes.
func parseNodes(r io.Reader) ([]AudioDevice, error) {
	var objs []pwObject
	if err := json.NewDecoder(r).Decode(&objs); err != nil {
		return nil, errors.Wrap(err, "failed to parse pw-dump output")
	}

	var devices []AudioDevice
	for _, o := range objs {
		if o.recordable() {
			devices = append(devices, AudioDevice{
				Name: o.Info.Props.NodeName,
				Desc: o.Info.Props.NodeDescription,
			})
		}
	}

	return devices, nil
}
