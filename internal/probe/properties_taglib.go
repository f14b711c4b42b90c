// file: internal/probe/properties_taglib.go
// version: 1.1.0
// guid: 8e9f0a1b-2c3d-4e5f-a6b7-c8d9e0f1a2b3

//go:build taglib

package probe

import (
	"go.senan.xyz/taglib"
)

// readProperties reads duration/bitrate/channel info via taglib.
func readProperties(path string) (Properties, error) {
	props, err := taglib.ReadProperties(path)
	if err != nil {
		return Properties{}, err
	}

	duration := props.Length.Seconds()
	bitrate := int(props.Bitrate)
	channels := int(props.Channels)
	sampleRate := int(props.SampleRate)

	out := Properties{}
	if duration > 0 {
		out.Duration = &duration
	}
	if bitrate > 0 {
		out.Bitrate = &bitrate
	}
	if channels > 0 {
		out.Channels = &channels
	}
	if sampleRate > 0 {
		out.SampleRate = &sampleRate
	}
	return out, nil
}
