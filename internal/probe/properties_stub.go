// file: internal/probe/properties_stub.go
// version: 1.1.0
// guid: 9f0a1b2c-3d4e-4f5a-b6c7-d8e9f0a1b2c4

//go:build !taglib

package probe

import "errors"

var errNoTaglib = errors.New("audio property probing requires the taglib build tag")

// readProperties is a no-op without the taglib build tag. Tracks simply
// carry nil duration/bitrate fields.
func readProperties(string) (Properties, error) {
	return Properties{}, errNoTaglib
}
