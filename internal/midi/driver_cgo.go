//go:build cgo

package midi

// The rtmidi driver is a cgo binding; building with cgo disabled leaves
// no driver registered, so ListOutputs sees no ports.
import (
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)
