package midi

import "errors"

// Sentinel errors for the MIDI layer. Callers match with errors.Is; the
// HTTP layer maps them onto status codes.
var (
	// ErrNotConnected is returned when a send is attempted with no open
	// output, or when the open output fails mid-write.
	ErrNotConnected = errors.New("no MIDI device connected")

	// ErrDeviceNotFound is returned when no output matches a requested
	// device name, exactly or by substring.
	ErrDeviceNotFound = errors.New("MIDI device not found")

	// ErrBankOutOfRange rejects bank numbers outside 1-32.
	ErrBankOutOfRange = errors.New("bank number out of range (1-32)")

	// ErrProgramOutOfRange rejects raw program values outside 0-127.
	ErrProgramOutOfRange = errors.New("program number out of range (0-127)")

	// ErrChannelOutOfRange rejects MIDI channels outside 1-16.
	ErrChannelOutOfRange = errors.New("MIDI channel out of range (1-16)")
)
