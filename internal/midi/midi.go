package midi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Transport owns the single open MIDI output connection to the patchbay.
// At most one device is open at a time; a new Connect closes the previous
// handle before opening the next one.
type Transport struct {
	mu     sync.RWMutex
	out    drivers.Out
	send   func(midi.Message) error
	device string

	// outs enumerates the available output ports. Tests swap it to keep
	// real hardware out of the loop.
	outs func() []drivers.Out
}

// NewTransport creates a transport with no device open.
func NewTransport() *Transport {
	return &Transport{outs: systemOutPorts}
}

func systemOutPorts() []drivers.Out {
	return midi.GetOutPorts()
}

// ListOutputs returns the names of the MIDI outputs available right now.
// The port list is re-enumerated on every call so hot-plugged devices
// show up without a restart.
func (t *Transport) ListOutputs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	outs := t.outs()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// Connect opens the named output. An exact name match wins; otherwise the
// first port whose name contains the requested string is used, since
// drivers tend to append a numeric suffix ("USB MIDI" enumerates as
// "USB MIDI 1"). The substring fallback takes the first hit, which can
// grab the wrong interface when several share a prefix.
func (t *Transport) Connect(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	port := t.findOut(name)
	if port == nil {
		return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return t.connectLocked(port)
}

// ConnectFirst opens the first available output. Used when no device name
// has been configured yet.
func (t *Transport) ConnectFirst() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	outs := t.outs()
	if len(outs) == 0 {
		return fmt.Errorf("%w: no MIDI outputs available", ErrDeviceNotFound)
	}
	return t.connectLocked(outs[0])
}

// connectLocked closes any previous handle, then opens port. The previous
// handle is fully closed before the new one opens.
func (t *Transport) connectLocked(port drivers.Out) error {
	t.closeLocked()

	send, err := midi.SendTo(port)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", port.String(), err)
	}

	t.out = port
	t.send = send
	t.device = port.String()
	logrus.Infof("Connected to MIDI output %q", t.device)
	return nil
}

func (t *Transport) findOut(name string) drivers.Out {
	outs := t.outs()
	for _, out := range outs {
		if out.String() == name {
			return out
		}
	}
	for _, out := range outs {
		if strings.Contains(out.String(), name) {
			return out
		}
	}
	return nil
}

// Disconnect closes the open output. Safe to call when nothing is open.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeLocked()
}

func (t *Transport) closeLocked() {
	if t.out == nil {
		return
	}
	if err := t.out.Close(); err != nil {
		logrus.Warnf("Closing MIDI output %q: %v", t.device, err)
	} else {
		logrus.Infof("Disconnected from MIDI output %q", t.device)
	}
	t.out = nil
	t.send = nil
	t.device = ""
}

// Send writes a single message to the open output. The write is
// fire-and-forget: a nil error means the bytes left this process, not
// that the patchbay acted on them. A write failure drops the handle, so
// this send and every send after it report not-connected until the next
// Connect.
func (t *Transport) Send(msg midi.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.send == nil {
		return ErrNotConnected
	}
	if err := t.send(msg); err != nil {
		device := t.device
		t.closeLocked()
		return fmt.Errorf("%w: write to %q failed: %v", ErrNotConnected, device, err)
	}
	return nil
}

// Connected reports whether an output is open. This is link state only;
// the patchbay never confirms what it is actually doing.
func (t *Transport) Connected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.out != nil
}

// Device returns the name of the open output, or "" when disconnected.
func (t *Transport) Device() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.device
}

// Close disconnects and shuts down the MIDI driver.
func (t *Transport) Close() {
	t.Disconnect()
	midi.CloseDriver()
}
