package midi

import (
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2/drivers"
)

// fakeOut is a drivers.Out that records what is written to it.
type fakeOut struct {
	name     string
	number   int
	open     bool
	closed   int
	sent     [][]byte
	sendErr  error
	openErr  error
}

func (f *fakeOut) Number() int             { return f.number }
func (f *fakeOut) String() string          { return f.name }
func (f *fakeOut) IsOpen() bool            { return f.open }
func (f *fakeOut) Underlying() interface{} { return nil }

func (f *fakeOut) Open() error {
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	return nil
}

func (f *fakeOut) Close() error {
	f.open = false
	f.closed++
	return nil
}

func (f *fakeOut) Send(data []byte) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	b := make([]byte, len(data))
	copy(b, data)
	f.sent = append(f.sent, b)
	return nil
}

// newTestTransport wires a transport to the given fake ports instead of
// the system driver.
func newTestTransport(ports ...*fakeOut) *Transport {
	t := NewTransport()
	t.outs = func() []drivers.Out {
		outs := make([]drivers.Out, 0, len(ports))
		for _, p := range ports {
			outs = append(outs, p)
		}
		return outs
	}
	return t
}

func TestConnectExactMatch(t *testing.T) {
	a := &fakeOut{name: "MB-76 Port", number: 0}
	b := &fakeOut{name: "Other", number: 1}
	tr := newTestTransport(a, b)

	if err := tr.Connect("Other"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if !tr.Connected() {
		t.Error("expected transport to be connected")
	}
	if got := tr.Device(); got != "Other" {
		t.Errorf("Device() = %q, want %q", got, "Other")
	}
	if !b.open {
		t.Error("expected matched port to be opened")
	}
}

func TestConnectSubstringMatch(t *testing.T) {
	tests := []struct {
		name       string
		request    string
		available  []string
		wantDevice string
	}{
		{"suffix numbered port", "USB MIDI", []string{"USB MIDI 1", "Other"}, "USB MIDI 1"},
		{"exact beats substring", "USB MIDI", []string{"USB MIDI 1", "USB MIDI"}, "USB MIDI"},
		{"first substring hit wins", "MIDI", []string{"USB MIDI 1", "USB MIDI 2"}, "USB MIDI 1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ports := make([]*fakeOut, len(tc.available))
			for i, name := range tc.available {
				ports[i] = &fakeOut{name: name, number: i}
			}
			tr := newTestTransport(ports...)

			if err := tr.Connect(tc.request); err != nil {
				t.Fatalf("Connect(%q) failed: %v", tc.request, err)
			}
			if got := tr.Device(); got != tc.wantDevice {
				t.Errorf("Connect(%q) opened %q, want %q", tc.request, got, tc.wantDevice)
			}
		})
	}
}

func TestConnectNoMatch(t *testing.T) {
	tr := newTestTransport(&fakeOut{name: "USB MIDI 1"})

	err := tr.Connect("Totally Different")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if tr.Connected() {
		t.Error("transport must not be connected after a failed match")
	}
}

func TestConnectClosesPreviousHandle(t *testing.T) {
	a := &fakeOut{name: "First"}
	b := &fakeOut{name: "Second"}
	tr := newTestTransport(a, b)

	if err := tr.Connect("First"); err != nil {
		t.Fatalf("Connect(First) failed: %v", err)
	}
	if err := tr.Connect("Second"); err != nil {
		t.Fatalf("Connect(Second) failed: %v", err)
	}

	if a.closed != 1 {
		t.Errorf("previous handle closed %d times, want 1", a.closed)
	}
	if !b.open {
		t.Error("new handle should be open")
	}
	if got := tr.Device(); got != "Second" {
		t.Errorf("Device() = %q, want %q", got, "Second")
	}
}

func TestConnectFirst(t *testing.T) {
	a := &fakeOut{name: "Alpha"}
	b := &fakeOut{name: "Beta"}
	tr := newTestTransport(a, b)

	if err := tr.ConnectFirst(); err != nil {
		t.Fatalf("ConnectFirst failed: %v", err)
	}
	if got := tr.Device(); got != "Alpha" {
		t.Errorf("Device() = %q, want %q", got, "Alpha")
	}

	empty := newTestTransport()
	if err := empty.ConnectFirst(); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("ConnectFirst with no outputs: got %v, want ErrDeviceNotFound", err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	a := &fakeOut{name: "Port"}
	tr := newTestTransport(a)

	tr.Disconnect() // nothing open yet

	if err := tr.Connect("Port"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	tr.Disconnect()
	tr.Disconnect()

	if tr.Connected() {
		t.Error("transport still connected after Disconnect")
	}
	if a.closed != 1 {
		t.Errorf("port closed %d times, want 1", a.closed)
	}
	if got := tr.Device(); got != "" {
		t.Errorf("Device() = %q after disconnect, want empty", got)
	}
}

func TestSendWhenNotConnected(t *testing.T) {
	tr := newTestTransport(&fakeOut{name: "Port"})

	err := tr.Send([]byte{0xC0, 0x00})
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestSendFailureDropsHandle(t *testing.T) {
	a := &fakeOut{name: "Port"}
	tr := newTestTransport(a)

	if err := tr.Connect("Port"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	a.sendErr = errors.New("device unplugged")
	if err := tr.Send([]byte{0xC0, 0x04}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("failed write: got %v, want ErrNotConnected", err)
	}
	if tr.Connected() {
		t.Error("transport should drop the handle after a failed write")
	}

	// The next send reports not-connected too, without touching the port.
	a.sendErr = nil
	if err := tr.Send([]byte{0xC0, 0x04}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("send after failure: got %v, want ErrNotConnected", err)
	}
	if len(a.sent) != 0 {
		t.Errorf("port received %d messages after handle was dropped, want 0", len(a.sent))
	}
}

func TestListOutputsNeverCached(t *testing.T) {
	tr := NewTransport()
	tr.outs = func() []drivers.Out {
		return []drivers.Out{&fakeOut{name: "One"}}
	}

	if got := tr.ListOutputs(); len(got) != 1 || got[0] != "One" {
		t.Fatalf("ListOutputs() = %v, want [One]", got)
	}

	// Hot-plug: the enumeration changes between calls.
	tr.outs = func() []drivers.Out {
		return []drivers.Out{&fakeOut{name: "One"}, &fakeOut{name: "Two"}}
	}
	got := tr.ListOutputs()
	if len(got) != 2 || got[1] != "Two" {
		t.Errorf("ListOutputs() after hot-plug = %v, want [One Two]", got)
	}
}
