package midi

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
)

// MaxBank is the number of routing configurations the MB-76 stores.
const MaxBank = 32

// Engine turns bank selections into Program Change messages on the
// configured channel. Banks 1-32 map to program values 0-31.
type Engine struct {
	mu        sync.Mutex
	transport *Transport
	channel   int
	lastBank  int
}

// NewEngine creates an engine sending through transport. Channels outside
// 1-16 fall back to channel 1.
func NewEngine(transport *Transport, channel int) *Engine {
	if channel < 1 || channel > 16 {
		channel = 1
	}
	return &Engine{transport: transport, channel: channel}
}

// RecallBank selects one of the stored hardware routings. The message is
// sent exactly once; a failed send is reported, never retried, because a
// repeated Program Change can double-trigger the relay switching on the
// patchbay side.
func (e *Engine) RecallBank(bank int) error {
	if bank < 1 || bank > MaxBank {
		return fmt.Errorf("%w: %d", ErrBankOutOfRange, bank)
	}
	if err := e.sendProgram(uint8(bank - 1)); err != nil {
		return err
	}

	e.mu.Lock()
	e.lastBank = bank
	e.mu.Unlock()
	logrus.Infof("Recalled bank %d", bank)
	return nil
}

// SendProgramChange sends a raw Program Change without touching the
// last-recalled bank. Values 0-31 address banks 1-32; the rest are for
// poking at other gear listening on the same channel.
func (e *Engine) SendProgramChange(program int) error {
	if program < 0 || program > 127 {
		return fmt.Errorf("%w: %d", ErrProgramOutOfRange, program)
	}
	return e.sendProgram(uint8(program))
}

func (e *Engine) sendProgram(program uint8) error {
	e.mu.Lock()
	channel := e.channel
	e.mu.Unlock()

	msg := midi.ProgramChange(uint8(channel-1), program)
	if err := e.transport.Send(msg); err != nil {
		return err
	}
	logrus.Debugf("Sent Program Change %d on channel %d", program, channel)
	return nil
}

// SetChannel changes the channel used for subsequent sends. Takes effect
// immediately, no reconnect needed.
func (e *Engine) SetChannel(channel int) error {
	if channel < 1 || channel > 16 {
		return fmt.Errorf("%w: %d", ErrChannelOutOfRange, channel)
	}
	e.mu.Lock()
	e.channel = channel
	e.mu.Unlock()
	return nil
}

// Channel returns the channel used for sends (1-16).
func (e *Engine) Channel() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channel
}

// LastRecalledBank returns the bank of the most recent successful recall,
// or 0 if none has happened yet. This records what was last sent, not
// what the hardware is on; the MB-76 front panel can change banks without
// telling us.
func (e *Engine) LastRecalledBank() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastBank
}
