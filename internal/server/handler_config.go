package server

import (
	"encoding/json"
	"net/http"

	"github.com/s0wingseason/Digital-Patchbay/internal/config"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"config":      s.cfg.Snapshot(),
		"midi_status": s.midiStatus(),
	})
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MIDIChannel *int            `json:"midi_channel"`
		MIDIDevice  *string         `json:"midi_device"`
		Inputs      []config.IOPort `json:"inputs"`
		Outputs     []config.IOPort `json:"outputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	// Channel changes reach the engine before anything is persisted, so
	// an out-of-range value rejects the whole update untouched.
	if req.MIDIChannel != nil {
		if err := s.engine.SetChannel(*req.MIDIChannel); err != nil {
			writeError(w, err)
			return
		}
	}

	// Switching devices while connected means reconnecting; a name that
	// matches nothing rejects the update before it is saved.
	if req.MIDIDevice != nil && s.transport.Connected() && *req.MIDIDevice != s.transport.Device() {
		if err := s.transport.Connect(*req.MIDIDevice); err != nil {
			writeError(w, err)
			return
		}
	}

	updated, err := s.cfg.Update(func(c *config.Config) {
		if req.MIDIChannel != nil {
			c.MIDI.Channel = *req.MIDIChannel
		}
		if req.MIDIDevice != nil {
			c.MIDI.Device = *req.MIDIDevice
		}
		if req.Inputs != nil {
			c.MB76.Inputs = req.Inputs
		}
		if req.Outputs != nil {
			c.MB76.Outputs = req.Outputs
		}
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  updated,
	})
}
