package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/s0wingseason/Digital-Patchbay/internal/config"
)

func (s *Server) handleMidiDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"devices":         s.transport.ListOutputs(),
		"current_device":  s.transport.Device(),
		"current_channel": s.engine.Channel(),
	})
}

func (s *Server) handleMidiConnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Device string `json:"device"`
	}
	if r.Body != nil {
		// An empty or absent body means "use the configured device".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	device := req.Device
	if device == "" {
		device = s.cfg.Snapshot().MIDI.Device
	}

	var err error
	if device != "" {
		err = s.transport.Connect(device)
	} else {
		err = s.transport.ConnectFirst()
	}
	if err != nil {
		writeError(w, err)
		return
	}

	// Cache the opened device name so the next start can reconnect
	// without being told which device to use.
	if _, err := s.cfg.Update(func(c *config.Config) {
		c.MIDI.Device = s.transport.Device()
	}); err != nil {
		logrus.Warnf("Caching connected device in config: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"status":  s.midiStatus(),
	})
}

func (s *Server) handleMidiDisconnect(w http.ResponseWriter, r *http.Request) {
	s.transport.Disconnect()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleRecallBank(w http.ResponseWriter, r *http.Request) {
	bank, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "bank number must be an integer",
		})
		return
	}

	if err := s.engine.RecallBank(bank); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"bank":    bank,
		"message": fmt.Sprintf("Bank %d recalled", bank),
	})
}

func (s *Server) handleSendProgramChange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Program int `json:"program"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	if err := s.engine.SendProgramChange(req.Program); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"program": req.Program,
	})
}
