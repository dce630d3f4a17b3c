package server

import (
	"net/http"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"app_name":     cfg.AppName,
		"version":      cfg.Version,
		"midi":         s.midiStatus(),
		"preset_count": s.presets.Count(),
		"mb76":         cfg.MB76,
	})
}

// handleTestConnection pokes the patchbay by recalling bank 1. This is
// the only handler that connects on demand; everywhere else a send with
// no open device just fails.
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if !s.transport.Connected() {
		device := s.cfg.Snapshot().MIDI.Device
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
	}

	if err := s.engine.RecallBank(1); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Sent Bank 1 test message",
	})
}
