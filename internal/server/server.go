package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/s0wingseason/Digital-Patchbay/internal/config"
	"github.com/s0wingseason/Digital-Patchbay/internal/midi"
	"github.com/s0wingseason/Digital-Patchbay/internal/preset"
	"github.com/s0wingseason/Digital-Patchbay/internal/routing"
)

// Server exposes the patchbay controller over HTTP.
type Server struct {
	cfg       *config.Store
	transport *midi.Transport
	engine    *midi.Engine
	model     *routing.Model
	presets   *preset.Store
}

// New wires a server over the given components.
func New(cfg *config.Store, transport *midi.Transport, engine *midi.Engine, model *routing.Model, presets *preset.Store) *Server {
	return &Server{
		cfg:       cfg,
		transport: transport,
		engine:    engine,
		model:     model,
		presets:   presets,
	}
}

// Routes returns the API mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Configuration
	mux.HandleFunc("GET /api/config", s.handleGetConfig)
	mux.HandleFunc("POST /api/config", s.handleUpdateConfig)

	// MIDI device control
	mux.HandleFunc("GET /api/midi/devices", s.handleMidiDevices)
	mux.HandleFunc("POST /api/midi/connect", s.handleMidiConnect)
	mux.HandleFunc("POST /api/midi/disconnect", s.handleMidiDisconnect)

	// Bank recall
	mux.HandleFunc("POST /api/bank/send-program-change", s.handleSendProgramChange)
	mux.HandleFunc("POST /api/bank/{number}", s.handleRecallBank)

	// Routing matrix
	mux.HandleFunc("GET /api/routing", s.handleGetRouting)
	mux.HandleFunc("PUT /api/routing", s.handlePutRouting)
	mux.HandleFunc("POST /api/routing/toggle", s.handleToggleRouting)
	mux.HandleFunc("POST /api/routing/clear", s.handleClearRouting)

	// Presets
	mux.HandleFunc("GET /api/presets", s.handleListPresets)
	mux.HandleFunc("POST /api/presets", s.handleCreatePreset)
	mux.HandleFunc("GET /api/presets/by-bank/{number}", s.handleGetPresetByBank)
	mux.HandleFunc("GET /api/presets/{id}", s.handleGetPreset)
	mux.HandleFunc("PUT /api/presets/{id}", s.handleUpdatePreset)
	mux.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)
	mux.HandleFunc("POST /api/presets/{id}/recall", s.handleRecallPreset)

	// Utility
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/test", s.handleTestConnection)

	return mux
}

// Handler returns the mux wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.Routes())
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]interface{}{"error": err.Error()})
}

// statusForError maps the core's error kinds onto HTTP status codes:
// validation 400, not-found 404, not-connected 503.
func statusForError(err error) int {
	switch {
	case errors.Is(err, midi.ErrBankOutOfRange),
		errors.Is(err, midi.ErrProgramOutOfRange),
		errors.Is(err, midi.ErrChannelOutOfRange),
		errors.Is(err, preset.ErrEmptyName),
		errors.Is(err, preset.ErrBankOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, midi.ErrDeviceNotFound),
		errors.Is(err, preset.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, midi.ErrNotConnected):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// midiStatus builds the connection status payload. "connected" is link
// state only; the patchbay never confirms which bank it is actually on.
func (s *Server) midiStatus() map[string]interface{} {
	device := s.transport.Device()
	if device == "" {
		device = s.cfg.Snapshot().MIDI.Device
	}
	return map[string]interface{}{
		"connected":          s.transport.Connected(),
		"device":             device,
		"channel":            s.engine.Channel(),
		"available_devices":  s.transport.ListOutputs(),
		"last_recalled_bank": s.engine.LastRecalledBank(),
	}
}
