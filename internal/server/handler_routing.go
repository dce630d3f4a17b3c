package server

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleGetRouting(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"routing": s.model.Snapshot(),
	})
}

func (s *Server) handlePutRouting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Routing map[int][]int `json:"routing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	s.model.LoadFrom(req.Routing)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"routing": s.model.Snapshot(),
	})
}

func (s *Server) handleToggleRouting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Input  int `json:"input"`
		Output int `json:"output"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}
	if req.Input < 1 || req.Output < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "input and output must be positive port numbers",
		})
		return
	}

	s.model.Toggle(req.Input, req.Output)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"routing": s.model.Snapshot(),
	})
}

func (s *Server) handleClearRouting(w http.ResponseWriter, r *http.Request) {
	s.model.Clear()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
