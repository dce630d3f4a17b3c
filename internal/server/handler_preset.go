package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/s0wingseason/Digital-Patchbay/internal/preset"
)

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"presets": s.presets.List(),
	})
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string        `json:"name"`
		BankNumber    int           `json:"bank_number"`
		Description   string        `json:"description"`
		RoutingMatrix map[int][]int `json:"routing_matrix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	created, err := s.presets.Create(req.Name, req.BankNumber, req.Description, req.RoutingMatrix)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"preset":  created,
	})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"preset": p})
}

func (s *Server) handleGetPresetByBank(w http.ResponseWriter, r *http.Request) {
	bank, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "bank number must be an integer",
		})
		return
	}

	p, err := s.presets.GetByBank(bank)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"preset": p})
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          *string       `json:"name"`
		BankNumber    *int          `json:"bank_number"`
		Description   *string       `json:"description"`
		RoutingMatrix map[int][]int `json:"routing_matrix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid JSON body",
		})
		return
	}

	updated, err := s.presets.Update(r.PathValue("id"), preset.Update{
		Name:          req.Name,
		BankNumber:    req.BankNumber,
		Description:   req.Description,
		RoutingMatrix: req.RoutingMatrix,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"preset":  updated,
	})
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.presets.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleRecallPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.presets.Recall(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"preset":  p,
		"message": fmt.Sprintf("Recalled '%s' (Bank %d)", p.Name, p.BankNumber),
	})
}
