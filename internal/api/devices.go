package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homeguard-gateway/internal/device"
)

// handleInventory refreshes both device inventories from the backend and
// returns cameras and reeds together with the live reed state overlay.
func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	inv := s.devices.Inventory()
	writeJSON(w, http.StatusOK, map[string]any{
		"cameras":     inv.Cameras,
		"reeds":       inv.Reeds,
		"reed_states": s.devices.ReedStates(),
	})
}

func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	cameras := s.devices.Cameras()
	writeJSON(w, http.StatusOK, map[string]any{
		"cameras": cameras,
		"count":   len(cameras),
	})
}

func (s *Server) handleCreateCamera(w http.ResponseWriter, r *http.Request) {
	var camera device.RTSPCamera
	if err := json.NewDecoder(r.Body).Decode(&camera); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if camera.Name == "" || camera.IP == "" {
		writeBadRequest(w, "name and ip are required")
		return
	}

	created, err := s.devices.CreateCamera(r.Context(), camera)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCamera(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid camera id")
		return
	}

	var camera device.RTSPCamera
	if err := json.NewDecoder(r.Body).Decode(&camera); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	camera.ID = id

	updated, err := s.devices.UpdateCamera(r.Context(), camera)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCamera(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid camera id")
		return
	}

	if err := s.devices.DeleteCamera(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListReeds(w http.ResponseWriter, r *http.Request) {
	if err := s.devices.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	reeds := s.devices.Reeds()
	writeJSON(w, http.StatusOK, map[string]any{
		"reeds": reeds,
		"count": len(reeds),
	})
}

func (s *Server) handleCreateReed(w http.ResponseWriter, r *http.Request) {
	var reed device.MagneticReed
	if err := json.NewDecoder(r.Body).Decode(&reed); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if reed.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	created, err := s.devices.CreateReed(r.Context(), reed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateReed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid reed id")
		return
	}

	var reed device.MagneticReed
	if err := json.NewDecoder(r.Body).Decode(&reed); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	reed.ID = id

	updated, err := s.devices.UpdateReed(r.Context(), reed)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteReed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid reed id")
		return
	}

	if err := s.devices.DeleteReed(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleReedStatus probes the backend for the live open/closed state of a
// single reed, identified by GPIO pin.
func (s *Server) handleReedStatus(w http.ResponseWriter, r *http.Request) {
	pin, err := strconv.Atoi(chi.URLParam(r, "pin"))
	if err != nil {
		writeBadRequest(w, "invalid gpio pin")
		return
	}

	state, err := s.devices.ReedStatus(r.Context(), pin)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleReedStates returns the last observed open/closed state per GPIO
// pin. States accumulate from status probes and the MQTT feed.
func (s *Server) handleReedStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"states": s.devices.ReedStates(),
	})
}
