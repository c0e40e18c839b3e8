package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nerrad567/homeguard-gateway/internal/alarm"
)

// handleListGroups refreshes the alarm group cache from the backend and
// returns it.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	if err := s.alarms.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	groups := s.alarms.Groups()
	writeJSON(w, http.StatusOK, map[string]any{
		"groups": groups,
		"count":  len(groups),
	})
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var group alarm.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if group.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	created, err := s.alarms.Create(r.Context(), group)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid group id")
		return
	}

	var group alarm.Group
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	group.ID = id

	updated, err := s.alarms.Update(r.Context(), group)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid group id")
		return
	}

	if err := s.alarms.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleActivateGroup arms a group. Activating an already-active group
// succeeds without a backend round trip.
func (s *Server) handleActivateGroup(w http.ResponseWriter, r *http.Request) {
	s.transitionGroup(w, r, s.alarms.Activate)
}

// handleDeactivateGroup disarms a group.
func (s *Server) handleDeactivateGroup(w http.ResponseWriter, r *http.Request) {
	s.transitionGroup(w, r, s.alarms.Deactivate)
}

func (s *Server) transitionGroup(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (alarm.Group, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid group id")
		return
	}

	group, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}
