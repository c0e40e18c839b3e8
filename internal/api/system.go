package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/homeguard-gateway/internal/backend"
)

// handleIsInitialized reports whether the backend has at least one user.
// Installers use this on first boot to decide whether to show setup.
func (s *Server) handleIsInitialized(w http.ResponseWriter, r *http.Request) {
	initialized, err := s.backend.IsInitialized(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"initialized": initialized})
}

// handleRegisterFirstUser creates the initial admin account. The backend
// only honours this before any user exists, so no session is required.
func (s *Server) handleRegisterFirstUser(w http.ResponseWriter, r *http.Request) {
	var first backend.FirstUser
	if err := json.NewDecoder(r.Body).Decode(&first); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if first.Email == "" || first.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	if err := s.backend.RegisterFirstUser(r.Context(), first); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}
