package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nerrad567/homeguard-gateway/internal/session"
)

// loginRequest is the body for POST /session/login.
type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// sessionResponse describes the gateway's session state.
type sessionResponse struct {
	Active      bool     `json:"active"`
	Remembered  bool     `json:"remembered"`
	ExpiresAt   string   `json:"expires_at,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (s *Server) sessionResponse(state session.State, withPerms bool) sessionResponse {
	resp := sessionResponse{
		Active:     state.Active,
		Remembered: state.Remembered,
	}
	if !state.ExpiresAt.IsZero() {
		resp.ExpiresAt = state.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if withPerms {
		for _, p := range s.gate.List() {
			resp.Permissions = append(resp.Permissions, string(p))
		}
	}
	return resp
}

// handleLogin authenticates against the backend and establishes the
// gateway session. On success the permission set is loaded so subsequent
// requests can be gated locally.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	if err := s.sessions.Login(r.Context(), req.Username, req.Password, req.RememberMe); err != nil {
		writeServiceError(w, err)
		return
	}

	// A session without permissions is still a session; surface the load
	// failure in logs and let the client retry via GET /permissions.
	if err := s.gate.Load(r.Context()); err != nil {
		s.logger.Warn("permission load after login failed", "error", err)
	}

	writeJSON(w, http.StatusOK, s.sessionResponse(s.sessions.Current(), true))
}

// handleGetSession returns the current session state.
func (s *Server) handleGetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sessionResponse(s.sessions.Current(), true))
}

// handleLogout ends the session and clears the cached permission set.
// Logout is idempotent; a second call is a no-op.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.sessions.Logout()
	s.gate.Clear()
	writeJSON(w, http.StatusNoContent, nil)
}

// handleListPermissions returns the cached permission set. Passing
// ?reload=true refreshes it from the backend first.
func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("reload") == "true" {
		if err := s.gate.Load(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
	}

	perms := s.gate.List()
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"permissions": names,
		"count":       len(names),
	})
}
