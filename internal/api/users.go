package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/homeguard-gateway/internal/user"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	users := s.users.Users()
	writeJSON(w, http.StatusOK, map[string]any{
		"users": users,
		"count": len(users),
	})
}

// handleCurrentUser returns the identity behind the gateway session.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	current, err := s.users.Current(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var u user.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if u.Username == "" || u.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	created, err := s.users.Create(r.Context(), u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateUser updates a user. When the target is the session's own
// user the service reloads the permission gate afterwards, so a permission
// change takes effect without re-login.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	var u user.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	u.ID = id

	updated, err := s.users.Update(r.Context(), u)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDeleteUser deletes a user. Deleting the session's own user ends
// the gateway session.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid user id")
		return
	}

	if err := s.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
