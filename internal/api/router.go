package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no session required)
		r.Get("/health", s.handleHealth)

		// Session establishment and first-run setup (no session required)
		r.Post("/session/login", s.handleLogin)
		r.Get("/system/is-initialized", s.handleIsInitialized)
		r.Post("/system/first-user", s.handleRegisterFirstUser)

		// Everything else requires an active backend session
		r.Group(func(r chi.Router) {
			r.Use(s.sessionMiddleware)

			r.Get("/session", s.handleGetSession)
			r.Delete("/session", s.handleLogout)
			r.Get("/permissions", s.handleListPermissions)

			// Alarm group endpoints
			r.Route("/alarm-groups", func(r chi.Router) {
				r.Get("/", s.handleListGroups)
				r.Post("/", s.handleCreateGroup)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", s.handleUpdateGroup)
					r.Delete("/", s.handleDeleteGroup)
					r.Post("/activate", s.handleActivateGroup)
					r.Post("/deactivate", s.handleDeactivateGroup)
				})
			})

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleInventory)

				r.Route("/cameras", func(r chi.Router) {
					r.Get("/", s.handleListCameras)
					r.Post("/", s.handleCreateCamera)
					r.Put("/{id}", s.handleUpdateCamera)
					r.Delete("/{id}", s.handleDeleteCamera)
				})

				r.Route("/reeds", func(r chi.Router) {
					r.Get("/", s.handleListReeds)
					r.Post("/", s.handleCreateReed)
					r.Get("/states", s.handleReedStates)
					r.Put("/{id}", s.handleUpdateReed)
					r.Delete("/{id}", s.handleDeleteReed)
					r.Get("/{pin}/status", s.handleReedStatus)
				})
			})

			// Recording endpoints
			r.Route("/recordings", func(r chi.Router) {
				r.Get("/", s.handleListRecordings)
				r.Get("/storage", s.handleStorage)
				r.Delete("/{id}", s.handleDeleteRecording)
			})

			// User endpoints
			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
				r.Get("/me", s.handleCurrentUser)
				r.Put("/{id}", s.handleUpdateUser)
				r.Delete("/{id}", s.handleDeleteUser)
			})

			// Notification config endpoints
			r.Route("/config", func(r chi.Router) {
				r.Get("/email", s.handleGetEmail)
				r.Put("/email", s.handlePutEmail)
				r.Delete("/email", s.handleDeleteEmail)
				r.Get("/audio", s.handleGetAudio)
				r.Put("/audio", s.handlePutAudio)
				r.Delete("/audio", s.handleDeleteAudio)
			})

			// WebSocket (session enforced by middleware)
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// pathID extracts and parses the named integer URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
