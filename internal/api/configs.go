package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/homeguard-gateway/internal/notify"
)

// handleGetEmail returns the alert email configuration, or 404 when none
// has been set up yet.
func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.notify.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	cfg, ok := s.notify.Email()
	if !ok {
		writeNotFound(w, "email configuration not set")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handlePutEmail creates or replaces the email configuration. Whether the
// backend sees a create or an update depends on current presence.
func (s *Server) handlePutEmail(w http.ResponseWriter, r *http.Request) {
	var cfg notify.EmailConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if cfg.SMTPServer == "" || cfg.Sender == "" {
		writeBadRequest(w, "smtp_server and sender are required")
		return
	}

	saved, err := s.notify.SaveEmail(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteEmail(w http.ResponseWriter, r *http.Request) {
	if err := s.notify.RemoveEmail(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleGetAudio returns the alarm sound configuration, or 404 when none
// has been set up yet.
func (s *Server) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.notify.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	cfg, ok := s.notify.Audio()
	if !ok {
		writeNotFound(w, "audio configuration not set")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutAudio(w http.ResponseWriter, r *http.Request) {
	var cfg notify.AudioConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if cfg.Filename == "" {
		writeBadRequest(w, "filename is required")
		return
	}

	saved, err := s.notify.SaveAudio(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.notify.RemoveAudio(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
