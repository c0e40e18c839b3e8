package api

import (
	"net/http"
)

// handleListRecordings refreshes the recording cache and returns completed
// recordings joined with their camera names, ordered by filename.
func (s *Server) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	if err := s.recordings.Refresh(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}

	recordings := s.recordings.RecordingsWithCameras()
	writeJSON(w, http.StatusOK, map[string]any{
		"recordings": recordings,
		"count":      len(recordings),
	})
}

func (s *Server) handleDeleteRecording(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "invalid recording id")
		return
	}

	if err := s.recordings.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleStorage returns recorder disk usage. Always probed live; storage
// numbers are not worth caching.
func (s *Server) handleStorage(w http.ResponseWriter, r *http.Request) {
	info, err := s.recordings.Storage(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
