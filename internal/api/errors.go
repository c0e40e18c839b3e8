package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/backend"
	"github.com/nerrad567/homeguard-gateway/internal/resource"
	"github.com/nerrad567/homeguard-gateway/internal/session"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUpstream     = "upstream_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError translates errors from the service layer into HTTP
// responses. Backend sentinel errors map onto the upstream status that
// produced them; permission denials from the local gate map to 403 without
// a round trip having occurred.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrAuthentication), errors.Is(err, session.ErrNoSession):
		writeUnauthorized(w, err.Error())
	case errors.Is(err, auth.ErrPermissionDenied), errors.Is(err, backend.ErrForbidden):
		writeError(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, resource.ErrNotFound), errors.Is(err, backend.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, resource.ErrInvalidID):
		writeBadRequest(w, err.Error())
	case errors.Is(err, backend.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	case errors.Is(err, backend.ErrNetwork):
		writeError(w, http.StatusBadGateway, ErrCodeUpstream, err.Error())
	default:
		writeInternalError(w, err.Error())
	}
}
