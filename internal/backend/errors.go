package backend

import "errors"

// Error taxonomy for backend calls.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, backend.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrAuthentication is returned on bad credentials, a rejected token (401),
	// or a token response missing the access_token field.
	ErrAuthentication = errors.New("backend: authentication failed")

	// ErrForbidden is returned when the backend refuses an action with 403.
	// Gated callers should never see this — the local permission gate denies
	// before dispatch — but a backend-side policy change can still produce it.
	ErrForbidden = errors.New("backend: forbidden")

	// ErrNotFound is returned when the backend reports the entity missing (404).
	ErrNotFound = errors.New("backend: not found")

	// ErrValidation is returned when the backend rejects a malformed draft (400/422).
	ErrValidation = errors.New("backend: validation failed")

	// ErrNetwork is returned for transport failures and any non-2xx status
	// not otherwise classified.
	ErrNetwork = errors.New("backend: request failed")
)
