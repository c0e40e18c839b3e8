package auth

import "errors"

// Sentinel errors for the auth package.
// Use errors.Is to check for these.
var (
	// ErrPermissionDenied indicates the active session lacks a required
	// permission. Returned locally, before any backend request is made.
	ErrPermissionDenied = errors.New("auth: permission denied")

	// ErrPermissionLoad indicates the permission set could not be
	// fetched from the backend.
	ErrPermissionLoad = errors.New("auth: loading permissions failed")
)
