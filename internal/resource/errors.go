package resource

import "errors"

// Sentinel errors for the resource package.
// Use errors.Is to check for these.
var (
	// ErrNotFound indicates the targeted entity is not in the local
	// cache. Returned before any backend request is made.
	ErrNotFound = errors.New("resource: not found")

	// ErrInvalidID indicates a mutation targeted the zero ID, which
	// marks an entity the backend never assigned an identity to.
	ErrInvalidID = errors.New("resource: invalid id")
)
