package session

import "errors"

// ErrNoSession indicates an operation that needs an active session was
// called without one. Use errors.Is to check for it.
var ErrNoSession = errors.New("session: no active session")
