// Package backend provides the HTTP client for the remote security backend.
//
// The backend is two services behind one base URL:
//
//   - /auth-service            — token issuance, current user, permissions,
//     first-operator registration
//   - /devices-manager-service — device groups, cameras, reeds, recordings,
//     storage, configuration
//
// The client owns transport concerns only: bearer-token injection, request
// correlation IDs, JSON/form encoding, and classification of failures into
// the gateway's error taxonomy. Resource semantics (caching, permission
// gating, reconciliation) live in the domain packages; they call the generic
// request helpers here.
//
// A 401 from any protected call is authoritative: the configured
// OnUnauthorized hook fires before the error is returned, so the session
// manager can tear the session down regardless of the local expiry timer.
//
// The client never retries. A failed request surfaces exactly one typed
// error and the caller decides what to do.
package backend
