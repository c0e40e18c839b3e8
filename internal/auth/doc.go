// Package auth models the backend's permission system on the gateway side.
//
// Permissions are a closed set of named capabilities granted per user by
// the auth service. The Gate caches the active session's grant set and
// answers authorisation checks without touching the network. The set is
// loaded wholesale when a session starts, reloaded when the current user
// edits their own account, and cleared on logout.
//
// Authorisation here is a first line of defence for predictable local
// failures. The backend enforces permissions authoritatively; a 403 from
// it means the local set was stale.
package auth
