// Package session manages the gateway's authenticated session with the
// security backend.
//
// A session is a bearer token plus an expiry. Standard logins expire
// after thirty minutes and arm a local timer that forces logout when it
// fires. "Remember me" logins never expire locally and arm no timer.
// Both durable facts, the token and its expiry, are persisted so a
// restart can restore a still-valid session without re-authenticating.
//
// Local expiry is a convenience, not the source of truth. A 401 from
// the backend forces logout regardless of what the local clock says.
package session
