// Package events routes the MQTT feed into the domain services.
//
// The feed carries two message kinds: reed sensor transitions and alarm
// group state changes. Each is applied to the matching service's cache,
// which in turn notifies its observers, and optionally recorded in the
// history sink. Malformed messages are dropped with a warning; a noisy
// broker must not corrupt gateway state.
package events
