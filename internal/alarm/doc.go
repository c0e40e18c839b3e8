// Package alarm manages alarm groups and their armed state.
//
// An alarm group is a named set of sensors the backend listens to as a
// unit. Arming and disarming are independently gated operations with
// their own backend endpoints; the cached active flag flips only after
// the backend confirmed the transition.
package alarm
