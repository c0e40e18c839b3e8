// Package device manages the two hardware inventories of a HomeGuard
// install: RTSP cameras and magnetic reed sensors.
//
// Both inventories are backend-owned collections cached through the
// shared resource store, with all modification gated by the device
// management permission. Reed open/closed state is an overlay on top of
// the inventory: it arrives live over MQTT or on demand from the
// backend, and never touches the cached inventory entries themselves.
package device
