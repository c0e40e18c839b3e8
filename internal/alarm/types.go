package alarm

// Device is a sensor attached to an alarm group, as the backend
// embeds it in group payloads.
type Device struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group is an alarm group: a named set of sensors armed and disarmed
// as a unit. Active mirrors the backend's listening state.
type Group struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Devices []Device `json:"devices"`
	Active  bool     `json:"is_active"`
}
