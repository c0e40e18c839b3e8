package auth

// Permission represents a named capability granted by the backend.
// The values match the names the auth service returns from its
// permissions endpoint.
type Permission string

// Permission constants. The set is closed: names outside this list are
// ignored when loading a grant set.
const (
	PermUserManager         Permission = "USER_MANAGER"
	PermStartAlarm          Permission = "START_ALARM"
	PermStopAlarm           Permission = "STOP_ALARM"
	PermAccessRecordings    Permission = "ACCESS_RECORDINGS"
	PermAccessStreamCameras Permission = "ACCESS_STREAM_CAMERAS"
	PermChangeAlarmSound    Permission = "CHANGE_ALARM_SOUND"
	PermChangeMailConfig    Permission = "CHANGE_MAIL_CONFIG"
	PermModifyDevices       Permission = "MODIFY_DEVICES"
)

// allPermissions is the closed set of recognised permissions.
var allPermissions = map[Permission]struct{}{
	PermUserManager:         {},
	PermStartAlarm:          {},
	PermStopAlarm:           {},
	PermAccessRecordings:    {},
	PermAccessStreamCameras: {},
	PermChangeAlarmSound:    {},
	PermChangeMailConfig:    {},
	PermModifyDevices:       {},
}

// All returns every recognised permission. The slice is a fresh copy and
// safe for the caller to modify.
func All() []Permission {
	perms := make([]Permission, 0, len(allPermissions))
	for p := range allPermissions {
		perms = append(perms, p)
	}
	return perms
}

// AllNames returns every recognised permission name as a string slice,
// suitable for the first-user registration payload.
func AllNames() []string {
	names := make([]string, 0, len(allPermissions))
	for p := range allPermissions {
		names = append(names, string(p))
	}
	return names
}

// Valid reports whether the permission is part of the recognised set.
func (p Permission) Valid() bool {
	_, ok := allPermissions[p]
	return ok
}

// ParseSet converts backend permission names into a membership set.
// Unrecognised names are dropped; possession of a permission the gateway
// does not know about cannot gate anything.
func ParseSet(names []string) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(names))
	for _, name := range names {
		p := Permission(name)
		if p.Valid() {
			set[p] = struct{}{}
		}
	}
	return set
}
