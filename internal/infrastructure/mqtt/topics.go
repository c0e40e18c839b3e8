package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

// Topic layout of the devices-manager event feed:
//
//	homeguard/reed/{gpio_pin}/state    reed open/closed transitions
//	homeguard/alarm/{group_id}/state   alarm group armed/disarmed
//	homeguard/gateway/status           this gateway's presence (LWT)
//
// The numeric path segment identifies the sensor or group; payloads
// are JSON.
const topicPrefix = "homeguard"

// Topics builds and parses the feed's topic strings.
type Topics struct{}

// GatewayStatus is the gateway's own presence topic, used for the LWT
// and graceful shutdown messages.
func (Topics) GatewayStatus() string {
	return topicPrefix + "/gateway/status"
}

// AllReedStates matches every reed sensor's state topic.
func (Topics) AllReedStates() string {
	return topicPrefix + "/reed/+/state"
}

// AllAlarmStates matches every alarm group's state topic.
func (Topics) AllAlarmStates() string {
	return topicPrefix + "/alarm/+/state"
}

// ReedState is one sensor's state topic.
func (Topics) ReedState(gpioPin int) string {
	return fmt.Sprintf("%s/reed/%d/state", topicPrefix, gpioPin)
}

// AlarmState is one group's state topic.
func (Topics) AlarmState(groupID int64) string {
	return fmt.Sprintf("%s/alarm/%d/state", topicPrefix, groupID)
}

// ParseReedTopic extracts the GPIO pin from a reed state topic.
func (Topics) ParseReedTopic(topic string) (int, bool) {
	id, ok := parseIDSegment(topic, "reed")
	return int(id), ok
}

// ParseAlarmTopic extracts the group ID from an alarm state topic.
func (Topics) ParseAlarmTopic(topic string) (int64, bool) {
	return parseIDSegment(topic, "alarm")
}

// parseIDSegment validates prefix/kind/{id}/state and returns the ID.
func parseIDSegment(topic, kind string) (int64, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != topicPrefix || parts[1] != kind || parts[3] != "state" {
		return 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
