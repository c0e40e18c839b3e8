package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteAlarmEvent records an alarm group transition.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - groupID: The alarm group's backend ID
//   - groupName: The group name at the time of the event
//   - active: Whether the group was armed or disarmed
func (c *Client) WriteAlarmEvent(groupID int64, groupName string, active bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"alarm_events",
		map[string]string{
			"group_id": strconv.FormatInt(groupID, 10),
		},
		map[string]interface{}{
			"group_name": groupName,
			"active":     active,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteReedEvent records a reed sensor open/close transition.
//
// Parameters:
//   - gpioPin: The sensor's GPIO pin number
//   - open: Whether the contact opened or closed
func (c *Client) WriteReedEvent(gpioPin int, open bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"reed_events",
		map[string]string{
			"gpio_pin": strconv.Itoa(gpioPin),
		},
		map[string]interface{}{
			"open": open,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteStorageSnapshot records the recorder's disk usage in bytes.
//
// Parameters:
//   - used, free, total: The recorder's space figures
func (c *Client) WriteStorageSnapshot(used, free, total int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"recorder_storage",
		nil,
		map[string]interface{}{
			"used_space":  used,
			"free_space":  free,
			"total_space": total,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}
