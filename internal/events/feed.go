package events

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/homeguard-gateway/internal/device"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/mqtt"
)

// ReedApplier receives live reed transitions. Satisfied by the device
// service.
type ReedApplier interface {
	ApplyReedState(state device.ReedState)
}

// AlarmApplier receives observed alarm group transitions. Satisfied by
// the alarm service.
type AlarmApplier interface {
	ApplyObserved(id int64, active bool)
}

// History records feed events for later querying. Satisfied by the
// InfluxDB client; nil disables recording.
type History interface {
	WriteReedEvent(gpioPin int, open bool)
	WriteAlarmEvent(groupID int64, groupName string, active bool)
}

// Subscriber is the piece of the MQTT client the feed needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// reedPayload is the devices-manager's reed state message.
type reedPayload struct {
	State string `json:"state"` // "open" or "closed"
}

// alarmPayload is the devices-manager's alarm state message.
type alarmPayload struct {
	Active    bool   `json:"is_active"`
	GroupName string `json:"group_name"`
}

// Feed subscribes to the event topics and dispatches messages. Handler
// errors propagate to the MQTT client, which logs them.
type Feed struct {
	reeds   ReedApplier
	alarms  AlarmApplier
	history History
	topics  mqtt.Topics
}

// NewFeed creates a feed dispatcher. history may be nil.
func NewFeed(reeds ReedApplier, alarms AlarmApplier, history History) *Feed {
	return &Feed{
		reeds:   reeds,
		alarms:  alarms,
		history: history,
	}
}

// Start subscribes to both event topics on the given client.
func (f *Feed) Start(client Subscriber, qos byte) error {
	if err := client.Subscribe(f.topics.AllReedStates(), qos, f.HandleReed); err != nil {
		return fmt.Errorf("subscribing to reed feed: %w", err)
	}
	if err := client.Subscribe(f.topics.AllAlarmStates(), qos, f.HandleAlarm); err != nil {
		return fmt.Errorf("subscribing to alarm feed: %w", err)
	}
	return nil
}

// HandleReed processes one reed state message.
func (f *Feed) HandleReed(topic string, payload []byte) error {
	pin, ok := f.topics.ParseReedTopic(topic)
	if !ok {
		return fmt.Errorf("unparseable reed topic %q", topic)
	}

	var msg reedPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding reed payload on %q: %w", topic, err)
	}
	if msg.State != "open" && msg.State != "closed" {
		return fmt.Errorf("unknown reed state %q on %q", msg.State, topic)
	}

	open := msg.State == "open"
	f.reeds.ApplyReedState(device.ReedState{GPIOPin: pin, Open: open})
	if f.history != nil {
		f.history.WriteReedEvent(pin, open)
	}
	return nil
}

// HandleAlarm processes one alarm group state message.
func (f *Feed) HandleAlarm(topic string, payload []byte) error {
	groupID, ok := f.topics.ParseAlarmTopic(topic)
	if !ok {
		return fmt.Errorf("unparseable alarm topic %q", topic)
	}

	var msg alarmPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding alarm payload on %q: %w", topic, err)
	}

	f.alarms.ApplyObserved(groupID, msg.Active)
	if f.history != nil {
		f.history.WriteAlarmEvent(groupID, msg.GroupName, msg.Active)
	}
	return nil
}
