// Package mqtt wraps paho.mqtt.golang for the optional live event feed.
//
// The devices-manager publishes reed sensor transitions and alarm group
// state changes to the broker; the gateway subscribes so connected
// dashboards see hardware events without polling. The feed is an
// optimisation, not a source of truth: every fact it carries can also
// be fetched over HTTP, and the gateway runs fine with MQTT disabled.
//
// The client tracks its subscriptions and restores them after a
// reconnect, so a broker restart does not silently stop the feed.
package mqtt
