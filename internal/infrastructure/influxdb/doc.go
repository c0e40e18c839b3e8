// Package influxdb wraps the InfluxDB v2 client for the optional event
// history sink.
//
// When enabled, the gateway records alarm transitions, reed sensor
// events and storage snapshots as time series, so an install can answer
// "when did the garage door last open" without the backend keeping
// history. Writes are non-blocking and batched; a down InfluxDB never
// stalls the gateway, it only loses history.
package influxdb
