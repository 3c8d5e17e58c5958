// Package mqtt mirrors challenge tracker state onto an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
// All topics live under a configurable prefix (default "challenge"):
//
//	{prefix}/state            retained full snapshot, same JSON as GET /api/state
//	{prefix}/events/{kind}    one message per state change
//	{prefix}/system/status    retained online/offline status (LWT)
//
// Room displays, stream overlays and home-automation dashboards can follow
// a session by subscribing to {prefix}/state without touching the HTTP API.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.PublishRetained(client.Topics().State(), snapshotJSON)
package mqtt
