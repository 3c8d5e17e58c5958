// Package influxdb records challenge activity in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health monitoring.
//
// # Measurements
//
//	challenge_events   one point per state change
//	  tags:   kind, task, participant_id
//	  fields: post_count, participants
//
// Facilitators can chart completions per task over a session, or compare
// how fast a room gets through the speed round between workshops.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteTaskEvent(influxdb.TaskEvent{Kind: "task.completed", Task: 3, ...})
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// Write errors are delivered asynchronously via SetOnError.
package influxdb
