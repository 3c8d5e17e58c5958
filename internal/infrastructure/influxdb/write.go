package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementEvents is the measurement written for every state change.
const MeasurementEvents = "challenge_events"

// TaskEvent is one state change as recorded in InfluxDB.
type TaskEvent struct {
	Kind          string
	ParticipantID string // empty for session-wide events
	Task          int    // 0 when the event is not task-scoped
	PostCount     int
	Participants  int // registered participants after the change
	At            time.Time
}

// eventPoint converts ev into a point. Only non-empty tags are set so
// session-wide events do not create empty-string series.
func eventPoint(ev TaskEvent) *write.Point {
	tags := map[string]string{"kind": ev.Kind}
	if ev.Task > 0 {
		tags["task"] = strconv.Itoa(ev.Task)
	}
	if ev.ParticipantID != "" {
		tags["participant_id"] = ev.ParticipantID
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	return write.NewPoint(
		MeasurementEvents,
		tags,
		map[string]any{
			"post_count":   ev.PostCount,
			"participants": ev.Participants,
		},
		at,
	)
}

// WriteTaskEvent queues ev for the next batch. Non-blocking; dropped when
// the client is not connected.
func (c *Client) WriteTaskEvent(ev TaskEvent) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(eventPoint(ev))
}
