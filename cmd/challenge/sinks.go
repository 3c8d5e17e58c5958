package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/challenge-tracker/internal/audit"
	"github.com/nerrad567/challenge-tracker/internal/broadcast"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/influxdb"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/mqtt"
)

// auditSource marks audit entries written by the live tracker.
const auditSource = "tracker"

// newAuditSink records every event in the audit trail.
func newAuditSink(repo audit.Repository) broadcast.Sink {
	return broadcast.SinkFunc(func(ctx context.Context, d broadcast.Delivery) error {
		ev := d.Event

		var details map[string]any
		if ev.Name != "" || ev.PostCount > 0 {
			details = make(map[string]any, 2)
			if ev.Name != "" {
				details["name"] = ev.Name
			}
			if ev.PostCount > 0 {
				details["post_count"] = ev.PostCount
			}
		}

		entry := &audit.Entry{
			Kind:          string(ev.Kind),
			ParticipantID: ev.ParticipantID,
			Task:          int(ev.Task),
			Source:        auditSource,
			Details:       details,
			CreatedAt:     ev.At,
		}
		if err := repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("recording audit entry: %w", err)
		}
		return nil
	})
}

// mqttPublisher is the part of *mqtt.Client the mirror sink uses.
type mqttPublisher interface {
	Topics() mqtt.Topics
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
}

// newMQTTSink mirrors the snapshot to the retained state topic and the
// event to its per-kind topic.
func newMQTTSink(pub mqttPublisher) broadcast.Sink {
	return broadcast.SinkFunc(func(_ context.Context, d broadcast.Delivery) error {
		topics := pub.Topics()

		if err := pub.PublishRetained(topics.State(), d.Data); err != nil {
			return fmt.Errorf("publishing state: %w", err)
		}

		payload, err := json.Marshal(d.Event)
		if err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
		if err := pub.PublishEvent(topics.Event(string(d.Event.Kind)), payload); err != nil {
			return fmt.Errorf("publishing event: %w", err)
		}
		return nil
	})
}

// eventWriter is the part of *influxdb.Client the telemetry sink uses.
type eventWriter interface {
	WriteTaskEvent(ev influxdb.TaskEvent)
}

// newInfluxSink writes one point per event. Writes are batched by the
// client, so Deliver never blocks on the network.
func newInfluxSink(w eventWriter) broadcast.Sink {
	return broadcast.SinkFunc(func(_ context.Context, d broadcast.Delivery) error {
		w.WriteTaskEvent(influxdb.TaskEvent{
			Kind:          string(d.Event.Kind),
			ParticipantID: d.Event.ParticipantID,
			Task:          int(d.Event.Task),
			PostCount:     d.Event.PostCount,
			Participants:  len(d.Snapshot.Participants),
			At:            d.Event.At,
		})
		return nil
	})
}
