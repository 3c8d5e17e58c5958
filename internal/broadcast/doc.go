// Package broadcast fans tracker state changes out to live observers and
// to slower sinks.
//
// Subscribers (dashboard connections) each hold a Subscription with a
// single-slot mailbox. A new frame replaces an unread stale one, so a slow
// reader always sees the latest state and never holds up the tracker.
//
// Sinks (MQTT mirror, InfluxDB, audit trail) receive every Delivery on the
// hub's own goroutine via a bounded queue. When the queue is full the
// delivery is dropped and logged.
package broadcast
