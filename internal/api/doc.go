// Package api implements the HTTP API and live feed transports for the challenge tracker.
//
// This package provides:
//   - Registration and the six per-participant task endpoints
//   - Admin endpoints (switch task, reset, remove, audit trail)
//   - Live snapshots over Server-Sent Events and WebSocket, plus a JSON pull
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// Handlers translate HTTP into tracker calls and tracker errors into status
// codes. Every accepted mutation reaches the broadcast hub through the
// tracker's observer hook; the transports here only subscribe to the hub and
// write frames. A transport sends the current snapshot first and then skips
// any queued frame that is not newer than it.
//
// # Security
//
// Admin routes accept a shared bearer token when admin.token is configured
// and are open otherwise. Challenge credentials are part of the exercise and
// are not treated as secrets.
//
// # Graceful Degradation
//
// The audit trail, MQTT and InfluxDB are optional. Without them the API works
// unchanged; only /api/admin/audit reports the trail as disabled.
package api
