package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// writeSSEData writes one SSE message carrying a JSON document.
// Marshalled JSON never contains raw newlines, so one data line suffices.
func writeSSEData(w io.Writer, data []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// handleEvents streams snapshots as Server-Sent Events.
//
// The current snapshot is sent immediately, then one message per state
// change. A slow reader skips intermediate snapshots rather than stalling
// the tracker. The stream ends when the client disconnects or the hub
// shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before reading the snapshot so no change falls between them.
	sub := s.hub.Subscribe()
	defer sub.Close()

	snap := s.tracker.Snapshot()
	initial, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("encoding snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeSSEData(w, initial); err != nil {
		return
	}
	flusher.Flush()

	var heartbeat <-chan time.Time
	if s.eventsCfg.HeartbeatInterval > 0 {
		ticker := time.NewTicker(time.Duration(s.eventsCfg.HeartbeatInterval) * time.Second)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	s.logger.Debug("event stream opened", "subscribers", s.hub.SubscriberCount())

	last := snap.Version
	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("event stream closed by client")
			return
		case <-sub.Done():
			return
		case frame := <-sub.C():
			if frame.Version <= last {
				continue
			}
			last = frame.Version
			if err := writeSSEData(w, frame.Data); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat:
			if _, err := io.WriteString(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
