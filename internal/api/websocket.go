package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// upgrader configures the WebSocket upgrade.
// Origin checks follow the CORS policy: the dashboard may be hosted anywhere.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleWebSocket pushes snapshots over a WebSocket.
//
// Frames are the same JSON documents /api/events sends, one text message
// each. Client messages are read and discarded; the read loop exists to
// process pongs and detect disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sub := s.hub.Subscribe()
	defer sub.Close()

	snap := s.tracker.Snapshot()
	initial, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("encoding snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	pingInterval := time.Duration(s.eventsCfg.PingInterval) * time.Second
	pongWait := time.Duration(s.eventsCfg.PongTimeout) * time.Second
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	if pongWait <= 0 {
		pongWait = 10 * time.Second
	}

	closed := make(chan struct{})
	go s.wsReadPump(conn, pingInterval+pongWait, closed)

	//nolint:errcheck // Best-effort deadline; write error caught below
	conn.SetWriteDeadline(time.Now().Add(pongWait))
	if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	last := snap.Version
	for {
		select {
		case <-closed:
			return
		case <-sub.Done():
			//nolint:errcheck // Best-effort close message
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			return
		case frame := <-sub.C():
			if frame.Version <= last {
				continue
			}
			last = frame.Version
			//nolint:errcheck // Best-effort deadline; write error caught below
			conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame.Data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			conn.SetWriteDeadline(time.Now().Add(pongWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// wsReadPump reads until the connection fails, then closes done.
// Any message or pong extends the read deadline.
func (s *Server) wsReadPump(conn *websocket.Conn, wait time.Duration, done chan<- struct{}) {
	defer close(done)

	if s.eventsCfg.MaxMessageSize > 0 {
		conn.SetReadLimit(int64(s.eventsCfg.MaxMessageSize))
	}
	//nolint:errcheck // Best-effort deadline on connection setup
	conn.SetReadDeadline(time.Now().Add(wait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			} else {
				s.logger.Debug("websocket closed", "error", err)
			}
			return
		}
		//nolint:errcheck // Best-effort deadline reset
		conn.SetReadDeadline(time.Now().Add(wait))
	}
}
