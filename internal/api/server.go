package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/challenge-tracker/internal/audit"
	"github.com/nerrad567/challenge-tracker/internal/broadcast"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/config"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/database"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/influxdb"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/logging"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/mqtt"
	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	Events    config.EventsConfig
	Admin     config.AdminConfig
	Dashboard config.DashboardConfig
	Logger    *logging.Logger
	Tracker   *tracker.Tracker
	Hub       *broadcast.Hub

	// Optional. Nil disables the audit endpoint and drops the component
	// from health and metrics output.
	Audit    audit.Repository
	DB       *database.DB
	MQTT     *mqtt.Client
	InfluxDB *influxdb.Client

	Version string
}

// Server is the HTTP API server for the challenge tracker.
//
// It owns the router, the optional listener and the live feed transports.
// The router is built by New, so Handler can be mounted by an external
// host without calling Start.
type Server struct {
	cfg        config.APIConfig
	eventsCfg  config.EventsConfig
	adminToken string
	dashDir    string
	logger     *logging.Logger
	tracker    *tracker.Tracker
	hub        *broadcast.Hub
	audit      audit.Repository
	db         *database.DB
	mqtt       *mqtt.Client
	influx     *influxdb.Client
	version    string
	startTime  time.Time
	handler    http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server does not listen until Start is called.
//
// Parameters:
//   - deps: Logger, Tracker and Hub are required; the rest is optional
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("tracker is required")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("broadcast hub is required")
	}

	s := &Server{
		cfg:        deps.Config,
		eventsCfg:  deps.Events,
		adminToken: deps.Admin.Token,
		dashDir:    deps.Dashboard.Dir,
		logger:     deps.Logger.With("component", "api"),
		tracker:    deps.Tracker,
		hub:        deps.Hub,
		audit:      deps.Audit,
		db:         deps.DB,
		mqtt:       deps.MQTT,
		influx:     deps.InfluxDB,
		version:    deps.Version,
		startTime:  time.Now(),
	}
	s.handler = s.buildRouter()

	return s, nil
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for HTTP connections.
//
// The listener is bound synchronously so a busy port is reported to the
// caller; serving happens in a background goroutine. With api.no_listen set
// Start only logs, leaving Handler to whoever owns the listener.
//
// Parameters:
//   - ctx: Context for cancellation (not used for listener lifetime)
//
// Returns:
//   - error: If the listener cannot be bound
func (s *Server) Start(_ context.Context) error {
	if s.cfg.NoListen {
		s.logger.Info("listener disabled, handler must be mounted externally")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	// No WriteTimeout: /api/events and /api/ws hold responses open.
	srv := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.mu.Lock()
	s.server = srv
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address, or "" before Start or with
// the listener disabled.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete. Streaming
// responses end when the hub closes their subscriptions.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the server is accepting connections.
func (s *Server) HealthCheck(ctx context.Context) error {
	addr := s.Addr()
	if addr == "" {
		if s.cfg.NoListen {
			return nil
		}
		return fmt.Errorf("API server not started")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("API server health check: %w", err)
	}
	return conn.Close()
}
