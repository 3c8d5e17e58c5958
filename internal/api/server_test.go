package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/challenge-tracker/internal/broadcast"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/config"
	"github.com/nerrad567/challenge-tracker/internal/infrastructure/logging"
	"github.com/nerrad567/challenge-tracker/internal/task"
	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

const (
	testUser = "n8n"
	testPass = "rocks"
)

// testServer creates a Server over a fresh tracker and a running hub.
// mutate may adjust the dependencies before New is called.
func testServer(t *testing.T, mutate ...func(*Deps)) *Server {
	t.Helper()

	tr, err := tracker.New(tracker.Options{
		Catalog:     task.NewCatalog(testUser, testPass),
		Credentials: tracker.Credentials{Username: testUser, Password: testPass},
	})
	if err != nil {
		t.Fatalf("tracker.New() error: %v", err)
	}

	hub := broadcast.NewHub(broadcast.Options{})
	tr.AddObserver(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	deps := Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read: 5,
				Idle: 5,
			},
		},
		Events: config.EventsConfig{
			PingInterval:   30,
			PongTimeout:    10,
			MaxMessageSize: 4096,
		},
		Logger:  logging.Discard(),
		Tracker: tr,
		Hub:     hub,
		Version: "test",
	}
	for _, m := range mutate {
		m(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

// do sends one request through the router. headers are key/value pairs.
func do(t *testing.T, srv *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a JSON object response.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return body
}

// register creates a participant through the API and returns its id.
func register(t *testing.T, srv *Server, name string) string {
	t.Helper()

	w := do(t, srv, http.MethodPost, "/api/register", fmt.Sprintf(`{"name":%q}`, name))
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}
	id, _ := decodeBody(t, w)["id"].(string) //nolint:errcheck // checked below
	if id == "" {
		t.Fatalf("register returned no id: %s", w.Body.String())
	}
	return id
}

// activate switches the active task directly on the tracker.
func activate(t *testing.T, srv *Server, id task.ID) {
	t.Helper()
	if err := srv.tracker.SetActiveTask(id); err != nil {
		t.Fatalf("SetActiveTask(%d): %v", id, err)
	}
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// ─── Constructor Tests ─────────────────────────────────────────────

func TestNew_RequiredDeps(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name string
		deps Deps
	}{
		{"no logger", Deps{Tracker: srv.tracker, Hub: srv.hub}},
		{"no tracker", Deps{Logger: logging.Discard(), Hub: srv.hub}},
		{"no hub", Deps{Logger: logging.Discard(), Tracker: srv.tracker}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() expected error, got nil")
			}
		})
	}
}

// ─── Health Endpoint Tests ─────────────────────────────────────────

func TestHealth(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/json")
	}

	resp := decodeBody(t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["version"] != "test" {
		t.Errorf("version = %v, want test", resp["version"])
	}
}

// ─── Metrics Tests ─────────────────────────────────────────────────

func TestMetrics(t *testing.T) {
	srv := testServer(t)
	id := register(t, srv, "Ada")
	do(t, srv, http.MethodGet, "/api/player/"+id+"/task1", "")

	w := do(t, srv, http.MethodGet, "/api/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}

	var m SystemMetrics
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Version != "test" {
		t.Errorf("Version = %q, want test", m.Version)
	}
	if m.Runtime.Goroutines == 0 {
		t.Error("Runtime.Goroutines = 0")
	}
	if m.Tracker.ActiveTask != 1 || m.Tracker.Participants != 1 {
		t.Errorf("Tracker = %+v, want active 1 with 1 participant", m.Tracker)
	}
	if m.Tracker.Completions["task1"] != 1 {
		t.Errorf("Completions[task1] = %d, want 1", m.Tracker.Completions["task1"])
	}
	if m.Broadcast.Frames < 2 {
		t.Errorf("Broadcast.Frames = %d, want at least 2", m.Broadcast.Frames)
	}
	if m.MQTT != nil || m.InfluxDB != nil || m.Database != nil {
		t.Error("optional components reported without being configured")
	}
}

// ─── Middleware Tests ──────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/health", "", "X-Request-ID", "client-id-123")
	if got := w.Header().Get("X-Request-ID"); got != "client-id-123" {
		t.Errorf("X-Request-ID = %q, want %q", got, "client-id-123")
	}
}

func TestCORS_Preflight(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodOptions, "/api/register", "", "Origin", "http://participant.example")
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://participant.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestCORS_RestrictedOrigins(t *testing.T) {
	srv := testServer(t, func(d *Deps) {
		d.Config.CORS.AllowedOrigins = []string{"http://dashboard.example"}
	})

	w := do(t, srv, http.MethodGet, "/api/health", "", "Origin", "http://elsewhere.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want empty for disallowed origin", got)
	}

	w = do(t, srv, http.MethodGet, "/api/health", "", "Origin", "http://dashboard.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://dashboard.example" {
		t.Errorf("Access-Control-Allow-Origin = %q, want allowed origin echoed", got)
	}
}

func TestBodySizeLimit(t *testing.T) {
	srv := testServer(t)
	id := register(t, srv, "Ada")
	activate(t, srv, task.PictureTime)

	body := `{"image":"` + strings.Repeat("A", maxRequestBodySize) + `"}`
	w := do(t, srv, http.MethodPost, "/api/player/"+id+"/task6", body)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want %d", w.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestRecovery(t *testing.T) {
	srv := testServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "internal server error" {
		t.Errorf("error = %v", got)
	}
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodGet, "/api/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "not found" {
		t.Errorf("error = %v, want %q", got, "not found")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, http.MethodPost, "/api/state", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

// ─── Dashboard Tests ───────────────────────────────────────────────

func TestDashboard_Root(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/", "/some/client/route"} {
		w := do(t, srv, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s Content-Type = %q, want text/html", path, ct)
		}
	}
}

// ─── Error Mapping Tests ───────────────────────────────────────────

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{tracker.ErrNotRegistered, http.StatusNotFound},
		{tracker.ErrTaskNotActive, http.StatusForbidden},
		{tracker.ErrUnauthorized, http.StatusUnauthorized},
		{tracker.ErrValidation, http.StatusBadRequest},
		{tracker.ErrPrecondition, http.StatusBadRequest},
		{tracker.ErrNotFound, http.StatusNotFound},
		{tracker.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: detail", tracker.ErrValidation), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ─── Lifecycle Tests ───────────────────────────────────────────────

func TestServer_StartAndClose(t *testing.T) {
	srv := testServer(t)

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start = nil, want error")
	}

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	addr := srv.Addr()
	if addr == "" {
		t.Fatal("Addr() empty after Start")
	}
	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}

	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}

	if _, err := client.Get("http://" + addr + "/api/health"); err == nil {
		t.Error("server still responding after Close()")
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	first := testServer(t)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer first.Close()

	_, portStr, err := net.SplitHostPort(first.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", first.Addr(), err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parsing port %q: %v", portStr, err)
	}

	second := testServer(t, func(d *Deps) { d.Config.Port = port })
	if err := second.Start(context.Background()); err == nil {
		second.Close()
		t.Error("Start() on a busy port = nil, want error")
	}
}

func TestServer_NoListen(t *testing.T) {
	srv := testServer(t, func(d *Deps) { d.Config.NoListen = true })

	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if addr := srv.Addr(); addr != "" {
		t.Errorf("Addr() = %q, want empty", addr)
	}
	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	// The handler still serves when mounted externally
	w := do(t, srv, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}
