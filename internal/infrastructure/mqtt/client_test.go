package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/nerrad567/challenge-tracker/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration pointing at a local broker.
// Tests that need a broker skip when none is running at 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "challenge-tracker-test",
		},
		QoS:         1,
		TopicPrefix: "challenge-test",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func connectOrSkip(t *testing.T) *Client {
	t.Helper()
	c, err := Connect(testConfig())
	if err != nil {
		t.Skipf("no MQTT broker available: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// =============================================================================
// Topics
// =============================================================================

func TestTopics(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", Topics{Prefix: "workshop"}.State(), "workshop/state"},
		{"event", Topics{Prefix: "workshop"}.Event("task.completed"), "workshop/events/task/completed"},
		{"all events", Topics{Prefix: "workshop"}.AllEvents(), "workshop/events/#"},
		{"status", Topics{Prefix: "workshop"}.SystemStatus(), "workshop/system/status"},
		{"default prefix", Topics{}.State(), "challenge/state"},
		{"trimmed slashes", Topics{Prefix: "/room-1/"}.State(), "room-1/state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("topic = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// =============================================================================
// Options
// =============================================================================

func TestBrokerURL(t *testing.T) {
	b := config.MQTTBrokerConfig{Host: "broker", Port: 8883}
	if got := brokerURL(b); got != "tcp://broker:8883" {
		t.Errorf("brokerURL() = %q", got)
	}
	b.TLS = true
	if got := brokerURL(b); got != "ssl://broker:8883" {
		t.Errorf("brokerURL(tls) = %q", got)
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.MQTTAuthConfig{Username: "u", Password: "p"}

	opts := buildClientOptions(cfg)
	if opts.ClientID != "challenge-tracker-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Errorf("credentials = %q/%q, want u/p", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "room"}, "tracker-1")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Fatal("expected retained will")
	}
	if opts.WillTopic != "room/system/status" {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}
	var msg StatusMessage
	if err := json.Unmarshal(opts.WillPayload, &msg); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if msg.Status != StatusOffline || msg.ClientID != "tracker-1" || msg.Reason == "" {
		t.Errorf("will = %+v", msg)
	}
}

// =============================================================================
// Publish validation (no broker)
// =============================================================================

func TestPublish_Validation(t *testing.T) {
	c := &Client{cfg: testConfig()}

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"bad qos", "a/b", []byte("x"), 3, ErrInvalidQoS},
		{"too large", "a/b", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"not connected", "a/b", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_NilSafe(t *testing.T) {
	var c *Client
	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client = %v", err)
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := &Client{cfg: testConfig()}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) = %v, want context.Canceled", err)
	}
}

// =============================================================================
// Broker tests
// =============================================================================

func TestConnect_InvalidBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999
	cfg.Reconnect.InitialDelay = 0

	if _, err := Connect(cfg); err == nil {
		t.Skip("something is listening on port 19999")
	} else if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestPublishRetained_Broker(t *testing.T) {
	c := connectOrSkip(t)

	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() = %v", err)
	}
	if err := c.PublishRetained(c.Topics().State(), []byte(`{"currentTask":1}`)); err != nil {
		t.Errorf("PublishRetained() = %v", err)
	}
	if err := c.PublishEvent(c.Topics().Event("session.reset"), []byte(`{}`)); err != nil {
		t.Errorf("PublishEvent() = %v", err)
	}
	if !strings.HasPrefix(c.Topics().State(), "challenge-test/") {
		t.Errorf("Topics() prefix not applied: %s", c.Topics().State())
	}
}
