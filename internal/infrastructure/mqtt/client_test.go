package mqtt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "elgato-light-test",
		},
		QoS:         1,
		TopicPrefix: "elgato-light-test",
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_BrokerRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 1

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := Connect(ctx, cfg)
	if err == nil {
		t.Fatal("Connect() expected error for refused broker")
	}
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_ContextCancelled(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = "192.0.2.1" // TEST-NET-1, never answers

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("error = %v, want ErrConnectionFailed", err)
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
	if c.IsConnected() {
		t.Error("nil client reported connected")
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublishDisconnected(t *testing.T) {
	c := &Client{cfg: testConfig()}

	err := c.Publish("elgato-light/light/x/state", []byte(`{}`), 1, true)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestValidatePublish(t *testing.T) {
	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{name: "valid", topic: "a/b", payload: []byte("{}"), qos: 1},
		{name: "nil payload", topic: "a/b", payload: nil, qos: 0},
		{name: "empty topic", topic: "", payload: []byte("{}"), qos: 1, wantErr: ErrInvalidTopic},
		{name: "invalid qos", topic: "a/b", payload: []byte("{}"), qos: 3, wantErr: ErrInvalidQoS},
		{name: "too large", topic: "a/b", payload: make([]byte, maxPayloadSize+1), qos: 1, wantErr: ErrPublishFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePublish(tt.topic, tt.payload, tt.qos)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("validatePublish() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validatePublish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "light"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want tcp://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "elgato-light-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "light" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect should be disabled for one-shot publishing")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without Broker.TLS")
	}
}

func TestBrokerURL_TLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	if got := brokerURL(cfg); got != "ssl://127.0.0.1:8883" {
		t.Errorf("brokerURL() = %q, want ssl://127.0.0.1:8883", got)
	}
	if opts := buildClientOptions(cfg); opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not applied")
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := NewTopics("office/")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"LightState", topics.LightState("Key Light Left"), "office/light/key-light-left/state"},
		{"Invocation", topics.Invocation(), "office/invocation"},
		{"DefaultPrefix", NewTopics("").Invocation(), "elgato-light/invocation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Key Light Left", "key-light-left"},
		{"  Desk  ", "desk"},
		{"Elgato Key Light Air 3F2A", "elgato-key-light-air-3f2a"},
		{"a/b+c#d", "a-b-c-d"},
		{"192.168.0.25", "192-168-0-25"},
		{"Büro", "b-ro"},
		{"###", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slug(tt.in)
			if got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.ContainsAny(got, "/+#") {
				t.Errorf("Slug(%q) = %q contains MQTT separators", tt.in, got)
			}
		})
	}
}
