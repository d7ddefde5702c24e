package mqtt

import (
	"context"
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for one-shot state publishing.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
}

// Connect establishes a connection to the MQTT broker.
//
// Parameters:
//   - ctx: Cancels the wait for the connection
//   - cfg: MQTT configuration
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: ErrConnectionFailed if the broker cannot be reached in time
func Connect(ctx context.Context, cfg config.MQTTConfig) (*Client, error) {
	c := &Client{
		cfg:    cfg,
		client: pahomqtt.NewClient(buildClientOptions(cfg)),
	}

	token := c.client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, brokerURL(cfg), err)
	}

	return c, nil
}

// Close disconnects from the broker after pending publishes drain.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.client.Disconnect(defaultDisconnectQuiesce)
	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	return c != nil && c.client != nil && c.client.IsConnected()
}

// QoS returns the configured default QoS level.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}
