package light

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/wassimk/elgato-light/internal/target"
)

const (
	// lightsPath is the only endpoint the client uses.
	lightsPath = "/elgato/lights"

	// DefaultRequestTimeout bounds each request when none is configured.
	DefaultRequestTimeout = 5 * time.Second

	// maxBodySize caps how much of a reply is read.
	maxBodySize = 64 << 10
)

// Client performs status reads and writes against lights.
//
// Thread Safety:
//   - Safe for concurrent use; the executor shares one Client across targets.
type Client struct {
	http *http.Client
}

// NewClient returns a Client whose requests time out after timeout.
// Connections are dialled over IPv4 only.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	dialer := &net.Dialer{Timeout: timeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		},
		MaxIdleConnsPerHost:   1,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     false,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// GetStatus reads the state of the first light behind t.
func (c *Client) GetStatus(ctx context.Context, t target.Target) (State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lightsURL(t), nil)
	if err != nil {
		return State{}, fmt.Errorf("building request for %s: %w", t.HostPort(), err)
	}

	body, err := c.do(req, t)
	if err != nil {
		return State{}, err
	}

	var doc statusDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return State{}, fmt.Errorf("%w from %s: %w", ErrMalformedResponse, t.HostPort(), err)
	}
	if len(doc.Lights) == 0 {
		return State{}, fmt.Errorf("%w at %s", ErrEmptyResponse, t.HostPort())
	}

	return doc.Lights[0].state(), nil
}

// SetStatus writes s to t.
func (c *Client) SetStatus(ctx context.Context, t target.Target, s State) error {
	payload, err := json.Marshal(documentFor(s))
	if err != nil {
		return fmt.Errorf("encoding status for %s: %w", t.HostPort(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, lightsURL(t), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", t.HostPort(), err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req, t)
	return err
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

// do sends req and returns the body of a 2xx reply.
func (c *Client) do(req *http.Request, t target.Target) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w at %s (check it is powered on, or run discover to refresh the cache): %w",
			ErrDeviceUnreachable, t.HostPort(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w at %s: reading reply: %w", ErrDeviceUnreachable, t.HostPort(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, t.HostPort())
	}

	return body, nil
}

func lightsURL(t target.Target) string {
	return "http://" + t.HostPort() + lightsPath
}
