package discovery

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/grandcat/zeroconf"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

// Defaults used when the config leaves them empty.
const (
	DefaultService = "_elg._tcp"
	DefaultDomain  = "local."
	DefaultTimeout = 3 * time.Second

	// entryBuffer is the capacity of the channel the browser delivers on.
	entryBuffer = 32

	// drainTimeout bounds the wait for the browser to close its channel
	// after the window ends.
	drainTimeout = time.Second
)

// Discoverer finds the lights visible from this host.
type Discoverer interface {
	// Discover browses for timeout and returns every usable light seen,
	// sorted by name. Zero lights is a *NoneFoundError, never an empty success.
	Discover(ctx context.Context, timeout time.Duration) ([]target.Target, error)
}

// Browser runs one DNS-SD browse session. Browse must return promptly,
// deliver entries until ctx is done and then close entries.
// *zeroconf.Resolver satisfies it.
type Browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// BrowserFactory opens a fresh mDNS session for one Discover call.
type BrowserFactory func() (Browser, error)

// Client is the Available discovery capability.
type Client struct {
	service        string
	domain         string
	defaultTimeout time.Duration
	newBrowser     BrowserFactory
	clock          clock.Clock
	logger         *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces the clock timing the browse window.
func WithClock(c clock.Clock) Option {
	return func(cl *Client) { cl.clock = c }
}

// WithBrowserFactory replaces the mDNS session factory.
func WithBrowserFactory(f BrowserFactory) Option {
	return func(cl *Client) { cl.newBrowser = f }
}

// NewClient returns a Client browsing for cfg.Service in cfg.Domain.
func NewClient(cfg config.DiscoveryConfig, logger *logging.Logger, opts ...Option) *Client {
	c := &Client{
		service:        cfg.Service,
		domain:         cfg.Domain,
		defaultTimeout: cfg.Timeout,
		newBrowser:     zeroconfBrowser,
		clock:          clock.New(),
		logger:         logger.With("component", "discovery"),
	}
	if c.service == "" {
		c.service = DefaultService
	}
	if c.domain == "" {
		c.domain = DefaultDomain
	}
	if c.defaultTimeout <= 0 {
		c.defaultTimeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// zeroconfBrowser opens an IPv4-only multicast resolver.
func zeroconfBrowser() (Browser, error) {
	r, err := zeroconf.NewResolver(zeroconf.SelectIPTraffic(zeroconf.IPv4))
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Discover implements Discoverer.
//
// A non-positive timeout uses the configured default.
func (c *Client) Discover(ctx context.Context, timeout time.Duration) ([]target.Target, error) {
	if timeout <= 0 {
		timeout = c.defaultTimeout
	}

	browser, err := c.newBrowser()
	if err != nil {
		return nil, &UnsupportedError{Reason: fmt.Sprintf("cannot open mDNS session: %v", err)}
	}

	browseCtx, cancel := c.clock.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, entryBuffer)
	c.logger.Debug("browsing", "service", c.service, "domain", c.domain, "timeout", timeout)
	if err := browser.Browse(browseCtx, c.service, strings.Trim(c.domain, "."), entries); err != nil {
		return nil, fmt.Errorf("starting mDNS browse: %w", err)
	}

	found := newCollector(serviceSuffix(c.service, c.domain), c.logger)

	closed := false
window:
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				closed = true
				break window
			}
			found.add(e)
		case <-browseCtx.Done():
			break window
		}
	}

	cancel()
	if !closed {
		c.drain(entries, found)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discovery cancelled: %w", err)
	}

	targets := found.targets()
	if len(targets) == 0 {
		return nil, &NoneFoundError{Timeout: timeout}
	}

	c.logger.Debug("discovery finished", "found", len(targets))
	return targets, nil
}

// drain consumes what the browser still delivers until it closes the channel,
// which marks the end of the session. Entries buffered before the window
// closed are still accepted.
func (c *Client) drain(entries <-chan *zeroconf.ServiceEntry, found *collector) {
	guard := time.NewTimer(drainTimeout)
	defer guard.Stop()

	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return
			}
			found.add(e)
		case <-guard.C:
			c.logger.Debug("mDNS session did not close in time")
			return
		}
	}
}

// collector accumulates accepted entries keyed by instance name so repeated
// advertisements collapse. The latest resolution wins.
type collector struct {
	suffix string
	byName map[string]target.Target
	logger *logging.Logger
}

func newCollector(suffix string, logger *logging.Logger) *collector {
	return &collector{
		suffix: suffix,
		byName: make(map[string]target.Target),
		logger: logger,
	}
}

func (c *collector) add(e *zeroconf.ServiceEntry) {
	if e == nil {
		return
	}
	t, ok := entryTarget(e, c.suffix)
	if !ok {
		c.logger.Debug("ignoring advertisement", "instance", e.Instance, "port", e.Port)
		return
	}
	c.byName[e.ServiceInstanceName()] = t
}

func (c *collector) targets() []target.Target {
	targets := make([]target.Target, 0, len(c.byName))
	for _, t := range c.byName {
		targets = append(targets, t)
	}
	target.SortByName(targets)
	return targets
}

// entryTarget converts an advertisement into a Target. It needs a port and
// at least one IPv4 address that is neither loopback nor unspecified; the
// first such address is used and IPv6 addresses are ignored.
func entryTarget(e *zeroconf.ServiceEntry, suffix string) (target.Target, bool) {
	if e.Port <= 0 || e.Port > 65535 {
		return target.Target{}, false
	}

	addr, ok := firstUsableIPv4(e.AddrIPv4)
	if !ok {
		return target.Target{}, false
	}

	t, err := target.New(instanceName(e.ServiceInstanceName(), suffix), addr, uint16(e.Port))
	if err != nil {
		return target.Target{}, false
	}
	return t, true
}

func firstUsableIPv4(ips []net.IP) (netip.Addr, bool) {
	for _, ip := range ips {
		v4 := ip.To4()
		if v4 == nil {
			continue
		}
		addr, ok := netip.AddrFromSlice(v4)
		if !ok || addr.IsLoopback() || addr.IsUnspecified() {
			continue
		}
		return addr, true
	}
	return netip.Addr{}, false
}
