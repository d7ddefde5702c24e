package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/wassimk/elgato-light/internal/cache"
	"github.com/wassimk/elgato-light/internal/discovery"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

// Request carries a command's selection flags.
type Request struct {
	// Addresses is the raw comma-separated --ip value.
	Addresses string

	// Filter is the --name substring.
	Filter string

	// Timeout is the discovery window used on a cache miss.
	Timeout time.Duration
}

// Resolver produces target lists from Requests.
//
// A Resolver holds no per-call state; it may be reused across calls.
type Resolver struct {
	store         cache.Store
	discoverer    discovery.Discoverer
	port          uint16
	verify        bool
	verifyTimeout time.Duration
	check         checkFunc
	logger        *logging.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPort sets the port used for explicitly addressed lights.
func WithPort(port uint16) Option {
	return func(r *Resolver) {
		if port != 0 {
			r.port = port
		}
	}
}

// WithVerify checks cached lights before trusting them. Each check is a TCP
// dial bounded by timeout.
func WithVerify(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.verify = true
		r.verifyTimeout = timeout
	}
}

// New returns a Resolver reading and writing store and falling back to d.
func New(store cache.Store, d discovery.Discoverer, logger *logging.Logger, opts ...Option) *Resolver {
	if store == nil {
		store = cache.Nop{}
	}
	r := &Resolver{
		store:         store,
		discoverer:    d,
		port:          target.DefaultPort,
		verifyTimeout: defaultVerifyTimeout,
		check:         dialCheck,
		logger:        logger.With("component", "resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the lights selected by req.
//
// Parameters:
//   - ctx: bounds discovery and verification checks
//   - req: selection flags
//
// Returns:
//   - []target.Target: non-empty; explicit addresses keep input order,
//     everything else is sorted by name
//   - error: ErrConflictingSelectors, *InvalidAddressError, *NoMatchError,
//     or the discovery error unchanged
func (r *Resolver) Resolve(ctx context.Context, req Request) ([]target.Target, error) {
	// A blank address list still counts as given; parseAddresses rejects it.
	if req.Addresses != "" && req.Filter != "" {
		return nil, ErrConflictingSelectors
	}

	if req.Addresses != "" {
		return r.parseAddresses(req.Addresses)
	}

	candidates, err := r.candidates(ctx, req.Timeout)
	if err != nil {
		return nil, err
	}

	if req.Filter == "" {
		return candidates, nil
	}

	matched := target.Filter(candidates, req.Filter)
	if len(matched) == 0 {
		r.logger.Debug("name filter matched nothing", "filter", req.Filter, "candidates", len(candidates))
		return nil, &NoMatchError{Filter: req.Filter}
	}
	return matched, nil
}

// Rediscover drops the cache, runs discovery and stores the result.
// On a discovery error the cache stays empty.
func (r *Resolver) Rediscover(ctx context.Context, timeout time.Duration) ([]target.Target, error) {
	r.store.Clear(ctx)
	return r.discover(ctx, timeout)
}

// Cached returns the cached lights without touching the network.
func (r *Resolver) Cached(ctx context.Context) ([]target.Target, bool) {
	targets, ok := r.store.Load(ctx)
	if !ok {
		return nil, false
	}
	target.SortByName(targets)
	return targets, true
}

// ClearCache removes every cached light.
func (r *Resolver) ClearCache(ctx context.Context) {
	r.store.Clear(ctx)
}

// parseAddresses turns a comma-separated list into targets. Any bad token
// fails the whole list.
func (r *Resolver) parseAddresses(list string) ([]target.Target, error) {
	tokens := strings.Split(list, ",")
	targets := make([]target.Target, 0, len(tokens))
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)

		addr, err := netip.ParseAddr(token)
		if err != nil || !addr.Is4() {
			return nil, &InvalidAddressError{Token: token}
		}

		t, err := target.FromAddress(addr, r.port)
		if err != nil {
			return nil, &InvalidAddressError{Token: token}
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// candidates returns the cached lights, or discovers them on a miss.
func (r *Resolver) candidates(ctx context.Context, timeout time.Duration) ([]target.Target, error) {
	cached, ok := r.Cached(ctx)
	if ok && r.verify {
		if err := r.verifyAll(ctx, cached); err != nil {
			r.logger.Debug("cached lights failed verification, rediscovering", "error", err)
			r.store.Clear(ctx)
			ok = false
		}
	}
	if ok {
		r.logger.Debug("using cached lights", "count", len(cached))
		return cached, nil
	}

	return r.discover(ctx, timeout)
}

func (r *Resolver) discover(ctx context.Context, timeout time.Duration) ([]target.Target, error) {
	if r.discoverer == nil {
		return nil, &discovery.UnsupportedError{Reason: "no discoverer configured"}
	}

	found, err := r.discoverer.Discover(ctx, timeout)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, &discovery.NoneFoundError{Timeout: timeout}
	}

	found = slices.Clone(found)
	target.SortByName(found)
	r.store.Save(ctx, found)
	r.logger.Debug("discovered lights cached", "count", len(found))
	return found, nil
}

// verifyAll checks every target and returns the first failure.
func (r *Resolver) verifyAll(ctx context.Context, targets []target.Target) error {
	if err := checkAll(ctx, targets, r.verifyTimeout, r.check); err != nil {
		return fmt.Errorf("verifying cached lights: %w", err)
	}
	return nil
}
