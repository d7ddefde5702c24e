package resolver

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wassimk/elgato-light/internal/target"
)

const defaultVerifyTimeout = 500 * time.Millisecond

// checkFunc checks that t accepts connections.
type checkFunc func(ctx context.Context, t target.Target, timeout time.Duration) error

// dialCheck opens and closes a TCP connection to the light's API port.
func dialCheck(ctx context.Context, t target.Target, timeout time.Duration) error {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp4", t.HostPort())
	if err != nil {
		return err
	}
	return conn.Close()
}

// checkAll runs check against every target concurrently. The first failure
// cancels the rest.
func checkAll(ctx context.Context, targets []target.Target, timeout time.Duration, check checkFunc) error {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			if err := check(gctx, t, timeout); err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
			return nil
		})
	}
	return g.Wait()
}
