package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

func TestResolve_VerifyKeepsHealthyCache(t *testing.T) {
	store := &memStore{targets: []target.Target{mustTarget(t, "Desk", "10.0.0.1")}}
	disc := &fakeDiscoverer{}
	r := New(store, disc, logging.Discard(), WithVerify(100*time.Millisecond))

	var checks atomic.Int32
	r.check = func(context.Context, target.Target, time.Duration) error {
		checks.Add(1)
		return nil
	}

	got, err := r.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Desk"}, names(got))
	assert.Equal(t, int32(1), checks.Load())
	assert.Zero(t, disc.calls)
}

func TestResolve_VerifyFailureRediscovers(t *testing.T) {
	store := &memStore{targets: []target.Target{
		mustTarget(t, "Desk", "10.0.0.1"),
		mustTarget(t, "Gone", "10.0.0.2"),
	}}
	disc := &fakeDiscoverer{found: []target.Target{mustTarget(t, "Desk", "10.0.0.11")}}
	r := New(store, disc, logging.Discard(), WithVerify(100*time.Millisecond))
	r.check = func(_ context.Context, tg target.Target, _ time.Duration) error {
		if tg.Name == "Gone" {
			return errors.New("connection refused")
		}
		return nil
	}

	got, err := r.Resolve(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, netip.MustParseAddr("10.0.0.11"), got[0].Address)
	assert.Equal(t, 1, disc.calls)
	assert.Equal(t, 1, store.clears)
}

func TestResolve_NoVerifyByDefault(t *testing.T) {
	store := &memStore{targets: []target.Target{mustTarget(t, "Desk", "10.0.0.1")}}
	r := New(store, &fakeDiscoverer{}, logging.Discard())
	r.check = func(context.Context, target.Target, time.Duration) error {
		t.Fatal("check must not run without WithVerify")
		return nil
	}

	_, err := r.Resolve(context.Background(), Request{})
	require.NoError(t, err)
}

func TestDialCheck(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	ap := netip.MustParseAddrPort(ln.Addr().String())
	live, err := target.New("Live", ap.Addr(), ap.Port())
	require.NoError(t, err)
	assert.NoError(t, dialCheck(context.Background(), live, time.Second))

	closed, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	deadAP := netip.MustParseAddrPort(closed.Addr().String())
	require.NoError(t, closed.Close())

	dead, err := target.New("Dead", deadAP.Addr(), deadAP.Port())
	require.NoError(t, err)
	assert.Error(t, dialCheck(context.Background(), dead, time.Second))
}
