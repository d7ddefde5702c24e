package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/wassimk/elgato-light/internal/target"
)

// Store is the persisted list of last-known-good targets.
type Store interface {
	// Load returns the cached targets and true, or nil and false when the
	// cache is absent, unreadable, corrupt or holds no valid entry.
	Load(ctx context.Context) ([]target.Target, bool)

	// Save replaces the cached list. Failures are swallowed.
	Save(ctx context.Context, targets []target.Target)

	// Clear removes the cache. A missing cache is not an error.
	Clear(ctx context.Context)
}

// entry is the persisted form of one target.
type entry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Port    uint16 `json:"port"`
}

// encode serialises targets in order.
func encode(targets []target.Target) ([]byte, error) {
	entries := make([]entry, 0, len(targets))
	for _, t := range targets {
		entries = append(entries, entry{
			Name:    t.Name,
			Address: t.Address.String(),
			Port:    t.Port,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding cache: %w", err)
	}
	return data, nil
}

// decode parses a cache document, dropping entries that do not form a valid
// target. It returns the number of dropped entries alongside the result.
func decode(data []byte) ([]target.Target, int, error) {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("decoding cache: %w", err)
	}

	targets := make([]target.Target, 0, len(entries))
	dropped := 0
	for _, e := range entries {
		addr, err := netip.ParseAddr(e.Address)
		if err != nil {
			dropped++
			continue
		}
		t, err := target.New(e.Name, addr, e.Port)
		if err != nil {
			dropped++
			continue
		}
		targets = append(targets, t)
	}

	return targets, dropped, nil
}

// Nop is a Store that never holds anything.
type Nop struct{}

// Load always misses.
func (Nop) Load(context.Context) ([]target.Target, bool) { return nil, false }

// Save does nothing.
func (Nop) Save(context.Context, []target.Target) {}

// Clear does nothing.
func (Nop) Clear(context.Context) {}
