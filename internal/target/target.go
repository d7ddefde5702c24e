package target

import (
	"cmp"
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// DefaultPort is the HTTP port Elgato lights listen on.
const DefaultPort uint16 = 9123

// Target identifies one controllable light on the local network.
type Target struct {
	// Name is the advertised instance name, or the address text for
	// explicitly addressed targets.
	Name string

	// Address is always a valid IPv4 host address.
	Address netip.Addr

	// Port is never zero.
	Port uint16
}

// New builds a Target after checking its invariants.
//
// The address must be IPv4 (IPv4-mapped IPv6 is unmapped first) and must not
// be the unspecified address. An empty name defaults to the address text.
func New(name string, addr netip.Addr, port uint16) (Target, error) {
	addr = addr.Unmap()
	if !addr.Is4() || addr.IsUnspecified() {
		return Target{}, fmt.Errorf("%w: %q is not an IPv4 host", ErrInvalidAddress, addr.String())
	}
	if port == 0 {
		return Target{}, ErrInvalidPort
	}
	if name == "" {
		name = addr.String()
	}
	return Target{Name: name, Address: addr, Port: port}, nil
}

// FromAddress builds a Target for an explicitly supplied address. The target
// is named after its own text form and uses the given port.
func FromAddress(addr netip.Addr, port uint16) (Target, error) {
	return New(addr.Unmap().String(), addr, port)
}

// HostPort returns the "ip:port" form used to dial the device.
func (t Target) HostPort() string {
	return netip.AddrPortFrom(t.Address, t.Port).String()
}

// String implements fmt.Stringer.
func (t Target) String() string {
	if t.Name == t.Address.String() {
		return t.HostPort()
	}
	return t.Name + " (" + t.HostPort() + ")"
}

// MatchesName reports whether filter is a case-insensitive substring of the
// target's name. An empty filter matches everything.
func (t Target) MatchesName(filter string) bool {
	return strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter))
}

// SortByName orders targets by name ascending, breaking ties by address and
// port so the order is deterministic even when names repeat.
func SortByName(targets []Target) {
	slices.SortStableFunc(targets, func(a, b Target) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := a.Address.Compare(b.Address); c != 0 {
			return c
		}
		return cmp.Compare(a.Port, b.Port)
	})
}

// Filter returns the targets whose names match filter, preserving order.
func Filter(targets []Target, filter string) []Target {
	var matched []Target
	for _, t := range targets {
		if t.MatchesName(filter) {
			matched = append(matched, t)
		}
	}
	return matched
}
