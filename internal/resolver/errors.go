package resolver

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match them via errors.Is().
var (
	// ErrConflictingSelectors is returned when both addresses and a name
	// filter are supplied.
	ErrConflictingSelectors = errors.New("resolver: --ip and --name cannot be combined; use one or the other")

	// ErrInvalidAddress is matched by *InvalidAddressError.
	ErrInvalidAddress = errors.New("resolver: invalid address")

	// ErrNoMatch is matched by *NoMatchError.
	ErrNoMatch = errors.New("resolver: no light matches name")
)

// InvalidAddressError names the token of an explicit address list that is
// not an IPv4 host address.
type InvalidAddressError struct {
	Token string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid IPv4 address %q; pass a comma-separated list such as --ip 192.168.1.20,192.168.1.21", e.Token)
}

// Is makes errors.Is(err, ErrInvalidAddress) hold.
func (e *InvalidAddressError) Is(target error) bool {
	return target == ErrInvalidAddress
}

// NoMatchError is returned when a name filter selects none of the
// candidate lights.
type NoMatchError struct {
	Filter string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no light name contains %q; run list to see known lights or discover to refresh them", e.Filter)
}

// Is makes errors.Is(err, ErrNoMatch) hold.
func (e *NoMatchError) Is(target error) bool {
	return target == ErrNoMatch
}
