package target

import "errors"

// Domain errors for the target package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, target.ErrInvalidAddress) {
//	    // handle malformed address
//	}
var (
	// ErrInvalidAddress is returned when an address is not a usable IPv4 host.
	ErrInvalidAddress = errors.New("target: invalid address")

	// ErrInvalidPort is returned when the port is zero.
	ErrInvalidPort = errors.New("target: invalid port")
)
