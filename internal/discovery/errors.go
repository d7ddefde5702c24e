package discovery

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors for discovery.
//
// Use errors.Is() against these; errors.As() recovers the details:
//
//	var nf *discovery.NoneFoundError
//	if errors.As(err, &nf) {
//	    fmt.Println(nf.Timeout)
//	}
var (
	// ErrUnsupported is matched by every *UnsupportedError.
	ErrUnsupported = errors.New("discovery: unsupported on this system")

	// ErrNoneFound is matched by every *NoneFoundError.
	ErrNoneFound = errors.New("discovery: no lights found")
)

// UnsupportedError reports that mDNS discovery cannot run here.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("light discovery is not available (%s); use --ip to specify light addresses", e.Reason)
}

// Is makes errors.Is(err, ErrUnsupported) hold.
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// NoneFoundError reports a browse window that produced no usable light.
type NoneFoundError struct {
	Timeout time.Duration
}

func (e *NoneFoundError) Error() string {
	return fmt.Sprintf("no Elgato lights found on the network after %s; "+
		"check the lights are powered and on this network, try a longer --timeout, or use --ip to specify addresses",
		formatSeconds(e.Timeout))
}

// Is makes errors.Is(err, ErrNoneFound) hold.
func (e *NoneFoundError) Is(target error) bool {
	return target == ErrNoneFound
}

// formatSeconds renders d as whole or fractional seconds, e.g. "3s" or "1.5s".
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%gs", d.Seconds())
}
