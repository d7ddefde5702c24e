// Package discovery finds Elgato lights on the local network by browsing
// for the _elg._tcp DNS-SD service over multicast DNS.
//
// Discovery is modelled as a capability with two variants. Detect inspects
// the host once at startup and returns either a *Client, which browses, or
// an Unsupported value, which fails every call immediately with guidance to
// address lights explicitly. Callers only see the Discoverer interface, so
// resolution logic stays the same on every platform and can be tested with
// either variant.
//
// A browse always runs for the whole window; it accumulates every usable
// advertisement instead of returning on the first one. The mDNS session is
// released before Discover returns, on every path.
package discovery
