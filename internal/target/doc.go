// Package target defines the identity of one controllable light.
//
// A Target is the unit every other package exchanges: the discovery client
// produces them from mDNS advertisements, the cache store persists and
// reloads them, the resolver builds them from explicit addresses, and the
// executor applies operations to them.
//
// Targets are values. They are validated once in New and never mutated
// afterwards; each resolution builds a fresh slice.
//
// # Usage
//
//	t, err := target.New("Desk Left", netip.MustParseAddr("192.168.0.25"), target.DefaultPort)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(t.HostPort()) // 192.168.0.25:9123
package target
