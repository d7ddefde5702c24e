package discovery

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/wassimk/elgato-light/internal/infrastructure/config"
	"github.com/wassimk/elgato-light/internal/infrastructure/logging"
	"github.com/wassimk/elgato-light/internal/target"
)

// Unsupported is the discovery capability on hosts that cannot browse.
// Every Discover call fails immediately with an *UnsupportedError.
type Unsupported struct {
	Reason string
}

// Discover implements Discoverer without touching the network.
func (u Unsupported) Discover(context.Context, time.Duration) ([]target.Target, error) {
	return nil, &UnsupportedError{Reason: u.Reason}
}

// Supported reports whether d can actually browse. A nil d cannot.
func Supported(d Discoverer) bool {
	if d == nil {
		return false
	}
	_, unsupported := d.(Unsupported)
	return !unsupported
}

// iface is the part of a network interface capability detection looks at.
type iface struct {
	Name     string
	Flags    net.Flags
	Prefixes []netip.Prefix
}

// interfaceLister enumerates the host's interfaces.
type interfaceLister func() ([]iface, error)

// Detect selects the discovery capability for this host: a *Client when
// discovery is enabled and some interface can carry IPv4 multicast, and
// Unsupported with the reason otherwise.
func Detect(cfg config.DiscoveryConfig, logger *logging.Logger, opts ...Option) Discoverer {
	return detect(cfg, systemInterfaces, logger, opts...)
}

func detect(cfg config.DiscoveryConfig, list interfaceLister, logger *logging.Logger, opts ...Option) Discoverer {
	if !cfg.Enabled {
		return Unsupported{Reason: "discovery is disabled in the configuration"}
	}

	ifaces, err := list()
	if err != nil {
		return Unsupported{Reason: fmt.Sprintf("cannot list network interfaces: %v", err)}
	}

	name, ok := multicastInterface(ifaces)
	if !ok {
		return Unsupported{Reason: "no active network interface with IPv4 multicast"}
	}

	logger.Debug("mDNS discovery available", "interface", name)
	return NewClient(cfg, logger, opts...)
}

// multicastInterface returns the first interface that is up, not loopback,
// multicast capable and carries an IPv4 address.
func multicastInterface(ifaces []iface) (string, bool) {
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 || ifc.Flags&net.FlagLoopback != 0 || ifc.Flags&net.FlagMulticast == 0 {
			continue
		}
		for _, p := range ifc.Prefixes {
			if p.Addr().Unmap().Is4() {
				return ifc.Name, true
			}
		}
	}
	return "", false
}

func systemInterfaces() ([]iface, error) {
	netIfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	result := make([]iface, 0, len(netIfaces))
	for _, ni := range netIfaces {
		addrs, err := ni.Addrs()
		if err != nil {
			continue
		}
		ifc := iface{Name: ni.Name, Flags: ni.Flags}
		for _, a := range addrs {
			if p, err := netip.ParsePrefix(a.String()); err == nil {
				ifc.Prefixes = append(ifc.Prefixes, p)
			}
		}
		result = append(result, ifc)
	}
	return result, nil
}
