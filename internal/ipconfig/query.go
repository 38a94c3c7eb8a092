package ipconfig

import (
	"net"

	"grimm.is/floe/internal/platform"
)

// AddressExists reports whether the config holds an address with the
// given IP and prefix length.
func (c *Config) AddressExists(ip net.IP, plen int) bool {
	probe := platform.Address{IP: ip, PrefixLen: plen}
	for i := range c.addresses {
		if platform.AddressesDuplicate(&c.addresses[i], &probe) {
			return true
		}
	}
	return false
}

// SubnetForHost returns the most specific address whose subnet contains
// host. The boolean is false when no subnet matches or host is zero.
func (c *Config) SubnetForHost(host net.IP) (platform.Address, bool) {
	if platform.IPIsZero(host) {
		return platform.Address{}, false
	}

	var best *platform.Address
	for i := range c.addresses {
		item := &c.addresses[i]
		if !samePrefix(host, item.IP, item.PrefixLen) {
			continue
		}
		if best != nil && best.PrefixLen >= item.PrefixLen {
			continue
		}
		best = item
	}
	if best == nil {
		return platform.Address{}, false
	}
	return platform.CloneAddress(best), true
}

// DirectRouteForHost returns the best gateway-less route reaching host.
// A candidate displaces the current best only when it is at least as
// specific and carries a strictly lower metric. The boolean is false
// when no such route exists or host is zero.
func (c *Config) DirectRouteForHost(host net.IP) (platform.Route, bool) {
	if platform.IPIsZero(host) {
		return platform.Route{}, false
	}

	var best *platform.Route
	for i := range c.routes {
		item := &c.routes[i]
		if !platform.IPIsZero(item.Gateway) {
			continue
		}
		if best != nil && best.PrefixLen > item.PrefixLen {
			continue
		}
		if !samePrefix(host, item.Network, item.PrefixLen) {
			continue
		}
		if best != nil && best.Metric <= item.Metric {
			continue
		}
		best = item
	}
	if best == nil {
		return platform.Route{}, false
	}
	return platform.CloneRoute(best), true
}
