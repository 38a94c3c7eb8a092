package ipconfig

import (
	"net"

	"grimm.is/floe/internal/platform"
)

// Commit pushes the config to the kernel for one interface. Addresses
// are synced unconditionally. Routes are synced next, minus the
// gateway-less routes already covered by a local subnet: the kernel
// creates those itself when the address lands, and pushing them again
// would fight it. A route sync failure fails the commit before the MTU
// is touched. The MTU is set last, only when configured and different
// from what the link reports; an MTU failure does not fail the commit.
func (c *Config) Commit(p platform.Platform, ifindex int, defaultRouteMetric uint32) bool {
	p.AddressSync(ifindex, platform.CloneAddresses(c.addresses), defaultRouteMetric)

	routes := make([]platform.Route, 0, len(c.routes))
	for i := range c.routes {
		route := &c.routes[i]
		if platform.IPIsZero(route.Gateway) &&
			c.destinationIsDirect(route.Network, route.PrefixLen) {
			continue
		}
		routes = append(routes, platform.CloneRoute(route))
	}
	if !p.RouteSync(ifindex, routes) {
		return false
	}

	if c.mtu != 0 && int(c.mtu) != p.LinkGetMTU(ifindex) {
		_ = p.LinkSetMTU(ifindex, int(c.mtu))
	}

	return true
}

// destinationIsDirect reports whether some address's subnet covers the
// whole destination, which requires the address's prefix to be no
// longer than the destination's.
func (c *Config) destinationIsDirect(network net.IP, plen int) bool {
	for i := range c.addresses {
		item := &c.addresses[i]
		if item.PrefixLen <= plen && samePrefix(item.IP, network, item.PrefixLen) {
			return true
		}
	}
	return false
}
