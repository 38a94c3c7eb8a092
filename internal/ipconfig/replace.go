package ipconfig

import (
	"net"

	"grimm.is/floe/internal/platform"
)

// Replace swaps the config's content for a deep copy of src's and
// classifies the difference. The relevant result means semantic content
// changed: the fingerprint moved, consumers of the config (resolver,
// routing) need to react. A false relevant with a true changed means
// only bookkeeping moved: lifetimes, labels, sources, MSS, MTU, the
// never-default flag. Queued change events go out once per touched
// field group.
//
// Replacing a config with itself panics, as does a divergence between
// the classification and the fingerprint comparison.
func (c *Config) Replace(src *Config) (changed, relevant bool) {
	if c == src {
		panic("ipconfig: cannot replace a config with itself")
	}

	wasEqual := Equal(c, src)

	var minor bool

	c.freezeNotify()
	defer c.thawNotify()

	if src.neverDefault != c.neverDefault {
		c.neverDefault = src.neverDefault
		minor = true
	}

	if !platform.IPEqual(src.gateway, c.gateway) {
		c.SetGateway(src.gateway)
		relevant = true
	}

	areEqual := len(src.addresses) == len(c.addresses)
	if areEqual {
		for i := range src.addresses {
			srcAddr, dstAddr := &src.addresses[i], &c.addresses[i]
			if !srcAddr.Equal(dstAddr) {
				areEqual = false
				if !platform.AddressesDuplicate(srcAddr, dstAddr) {
					relevant = true
					break
				}
			}
		}
	} else {
		relevant = true
	}
	if !areEqual {
		c.ResetAddresses()
		for i := range src.addresses {
			c.AddAddress(src.addresses[i])
		}
		minor = true
	}

	areEqual = len(src.routes) == len(c.routes)
	if areEqual {
		for i := range src.routes {
			srcRoute, dstRoute := &src.routes[i], &c.routes[i]
			if !srcRoute.Equal(dstRoute) {
				areEqual = false
				if !platform.RoutesDuplicate(srcRoute, dstRoute) ||
					!platform.IPEqual(srcRoute.Gateway, dstRoute.Gateway) ||
					srcRoute.Metric != dstRoute.Metric {
					relevant = true
					break
				}
			}
		}
	} else {
		relevant = true
	}
	if !areEqual {
		c.ResetRoutes()
		for i := range src.routes {
			c.AddRoute(src.routes[i])
		}
		minor = true
	}

	if !ipListsEqual(src.nameservers, c.nameservers) {
		c.ResetNameservers()
		for _, ns := range src.nameservers {
			c.AddNameserver(ns)
		}
		relevant = true
	}

	if !stringListsEqual(src.domains, c.domains) {
		c.ResetDomains()
		for _, d := range src.domains {
			c.AddDomain(d)
		}
		relevant = true
	}

	if !stringListsEqual(src.searches, c.searches) {
		c.ResetSearches()
		for _, s := range src.searches {
			c.AddSearch(s)
		}
		relevant = true
	}

	if src.mss != c.mss {
		c.SetMSS(src.mss)
		minor = true
	}

	if !ipListsEqual(src.nisServers, c.nisServers) {
		c.ResetNISServers()
		for _, nis := range src.nisServers {
			c.AddNISServer(nis)
		}
		relevant = true
	}

	if src.nisDomain != c.nisDomain {
		c.SetNISDomain(src.nisDomain)
		relevant = true
	}

	if !ipListsEqual(src.winsServers, c.winsServers) {
		c.ResetWINSServers()
		for _, wins := range src.winsServers {
			c.AddWINSServer(wins)
		}
		relevant = true
	}

	if src.mtu != c.mtu || src.mtuSource != c.mtuSource {
		c.mtu = src.mtu
		c.mtuSource = src.mtuSource
		minor = true
	}

	// The fingerprint covers exactly the fields classified relevant, so
	// the two verdicts must agree.
	if relevant == wasEqual {
		panic("ipconfig: change classification disagrees with fingerprint equality")
	}

	return minor || relevant, relevant
}

func ipListsEqual(a, b []net.IP) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func stringListsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
