package ipconfig

import "grimm.is/floe/internal/platform"

// Merge folds src into the config. Collections are appended through the
// usual add semantics, so duplicates coalesce and source priorities
// settle per entry. Scalars (gateway, MSS, MTU, NIS domain) are taken
// from src only where the config has none yet; an already set scalar
// wins regardless of source. The never-default flag is untouched.
func (c *Config) Merge(src *Config) {
	c.freezeNotify()
	defer c.thawNotify()

	for i := range src.addresses {
		c.AddAddress(src.addresses[i])
	}

	for _, ns := range src.nameservers {
		c.AddNameserver(ns)
	}

	if platform.IPIsZero(c.gateway) {
		c.SetGateway(src.gateway)
	}

	for i := range src.routes {
		c.AddRoute(src.routes[i])
	}

	for _, d := range src.domains {
		c.AddDomain(d)
	}
	for _, s := range src.searches {
		c.AddSearch(s)
	}

	if c.mss == 0 {
		c.SetMSS(src.mss)
	}

	if c.mtu == 0 {
		c.SetMTU(src.mtu, src.mtuSource)
	}

	for _, nis := range src.nisServers {
		c.AddNISServer(nis)
	}
	if c.nisDomain == "" && src.nisDomain != "" {
		c.SetNISDomain(src.nisDomain)
	}

	for _, wins := range src.winsServers {
		c.AddWINSServer(wins)
	}
}

// Subtract removes src's entries from the config by identity, the
// quasi-inverse of Merge. Scalars are cleared when they equal src's
// value; the gateway is additionally cleared when no addresses remain,
// since a gateway without an address cannot be reached.
func (c *Config) Subtract(src *Config) {
	c.freezeNotify()
	defer c.thawNotify()

	for i := range src.addresses {
		for j := range c.addresses {
			if platform.AddressesDuplicate(&c.addresses[j], &src.addresses[i]) {
				c.DelAddress(j)
				break
			}
		}
	}

	for _, ns := range src.nameservers {
		for j, existing := range c.nameservers {
			if existing.Equal(ns) {
				c.DelNameserver(j)
				break
			}
		}
	}

	if platform.IPEqual(src.gateway, c.gateway) {
		c.SetGateway(nil)
	}
	if len(c.addresses) == 0 {
		c.SetGateway(nil)
	}

	for i := range src.routes {
		for j := range c.routes {
			if platform.RoutesDuplicate(&c.routes[j], &src.routes[i]) {
				c.DelRoute(j)
				break
			}
		}
	}

	for _, d := range src.domains {
		for j, existing := range c.domains {
			if existing == d {
				c.DelDomain(j)
				break
			}
		}
	}
	for _, s := range src.searches {
		for j, existing := range c.searches {
			if existing == s {
				c.DelSearch(j)
				break
			}
		}
	}

	if src.mss == c.mss {
		c.SetMSS(0)
	}

	if src.mtu == c.mtu {
		c.mtu = 0
		c.mtuSource = platform.SourceUnknown
	}

	for _, nis := range src.nisServers {
		for j, existing := range c.nisServers {
			if existing.Equal(nis) {
				c.DelNISServer(j)
				break
			}
		}
	}
	if src.nisDomain == c.nisDomain {
		c.SetNISDomain("")
	}

	for _, wins := range src.winsServers {
		for j, existing := range c.winsServers {
			if existing.Equal(wins) {
				c.DelWINSServer(j)
				break
			}
		}
	}
}
