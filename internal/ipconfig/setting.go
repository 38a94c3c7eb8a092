package ipconfig

import (
	"net"

	"grimm.is/floe/internal/platform"
)

// Addressing methods a Setting can declare.
const (
	MethodAuto     = "auto"
	MethodManual   = "manual"
	MethodDisabled = "disabled"
)

// Setting is the user-authored IPv4 fragment for one interface, the
// shape the config file loader produces. It is inert data; MergeSetting
// folds it into a live config.
type Setting struct {
	Method           string
	Gateway          net.IP
	Addresses        []SettingAddress
	Routes           []SettingRoute
	DNS              []string
	DNSSearch        []string
	NeverDefault     bool
	IgnoreAutoRoutes bool
	IgnoreAutoDNS    bool
}

// SettingAddress is one declared address.
type SettingAddress struct {
	IP        net.IP
	PrefixLen int
	Label     string
}

// SettingRoute is one declared route. Metric is -1 when the declaration
// leaves it out.
type SettingRoute struct {
	Network   net.IP
	PrefixLen int
	Gateway   net.IP
	Metric    int64
}

// MergeSetting layers a user setting on top of the config. Declared
// values carry user priority and permanent lifetimes. Routes without an
// explicit metric get defaultRouteMetric. The ignore-auto flags clear
// the automatically learned routes and DNS state before the declared
// values land. A nil setting is a no-op.
func (c *Config) MergeSetting(s *Setting, defaultRouteMetric uint32) {
	if s == nil {
		return
	}

	if s.NeverDefault {
		c.SetNeverDefault(true)
	} else if s.IgnoreAutoRoutes {
		c.SetNeverDefault(false)
	}

	if !platform.IPIsZero(s.Gateway) {
		c.SetGateway(s.Gateway)
	}

	for _, sa := range s.Addresses {
		c.AddAddress(platform.Address{
			IP:        sa.IP,
			PrefixLen: sa.PrefixLen,
			Label:     sa.Label,
			Lifetime:  platform.LifetimeForever,
			Preferred: platform.LifetimeForever,
			Source:    platform.SourceUser,
		})
	}

	if s.IgnoreAutoRoutes {
		c.ResetRoutes()
	}
	for _, sr := range s.Routes {
		metric := defaultRouteMetric
		if sr.Metric >= 0 {
			metric = uint32(sr.Metric)
		}
		c.AddRoute(platform.Route{
			Network:   sr.Network,
			PrefixLen: sr.PrefixLen,
			Gateway:   sr.Gateway,
			Metric:    metric,
			Source:    platform.SourceUser,
		})
	}

	if s.IgnoreAutoDNS {
		c.ResetNameservers()
		c.ResetDomains()
		c.ResetSearches()
	}
	for _, ns := range s.DNS {
		ip := net.ParseIP(ns)
		if ip == nil {
			continue
		}
		v4 := ip.To4()
		if v4 == nil || platform.IPIsZero(v4) {
			continue
		}
		c.AddNameserver(v4)
	}
	for _, search := range s.DNSSearch {
		if search == "" {
			continue
		}
		c.AddSearch(search)
	}
}

// ToSetting reduces the config back to the declarative fragment that
// would reproduce its user-visible part. Addresses with finite
// lifetimes mark the interface as automatically configured and are not
// listed; permanent ones are. Only user-declared, non-default routes
// survive the round trip. A nil config yields a disabled setting.
func (c *Config) ToSetting() *Setting {
	s := &Setting{Method: MethodDisabled}
	if c == nil {
		return s
	}

	for i := range c.addresses {
		addr := &c.addresses[i]

		if addr.Lifetime != platform.LifetimeForever {
			s.Method = MethodAuto
			continue
		}

		if s.Method == MethodDisabled {
			s.Method = MethodManual
		}
		s.Addresses = append(s.Addresses, SettingAddress{
			IP:        platform.CloneIP(addr.IP),
			PrefixLen: addr.PrefixLen,
			Label:     addr.Label,
		})
	}

	if !platform.IPIsZero(c.gateway) && len(s.Addresses) > 0 {
		s.Gateway = platform.CloneIP(c.gateway)
	}

	for i := range c.routes {
		route := &c.routes[i]
		if route.PrefixLen == 0 {
			continue
		}
		if route.Source != platform.SourceUser {
			continue
		}
		s.Routes = append(s.Routes, SettingRoute{
			Network:   platform.CloneIP(route.Network),
			PrefixLen: route.PrefixLen,
			Gateway:   platform.CloneIP(route.Gateway),
			Metric:    int64(route.Metric),
		})
	}

	for _, ns := range c.nameservers {
		s.DNS = append(s.DNS, ns.String())
	}
	s.DNSSearch = cloneStrings(c.searches)

	s.NeverDefault = c.neverDefault
	return s
}
