package ipconfig

import (
	"net"
	"os"
	"strings"

	"github.com/miekg/dns"

	"grimm.is/floe/internal/platform"
)

// ResolvConfPath is the resolver configuration Capture consults when
// asked to pick up nameservers. Tests point it elsewhere.
var ResolvConfPath = "/etc/resolv.conf"

// Capture reads the interface's current kernel state into a fresh
// config. Default routes are folded into the gateway field (lowest
// metric wins) instead of being kept as routes, and the kernel's
// direct host route to that gateway is dropped as an implementation
// detail of gatewayness. Enslaved interfaces (ones with a master)
// yield nil: their master owns the configuration.
//
// When readResolvConf is set and the interface holds both addresses
// and the default route, nameservers from ResolvConfPath are merged
// in, on the theory that whoever has the default route did the
// resolver setup.
func Capture(p platform.Platform, ifindex int, readResolvConf bool) *Config {
	if p.LinkGetMaster(ifindex) > 0 {
		return nil
	}

	c := New()
	c.addresses = p.AddressGetAll(ifindex)

	var (
		hasGateway   bool
		lowestMetric uint32
	)
	all := p.RouteGetAll(ifindex, platform.RouteModeAll)
	kept := make([]platform.Route, 0, len(all))
	for _, r := range all {
		if r.PrefixLen == 0 {
			if !hasGateway || r.Metric < lowestMetric {
				c.gateway = normIP(r.Gateway)
				lowestMetric = r.Metric
				hasGateway = true
			}
			continue
		}
		kept = append(kept, r)
	}

	if hasGateway {
		routes := kept[:0]
		for _, r := range kept {
			if r.PrefixLen == 32 && platform.IPEqual(r.Network, c.gateway) &&
				platform.IPIsZero(r.Gateway) {
				continue
			}
			routes = append(routes, r)
		}
		kept = routes
	}
	c.routes = kept

	if len(c.addresses) > 0 && hasGateway && readResolvConf {
		if contents, err := os.ReadFile(ResolvConfPath); err == nil {
			c.nameservers, _ = CaptureResolvConf(c.nameservers, string(contents))
		}
	}

	return c
}

// CaptureResolvConf merges the nameservers of a resolv.conf document
// into the given list, skipping unparseable, non-IPv4 and zero entries
// as well as duplicates. It returns the extended list and whether
// anything was appended.
func CaptureResolvConf(nameservers []net.IP, contents string) ([]net.IP, bool) {
	cfg, err := dns.ClientConfigFromReader(strings.NewReader(contents))
	if err != nil {
		return nameservers, false
	}

	changed := false
	for _, server := range cfg.Servers {
		ip := net.ParseIP(server)
		if ip == nil {
			continue
		}
		v4 := ip.To4()
		if v4 == nil || platform.IPIsZero(v4) {
			continue
		}
		dup := false
		for _, existing := range nameservers {
			if existing.Equal(v4) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		nameservers = append(nameservers, platform.CloneIP(v4))
		changed = true
	}
	return nameservers, changed
}
