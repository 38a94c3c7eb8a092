package ipconfig

import (
	"encoding/binary"
	"net"
	"strings"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/insomniacslk/dhcp/rfc1035label"

	"grimm.is/floe/internal/platform"
)

// FromLease converts a DHCPv4 ACK into a config fragment carrying DHCP
// source priority. routeMetric is applied to the lease's static routes;
// now stamps the address lifetime. A lease without a usable address
// yields nil.
//
// When the lease carries valid classless static routes (option 121, or
// the Microsoft variant 249), they replace both the routers option and
// the classful static routes option, per RFC 3442.
func FromLease(lease *dhcpv4.DHCPv4, routeMetric uint32, now time.Time) *Config {
	if lease == nil {
		return nil
	}
	ip := lease.YourIPAddr.To4()
	if ip == nil || platform.IPIsZero(ip) {
		return nil
	}

	c := New()

	plen := defaultPrefixLen(ip)
	if mask := lease.SubnetMask(); mask != nil {
		if ones, bits := mask.Size(); bits == 32 && ones > 0 {
			plen = ones
		}
	}

	lifetime := platform.LifetimeForever
	if d := lease.IPAddressLeaseTime(0); d > 0 {
		if secs := uint64(d / time.Second); secs < uint64(platform.LifetimeForever) {
			lifetime = uint32(secs)
		}
	}

	c.AddAddress(platform.Address{
		IP:        ip,
		PrefixLen: plen,
		Timestamp: now,
		Lifetime:  lifetime,
		Preferred: lifetime,
		Source:    platform.SourceDHCP,
	})

	if routes, gateway, ok := classlessRoutes(lease, routeMetric); ok {
		for i := range routes {
			c.AddRoute(routes[i])
		}
		c.SetGateway(gateway)
	} else {
		for _, r := range lease.Router() {
			if v4 := r.To4(); v4 != nil && !platform.IPIsZero(v4) {
				c.SetGateway(v4)
				break
			}
		}
		for _, r := range classfulRoutes(lease, routeMetric) {
			c.AddRoute(r)
		}
	}

	for _, d := range lease.DNS() {
		if v4 := d.To4(); v4 != nil && !platform.IPIsZero(v4) {
			c.AddNameserver(v4)
		}
	}

	if domain := optString(lease, dhcpv4.OptionDomainName); domain != "" {
		c.AddDomain(domain)
	}

	if data := lease.Options.Get(dhcpv4.GenericOptionCode(119)); len(data) > 0 {
		if labels, err := rfc1035label.FromBytes(data); err == nil {
			for _, s := range labels.Labels {
				if s != "" {
					c.AddSearch(s)
				}
			}
		}
	}

	if domain := optString(lease, dhcpv4.GenericOptionCode(40)); domain != "" {
		c.SetNISDomain(domain)
	}
	for _, nis := range optIPs(lease, dhcpv4.GenericOptionCode(41)) {
		c.AddNISServer(nis)
	}

	for _, wins := range optIPs(lease, dhcpv4.GenericOptionCode(44)) {
		c.AddWINSServer(wins)
	}

	if data := lease.Options.Get(dhcpv4.OptionInterfaceMTU); len(data) == 2 {
		if mtu := binary.BigEndian.Uint16(data); mtu >= 68 {
			c.SetMTU(uint32(mtu), platform.SourceDHCP)
		}
	}

	return c
}

// classlessRoutes parses RFC 3442 classless static routes. A zero-plen
// entry is the default route and comes back as the gateway. ok is false
// when the option is absent or malformed; a malformed option is
// discarded whole.
func classlessRoutes(lease *dhcpv4.DHCPv4, metric uint32) ([]platform.Route, net.IP, bool) {
	data := lease.Options.Get(dhcpv4.GenericOptionCode(121))
	if len(data) == 0 {
		data = lease.Options.Get(dhcpv4.GenericOptionCode(249))
	}
	if len(data) == 0 {
		return nil, nil, false
	}

	var (
		routes  []platform.Route
		gateway net.IP
	)
	for len(data) > 0 {
		plen := int(data[0])
		if plen > 32 {
			return nil, nil, false
		}
		octets := (plen + 7) / 8
		if len(data) < 1+octets+4 {
			return nil, nil, false
		}

		network := make(net.IP, 4)
		copy(network, data[1:1+octets])
		router := platform.CloneIP(net.IP(data[1+octets : 1+octets+4]))
		data = data[1+octets+4:]

		if plen == 0 {
			if gateway == nil && !platform.IPIsZero(router) {
				gateway = router
			}
			continue
		}
		routes = append(routes, platform.Route{
			Network:   network,
			PrefixLen: plen,
			Gateway:   router,
			Metric:    metric,
			Source:    platform.SourceDHCP,
		})
	}
	return routes, gateway, true
}

// classfulRoutes parses the older static routes option (33): pairs of
// destination and router, the destination's prefix implied by its
// class.
func classfulRoutes(lease *dhcpv4.DHCPv4, metric uint32) []platform.Route {
	data := lease.Options.Get(dhcpv4.GenericOptionCode(33))

	var routes []platform.Route
	for len(data) >= 8 {
		dest := platform.CloneIP(net.IP(data[0:4]))
		router := platform.CloneIP(net.IP(data[4:8]))
		data = data[8:]

		if platform.IPIsZero(dest) {
			continue
		}
		routes = append(routes, platform.Route{
			Network:   dest,
			PrefixLen: defaultPrefixLen(dest),
			Gateway:   router,
			Metric:    metric,
			Source:    platform.SourceDHCP,
		})
	}
	return routes
}

// defaultPrefixLen returns the classful prefix length for an address,
// the RFC 2132 fallback when no mask accompanies it.
func defaultPrefixLen(ip net.IP) int {
	v4 := ip.To4()
	switch {
	case v4[0] < 128:
		return 8
	case v4[0] < 192:
		return 16
	default:
		return 24
	}
}

func optString(lease *dhcpv4.DHCPv4, code dhcpv4.OptionCode) string {
	return strings.TrimRight(string(lease.Options.Get(code)), "\x00")
}

func optIPs(lease *dhcpv4.DHCPv4, code dhcpv4.OptionCode) []net.IP {
	data := lease.Options.Get(code)

	var ips []net.IP
	for len(data) >= 4 {
		ip := platform.CloneIP(net.IP(data[0:4]))
		data = data[4:]
		if platform.IPIsZero(ip) {
			continue
		}
		ips = append(ips, ip)
	}
	return ips
}
