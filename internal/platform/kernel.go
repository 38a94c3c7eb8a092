package platform

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"

	"grimm.is/floe/internal/clock"
	"grimm.is/floe/internal/logging"
)

// Route origin values from rtnetlink (linux/rtnetlink.h). Defined locally
// so the conversion helpers build on non-Linux development hosts.
const (
	rtProtoKernel = 2  // RTPROT_KERNEL
	rtProtoBoot   = 3  // RTPROT_BOOT
	rtProtoStatic = 4  // RTPROT_STATIC
	rtProtoDHCP   = 16 // RTPROT_DHCP
)

// Kernel is the Platform implementation backed by the running kernel.
type Kernel struct {
	nl  Netlinker
	clk clock.Clock
	log *logging.Logger
}

var _ Platform = (*Kernel)(nil)

// NewKernel returns a Platform talking to the running kernel via netlink.
func NewKernel() *Kernel {
	return &Kernel{
		nl:  &RealNetlinker{},
		clk: &clock.RealClock{},
		log: logging.WithComponent("platform"),
	}
}

// LinkIndexByName resolves an interface name to its index.
func (k *Kernel) LinkIndexByName(name string) (int, error) {
	link, err := k.nl.LinkByName(name)
	if err != nil {
		return 0, fmt.Errorf("looking up link %s: %w", name, err)
	}
	return link.Attrs().Index, nil
}

// LinkName resolves an interface index to its name.
func (k *Kernel) LinkName(ifindex int) (string, error) {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return "", fmt.Errorf("looking up link %d: %w", ifindex, err)
	}
	return link.Attrs().Name, nil
}

// LinkGetMaster returns the master interface index, or 0 if the interface
// is not enslaved (or cannot be read).
func (k *Kernel) LinkGetMaster(ifindex int) int {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return 0
	}
	return link.Attrs().MasterIndex
}

// LinkGetMTU returns the interface MTU, or 0 if it cannot be read.
func (k *Kernel) LinkGetMTU(ifindex int) int {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return 0
	}
	return link.Attrs().MTU
}

// LinkSetMTU sets the interface MTU.
func (k *Kernel) LinkSetMTU(ifindex, mtu int) error {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return fmt.Errorf("looking up link %d: %w", ifindex, err)
	}
	if err := k.nl.LinkSetMTU(link, mtu); err != nil {
		return fmt.Errorf("setting mtu %d on %s: %w", mtu, link.Attrs().Name, err)
	}
	return nil
}

// LinkSetUp brings the interface up.
func (k *Kernel) LinkSetUp(ifindex int) error {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return fmt.Errorf("looking up link %d: %w", ifindex, err)
	}
	return k.nl.LinkSetUp(link)
}

// LinkSetDown brings the interface down.
func (k *Kernel) LinkSetDown(ifindex int) error {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		return fmt.Errorf("looking up link %d: %w", ifindex, err)
	}
	return k.nl.LinkSetDown(link)
}

// AddressGetAll returns all IPv4 addresses on the interface. Read failures
// yield an empty list.
func (k *Kernel) AddressGetAll(ifindex int) []Address {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		k.log.Warn("link lookup failed", "ifindex", ifindex, "error", err)
		return nil
	}
	nlAddrs, err := k.nl.AddrList(link, unix.AF_INET)
	if err != nil {
		k.log.Warn("address list failed", "ifindex", ifindex, "error", err)
		return nil
	}

	now := k.clk.Now()
	var out []Address
	for i := range nlAddrs {
		a := &nlAddrs[i]
		if a.IPNet == nil {
			continue
		}
		ip := a.IPNet.IP.To4()
		if ip == nil {
			continue
		}
		plen, _ := a.IPNet.Mask.Size()
		out = append(out, Address{
			IP:        CloneIP(ip),
			PrefixLen: plen,
			Label:     a.Label,
			Timestamp: now,
			Lifetime:  lifetimeFromKernel(a.ValidLft),
			Preferred: lifetimeFromKernel(a.PreferedLft),
			Source:    SourceKernel,
		})
	}
	return out
}

// AddressSync makes the interface's IPv4 address set match known. Stale
// addresses are deleted, known ones (re)applied with their lifetimes.
// When defaultRouteMetric is non-zero, kernel-created prefix routes are
// re-added with that metric instead of the kernel default of 0.
func (k *Kernel) AddressSync(ifindex int, known []Address, defaultRouteMetric uint32) bool {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		k.log.Warn("link lookup failed", "ifindex", ifindex, "error", err)
		return false
	}
	current, err := k.nl.AddrList(link, unix.AF_INET)
	if err != nil {
		k.log.Warn("address list failed", "ifindex", ifindex, "error", err)
		return false
	}

	// Delete kernel addresses we no longer want.
	for i := range current {
		cur := &current[i]
		if cur.IPNet == nil || cur.IPNet.IP.To4() == nil {
			continue
		}
		plen, _ := cur.IPNet.Mask.Size()
		wanted := false
		for j := range known {
			if known[j].IP.Equal(cur.IPNet.IP) && known[j].PrefixLen == plen {
				wanted = true
				break
			}
		}
		if !wanted {
			if err := k.nl.AddrDel(link, cur); err != nil {
				k.log.Warn("address delete failed", "addr", cur.IPNet.String(), "error", err)
			}
		}
	}

	// (Re)apply the known set.
	ok := true
	for i := range known {
		if err := k.nl.AddrReplace(link, addrToNetlink(&known[i])); err != nil {
			k.log.Warn("address replace failed", "addr", known[i].String(), "error", err)
			ok = false
		}
	}

	if defaultRouteMetric != 0 {
		k.fixPrefixRouteMetric(link, known, defaultRouteMetric)
	}
	return ok
}

// RouteGetAll returns the interface's IPv4 routes, filtered per mode.
// Read failures yield an empty list.
func (k *Kernel) RouteGetAll(ifindex int, mode RouteMode) []Route {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		k.log.Warn("link lookup failed", "ifindex", ifindex, "error", err)
		return nil
	}
	nlRoutes, err := k.nl.RouteList(link, unix.AF_INET)
	if err != nil {
		k.log.Warn("route list failed", "ifindex", ifindex, "error", err)
		return nil
	}

	var out []Route
	for i := range nlRoutes {
		r := routeFromNetlink(&nlRoutes[i])
		if r == nil {
			continue
		}
		switch mode {
		case RouteModeNoDefault:
			if r.PrefixLen == 0 {
				continue
			}
		case RouteModeOnlyDefault:
			if r.PrefixLen != 0 {
				continue
			}
		}
		out = append(out, *r)
	}
	return out
}

// RouteAdd adds (or replaces) a single route on the interface.
func (k *Kernel) RouteAdd(ifindex int, route Route) bool {
	if err := k.nl.RouteReplace(routeToNetlink(ifindex, &route)); err != nil {
		k.log.Warn("route add failed", "route", route.String(), "error", err)
		return false
	}
	return true
}

// RouteSync makes the interface's non-default route set match routes.
// Default routes and kernel-created prefix routes are left alone.
func (k *Kernel) RouteSync(ifindex int, routes []Route) bool {
	link, err := k.nl.LinkByIndex(ifindex)
	if err != nil {
		k.log.Warn("link lookup failed", "ifindex", ifindex, "error", err)
		return false
	}
	current, err := k.nl.RouteList(link, unix.AF_INET)
	if err != nil {
		k.log.Warn("route list failed", "ifindex", ifindex, "error", err)
		return false
	}

	for i := range current {
		cur := &current[i]
		if cur.Dst == nil {
			continue
		}
		ip := cur.Dst.IP.To4()
		if ip == nil {
			continue
		}
		plen, _ := cur.Dst.Mask.Size()
		if plen == 0 || int(cur.Protocol) == rtProtoKernel {
			continue
		}
		wanted := false
		for j := range routes {
			if IPEqual(routes[j].Network, ip) && routes[j].PrefixLen == plen {
				wanted = true
				break
			}
		}
		if !wanted {
			if err := k.nl.RouteDel(cur); err != nil {
				k.log.Warn("route delete failed", "route", cur.Dst.String(), "error", err)
			}
		}
	}

	ok := true
	for i := range routes {
		if err := k.nl.RouteReplace(routeToNetlink(ifindex, &routes[i])); err != nil {
			k.log.Warn("route replace failed", "route", routes[i].String(), "error", err)
			ok = false
		}
	}
	return ok
}

// fixPrefixRouteMetric re-adds kernel-created prefix routes with the given
// metric. The kernel installs them with metric 0 when an address is added;
// a configured route metric should win consistently.
func (k *Kernel) fixPrefixRouteMetric(link netlink.Link, known []Address, metric uint32) {
	routes, err := k.nl.RouteList(link, unix.AF_INET)
	if err != nil {
		return
	}
	for i := range known {
		if known[i].PrefixLen >= 32 {
			continue
		}
		subnet := known[i].IP.Mask(net.CIDRMask(known[i].PrefixLen, 32))
		for j := range routes {
			r := &routes[j]
			if r.Dst == nil || int(r.Protocol) != rtProtoKernel {
				continue
			}
			plen, _ := r.Dst.Mask.Size()
			if plen != known[i].PrefixLen || !r.Dst.IP.Equal(subnet) || r.Priority == int(metric) {
				continue
			}
			repl := *r
			repl.Priority = int(metric)
			if err := k.nl.RouteReplace(&repl); err != nil {
				k.log.Warn("prefix route replace failed", "route", r.Dst.String(), "error", err)
				continue
			}
			if err := k.nl.RouteDel(r); err != nil {
				k.log.Warn("prefix route delete failed", "route", r.Dst.String(), "error", err)
			}
		}
	}
}

func lifetimeFromKernel(v int) uint32 {
	if v <= 0 || int64(v) >= int64(LifetimeForever) {
		return LifetimeForever
	}
	return uint32(v)
}

func addrToNetlink(a *Address) *netlink.Addr {
	nlAddr := &netlink.Addr{
		IPNet: &net.IPNet{IP: CloneIP(a.IP), Mask: net.CIDRMask(a.PrefixLen, 32)},
		Label: a.Label,
	}
	if a.Lifetime != 0 && a.Lifetime != LifetimeForever {
		nlAddr.ValidLft = int(a.Lifetime)
		nlAddr.PreferedLft = int(a.Preferred)
	}
	return nlAddr
}

func routeFromNetlink(nr *netlink.Route) *Route {
	r := &Route{
		Network: CloneIP(net.IPv4zero.To4()),
		Metric:  uint32(nr.Priority),
	}
	if nr.Dst != nil {
		ip := nr.Dst.IP.To4()
		if ip == nil {
			return nil
		}
		plen, _ := nr.Dst.Mask.Size()
		r.Network = CloneIP(ip)
		r.PrefixLen = plen
	}
	if gw := nr.Gw.To4(); gw != nil {
		r.Gateway = CloneIP(gw)
	}
	switch int(nr.Protocol) {
	case rtProtoKernel:
		r.Source = SourceKernel
	case rtProtoDHCP:
		r.Source = SourceDHCP
	case rtProtoStatic:
		r.Source = SourceUser
	default:
		r.Source = SourceUnknown
	}
	return r
}

func routeToNetlink(ifindex int, r *Route) *netlink.Route {
	nr := &netlink.Route{
		LinkIndex: ifindex,
		Priority:  int(r.Metric),
		Protocol:  protoForSource(r.Source),
	}
	if r.PrefixLen > 0 {
		nr.Dst = &net.IPNet{IP: CloneIP(r.Network), Mask: net.CIDRMask(r.PrefixLen, 32)}
	}
	if !IPIsZero(r.Gateway) {
		nr.Gw = CloneIP(r.Gateway)
	} else {
		nr.Scope = netlink.SCOPE_LINK
	}
	return nr
}

func protoForSource(s Source) netlink.RouteProtocol {
	switch s {
	case SourceKernel:
		return rtProtoKernel
	case SourceDHCP:
		return rtProtoDHCP
	case SourceUser:
		return rtProtoStatic
	default:
		return rtProtoBoot
	}
}
