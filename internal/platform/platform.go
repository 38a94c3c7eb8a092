package platform

import (
	"fmt"
	"net"
	"time"
)

// LifetimeForever marks an address lifetime as permanent.
const LifetimeForever = ^uint32(0)

// Source ranks where a configuration fact originated. Higher values win
// when the same network object is asserted by two origins.
type Source int

const (
	SourceUnknown Source = iota
	SourceKernel
	SourceShared
	SourceVPN
	SourceDHCP
	SourceUser
)

// String returns the lowercase name of the source.
func (s Source) String() string {
	switch s {
	case SourceKernel:
		return "kernel"
	case SourceShared:
		return "shared"
	case SourceVPN:
		return "vpn"
	case SourceDHCP:
		return "dhcp"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// MaxSource returns the higher-priority of two sources.
func MaxSource(a, b Source) Source {
	if a > b {
		return a
	}
	return b
}

// Address is one IPv4 address on an interface.
//
// Lifetime and Preferred are in seconds, counting from Timestamp;
// LifetimeForever means the address never expires. Two addresses denote
// the same slot when IP and PrefixLen match; label, lifetimes and source
// are irrelevant to identity.
type Address struct {
	IP        net.IP
	PrefixLen int
	Label     string
	Timestamp time.Time
	Lifetime  uint32
	Preferred uint32
	Source    Source
}

// Route is one IPv4 route. A zero Gateway means the destination is
// directly reachable. Two routes denote the same slot when Network and
// PrefixLen match.
type Route struct {
	Network   net.IP
	PrefixLen int
	Gateway   net.IP
	Metric    uint32
	Source    Source
}

// RouteMode selects which routes RouteGetAll returns.
type RouteMode int

const (
	RouteModeAll         RouteMode = iota // everything, default routes included
	RouteModeNoDefault                    // skip default routes
	RouteModeOnlyDefault                  // default routes only
)

// Platform is the capability set over kernel networking state.
//
// Mutations are synchronous: a successful call's effect is visible to the
// next read on the same instance. AddressSync and RouteSync make the
// kernel's per-interface set match the given one and report failure as a
// boolean; they never report which entries failed.
type Platform interface {
	LinkIndexByName(name string) (int, error)
	LinkName(ifindex int) (string, error)
	LinkGetMaster(ifindex int) int
	LinkGetMTU(ifindex int) int
	LinkSetMTU(ifindex, mtu int) error
	LinkSetUp(ifindex int) error
	LinkSetDown(ifindex int) error
	LinkSupportsCarrierDetect(ifindex int) bool

	AddressGetAll(ifindex int) []Address
	AddressSync(ifindex int, known []Address, defaultRouteMetric uint32) bool

	RouteGetAll(ifindex int, mode RouteMode) []Route
	RouteAdd(ifindex int, route Route) bool
	RouteSync(ifindex int, routes []Route) bool
}

// IPIsZero reports whether ip is nil, empty or 0.0.0.0. The engine treats
// all three as "unset".
func IPIsZero(ip net.IP) bool {
	return len(ip) == 0 || ip.Equal(net.IPv4zero)
}

// IPEqual compares two IPs, treating every unset form as equal.
func IPEqual(a, b net.IP) bool {
	if IPIsZero(a) || IPIsZero(b) {
		return IPIsZero(a) && IPIsZero(b)
	}
	return a.Equal(b)
}

// AddressesDuplicate reports whether a and b denote the same address slot.
func AddressesDuplicate(a, b *Address) bool {
	return a.IP.Equal(b.IP) && a.PrefixLen == b.PrefixLen
}

// RoutesDuplicate reports whether a and b denote the same route slot.
func RoutesDuplicate(a, b *Route) bool {
	return IPEqual(a.Network, b.Network) && a.PrefixLen == b.PrefixLen
}

// Equal reports field-by-field equality, including the fields that are
// irrelevant to identity.
func (a *Address) Equal(b *Address) bool {
	return a.IP.Equal(b.IP) &&
		a.PrefixLen == b.PrefixLen &&
		a.Label == b.Label &&
		a.Timestamp.Equal(b.Timestamp) &&
		a.Lifetime == b.Lifetime &&
		a.Preferred == b.Preferred &&
		a.Source == b.Source
}

// Equal reports field-by-field equality.
func (r *Route) Equal(b *Route) bool {
	return IPEqual(r.Network, b.Network) &&
		r.PrefixLen == b.PrefixLen &&
		IPEqual(r.Gateway, b.Gateway) &&
		r.Metric == b.Metric &&
		r.Source == b.Source
}

// LifetimeLater reports whether a's valid lifetime ends strictly after
// b's. A permanent lifetime ends after any finite one.
func (a *Address) LifetimeLater(b *Address) bool {
	if a.Lifetime == LifetimeForever {
		return b.Lifetime != LifetimeForever
	}
	if b.Lifetime == LifetimeForever {
		return false
	}
	return a.Timestamp.Add(time.Duration(a.Lifetime) * time.Second).
		After(b.Timestamp.Add(time.Duration(b.Lifetime) * time.Second))
}

// String renders the address in CIDR notation.
func (a *Address) String() string {
	return fmt.Sprintf("%s/%d", a.IP, a.PrefixLen)
}

// String renders the route the way ip-route does.
func (r *Route) String() string {
	dst := fmt.Sprintf("%s/%d", r.Network, r.PrefixLen)
	if r.PrefixLen == 0 {
		dst = "default"
	}
	if IPIsZero(r.Gateway) {
		return fmt.Sprintf("%s metric %d", dst, r.Metric)
	}
	return fmt.Sprintf("%s via %s metric %d", dst, r.Gateway, r.Metric)
}

// CloneIP returns a copy of ip with its own backing array.
func CloneIP(ip net.IP) net.IP {
	if ip == nil {
		return nil
	}
	out := make(net.IP, len(ip))
	copy(out, ip)
	return out
}

// CloneAddress returns a deep copy of a.
func CloneAddress(a *Address) Address {
	out := *a
	out.IP = CloneIP(a.IP)
	return out
}

// CloneRoute returns a deep copy of r.
func CloneRoute(r *Route) Route {
	out := *r
	out.Network = CloneIP(r.Network)
	out.Gateway = CloneIP(r.Gateway)
	return out
}

// CloneAddresses returns a deep copy of addrs.
func CloneAddresses(addrs []Address) []Address {
	if addrs == nil {
		return nil
	}
	out := make([]Address, len(addrs))
	for i := range addrs {
		out[i] = CloneAddress(&addrs[i])
	}
	return out
}

// CloneRoutes returns a deep copy of routes.
func CloneRoutes(routes []Route) []Route {
	if routes == nil {
		return nil
	}
	out := make([]Route, len(routes))
	for i := range routes {
		out[i] = CloneRoute(&routes[i])
	}
	return out
}
