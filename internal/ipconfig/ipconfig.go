package ipconfig

import (
	"fmt"
	"net"
	"strings"
	"sync/atomic"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/platform"
)

// Config is the IPv4 configuration of one interface: addresses, routes,
// gateway, DNS, NIS, WINS, MSS and MTU, each tagged with the source that
// asserted it. The zero value is an empty, unexported config.
//
// Configs are not safe for concurrent use. One owner mutates at a time.
type Config struct {
	path string

	neverDefault bool
	gateway      net.IP
	addresses    []platform.Address
	routes       []platform.Route
	nameservers  []net.IP
	domains      []string
	searches     []string
	mss          uint32
	mtu          uint32
	mtuSource    platform.Source
	nisServers   []net.IP
	nisDomain    string
	winsServers  []net.IP

	hub     *events.Hub
	frozen  bool
	pending []events.EventType
}

// New returns an empty config with no hub attached.
func New() *Config {
	return &Config{}
}

// SetHub attaches an event hub. Subsequent changes to evented field
// groups publish one event per group change.
func (c *Config) SetHub(hub *events.Hub) {
	c.hub = hub
}

// notify records a change to one field group. While the config is
// frozen the group is queued (once); otherwise the event goes out
// immediately.
func (c *Config) notify(t events.EventType) {
	if c.frozen {
		for _, p := range c.pending {
			if p == t {
				return
			}
		}
		c.pending = append(c.pending, t)
		return
	}
	c.emit(t)
}

func (c *Config) emit(t events.EventType) {
	if c.hub == nil {
		return
	}
	c.hub.EmitConfigChange(t, c.path, strings.TrimPrefix(string(t), "ipconfig."))
}

// freezeNotify queues change events instead of publishing them, so a
// compound operation collapses to one event per touched group.
func (c *Config) freezeNotify() {
	c.frozen = true
}

// thawNotify publishes the queued events in the order the groups were
// first touched.
func (c *Config) thawNotify() {
	c.frozen = false
	pending := c.pending
	c.pending = nil
	for _, t := range pending {
		c.emit(t)
	}
}

// NeverDefault reports whether this interface must not carry the
// default route.
func (c *Config) NeverDefault() bool {
	return c.neverDefault
}

// SetNeverDefault sets the never-default flag. The flag is bookkeeping,
// not semantic content: no event is published.
func (c *Config) SetNeverDefault(never bool) {
	c.neverDefault = never
}

// Gateway returns the default gateway, or nil when unset.
func (c *Config) Gateway() net.IP {
	return platform.CloneIP(c.gateway)
}

// SetGateway sets the default gateway. A nil or zero IP clears it.
func (c *Config) SetGateway(gw net.IP) {
	if platform.IPEqual(c.gateway, gw) {
		return
	}
	c.gateway = normIP(gw)
	c.notify(events.EventConfigGateway)
}

// NumAddresses returns the number of addresses.
func (c *Config) NumAddresses() int {
	return len(c.addresses)
}

// Address returns a copy of the i-th address.
func (c *Config) Address(i int) platform.Address {
	return platform.CloneAddress(&c.addresses[i])
}

// Addresses returns a copy of all addresses.
func (c *Config) Addresses() []platform.Address {
	return platform.CloneAddresses(c.addresses)
}

// AddAddress adds an address, or merges it into the existing entry with
// the same IP and prefix length. On merge the higher-priority source
// wins, and the established lifetime is kept when the new entry merely
// restates kernel knowledge or would end earlier.
func (c *Config) AddAddress(addr platform.Address) {
	for i := range c.addresses {
		item := &c.addresses[i]
		if !platform.AddressesDuplicate(item, &addr) {
			continue
		}
		if item.Equal(&addr) {
			return
		}

		old := *item
		*item = platform.CloneAddress(&addr)
		item.Source = platform.MaxSource(old.Source, addr.Source)

		if (addr.Source == platform.SourceKernel && addr.Source != old.Source) ||
			old.LifetimeLater(&addr) {
			item.Timestamp = old.Timestamp
			item.Lifetime = old.Lifetime
			item.Preferred = old.Preferred
		}

		if !old.Equal(item) {
			c.notify(events.EventConfigAddresses)
		}
		return
	}

	c.addresses = append(c.addresses, platform.CloneAddress(&addr))
	c.notify(events.EventConfigAddresses)
}

// DelAddress removes the i-th address.
func (c *Config) DelAddress(i int) {
	c.addresses = append(c.addresses[:i], c.addresses[i+1:]...)
	c.notify(events.EventConfigAddresses)
}

// ResetAddresses removes all addresses.
func (c *Config) ResetAddresses() {
	if len(c.addresses) == 0 {
		return
	}
	c.addresses = nil
	c.notify(events.EventConfigAddresses)
}

// NumRoutes returns the number of routes.
func (c *Config) NumRoutes() int {
	return len(c.routes)
}

// Route returns a copy of the i-th route.
func (c *Config) Route(i int) platform.Route {
	return platform.CloneRoute(&c.routes[i])
}

// Routes returns a copy of all routes.
func (c *Config) Routes() []platform.Route {
	return platform.CloneRoutes(c.routes)
}

// AddRoute adds a route, or merges it into the existing entry with the
// same network and prefix length. On merge the new route's content wins
// and the higher-priority source is kept. Default routes never live in
// the route list; a zero prefix length panics.
func (c *Config) AddRoute(route platform.Route) {
	if route.PrefixLen <= 0 {
		panic("ipconfig: route prefix length must be positive")
	}

	for i := range c.routes {
		item := &c.routes[i]
		if !platform.RoutesDuplicate(item, &route) {
			continue
		}
		if item.Equal(&route) {
			return
		}

		src := item.Source
		*item = platform.CloneRoute(&route)
		item.Source = platform.MaxSource(src, route.Source)
		c.notify(events.EventConfigRoutes)
		return
	}

	c.routes = append(c.routes, platform.CloneRoute(&route))
	c.notify(events.EventConfigRoutes)
}

// DelRoute removes the i-th route.
func (c *Config) DelRoute(i int) {
	c.routes = append(c.routes[:i], c.routes[i+1:]...)
	c.notify(events.EventConfigRoutes)
}

// ResetRoutes removes all routes.
func (c *Config) ResetRoutes() {
	if len(c.routes) == 0 {
		return
	}
	c.routes = nil
	c.notify(events.EventConfigRoutes)
}

// NumNameservers returns the number of DNS nameservers.
func (c *Config) NumNameservers() int {
	return len(c.nameservers)
}

// Nameserver returns the i-th nameserver.
func (c *Config) Nameserver(i int) net.IP {
	return platform.CloneIP(c.nameservers[i])
}

// Nameservers returns a copy of all nameservers.
func (c *Config) Nameservers() []net.IP {
	return cloneIPs(c.nameservers)
}

// AddNameserver appends a nameserver unless already present. A zero
// nameserver panics.
func (c *Config) AddNameserver(ns net.IP) {
	if platform.IPIsZero(ns) {
		panic("ipconfig: nameserver must not be zero")
	}
	for _, existing := range c.nameservers {
		if existing.Equal(ns) {
			return
		}
	}
	c.nameservers = append(c.nameservers, normIP(ns))
	c.notify(events.EventConfigNameservers)
}

// DelNameserver removes the i-th nameserver.
func (c *Config) DelNameserver(i int) {
	c.nameservers = append(c.nameservers[:i], c.nameservers[i+1:]...)
	c.notify(events.EventConfigNameservers)
}

// ResetNameservers removes all nameservers.
func (c *Config) ResetNameservers() {
	if len(c.nameservers) == 0 {
		return
	}
	c.nameservers = nil
	c.notify(events.EventConfigNameservers)
}

// NumDomains returns the number of DNS domains.
func (c *Config) NumDomains() int {
	return len(c.domains)
}

// Domain returns the i-th domain.
func (c *Config) Domain(i int) string {
	return c.domains[i]
}

// Domains returns a copy of all domains.
func (c *Config) Domains() []string {
	return cloneStrings(c.domains)
}

// AddDomain appends a domain unless already present. An empty domain
// panics.
func (c *Config) AddDomain(domain string) {
	if domain == "" {
		panic("ipconfig: domain must not be empty")
	}
	for _, existing := range c.domains {
		if existing == domain {
			return
		}
	}
	c.domains = append(c.domains, domain)
	c.notify(events.EventConfigDomains)
}

// DelDomain removes the i-th domain.
func (c *Config) DelDomain(i int) {
	c.domains = append(c.domains[:i], c.domains[i+1:]...)
	c.notify(events.EventConfigDomains)
}

// ResetDomains removes all domains.
func (c *Config) ResetDomains() {
	if len(c.domains) == 0 {
		return
	}
	c.domains = nil
	c.notify(events.EventConfigDomains)
}

// NumSearches returns the number of DNS search domains.
func (c *Config) NumSearches() int {
	return len(c.searches)
}

// Search returns the i-th search domain.
func (c *Config) Search(i int) string {
	return c.searches[i]
}

// Searches returns a copy of all search domains.
func (c *Config) Searches() []string {
	return cloneStrings(c.searches)
}

// AddSearch appends a search domain unless already present. An empty
// search domain panics.
func (c *Config) AddSearch(search string) {
	if search == "" {
		panic("ipconfig: search domain must not be empty")
	}
	for _, existing := range c.searches {
		if existing == search {
			return
		}
	}
	c.searches = append(c.searches, search)
	c.notify(events.EventConfigSearches)
}

// DelSearch removes the i-th search domain.
func (c *Config) DelSearch(i int) {
	c.searches = append(c.searches[:i], c.searches[i+1:]...)
	c.notify(events.EventConfigSearches)
}

// ResetSearches removes all search domains.
func (c *Config) ResetSearches() {
	if len(c.searches) == 0 {
		return
	}
	c.searches = nil
	c.notify(events.EventConfigSearches)
}

// MSS returns the TCP maximum segment size, 0 when unset.
func (c *Config) MSS() uint32 {
	return c.mss
}

// SetMSS sets the TCP maximum segment size.
func (c *Config) SetMSS(mss uint32) {
	c.mss = mss
}

// MTU returns the interface MTU, 0 when unset.
func (c *Config) MTU() uint32 {
	return c.mtu
}

// MTUSource returns the source that asserted the MTU.
func (c *Config) MTUSource() platform.Source {
	return c.mtuSource
}

// SetMTU sets the MTU subject to source priority: a higher-priority
// source overwrites outright, an equal-priority source can only lower
// the value or fill an unset one, a lower-priority source is ignored.
func (c *Config) SetMTU(mtu uint32, source platform.Source) {
	if source > c.mtuSource {
		c.mtu = mtu
		c.mtuSource = source
	} else if source == c.mtuSource && (c.mtu == 0 || c.mtu > mtu) {
		c.mtu = mtu
	}
}

// NumNISServers returns the number of NIS servers.
func (c *Config) NumNISServers() int {
	return len(c.nisServers)
}

// NISServer returns the i-th NIS server.
func (c *Config) NISServer(i int) net.IP {
	return platform.CloneIP(c.nisServers[i])
}

// NISServers returns a copy of all NIS servers.
func (c *Config) NISServers() []net.IP {
	return cloneIPs(c.nisServers)
}

// AddNISServer appends a NIS server unless already present. Zero
// servers are dropped.
func (c *Config) AddNISServer(nis net.IP) {
	if platform.IPIsZero(nis) {
		return
	}
	for _, existing := range c.nisServers {
		if existing.Equal(nis) {
			return
		}
	}
	c.nisServers = append(c.nisServers, normIP(nis))
	c.notify(events.EventConfigNISServers)
}

// DelNISServer removes the i-th NIS server.
func (c *Config) DelNISServer(i int) {
	c.nisServers = append(c.nisServers[:i], c.nisServers[i+1:]...)
	c.notify(events.EventConfigNISServers)
}

// ResetNISServers removes all NIS servers.
func (c *Config) ResetNISServers() {
	if len(c.nisServers) == 0 {
		return
	}
	c.nisServers = nil
	c.notify(events.EventConfigNISServers)
}

// NISDomain returns the NIS domain, empty when unset.
func (c *Config) NISDomain() string {
	return c.nisDomain
}

// SetNISDomain sets the NIS domain.
func (c *Config) SetNISDomain(domain string) {
	c.nisDomain = domain
}

// NumWINSServers returns the number of WINS servers.
func (c *Config) NumWINSServers() int {
	return len(c.winsServers)
}

// WINSServer returns the i-th WINS server.
func (c *Config) WINSServer(i int) net.IP {
	return platform.CloneIP(c.winsServers[i])
}

// WINSServers returns a copy of all WINS servers.
func (c *Config) WINSServers() []net.IP {
	return cloneIPs(c.winsServers)
}

// AddWINSServer appends a WINS server unless already present. A zero
// server panics.
func (c *Config) AddWINSServer(wins net.IP) {
	if platform.IPIsZero(wins) {
		panic("ipconfig: wins server must not be zero")
	}
	for _, existing := range c.winsServers {
		if existing.Equal(wins) {
			return
		}
	}
	c.winsServers = append(c.winsServers, normIP(wins))
	c.notify(events.EventConfigWINSServers)
}

// DelWINSServer removes the i-th WINS server.
func (c *Config) DelWINSServer(i int) {
	c.winsServers = append(c.winsServers[:i], c.winsServers[i+1:]...)
	c.notify(events.EventConfigWINSServers)
}

// ResetWINSServers removes all WINS servers.
func (c *Config) ResetWINSServers() {
	if len(c.winsServers) == 0 {
		return
	}
	c.winsServers = nil
	c.notify(events.EventConfigWINSServers)
}

// exportCounter numbers exported configs process-wide.
var exportCounter atomic.Uint32

// Export assigns the config a stable export path on first call and
// returns it. The path never changes afterwards.
func (c *Config) Export() string {
	if c.path == "" {
		c.path = fmt.Sprintf("/%s/ip4config/%d", brand.LowerName, exportCounter.Add(1))
	}
	return c.path
}

// Path returns the export path, empty if the config was never exported.
func (c *Config) Path() string {
	return c.path
}

// normIP normalizes an IPv4 value for storage: 4-byte form with its own
// backing array, nil when unset.
func normIP(ip net.IP) net.IP {
	if platform.IPIsZero(ip) {
		return nil
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil
	}
	return platform.CloneIP(v4)
}

// samePrefix reports whether a and b agree on their first plen bits.
func samePrefix(a, b net.IP, plen int) bool {
	mask := net.CIDRMask(plen, 32)
	a4, b4 := a.To4(), b.To4()
	if a4 == nil || b4 == nil {
		return false
	}
	return a4.Mask(mask).Equal(b4.Mask(mask))
}

func cloneIPs(ips []net.IP) []net.IP {
	if ips == nil {
		return nil
	}
	out := make([]net.IP, len(ips))
	for i := range ips {
		out[i] = platform.CloneIP(ips[i])
	}
	return out
}

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
