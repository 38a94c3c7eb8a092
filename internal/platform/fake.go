package platform

import (
	"fmt"
	"sync"

	"grimm.is/floe/internal/clock"
)

// FakeLink is one interface inside a Fake platform.
type FakeLink struct {
	Name    string
	Master  int
	MTU     int
	Up      bool
	Carrier bool
}

// Fake is an in-memory Platform for tests and dry runs. It honors the
// read-your-writes contract and records every mutating operation in Ops.
// Sync failures can be injected via the Fail* flags.
type Fake struct {
	mu     sync.Mutex
	links  map[int]*FakeLink
	addrs  map[int][]Address
	routes map[int][]Route

	// Clock stamps addresses seeded without a timestamp, the way the
	// kernel implementation stamps reads.
	Clock clock.Clock

	FailAddressSync bool
	FailRouteSync   bool
	FailRouteAdd    bool

	// Ops is the log of mutating operations, oldest first.
	Ops []string
}

var _ Platform = (*Fake)(nil)

// NewFake creates an empty fake platform.
func NewFake() *Fake {
	return &Fake{
		links:  make(map[int]*FakeLink),
		addrs:  make(map[int][]Address),
		routes: make(map[int][]Route),
		Clock:  &clock.RealClock{},
	}
}

// AddLink registers an interface. The returned FakeLink may be mutated to
// shape the scenario (master, carrier support, MTU).
func (f *Fake) AddLink(ifindex int, name string) *FakeLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := &FakeLink{Name: name, MTU: 1500, Up: true, Carrier: true}
	f.links[ifindex] = l
	return l
}

// SetAddresses seeds the interface's address set without logging an op.
func (f *Fake) SetAddresses(ifindex int, addrs []Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addrs[ifindex] = CloneAddresses(addrs)
}

// SetRoutes seeds the interface's route set without logging an op.
func (f *Fake) SetRoutes(ifindex int, routes []Route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[ifindex] = CloneRoutes(routes)
}

func (f *Fake) logOp(format string, args ...any) {
	f.Ops = append(f.Ops, fmt.Sprintf(format, args...))
}

func (f *Fake) linkName(ifindex int) string {
	if l, ok := f.links[ifindex]; ok {
		return l.Name
	}
	return fmt.Sprintf("if%d", ifindex)
}

// LinkIndexByName resolves a name to an index.
func (f *Fake) LinkIndexByName(name string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx, l := range f.links {
		if l.Name == name {
			return idx, nil
		}
	}
	return 0, fmt.Errorf("looking up link %s: no such interface", name)
}

// LinkName resolves an index to a name.
func (f *Fake) LinkName(ifindex int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[ifindex]; ok {
		return l.Name, nil
	}
	return "", fmt.Errorf("looking up link %d: no such interface", ifindex)
}

// LinkGetMaster returns the configured master index, 0 if none.
func (f *Fake) LinkGetMaster(ifindex int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[ifindex]; ok {
		return l.Master
	}
	return 0
}

// LinkGetMTU returns the link MTU, 0 for unknown links.
func (f *Fake) LinkGetMTU(ifindex int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[ifindex]; ok {
		return l.MTU
	}
	return 0
}

// LinkSetMTU sets the link MTU.
func (f *Fake) LinkSetMTU(ifindex, mtu int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[ifindex]
	if !ok {
		return fmt.Errorf("looking up link %d: no such interface", ifindex)
	}
	l.MTU = mtu
	f.logOp("link set %s mtu %d", l.Name, mtu)
	return nil
}

// LinkSetUp brings the link up.
func (f *Fake) LinkSetUp(ifindex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[ifindex]
	if !ok {
		return fmt.Errorf("looking up link %d: no such interface", ifindex)
	}
	l.Up = true
	f.logOp("link set %s up", l.Name)
	return nil
}

// LinkSetDown brings the link down.
func (f *Fake) LinkSetDown(ifindex int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.links[ifindex]
	if !ok {
		return fmt.Errorf("looking up link %d: no such interface", ifindex)
	}
	l.Up = false
	f.logOp("link set %s down", l.Name)
	return nil
}

// LinkSupportsCarrierDetect reports the configured carrier capability.
func (f *Fake) LinkSupportsCarrierDetect(ifindex int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[ifindex]; ok {
		return l.Carrier
	}
	return false
}

// AddressGetAll returns a copy of the interface's address set.
func (f *Fake) AddressGetAll(ifindex int) []Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := CloneAddresses(f.addrs[ifindex])
	now := f.Clock.Now()
	for i := range out {
		if out[i].Timestamp.IsZero() {
			out[i].Timestamp = now
		}
	}
	return out
}

// AddressSync replaces the interface's address set with known.
func (f *Fake) AddressSync(ifindex int, known []Address, defaultRouteMetric uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAddressSync {
		f.logOp("addr sync %s FAILED", f.linkName(ifindex))
		return false
	}
	f.addrs[ifindex] = CloneAddresses(known)
	f.logOp("addr sync %s n=%d metric=%d", f.linkName(ifindex), len(known), defaultRouteMetric)
	return true
}

// RouteGetAll returns a copy of the interface's route set, filtered per mode.
func (f *Fake) RouteGetAll(ifindex int, mode RouteMode) []Route {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Route
	for i := range f.routes[ifindex] {
		r := &f.routes[ifindex][i]
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
		out = append(out, CloneRoute(r))
	}
	return out
}

// RouteAdd adds or replaces a single route.
func (f *Fake) RouteAdd(ifindex int, route Route) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRouteAdd {
		f.logOp("route add %s %s FAILED", f.linkName(ifindex), route.String())
		return false
	}
	existing := f.routes[ifindex]
	for i := range existing {
		if RoutesDuplicate(&existing[i], &route) && existing[i].Metric == route.Metric {
			existing[i] = CloneRoute(&route)
			f.logOp("route replace %s %s", f.linkName(ifindex), route.String())
			return true
		}
	}
	f.routes[ifindex] = append(existing, CloneRoute(&route))
	f.logOp("route add %s %s", f.linkName(ifindex), route.String())
	return true
}

// RouteSync replaces the interface's non-default route set with routes.
// Default routes already present survive, matching kernel behavior where
// the default route is managed separately.
func (f *Fake) RouteSync(ifindex int, routes []Route) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailRouteSync {
		f.logOp("route sync %s FAILED", f.linkName(ifindex))
		return false
	}
	var kept []Route
	for i := range f.routes[ifindex] {
		if f.routes[ifindex][i].PrefixLen == 0 {
			kept = append(kept, f.routes[ifindex][i])
		}
	}
	kept = append(kept, CloneRoutes(routes)...)
	f.routes[ifindex] = kept
	f.logOp("route sync %s n=%d", f.linkName(ifindex), len(routes))
	return true
}
