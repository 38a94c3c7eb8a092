package ipconfig

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/platform"
)

func testIP(s string) net.IP {
	return net.ParseIP(s).To4()
}

func testAddr(s string, plen int, src platform.Source) platform.Address {
	return platform.Address{
		IP:        testIP(s),
		PrefixLen: plen,
		Lifetime:  platform.LifetimeForever,
		Preferred: platform.LifetimeForever,
		Source:    src,
	}
}

func testRoute(network string, plen int, gw string, metric uint32, src platform.Source) platform.Route {
	r := platform.Route{
		Network:   testIP(network),
		PrefixLen: plen,
		Metric:    metric,
		Source:    src,
	}
	if gw != "" {
		r.Gateway = testIP(gw)
	}
	return r
}

func drainEvents(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-ch:
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestAddAddress(t *testing.T) {
	t.Run("AppendAndIdempotentReAdd", func(t *testing.T) {
		c := New()
		hub := events.NewHub()
		c.SetHub(hub)
		ch := hub.Subscribe(16)

		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))
		require.Equal(t, 1, c.NumAddresses())
		require.Len(t, drainEvents(ch), 1)

		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))
		assert.Equal(t, 1, c.NumAddresses())
		assert.Empty(t, drainEvents(ch), "bit-identical re-add must be silent")
	})

	t.Run("OverwriteSameIdentity", func(t *testing.T) {
		c := New()
		hub := events.NewHub()
		c.SetHub(hub)
		ch := hub.Subscribe(16)

		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))
		drainEvents(ch)

		relabeled := testAddr("192.168.1.10", 24, platform.SourceUser)
		relabeled.Label = "eth0:1"
		c.AddAddress(relabeled)

		require.Equal(t, 1, c.NumAddresses())
		assert.Equal(t, "eth0:1", c.Address(0).Label)
		assert.Len(t, drainEvents(ch), 1)
	})

	t.Run("DifferentPrefixIsDifferentAddress", func(t *testing.T) {
		c := New()
		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))
		c.AddAddress(testAddr("192.168.1.10", 16, platform.SourceUser))
		assert.Equal(t, 2, c.NumAddresses())
	})

	t.Run("KernelReAddKeepsSourceAndLifetime", func(t *testing.T) {
		c := New()
		c.AddAddress(testAddr("10.0.0.5", 24, platform.SourceUser))

		fromKernel := platform.Address{
			IP:        testIP("10.0.0.5"),
			PrefixLen: 24,
			Timestamp: time.Unix(1000, 0),
			Lifetime:  3600,
			Preferred: 1800,
			Source:    platform.SourceKernel,
		}
		c.AddAddress(fromKernel)

		got := c.Address(0)
		assert.Equal(t, platform.SourceUser, got.Source, "higher-priority source must win")
		assert.Equal(t, platform.LifetimeForever, got.Lifetime, "established lifetime must survive a kernel readback")
		assert.Equal(t, platform.LifetimeForever, got.Preferred)
		assert.True(t, got.Timestamp.IsZero())
	})

	t.Run("LaterLifetimeKept", func(t *testing.T) {
		t0 := time.Unix(5000, 0)
		c := New()

		long := platform.Address{
			IP: testIP("10.0.0.5"), PrefixLen: 24,
			Timestamp: t0, Lifetime: 600, Preferred: 600,
			Source: platform.SourceDHCP,
		}
		c.AddAddress(long)

		short := long
		short.Lifetime = 300
		short.Preferred = 300
		c.AddAddress(short)
		assert.Equal(t, uint32(600), c.Address(0).Lifetime, "an earlier expiry must not shorten the address")

		renewed := long
		renewed.Lifetime = 1200
		renewed.Preferred = 1200
		c.AddAddress(renewed)
		assert.Equal(t, uint32(1200), c.Address(0).Lifetime, "a later expiry must extend the address")
	})
}

func TestDelResetAddresses(t *testing.T) {
	c := New()
	hub := events.NewHub()
	c.SetHub(hub)
	ch := hub.Subscribe(16)

	c.AddAddress(testAddr("10.0.0.1", 24, platform.SourceUser))
	c.AddAddress(testAddr("10.0.0.2", 24, platform.SourceUser))
	drainEvents(ch)

	c.DelAddress(0)
	require.Equal(t, 1, c.NumAddresses())
	assert.Equal(t, "10.0.0.2", c.Address(0).IP.String())
	assert.Len(t, drainEvents(ch), 1)

	c.ResetAddresses()
	assert.Equal(t, 0, c.NumAddresses())
	assert.Len(t, drainEvents(ch), 1)

	c.ResetAddresses()
	assert.Empty(t, drainEvents(ch), "resetting an empty list must be silent")
}

func TestAddRoute(t *testing.T) {
	t.Run("AppendAndMerge", func(t *testing.T) {
		c := New()
		c.AddRoute(testRoute("10.1.0.0", 16, "192.168.1.1", 100, platform.SourceDHCP))
		c.AddRoute(testRoute("10.2.0.0", 16, "192.168.1.1", 100, platform.SourceDHCP))
		require.Equal(t, 2, c.NumRoutes())

		// Same destination from a stronger source: content overwritten,
		// stronger source kept.
		c.AddRoute(testRoute("10.1.0.0", 16, "192.168.1.254", 50, platform.SourceUser))
		require.Equal(t, 2, c.NumRoutes())
		got := c.Route(0)
		assert.Equal(t, "192.168.1.254", got.Gateway.String())
		assert.Equal(t, uint32(50), got.Metric)
		assert.Equal(t, platform.SourceUser, got.Source)

		// And back from the weaker source: content overwritten again,
		// but the stronger source sticks.
		c.AddRoute(testRoute("10.1.0.0", 16, "192.168.1.1", 100, platform.SourceDHCP))
		got = c.Route(0)
		assert.Equal(t, "192.168.1.1", got.Gateway.String())
		assert.Equal(t, platform.SourceUser, got.Source)
	})

	t.Run("IdenticalReAddSilent", func(t *testing.T) {
		c := New()
		hub := events.NewHub()
		c.SetHub(hub)
		ch := hub.Subscribe(16)

		r := testRoute("10.1.0.0", 16, "", 100, platform.SourceUser)
		c.AddRoute(r)
		drainEvents(ch)
		c.AddRoute(r)
		assert.Empty(t, drainEvents(ch))
	})

	t.Run("ZeroPrefixPanics", func(t *testing.T) {
		c := New()
		assert.Panics(t, func() {
			c.AddRoute(platform.Route{Network: testIP("0.0.0.0"), PrefixLen: 0})
		})
	})
}

func TestGateway(t *testing.T) {
	c := New()
	hub := events.NewHub()
	c.SetHub(hub)
	ch := hub.Subscribe(16)

	assert.Nil(t, c.Gateway())

	c.SetGateway(testIP("192.168.1.1"))
	require.Equal(t, "192.168.1.1", c.Gateway().String())
	assert.Len(t, drainEvents(ch), 1)

	c.SetGateway(testIP("192.168.1.1"))
	assert.Empty(t, drainEvents(ch), "setting the same gateway must be silent")

	c.SetGateway(net.IPv4zero)
	assert.Nil(t, c.Gateway(), "a zero gateway clears")
	assert.Len(t, drainEvents(ch), 1)

	c.SetGateway(nil)
	assert.Empty(t, drainEvents(ch), "clearing an unset gateway must be silent")
}

func TestNameservers(t *testing.T) {
	c := New()
	hub := events.NewHub()
	c.SetHub(hub)
	ch := hub.Subscribe(16)

	c.AddNameserver(testIP("8.8.8.8"))
	c.AddNameserver(testIP("8.8.4.4"))
	c.AddNameserver(testIP("8.8.8.8"))
	require.Equal(t, 2, c.NumNameservers())
	assert.Len(t, drainEvents(ch), 2)

	assert.Panics(t, func() { c.AddNameserver(net.IPv4zero) })
	assert.Panics(t, func() { c.AddNameserver(nil) })

	c.DelNameserver(0)
	assert.Equal(t, "8.8.4.4", c.Nameserver(0).String())

	c.ResetNameservers()
	assert.Equal(t, 0, c.NumNameservers())
}

func TestDomainsAndSearches(t *testing.T) {
	c := New()

	c.AddDomain("example.com")
	c.AddDomain("example.com")
	require.Equal(t, 1, c.NumDomains())
	assert.Panics(t, func() { c.AddDomain("") })

	c.AddSearch("corp.example.com")
	c.AddSearch("example.com")
	c.AddSearch("corp.example.com")
	require.Equal(t, 2, c.NumSearches())
	assert.Equal(t, []string{"corp.example.com", "example.com"}, c.Searches())
	assert.Panics(t, func() { c.AddSearch("") })

	c.DelSearch(0)
	assert.Equal(t, "example.com", c.Search(0))
	c.ResetSearches()
	c.ResetDomains()
	assert.Equal(t, 0, c.NumSearches())
	assert.Equal(t, 0, c.NumDomains())
}

func TestSetMTU(t *testing.T) {
	c := New()

	c.SetMTU(1500, platform.SourceDHCP)
	require.Equal(t, uint32(1500), c.MTU())
	require.Equal(t, platform.SourceDHCP, c.MTUSource())

	// Higher-priority source overwrites outright, even upwards.
	c.SetMTU(9000, platform.SourceUser)
	assert.Equal(t, uint32(9000), c.MTU())
	assert.Equal(t, platform.SourceUser, c.MTUSource())

	// Lower-priority source is ignored.
	c.SetMTU(1280, platform.SourceDHCP)
	assert.Equal(t, uint32(9000), c.MTU())

	// Equal priority can only lower.
	c.SetMTU(1400, platform.SourceUser)
	assert.Equal(t, uint32(1400), c.MTU())
	c.SetMTU(1500, platform.SourceUser)
	assert.Equal(t, uint32(1400), c.MTU())
}

func TestMSS(t *testing.T) {
	c := New()
	assert.Zero(t, c.MSS())
	c.SetMSS(1460)
	assert.Equal(t, uint32(1460), c.MSS())
}

func TestNISAndWINS(t *testing.T) {
	c := New()

	c.AddNISServer(testIP("10.0.0.10"))
	c.AddNISServer(testIP("10.0.0.10"))
	require.Equal(t, 1, c.NumNISServers())

	c.AddNISServer(net.IPv4zero)
	assert.Equal(t, 1, c.NumNISServers(), "zero NIS server must be dropped")

	c.SetNISDomain("nis.example.com")
	assert.Equal(t, "nis.example.com", c.NISDomain())

	c.AddWINSServer(testIP("10.0.0.20"))
	c.AddWINSServer(testIP("10.0.0.20"))
	require.Equal(t, 1, c.NumWINSServers())
	assert.Panics(t, func() { c.AddWINSServer(net.IPv4zero) })

	c.DelNISServer(0)
	c.DelWINSServer(0)
	assert.Equal(t, 0, c.NumNISServers())
	assert.Equal(t, 0, c.NumWINSServers())
}

func TestNeverDefaultIsSilent(t *testing.T) {
	c := New()
	hub := events.NewHub()
	c.SetHub(hub)
	ch := hub.Subscribe(16)

	c.SetNeverDefault(true)
	assert.True(t, c.NeverDefault())
	c.SetMSS(1460)
	c.SetMTU(1500, platform.SourceUser)
	c.SetNISDomain("x")
	assert.Empty(t, drainEvents(ch), "scalar bookkeeping must not publish events")
}

func TestEventPayloads(t *testing.T) {
	c := New()
	hub := events.NewHub()
	c.SetHub(hub)
	ch := hub.Subscribe(16, events.EventConfigNameservers)

	c.AddAddress(testAddr("10.0.0.1", 24, platform.SourceUser))
	c.AddNameserver(testIP("9.9.9.9"))

	got := drainEvents(ch)
	require.Len(t, got, 1, "typed subscription must only see its type")
	assert.Equal(t, events.EventConfigNameservers, got[0].Type)

	data, ok := got[0].Data.(events.ConfigChangeData)
	require.True(t, ok)
	assert.Equal(t, "nameservers", data.Field)
}

func TestExport(t *testing.T) {
	c := New()
	assert.Empty(t, c.Path())

	path := c.Export()
	require.NotEmpty(t, path)
	assert.True(t, strings.HasPrefix(path, "/floe/ip4config/"), path)
	assert.Equal(t, path, c.Export(), "export path must be stable")
	assert.Equal(t, path, c.Path())

	other := New()
	assert.NotEqual(t, path, other.Export(), "each config gets its own path")
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := New()
	c.AddAddress(testAddr("10.0.0.1", 24, platform.SourceUser))
	c.AddRoute(testRoute("10.1.0.0", 16, "10.0.0.254", 100, platform.SourceUser))
	c.AddNameserver(testIP("8.8.8.8"))

	addr := c.Address(0)
	addr.IP[0] = 99
	assert.Equal(t, "10.0.0.1", c.Address(0).IP.String())

	route := c.Route(0)
	route.Gateway[0] = 99
	assert.Equal(t, "10.0.0.254", c.Route(0).Gateway.String())

	ns := c.Nameservers()
	ns[0][0] = 99
	assert.Equal(t, "8.8.8.8", c.Nameserver(0).String())
}
