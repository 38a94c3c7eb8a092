package ipconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/floe/internal/platform"
)

func TestMergeSetting(t *testing.T) {
	t.Run("NilIsNoOp", func(t *testing.T) {
		c := New()
		c.MergeSetting(nil, 100)
		assert.True(t, Equal(c, New()))
	})

	t.Run("DeclaredValuesCarryUserPriority", func(t *testing.T) {
		c := New()
		c.MergeSetting(&Setting{
			Method:  MethodManual,
			Gateway: testIP("192.168.1.1"),
			Addresses: []SettingAddress{
				{IP: testIP("192.168.1.10"), PrefixLen: 24, Label: "uplink"},
			},
			Routes: []SettingRoute{
				{Network: testIP("10.0.0.0"), PrefixLen: 8, Gateway: testIP("192.168.1.1"), Metric: -1},
				{Network: testIP("172.16.0.0"), PrefixLen: 12, Metric: 20},
			},
			DNS:       []string{"8.8.8.8"},
			DNSSearch: []string{"corp.example.com"},
		}, 100)

		require.Equal(t, 1, c.NumAddresses())
		addr := c.Address(0)
		assert.Equal(t, platform.SourceUser, addr.Source)
		assert.Equal(t, platform.LifetimeForever, addr.Lifetime)
		assert.Equal(t, "uplink", addr.Label)

		assert.Equal(t, "192.168.1.1", c.Gateway().String())

		require.Equal(t, 2, c.NumRoutes())
		assert.Equal(t, uint32(100), c.Route(0).Metric, "an omitted metric takes the default")
		assert.Equal(t, uint32(20), c.Route(1).Metric, "an explicit metric sticks")
		assert.Equal(t, platform.SourceUser, c.Route(0).Source)

		assert.Equal(t, 1, c.NumNameservers())
		assert.Equal(t, []string{"corp.example.com"}, c.Searches())
	})

	t.Run("GatewayAbsentLeavesExisting", func(t *testing.T) {
		c := New()
		c.SetGateway(testIP("10.0.0.1"))
		c.MergeSetting(&Setting{Method: MethodManual}, 100)
		assert.Equal(t, "10.0.0.1", c.Gateway().String())
	})

	t.Run("NeverDefaultAndIgnoreAutoRoutes", func(t *testing.T) {
		c := New()
		c.MergeSetting(&Setting{NeverDefault: true}, 100)
		assert.True(t, c.NeverDefault())

		// ignore-auto-routes without never-default reasserts default
		// route eligibility.
		c.MergeSetting(&Setting{IgnoreAutoRoutes: true}, 100)
		assert.False(t, c.NeverDefault())
	})

	t.Run("IgnoreAutoRoutesClearsLearnedRoutes", func(t *testing.T) {
		c := New()
		c.AddRoute(testRoute("10.0.0.0", 8, "192.168.1.1", 1024, platform.SourceDHCP))
		c.MergeSetting(&Setting{
			IgnoreAutoRoutes: true,
			Routes: []SettingRoute{
				{Network: testIP("172.16.0.0"), PrefixLen: 12, Metric: -1},
			},
		}, 50)

		require.Equal(t, 1, c.NumRoutes())
		assert.Equal(t, "172.16.0.0", c.Route(0).Network.String())
	})

	t.Run("IgnoreAutoDNSClearsLearnedDNS", func(t *testing.T) {
		c := New()
		c.AddNameserver(testIP("1.1.1.1"))
		c.AddDomain("learned.example.com")
		c.AddSearch("learned.example.com")

		c.MergeSetting(&Setting{
			IgnoreAutoDNS: true,
			DNS:           []string{"9.9.9.9"},
		}, 100)

		require.Equal(t, 1, c.NumNameservers())
		assert.Equal(t, "9.9.9.9", c.Nameserver(0).String())
		assert.Equal(t, 0, c.NumDomains())
		assert.Equal(t, 0, c.NumSearches())
	})

	t.Run("UnparseableDNSSkipped", func(t *testing.T) {
		c := New()
		c.MergeSetting(&Setting{
			DNS:       []string{"not-an-ip", "0.0.0.0", "2001:db8::1", "8.8.8.8"},
			DNSSearch: []string{"", "example.com"},
		}, 100)

		require.Equal(t, 1, c.NumNameservers())
		assert.Equal(t, "8.8.8.8", c.Nameserver(0).String())
		assert.Equal(t, []string{"example.com"}, c.Searches())
	})
}

func TestToSetting(t *testing.T) {
	t.Run("NilConfigIsDisabled", func(t *testing.T) {
		var c *Config
		s := c.ToSetting()
		require.NotNil(t, s)
		assert.Equal(t, MethodDisabled, s.Method)
	})

	t.Run("EmptyConfigIsDisabled", func(t *testing.T) {
		assert.Equal(t, MethodDisabled, New().ToSetting().Method)
	})

	t.Run("PermanentAddressesMeanManual", func(t *testing.T) {
		c := New()
		c.SetGateway(testIP("192.168.1.1"))
		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))

		s := c.ToSetting()
		assert.Equal(t, MethodManual, s.Method)
		require.Len(t, s.Addresses, 1)
		assert.Equal(t, "192.168.1.10", s.Addresses[0].IP.String())
		assert.Equal(t, "192.168.1.1", s.Gateway.String())
	})

	t.Run("FiniteLifetimeMeansAuto", func(t *testing.T) {
		c := New()
		c.SetGateway(testIP("192.168.1.1"))
		dynamic := testAddr("192.168.1.10", 24, platform.SourceDHCP)
		dynamic.Lifetime = 3600
		dynamic.Preferred = 3600
		c.AddAddress(dynamic)

		s := c.ToSetting()
		assert.Equal(t, MethodAuto, s.Method)
		assert.Empty(t, s.Addresses, "dynamic addresses are not declared")
		assert.Nil(t, s.Gateway, "no declared address, no declared gateway")
	})

	t.Run("MixedAddressesStayAuto", func(t *testing.T) {
		c := New()
		c.SetGateway(testIP("192.168.1.1"))
		dynamic := testAddr("192.168.1.10", 24, platform.SourceDHCP)
		dynamic.Lifetime = 3600
		c.AddAddress(dynamic)
		c.AddAddress(testAddr("192.168.1.11", 24, platform.SourceUser))

		s := c.ToSetting()
		assert.Equal(t, MethodAuto, s.Method)
		require.Len(t, s.Addresses, 1, "only the static address is declared")
		assert.Equal(t, "192.168.1.11", s.Addresses[0].IP.String())
		assert.Equal(t, "192.168.1.1", s.Gateway.String())
	})

	t.Run("OnlyUserRoutesSurvive", func(t *testing.T) {
		c := New()
		c.AddAddress(testAddr("192.168.1.10", 24, platform.SourceUser))
		c.AddRoute(testRoute("10.0.0.0", 8, "192.168.1.1", 50, platform.SourceUser))
		c.AddRoute(testRoute("172.16.0.0", 12, "192.168.1.1", 1024, platform.SourceDHCP))

		s := c.ToSetting()
		require.Len(t, s.Routes, 1)
		assert.Equal(t, "10.0.0.0", s.Routes[0].Network.String())
		assert.Equal(t, int64(50), s.Routes[0].Metric)
	})

	t.Run("ResolverStateCopied", func(t *testing.T) {
		c := New()
		c.AddNameserver(testIP("8.8.8.8"))
		c.AddSearch("corp.example.com")
		c.SetNeverDefault(true)

		s := c.ToSetting()
		assert.Equal(t, []string{"8.8.8.8"}, s.DNS)
		assert.Equal(t, []string{"corp.example.com"}, s.DNSSearch)
		assert.True(t, s.NeverDefault)
	})
}
