package platform

import (
	"net"
	"testing"
	"time"
)

func testIP(s string) net.IP {
	return net.ParseIP(s).To4()
}

func TestSourcePriorityOrder(t *testing.T) {
	order := []Source{SourceUnknown, SourceKernel, SourceShared, SourceVPN, SourceDHCP, SourceUser}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%s should rank below %s", order[i-1], order[i])
		}
	}
}

func TestMaxSource(t *testing.T) {
	if MaxSource(SourceKernel, SourceUser) != SourceUser {
		t.Error("user should win over kernel")
	}
	if MaxSource(SourceUser, SourceKernel) != SourceUser {
		t.Error("max should be symmetric")
	}
	if MaxSource(SourceDHCP, SourceDHCP) != SourceDHCP {
		t.Error("max of equal sources should be that source")
	}
}

func TestSourceString(t *testing.T) {
	cases := map[Source]string{
		SourceUnknown: "unknown",
		SourceKernel:  "kernel",
		SourceShared:  "shared",
		SourceVPN:     "vpn",
		SourceDHCP:    "dhcp",
		SourceUser:    "user",
		Source(99):    "unknown",
	}
	for src, want := range cases {
		if got := src.String(); got != want {
			t.Errorf("Source(%d).String() = %q, want %q", src, got, want)
		}
	}
}

func TestAddressesDuplicate(t *testing.T) {
	a := Address{IP: testIP("192.168.1.10"), PrefixLen: 24, Label: "eth0:1", Lifetime: 100, Source: SourceUser}
	b := Address{IP: testIP("192.168.1.10"), PrefixLen: 24, Lifetime: 3600, Source: SourceKernel}

	if !AddressesDuplicate(&a, &b) {
		t.Error("same address/prefix should be duplicate regardless of label/lifetime/source")
	}

	c := Address{IP: testIP("192.168.1.10"), PrefixLen: 25}
	if AddressesDuplicate(&a, &c) {
		t.Error("different prefix length should not be duplicate")
	}

	d := Address{IP: testIP("192.168.1.11"), PrefixLen: 24}
	if AddressesDuplicate(&a, &d) {
		t.Error("different address should not be duplicate")
	}
}

func TestRoutesDuplicate(t *testing.T) {
	a := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Gateway: testIP("10.0.0.1"), Metric: 100}
	b := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Metric: 600, Source: SourceDHCP}

	if !RoutesDuplicate(&a, &b) {
		t.Error("same network/prefix should be duplicate regardless of gateway/metric")
	}

	c := Route{Network: testIP("10.0.1.0"), PrefixLen: 24}
	if RoutesDuplicate(&a, &c) {
		t.Error("different network should not be duplicate")
	}

	// nil and 0.0.0.0 denote the same (zero) network
	d := Route{Network: nil, PrefixLen: 0}
	e := Route{Network: testIP("0.0.0.0"), PrefixLen: 0}
	if !RoutesDuplicate(&d, &e) {
		t.Error("nil and 0.0.0.0 networks should be duplicate")
	}
}

func TestAddressEqual(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	a := Address{IP: testIP("1.2.3.4"), PrefixLen: 24, Label: "l", Timestamp: ts, Lifetime: 100, Preferred: 50, Source: SourceUser}
	b := CloneAddress(&a)

	if !a.Equal(&b) {
		t.Error("clone should be equal")
	}

	b.Lifetime = 200
	if a.Equal(&b) {
		t.Error("lifetime change should break full equality")
	}

	b = CloneAddress(&a)
	b.Source = SourceKernel
	if a.Equal(&b) {
		t.Error("source change should break full equality")
	}
}

func TestRouteEqual(t *testing.T) {
	a := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Gateway: testIP("10.0.0.1"), Metric: 100, Source: SourceUser}
	b := CloneRoute(&a)

	if !a.Equal(&b) {
		t.Error("clone should be equal")
	}

	b.Metric = 200
	if a.Equal(&b) {
		t.Error("metric change should break equality")
	}

	// Direct route gateway: nil and 0.0.0.0 are the same
	c := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Gateway: nil, Metric: 100, Source: SourceUser}
	d := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Gateway: testIP("0.0.0.0"), Metric: 100, Source: SourceUser}
	if !c.Equal(&d) {
		t.Error("nil and zero gateways should compare equal")
	}
}

func TestLifetimeLater(t *testing.T) {
	ts := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	permanent := Address{Lifetime: LifetimeForever, Timestamp: ts}
	short := Address{Lifetime: 100, Timestamp: ts}
	long := Address{Lifetime: 3600, Timestamp: ts}

	if !permanent.LifetimeLater(&short) {
		t.Error("permanent should outlive finite")
	}
	if short.LifetimeLater(&permanent) {
		t.Error("finite should not outlive permanent")
	}
	if permanent.LifetimeLater(&permanent) {
		t.Error("permanent vs permanent is not strictly later")
	}
	if !long.LifetimeLater(&short) {
		t.Error("3600s should outlive 100s from same start")
	}
	if short.LifetimeLater(&short) {
		t.Error("equal expiry is not strictly later")
	}

	// Later start compensates for shorter lifetime
	lateShort := Address{Lifetime: 100, Timestamp: ts.Add(2 * time.Hour)}
	if !lateShort.LifetimeLater(&long) {
		t.Error("later timestamp should push expiry past an earlier long lifetime")
	}
}

func TestIPIsZero(t *testing.T) {
	if !IPIsZero(nil) {
		t.Error("nil should be zero")
	}
	if !IPIsZero(net.IP{}) {
		t.Error("empty should be zero")
	}
	if !IPIsZero(testIP("0.0.0.0")) {
		t.Error("0.0.0.0 should be zero")
	}
	if IPIsZero(testIP("192.168.1.1")) {
		t.Error("real address should not be zero")
	}
}

func TestCloneAddressIsDeep(t *testing.T) {
	a := Address{IP: testIP("1.2.3.4"), PrefixLen: 24}
	b := CloneAddress(&a)
	b.IP[3] = 99

	if a.IP.String() != "1.2.3.4" {
		t.Error("mutating the clone's IP must not affect the original")
	}
}

func TestRouteString(t *testing.T) {
	direct := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Metric: 100}
	if got := direct.String(); got != "10.0.0.0/24 metric 100" {
		t.Errorf("direct route string = %q", got)
	}

	via := Route{Network: testIP("10.0.0.0"), PrefixLen: 24, Gateway: testIP("192.168.1.1"), Metric: 600}
	if got := via.String(); got != "10.0.0.0/24 via 192.168.1.1 metric 600" {
		t.Errorf("gateway route string = %q", got)
	}

	def := Route{Network: testIP("0.0.0.0"), PrefixLen: 0, Gateway: testIP("192.168.1.1"), Metric: 100}
	if got := def.String(); got != "default via 192.168.1.1 metric 100" {
		t.Errorf("default route string = %q", got)
	}
}
