// Package config loads and validates the declarative interface
// configuration. The on-disk format is HCL: a schema_version marker,
// an optional defaults block, and one interface block per managed
// interface. Loaded declarations convert into ipconfig settings for
// the reconciliation engine.
package config

import (
	"fmt"
	"net"

	"grimm.is/floe/internal/ipconfig"
)

// CurrentSchemaVersion is the config schema this build reads and writes.
const CurrentSchemaVersion = "1"

// DefaultRouteMetric is applied to declared routes that carry no
// explicit metric, unless the defaults block overrides it.
const DefaultRouteMetric = 100

// Config is the root of the configuration file.
type Config struct {
	SchemaVersion string            `hcl:"schema_version,optional"`
	Defaults      *Defaults         `hcl:"defaults,block"`
	Interfaces    []InterfaceConfig `hcl:"interface,block"`
}

// Defaults holds file-wide fallback values.
type Defaults struct {
	RouteMetric int `hcl:"route_metric,optional" validate:"omitempty,min=1,max=4294967295"`
}

// InterfaceConfig is one interface declaration.
type InterfaceConfig struct {
	Name             string         `hcl:"name,label" validate:"required,iface_name"`
	Method           string         `hcl:"method,optional" validate:"omitempty,oneof=auto manual disabled"`
	NeverDefault     bool           `hcl:"never_default,optional"`
	IgnoreAutoRoutes bool           `hcl:"ignore_auto_routes,optional"`
	IgnoreAutoDNS    bool           `hcl:"ignore_auto_dns,optional"`
	Gateway          string         `hcl:"gateway,optional" validate:"omitempty,ip4_addr"`
	MTU              int            `hcl:"mtu,optional" validate:"omitempty,min=68,max=65536"`
	Addresses        []AddressBlock `hcl:"address,block"`
	Routes           []RouteBlock   `hcl:"route,block"`
	DNS              *DNSBlock      `hcl:"dns,block" validate:"-"`
}

// AddressBlock declares one static address.
type AddressBlock struct {
	CIDR  string `hcl:"cidr" validate:"required,cidrv4"`
	Label string `hcl:"label,optional"`
}

// RouteBlock declares one static route. A nil Metric means the default
// route metric applies.
type RouteBlock struct {
	Destination string `hcl:"destination" validate:"required,cidrv4"`
	Gateway     string `hcl:"gateway,optional" validate:"omitempty,ip4_addr"`
	Metric      *int   `hcl:"metric,optional"`
}

// DNSBlock declares nameservers and search domains.
type DNSBlock struct {
	Servers []string `hcl:"servers,optional" validate:"omitempty,dive,ip4_addr"`
	Search  []string `hcl:"search,optional" validate:"omitempty,dive,hostname_rfc1123"`
}

// Interface returns the declaration for the named interface, or nil.
func (c *Config) Interface(name string) *InterfaceConfig {
	for i := range c.Interfaces {
		if c.Interfaces[i].Name == name {
			return &c.Interfaces[i]
		}
	}
	return nil
}

// RouteMetric returns the effective default route metric.
func (c *Config) RouteMetric() uint32 {
	if c.Defaults != nil && c.Defaults.RouteMetric > 0 {
		return uint32(c.Defaults.RouteMetric)
	}
	return DefaultRouteMetric
}

// Setting converts the declaration into the engine's setting fragment.
// Routes without an explicit metric get -1 so the merge applies the
// default metric. The configuration must have passed validation; bad
// addresses here are reported as errors, not skipped.
func (ic *InterfaceConfig) Setting() (*ipconfig.Setting, error) {
	s := &ipconfig.Setting{
		Method:           ic.Method,
		NeverDefault:     ic.NeverDefault,
		IgnoreAutoRoutes: ic.IgnoreAutoRoutes,
		IgnoreAutoDNS:    ic.IgnoreAutoDNS,
	}
	if s.Method == "" {
		s.Method = ipconfig.MethodAuto
	}

	if ic.Gateway != "" {
		gw := parseIPv4(ic.Gateway)
		if gw == nil {
			return nil, fmt.Errorf("interface %s: invalid gateway %q", ic.Name, ic.Gateway)
		}
		s.Gateway = gw
	}

	for _, ab := range ic.Addresses {
		ip, prefixLen, err := parseCIDR4(ab.CIDR)
		if err != nil {
			return nil, fmt.Errorf("interface %s: address %q: %w", ic.Name, ab.CIDR, err)
		}
		s.Addresses = append(s.Addresses, ipconfig.SettingAddress{
			IP:        ip,
			PrefixLen: prefixLen,
			Label:     ab.Label,
		})
	}

	for _, rb := range ic.Routes {
		_, prefixLen, err := parseCIDR4(rb.Destination)
		if err != nil {
			return nil, fmt.Errorf("interface %s: route %q: %w", ic.Name, rb.Destination, err)
		}
		network := networkOf(rb.Destination)
		r := ipconfig.SettingRoute{
			Network:   network,
			PrefixLen: prefixLen,
			Metric:    -1,
		}
		if rb.Gateway != "" {
			gw := parseIPv4(rb.Gateway)
			if gw == nil {
				return nil, fmt.Errorf("interface %s: route %q: invalid gateway %q", ic.Name, rb.Destination, rb.Gateway)
			}
			r.Gateway = gw
		}
		if rb.Metric != nil {
			r.Metric = int64(*rb.Metric)
		}
		s.Routes = append(s.Routes, r)
	}

	if ic.DNS != nil {
		s.DNS = append([]string(nil), ic.DNS.Servers...)
		s.DNSSearch = append([]string(nil), ic.DNS.Search...)
	}

	return s, nil
}

// parseIPv4 parses a dotted-quad address, returning the 4-byte form.
func parseIPv4(s string) net.IP {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil
	}
	return ip.To4()
}

// parseCIDR4 parses an IPv4 CIDR and returns the host IP and prefix
// length.
func parseCIDR4(s string) (net.IP, int, error) {
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, 0, err
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, 0, fmt.Errorf("not an IPv4 CIDR")
	}
	ones, _ := ipnet.Mask.Size()
	return v4, ones, nil
}

// networkOf returns the network base of an IPv4 CIDR. Callers must
// have parsed the CIDR already.
func networkOf(s string) net.IP {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil
	}
	return ipnet.IP.To4()
}
