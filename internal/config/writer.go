package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/platform"
)

// RenderInterface renders a setting as a complete config file fragment
// for one interface. The output round-trips through the loader.
func RenderInterface(name string, s *ipconfig.Setting) string {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	body.SetAttributeValue("schema_version", cty.StringVal(CurrentSchemaVersion))
	body.AppendNewline()
	appendInterfaceBlock(body, name, s)

	return string(hclwrite.Format(f.Bytes()))
}

// appendInterfaceBlock adds an interface block to the body.
func appendInterfaceBlock(body *hclwrite.Body, name string, s *ipconfig.Setting) {
	block := body.AppendNewBlock("interface", []string{name})
	b := block.Body()

	if s == nil {
		b.SetAttributeValue("method", cty.StringVal(ipconfig.MethodDisabled))
		return
	}

	if s.Method != "" {
		b.SetAttributeValue("method", cty.StringVal(s.Method))
	}
	if s.NeverDefault {
		b.SetAttributeValue("never_default", cty.BoolVal(true))
	}
	if s.IgnoreAutoRoutes {
		b.SetAttributeValue("ignore_auto_routes", cty.BoolVal(true))
	}
	if s.IgnoreAutoDNS {
		b.SetAttributeValue("ignore_auto_dns", cty.BoolVal(true))
	}
	if !platform.IPIsZero(s.Gateway) {
		b.SetAttributeValue("gateway", cty.StringVal(s.Gateway.String()))
	}

	for _, a := range s.Addresses {
		ab := b.AppendNewBlock("address", nil)
		abb := ab.Body()
		abb.SetAttributeValue("cidr", cty.StringVal(fmt.Sprintf("%s/%d", a.IP, a.PrefixLen)))
		if a.Label != "" {
			abb.SetAttributeValue("label", cty.StringVal(a.Label))
		}
	}

	for _, r := range s.Routes {
		rb := b.AppendNewBlock("route", nil)
		rbb := rb.Body()
		rbb.SetAttributeValue("destination", cty.StringVal(fmt.Sprintf("%s/%d", r.Network, r.PrefixLen)))
		if !platform.IPIsZero(r.Gateway) {
			rbb.SetAttributeValue("gateway", cty.StringVal(r.Gateway.String()))
		}
		if r.Metric >= 0 {
			rbb.SetAttributeValue("metric", cty.NumberIntVal(r.Metric))
		}
	}

	if len(s.DNS) > 0 || len(s.DNSSearch) > 0 {
		db := b.AppendNewBlock("dns", nil)
		dbb := db.Body()
		if len(s.DNS) > 0 {
			dbb.SetAttributeValue("servers", toCtyStringList(s.DNS))
		}
		if len(s.DNSSearch) > 0 {
			dbb.SetAttributeValue("search", toCtyStringList(s.DNSSearch))
		}
	}
}

// toCtyStringList converts a []string to cty.Value list.
func toCtyStringList(strs []string) cty.Value {
	if len(strs) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(strs))
	for i, s := range strs {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
