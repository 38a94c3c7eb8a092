package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/platform"
)

// showSnapshot is the YAML shape of a captured interface state.
type showSnapshot struct {
	Interface    string   `yaml:"interface"`
	Ifindex      int      `yaml:"ifindex"`
	Method       string   `yaml:"method"`
	MTU          int      `yaml:"mtu,omitempty"`
	Gateway      string   `yaml:"gateway,omitempty"`
	NeverDefault bool     `yaml:"never_default,omitempty"`
	Addresses    []string `yaml:"addresses,omitempty"`
	Routes       []string `yaml:"routes,omitempty"`
	Nameservers  []string `yaml:"nameservers,omitempty"`
	Domains      []string `yaml:"domains,omitempty"`
	Searches     []string `yaml:"searches,omitempty"`
}

// RunShow captures the live IPv4 state of an interface and prints it.
// format selects "text" (the dump format) or "yaml". With asConfig the
// state is rendered back as a config file fragment instead, so a running
// setup can be turned into a starting point for floe.hcl.
func RunShow(ifname string, fake bool, format string, asConfig bool) error {
	p, ifindex, err := newPlatform(fake, ifname)
	if err != nil {
		return err
	}

	cfg := ipconfig.Capture(p, ifindex, true)
	if cfg == nil {
		master := p.LinkGetMaster(ifindex)
		name, _ := p.LinkName(master)
		if name == "" {
			name = fmt.Sprintf("ifindex %d", master)
		}
		return fmt.Errorf("interface %s is enslaved to %s; its master owns the IPv4 state", ifname, name)
	}

	if asConfig {
		fmt.Print(config.RenderInterface(ifname, cfg.ToSetting()))
		return nil
	}

	switch format {
	case "yaml":
		snap := snapshotOf(p, ifindex, ifname, cfg)
		out, err := yaml.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to render snapshot: %w", err)
		}
		fmt.Print(string(out))
	case "", "text":
		carrier := "no"
		if p.LinkSupportsCarrierDetect(ifindex) {
			carrier = "yes"
		}
		fmt.Printf("%s: index %d mtu %d carrier-detect %s\n", ifname, ifindex, p.LinkGetMTU(ifindex), carrier)
		cfg.Dump(os.Stdout, ifname)
	default:
		return fmt.Errorf("unknown format %q (want text or yaml)", format)
	}
	return nil
}

func snapshotOf(p platform.Platform, ifindex int, ifname string, cfg *ipconfig.Config) showSnapshot {
	snap := showSnapshot{
		Interface:    ifname,
		Ifindex:      ifindex,
		Method:       cfg.ToSetting().Method,
		MTU:          p.LinkGetMTU(ifindex),
		NeverDefault: cfg.NeverDefault(),
		Domains:      cfg.Domains(),
		Searches:     cfg.Searches(),
	}

	if gw := cfg.Gateway(); !platform.IPIsZero(gw) {
		snap.Gateway = gw.String()
	}
	for _, a := range cfg.Addresses() {
		snap.Addresses = append(snap.Addresses, a.String())
	}
	for _, r := range cfg.Routes() {
		snap.Routes = append(snap.Routes, r.String())
	}
	for _, ns := range cfg.Nameservers() {
		snap.Nameservers = append(snap.Nameservers, ns.String())
	}
	return snap
}
