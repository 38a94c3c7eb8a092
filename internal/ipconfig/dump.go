package ipconfig

import (
	"fmt"
	"io"

	"grimm.is/floe/internal/platform"
)

// Dump writes a line-oriented rendering of the config to w, one tagged
// line per entry. detail names the config in the header, typically the
// interface or the processing stage.
func (c *Config) Dump(w io.Writer, detail string) {
	fmt.Fprintf(w, "--------- ip4config (%s)\n", detail)

	if c == nil {
		fmt.Fprintln(w, " (null)")
		return
	}

	if c.path != "" {
		fmt.Fprintf(w, "   path: %s\n", c.path)
	}

	for i := range c.addresses {
		fmt.Fprintf(w, "      a: %s\n", dumpAddress(&c.addresses[i]))
	}

	gw := "0.0.0.0"
	if !platform.IPIsZero(c.gateway) {
		gw = c.gateway.String()
	}
	fmt.Fprintf(w, "     gw: %s\n", gw)

	for _, ns := range c.nameservers {
		fmt.Fprintf(w, "     ns: %s\n", ns)
	}

	for i := range c.routes {
		fmt.Fprintf(w, "     rt: %s src %s\n", &c.routes[i], c.routes[i].Source)
	}

	for _, d := range c.domains {
		fmt.Fprintf(w, " domain: %s\n", d)
	}
	for _, s := range c.searches {
		fmt.Fprintf(w, " search: %s\n", s)
	}

	fmt.Fprintf(w, "    mss: %d\n", c.mss)
	fmt.Fprintf(w, "    mtu: %d (%s)\n", c.mtu, c.mtuSource)

	for _, nis := range c.nisServers {
		fmt.Fprintf(w, "    nis: %s\n", nis)
	}
	fmt.Fprintf(w, " nisdmn: %s\n", c.nisDomain)

	for _, wins := range c.winsServers {
		fmt.Fprintf(w, "   wins: %s\n", wins)
	}

	fmt.Fprintf(w, " n-dflt: %v\n", c.neverDefault)
}

func dumpAddress(a *platform.Address) string {
	s := a.String()
	if a.Label != "" {
		s += " label " + a.Label
	}
	if a.Lifetime != platform.LifetimeForever {
		s += fmt.Sprintf(" lft %ds pref %ds", a.Lifetime, a.Preferred)
	}
	return s + " src " + a.Source.String()
}
