package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/platform"
)

// RunCheck validates a configuration file's syntax and semantics.
// Verbose mode additionally prints a per-interface summary and the
// platform operations an apply would issue, simulated on an in-memory
// platform.
func RunCheck(configFile string, verbose bool) error {
	if len(configFile) == 0 {
		return fmt.Errorf("usage: %s check [-v] <config-file>\nExample: %s check -v %s", brand.BinaryName, brand.BinaryName, brand.GetConfigPath())
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Surface parser findings with positions before decoding.
	diags, derr := config.ParseDiagnostics(data, configFile)
	for _, d := range diags {
		fmt.Printf("%s:%d:%d: %s: %s\n", configFile, d.Line, d.Column, d.Severity, d.Summary)
		if d.Detail != "" {
			fmt.Printf("  %s\n", d.Detail)
		}
	}
	if derr != nil {
		return fmt.Errorf("configuration invalid: %w", derr)
	}

	cfg, err := config.LoadBytes(configFile, data)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	addrs, routes := 0, 0
	for _, ic := range cfg.Interfaces {
		addrs += len(ic.Addresses)
		routes += len(ic.Routes)
	}

	fmt.Printf("Configuration valid!\n")
	fmt.Printf("Schema Version: %s\n", cfg.SchemaVersion)
	fmt.Printf("Interfaces: %d\n", len(cfg.Interfaces))
	fmt.Printf("Addresses: %d\n", addrs)
	fmt.Printf("Routes: %d\n", routes)

	if verbose {
		fmt.Println()
		printSummary(cfg)

		fmt.Println("\n[DRY RUN] Platform operations:")
		for _, ic := range cfg.Interfaces {
			setting, err := ic.Setting()
			if err != nil {
				return fmt.Errorf("interface %s: %w", ic.Name, err)
			}

			fmt.Printf("\n--- %s ---\n", ic.Name)
			fake := platform.NewFake()
			fake.AddLink(fakeIfindex, ic.Name)

			c := ipconfig.Capture(fake, fakeIfindex, false)
			c.MergeSetting(setting, cfg.RouteMetric())
			if ic.MTU > 0 {
				c.SetMTU(uint32(ic.MTU), platform.SourceUser)
			}
			c.Commit(fake, fakeIfindex, cfg.RouteMetric())

			if len(fake.Ops) == 0 {
				fmt.Println("(no operations)")
			}
			for _, op := range fake.Ops {
				fmt.Println(op)
			}
		}
	}

	return nil
}

func printSummary(cfg *config.Config) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "INTERFACE\tMETHOD\tADDRESSES\tROUTES\tGATEWAY\tDNS")
	for _, ic := range cfg.Interfaces {
		method := ic.Method
		if method == "" {
			method = ipconfig.MethodAuto
		}
		gateway := "-"
		if ic.Gateway != "" {
			gateway = ic.Gateway
		}
		dns := "-"
		if ic.DNS != nil && len(ic.DNS.Servers) > 0 {
			dns = fmt.Sprintf("%v", ic.DNS.Servers)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n", ic.Name, method, len(ic.Addresses), len(ic.Routes), gateway, dns)
	}
	w.Flush()
}
