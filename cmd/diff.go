package cmd

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/platform"
)

// RunDiff compares the desired IPv4 state of an interface against its
// live state. Desired is a fresh capture with the config section merged
// on top, so the diff shows exactly what an apply would change.
func RunDiff(configFile, ifname string, fake bool) error {
	p, ifindex, err := newPlatform(fake, ifname)
	if err != nil {
		return err
	}

	cfg, ic, err := loadInterfaceConfig(configFile, ifname)
	if err != nil {
		return err
	}
	if ic == nil {
		return fmt.Errorf("configuration has no interface %q block", ifname)
	}

	live := ipconfig.Capture(p, ifindex, true)
	if live == nil {
		return fmt.Errorf("interface %s is enslaved; its master owns the IPv4 state", ifname)
	}

	var desired *ipconfig.Config
	if ic.Method == ipconfig.MethodDisabled {
		desired = ipconfig.New()
	} else {
		setting, err := ic.Setting()
		if err != nil {
			return fmt.Errorf("interface %s: %w", ifname, err)
		}
		desired = ipconfig.Capture(p, ifindex, true)
		desired.MergeSetting(setting, cfg.RouteMetric())
		if ic.MTU > 0 {
			desired.SetMTU(uint32(ic.MTU), platform.SourceUser)
		}
	}

	if ipconfig.Equal(live, desired) {
		fmt.Println("No changes detected.")
		return nil
	}

	fmt.Println("Configuration differs from live state:")

	var liveDump, desiredDump strings.Builder
	live.Dump(&liveDump, ifname)
	desired.Dump(&desiredDump, ifname)

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(desiredDump.String()),
		B:        difflib.SplitLines(liveDump.String()),
		FromFile: "Desired",
		ToFile:   "Live",
		Context:  3,
	}
	text, _ := difflib.GetUnifiedDiffString(diff)
	fmt.Print(text)

	return fmt.Errorf("configuration differs")
}
