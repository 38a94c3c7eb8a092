package cmd

import (
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/insomniacslk/dhcp/dhcpv4"

	"grimm.is/floe/internal/events"
	"grimm.is/floe/internal/ipconfig"
	"grimm.is/floe/internal/journal"
	"grimm.is/floe/internal/logging"
	"grimm.is/floe/internal/metrics"
	"grimm.is/floe/internal/platform"
)

// RunApply reconciles an interface's live IPv4 state with its declared
// configuration and an optional DHCP lease. The live state is captured,
// the desired state is built from the same capture plus the lease and the
// config section, then replaced onto the live store and committed. With
// dryRun the computed state is printed instead of committed.
func RunApply(configFile, ifname, leaseFile, journalPath string, fake, dryRun bool) error {
	log := logging.WithComponent("apply")
	if journalPath == "" {
		journalPath = defaultJournalPath()
	}

	p, ifindex, err := newPlatform(fake, ifname)
	if err != nil {
		return err
	}

	cfg, ic, err := loadInterfaceConfig(configFile, ifname)
	if err != nil {
		return err
	}

	var setting *ipconfig.Setting
	disabled := false
	if ic != nil {
		if ic.Method == ipconfig.MethodDisabled {
			disabled = true
		} else {
			setting, err = ic.Setting()
			if err != nil {
				return fmt.Errorf("interface %s: %w", ifname, err)
			}
		}
	}

	var leaseCfg *ipconfig.Config
	if leaseFile != "" {
		lease, err := loadLease(leaseFile)
		if err != nil {
			return err
		}
		leaseCfg = ipconfig.FromLease(lease, cfg.RouteMetric(), time.Now())
	}

	if setting == nil && leaseCfg == nil && !disabled {
		return fmt.Errorf("nothing to apply for %s: no interface %q block in the config and no lease given", ifname, ifname)
	}

	store := ipconfig.Capture(p, ifindex, true)
	if store == nil {
		return fmt.Errorf("interface %s is enslaved; its master owns the IPv4 state", ifname)
	}
	metrics.Get().RecordCapture(ifname)

	hub := events.NewHub()
	store.SetHub(hub)

	var desired *ipconfig.Config
	if disabled {
		// Disabled interfaces get their IPv4 state flushed.
		desired = ipconfig.New()
	} else {
		desired = ipconfig.Capture(p, ifindex, false)
		if leaseCfg != nil {
			desired.Merge(leaseCfg)
		}
		desired.MergeSetting(setting, cfg.RouteMetric())
		if ic != nil && ic.MTU > 0 {
			desired.SetMTU(uint32(ic.MTU), platform.SourceUser)
		}
	}

	changed, relevant := store.Replace(desired)
	class := changeClass(changed, relevant)
	log.Info("computed configuration", "interface", ifname, "change", class)
	metrics.Get().RecordReplace(ifname, class)

	if dryRun {
		store.Dump(os.Stdout, ifname+" (dry run)")
		return nil
	}

	commitID := uuid.New().String()
	ok := store.Commit(p, ifindex, cfg.RouteMetric())
	if ok && !store.NeverDefault() {
		if gw := store.Gateway(); !platform.IPIsZero(gw) {
			p.RouteAdd(ifindex, platform.Route{
				Network: net.IPv4zero.To4(),
				Gateway: gw,
				Metric:  cfg.RouteMetric(),
				Source:  platform.SourceUser,
			})
		}
	}

	metrics.Get().RecordCommit(ifname, ok)
	hub.EmitCommit(ifname, ifindex, commitID, ok, store.NumAddresses(), store.NumRoutes())

	if err := recordJournal(journalPath, commitID, ifname, store, ok); err != nil {
		log.Warn("journal write failed", "error", err)
	}

	if !ok {
		return fmt.Errorf("commit failed on %s: platform rejected the route set", ifname)
	}

	log.Info("committed configuration",
		"interface", ifname,
		"commit_id", commitID,
		"addresses", store.NumAddresses(),
		"routes", store.NumRoutes())
	return nil
}

// loadLease reads a raw BOOTP/DHCPv4 packet from disk, the format
// dhclient and friends can be told to dump.
func loadLease(path string) (*dhcpv4.DHCPv4, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lease file: %w", err)
	}
	lease, err := dhcpv4.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse lease: %w", err)
	}
	return lease, nil
}

func recordJournal(journalPath, commitID, ifname string, store *ipconfig.Config, ok bool) error {
	js, err := journal.Open(journalPath, 0)
	if err != nil {
		return err
	}
	defer js.Close()

	entry := journal.Entry{
		CommitID:    commitID,
		Interface:   ifname,
		Fingerprint: hex.EncodeToString(store.Fingerprint(false)),
		Success:     ok,
	}
	if gw := store.Gateway(); !platform.IPIsZero(gw) {
		entry.Gateway = gw.String()
	}
	for _, a := range store.Addresses() {
		entry.Addresses = append(entry.Addresses, a.String())
	}
	for _, r := range store.Routes() {
		entry.Routes = append(entry.Routes, r.String())
	}
	for _, ns := range store.Nameservers() {
		entry.Nameservers = append(entry.Nameservers, ns.String())
	}
	if !ok {
		entry.Detail = "route sync rejected by platform"
	}

	if err := js.Record(entry); err != nil {
		return err
	}
	if n, err := js.Count(); err == nil {
		metrics.Get().SetJournalEntries(int(n))
	}
	return nil
}
