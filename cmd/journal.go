package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"grimm.is/floe/internal/journal"
	"grimm.is/floe/internal/metrics"
)

// RunJournal lists recent commit journal entries, newest first. With an
// interface name only that interface's history is shown. Prune removes
// entries past the retention window before listing.
func RunJournal(ifname, journalPath string, limit int, prune bool) error {
	if journalPath == "" {
		journalPath = defaultJournalPath()
	}
	js, err := journal.Open(journalPath, 0)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer js.Close()

	if prune {
		removed, err := js.Prune()
		if err != nil {
			return fmt.Errorf("failed to prune journal: %w", err)
		}
		fmt.Printf("Pruned %d entries past retention.\n", removed)
	}

	entries, err := js.Recent(ifname, limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if n, err := js.Count(); err == nil {
		metrics.Get().SetJournalEntries(int(n))
	}

	if len(entries) == 0 {
		fmt.Println("No journal entries.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tINTERFACE\tCOMMIT\tRESULT\tGATEWAY\tADDRESSES")
	for _, e := range entries {
		result := "ok"
		if !e.Success {
			result = "error"
		}
		gw := e.Gateway
		if gw == "" {
			gw = "-"
		}
		addrs := "-"
		if len(e.Addresses) > 0 {
			addrs = strings.Join(e.Addresses, " ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339), e.Interface, shortID(e.CommitID), result, gw, addrs)
	}
	return w.Flush()
}

// shortID abbreviates a commit UUID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
