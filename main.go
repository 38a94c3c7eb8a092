package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"grimm.is/floe/cmd"
	"grimm.is/floe/internal/brand"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		fake := showFlags.Bool("fake", false, "Use an in-memory platform instead of the kernel")
		format := showFlags.String("format", "text", "Output format: text or yaml")
		asConfig := showFlags.Bool("as-config", false, "Render the captured state as a config file fragment")
		showFlags.Parse(os.Args[2:])

		if showFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "usage: %s show [-fake] [-format text|yaml] [-as-config] <interface>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunShow(showFlags.Arg(0), *fake, *format, *asConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		verbose := checkFlags.Bool("verbose", false, "Verbose output")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		configFile := brand.GetConfigPath()
		if checkFlags.NArg() > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile, *verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "apply":
		applyFlags := flag.NewFlagSet("apply", flag.ExitOnError)
		configFile := applyFlags.String("config", "", "Configuration file (default "+brand.GetConfigPath()+")")
		applyFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		leaseFile := applyFlags.String("lease", "", "Raw DHCPv4 lease packet to merge")
		journalPath := applyFlags.String("journal", "", "Commit journal database")
		fake := applyFlags.Bool("fake", false, "Use an in-memory platform instead of the kernel")
		dryRun := applyFlags.Bool("dry-run", false, "Print the computed state without committing")
		applyFlags.BoolVar(dryRun, "n", false, "Dry run (short)")
		applyFlags.Parse(os.Args[2:])

		if applyFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "usage: %s apply [-fake] [-dry-run] [-config <file>] [-lease <file>] <interface>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunApply(*configFile, applyFlags.Arg(0), *leaseFile, *journalPath, *fake, *dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Apply failed: %v\n", err)
			os.Exit(1)
		}

	case "diff":
		diffFlags := flag.NewFlagSet("diff", flag.ExitOnError)
		configFile := diffFlags.String("config", "", "Configuration file (default "+brand.GetConfigPath()+")")
		diffFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		fake := diffFlags.Bool("fake", false, "Use an in-memory platform instead of the kernel")
		diffFlags.Parse(os.Args[2:])

		if diffFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "usage: %s diff [-config <file>] <interface>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunDiff(*configFile, diffFlags.Arg(0), *fake); err != nil {
			fmt.Fprintf(os.Stderr, "Diff failed: %v\n", err)
			os.Exit(1)
		}

	case "monitor":
		monitorFlags := flag.NewFlagSet("monitor", flag.ExitOnError)
		interval := monitorFlags.Duration("interval", 5*time.Second, "Recapture interval")
		metricsListen := monitorFlags.String("metrics-listen", "", "Serve Prometheus metrics on this address (e.g. :9477)")
		monitorFlags.Parse(os.Args[2:])

		if monitorFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "usage: %s monitor [-interval 5s] [-metrics-listen <addr>] <interface>\n", brand.BinaryName)
			os.Exit(1)
		}
		if err := cmd.RunMonitor(monitorFlags.Arg(0), *interval, *metricsListen); err != nil {
			fmt.Fprintf(os.Stderr, "Monitor failed: %v\n", err)
			os.Exit(1)
		}

	case "journal":
		journalFlags := flag.NewFlagSet("journal", flag.ExitOnError)
		limit := journalFlags.Int("n", 20, "Number of entries to show")
		journalPath := journalFlags.String("journal", "", "Commit journal database")
		prune := journalFlags.Bool("prune", false, "Remove entries past retention before listing")
		journalFlags.Parse(os.Args[2:])

		ifname := ""
		if journalFlags.NArg() > 0 {
			ifname = journalFlags.Arg(0)
		}
		if err := cmd.RunJournal(ifname, *journalPath, *limit, *prune); err != nil {
			fmt.Fprintf(os.Stderr, "Journal failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("%s version %s\n", brand.Name, brand.Version)
		fmt.Printf("Build: %s\n", brand.BuildTime)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage:
  %s <command> [options]

Commands:
  show      Display an interface's live IPv4 state
            Options: --fake, --format text|yaml, --as-config
  check     Validate a configuration file
            Options: --verbose (-v)
  apply     Reconcile an interface with its declared configuration
            Options: --fake, --dry-run (-n), --config (-c) <file>, --lease <file>
  diff      Compare declared configuration against live state
            Options: --config (-c) <file>
  monitor   Watch an interface for external changes
            Options: --interval <dur>, --metrics-listen <addr>
  journal   Show recent commit history
            Options: -n <count>, --prune
  version   Print version information

Examples:
  %s show eth0                     # Dump live IPv4 state
  %s check -v /etc/floe/floe.hcl   # Validate, then dry-run the operations
  %s apply -n eth0                 # Preview a reconcile
  %s monitor -interval 10s eth0    # Watch for drift
`, brand.Name, brand.Description, brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
