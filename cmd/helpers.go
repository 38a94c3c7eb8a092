package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"grimm.is/floe/internal/brand"
	"grimm.is/floe/internal/config"
	"grimm.is/floe/internal/platform"
)

// fakeIfindex is the index assigned to the interface on the fake platform.
const fakeIfindex = 1

// newPlatform resolves the platform backend and the interface index for a
// command run. With fake=true it returns an in-memory platform seeded with
// the named interface, so commands can be exercised without touching the
// kernel or requiring root.
func newPlatform(fake bool, ifname string) (platform.Platform, int, error) {
	if fake {
		f := platform.NewFake()
		f.AddLink(fakeIfindex, ifname)
		return f, fakeIfindex, nil
	}

	k := platform.NewKernel()
	ifindex, err := k.LinkIndexByName(ifname)
	if err != nil {
		return nil, 0, fmt.Errorf("interface %s: %w", ifname, err)
	}
	return k, ifindex, nil
}

// loadInterfaceConfig loads the config file and resolves the section for
// ifname. A missing file is only an error when the path was given
// explicitly; the default path simply yields no declared setting.
func loadInterfaceConfig(configFile, ifname string) (*config.Config, *config.InterfaceConfig, error) {
	explicit := configFile != ""
	if !explicit {
		configFile = brand.GetConfigPath()
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return &config.Config{}, nil, nil
		}
		return nil, nil, err
	}
	return cfg, cfg.Interface(ifname), nil
}

// defaultJournalPath is where commit history lands unless overridden.
func defaultJournalPath() string {
	return filepath.Join(brand.GetStateDir(), "journal.db")
}

// changeClass names the outcome of a replace for logs and metrics.
func changeClass(changed, relevant bool) string {
	switch {
	case relevant:
		return "relevant"
	case changed:
		return "minor"
	default:
		return "none"
	}
}
