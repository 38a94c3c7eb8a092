//go:build linux
// +build linux

package platform

import (
	"github.com/safchain/ethtool"
)

// LinkSupportsCarrierDetect reports whether the interface driver answers
// ETHTOOL_GLINK. Drivers without carrier detection (some tunnels, dummy
// devices) are treated as always-connected by callers.
func (k *Kernel) LinkSupportsCarrierDetect(ifindex int) bool {
	name, err := k.LinkName(ifindex)
	if err != nil {
		return false
	}
	e, err := ethtool.NewEthtool()
	if err != nil {
		k.log.Debug("ethtool unavailable", "error", err)
		return false
	}
	defer e.Close()

	_, err = e.LinkState(name)
	return err == nil
}
