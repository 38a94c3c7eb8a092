//go:build !linux
// +build !linux

package platform

// LinkSupportsCarrierDetect always reports false off Linux; there is no
// ethtool to ask.
func (k *Kernel) LinkSupportsCarrierDetect(ifindex int) bool {
	return false
}
