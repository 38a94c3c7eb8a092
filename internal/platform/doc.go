// Package platform abstracts the kernel networking state consumed by the
// IPv4 configuration engine.
//
// # Overview
//
// This package defines the capability surface the engine needs from the
// kernel (links, IPv4 addresses, IPv4 routes) and provides three
// implementations:
//
//   - [Kernel]: the real thing, backed by netlink and ethtool
//   - [Fake]: an in-memory double with failure injection, used by tests
//     and by the CLI's dry-run mode
//   - [MockPlatform]: a testify mock for call-level assertions
//
// # Consistency Contract
//
// Every successful mutating call's effect is immediately visible to a
// subsequent read call on the same Platform instance. Callers never poll
// or retry to observe their own writes. Sync operations report failure as
// a boolean, never as a partial list of which entries succeeded.
//
// # Dependencies
//
// Uses github.com/vishvananda/netlink for all netlink operations and
// github.com/safchain/ethtool for carrier-detect capability probing.
package platform
