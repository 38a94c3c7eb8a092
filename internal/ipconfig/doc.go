// Package ipconfig holds the per-interface IPv4 configuration store and
// the operations that reconcile it against the kernel.
//
// # Overview
//
// A Config collects everything floe knows about one interface's IPv4
// state: addresses, routes, the default gateway, DNS (nameservers,
// domains, searches), NIS, WINS, MSS and MTU. Configs come from three
// directions and meet in the middle:
//
//   - Capture reads the current kernel state of an interface into a
//     fresh Config.
//   - MergeSetting layers a user-authored Setting (the config file's
//     per-interface block) on top.
//   - FromLease converts a DHCPv4 ACK into a Config fragment.
//
// Fragments are combined with Merge, retracted with Subtract, and the
// composed result is pushed to the kernel with Commit. Replace swaps a
// Config's content for another's and classifies the difference, so a
// caller holding a long-lived Config can tell semantic changes from
// bookkeeping churn. Fingerprint and Equal give a stable SHA-1 digest
// over the semantically relevant fields.
//
// # Model
//
// Configs are plain mutable stores, not goroutines: all operations run
// synchronously on the caller's goroutine and nothing here locks. One
// owner mutates a Config at a time. Change notifications go through an
// events.Hub when one is attached with SetHub; a freshly built Config
// has no hub and mutates silently.
//
// Contract violations (zero-prefix routes, zero nameservers, empty
// domains, replacing a config with itself) panic. Platform failures
// during Commit are reported as a plain boolean, matching the platform
// layer's sync contract.
package ipconfig
