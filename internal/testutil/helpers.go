// Package testutil holds shared gates for tests with environment
// requirements.
package testutil

import (
	"os"
	"testing"
)

// RequireRoot skips the test unless it runs as root. Tests that create
// network namespaces or touch kernel interfaces need it.
func RequireRoot(t *testing.T) {
	t.Helper()
	if os.Geteuid() != 0 {
		t.Skip("skipping test: requires root")
	}
}

// RequireEnv skips the test unless the named environment variable is
// set, for tests that must only run on disposable machines.
func RequireEnv(t *testing.T, name string) {
	t.Helper()
	if os.Getenv(name) == "" {
		t.Skipf("skipping test: requires %s environment", name)
	}
}
