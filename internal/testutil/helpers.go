// Package testutil holds shared test helpers.
package testutil

import (
	"os"
	"testing"
)

// RequireVM skips the test unless the MACSYNC_VM_TEST environment
// variable is set. Tests that need real kernel capabilities (a live
// nftables subsystem, netlink access) only run in that environment.
func RequireVM(t *testing.T) {
	t.Helper()
	if os.Getenv("MACSYNC_VM_TEST") == "" {
		t.Skip("Skipping test: requires MACSYNC_VM_TEST environment")
	}
}
