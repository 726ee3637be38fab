//go:build linux
// +build linux

package firewall

import (
	"testing"

	"github.com/google/nftables"
	"github.com/stretchr/testify/require"

	"grimm.is/macsync/internal/mac"
	"grimm.is/macsync/internal/testutil"
)

// TestLiveReplaceRoundTrip exercises the netlink path against a real
// kernel: create a throwaway table and set, replace the membership
// twice, and read it back.
func TestLiveReplaceRoundTrip(t *testing.T) {
	testutil.RequireVM(t)

	conn, err := nftables.New()
	require.NoError(t, err)

	table := conn.AddTable(&nftables.Table{
		Name:   "macsync_test",
		Family: nftables.TableFamilyINet,
	})
	require.NoError(t, conn.Flush())
	defer func() {
		conn.DelTable(table)
		conn.Flush()
	}()

	mgr := NewMACSetManager(NewRealNFTablesConn(conn), "macsync_test", nil)
	require.NoError(t, mgr.EnsureSet("static_macs"))

	first := []mac.Addr{
		mac.MustNormalize("00:11:22:33:44:55"),
		mac.MustNormalize("aa:bb:cc:dd:ee:ff"),
	}
	require.NoError(t, mgr.ReplaceElements("static_macs", first))

	got, err := mgr.Elements("static_macs")
	require.NoError(t, err)
	require.Equal(t, first, got)

	second := []mac.Addr{mac.MustNormalize("de:ad:be:ef:00:01")}
	require.NoError(t, mgr.ReplaceElements("static_macs", second))

	got, err = mgr.Elements("static_macs")
	require.NoError(t, err)
	require.Equal(t, second, got)
}
