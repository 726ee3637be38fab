//go:build linux
// +build linux

package cmd

import (
	"fmt"

	"github.com/google/nftables"

	"grimm.is/macsync/internal/config"
	"grimm.is/macsync/internal/firewall"
	"grimm.is/macsync/internal/logging"
	"grimm.is/macsync/internal/reconcile"
)

// buildApplier constructs the configured filter set handle. The filter
// set itself is owned by the firewall configuration; ensureSet creates
// it only when explicitly requested.
func buildApplier(cfg *config.Config, logger *logging.Logger, ensureSet bool) (reconcile.SetApplier, error) {
	switch cfg.FilterSet.Backend {
	case config.SetBackendNetlink:
		if cfg.FilterSet.Family != "inet" {
			return nil, fmt.Errorf("netlink backend only supports the inet family; use the script backend for %s", cfg.FilterSet.Family)
		}
		conn, err := nftables.New()
		if err != nil {
			return nil, fmt.Errorf("failed to open netlink connection: %w", err)
		}
		mgr := firewall.NewMACSetManager(firewall.NewRealNFTablesConn(conn), cfg.FilterSet.Table, logger)
		if ensureSet {
			if err := mgr.EnsureSet(cfg.FilterSet.Set); err != nil {
				return nil, err
			}
		}
		return firewall.NewBoundSet(mgr, cfg.FilterSet.Set), nil

	case config.SetBackendScript:
		return firewall.NewScriptSet(firewall.DefaultCommandRunner,
			cfg.FilterSet.Family, cfg.FilterSet.Table, cfg.FilterSet.Set), nil

	default:
		return nil, fmt.Errorf("unknown filter_set backend %q", cfg.FilterSet.Backend)
	}
}
