//go:build !linux
// +build !linux

package cmd

import (
	"fmt"

	"grimm.is/macsync/internal/config"
	"grimm.is/macsync/internal/firewall"
	"grimm.is/macsync/internal/logging"
	"grimm.is/macsync/internal/reconcile"
)

func buildApplier(cfg *config.Config, logger *logging.Logger, ensureSet bool) (reconcile.SetApplier, error) {
	if cfg.FilterSet.Backend == config.SetBackendNetlink {
		return nil, fmt.Errorf("netlink backend requires linux")
	}
	return firewall.NewScriptSet(firewall.DefaultCommandRunner,
		cfg.FilterSet.Family, cfg.FilterSet.Table, cfg.FilterSet.Set), nil
}
