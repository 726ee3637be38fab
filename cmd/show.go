package cmd

import (
	"flag"
	"fmt"

	"grimm.is/macsync/internal/brand"
)

// RunShow lists the current members of the live filter set.
func RunShow(args []string) error {
	flags := flag.NewFlagSet("show", flag.ExitOnError)
	configFile := flags.String("config", brand.GetConfigPath(), "Configuration file")
	flags.StringVar(configFile, "c", brand.GetConfigPath(), "Configuration file (short)")

	flags.Parse(args)

	cfg, err := loadConfig(*configFile, configFlagSet(flags))
	if err != nil {
		return err
	}
	logger := setupLogging(cfg)

	applier, err := buildApplier(cfg, logger, false)
	if err != nil {
		return err
	}

	current, err := applier.Current()
	if err != nil {
		return fmt.Errorf("failed to read filter set %s: %w", applier.Name(), err)
	}

	fmt.Printf("%s: %d members\n", applier.Name(), len(current))
	for _, line := range sortedLines(current) {
		fmt.Printf("  %s", line)
	}
	return nil
}
