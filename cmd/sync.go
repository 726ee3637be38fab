package cmd

import (
	"context"
	"flag"
	"fmt"

	"grimm.is/macsync/internal/brand"
	"grimm.is/macsync/internal/reconcile"
)

// RunSync performs one reconciliation pass and prints the summary line.
func RunSync(args []string) error {
	flags := flag.NewFlagSet("sync", flag.ExitOnError)
	configFile := flags.String("config", brand.GetConfigPath(), "Configuration file")
	flags.StringVar(configFile, "c", brand.GetConfigPath(), "Configuration file (short)")

	dryRun := flags.Bool("dry-run", false, "Plan only - do not touch the filter set")
	flags.BoolVar(dryRun, "n", false, "Dry run (short)")

	ensureSet := flags.Bool("ensure-set", false, "Create the filter set if it does not exist")

	flags.Parse(args)

	cfg, err := loadConfig(*configFile, configFlagSet(flags))
	if err != nil {
		return err
	}
	logger := setupLogging(cfg)

	source, err := buildSource(cfg)
	if err != nil {
		return err
	}
	applier, err := buildApplier(cfg, logger, *ensureSet)
	if err != nil {
		return err
	}

	r := reconcile.New(source, applier,
		reconcile.WithLogger(logger),
		reconcile.WithDryRun(*dryRun))

	result, err := r.Run(context.Background())
	if err != nil {
		return err
	}

	// The single summary line is the tool's stdout contract.
	fmt.Println(result.Summary())
	return nil
}

// configFlagSet reports whether -config/-c was passed explicitly.
func configFlagSet(flags *flag.FlagSet) bool {
	explicit := false
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" || f.Name == "c" {
			explicit = true
		}
	})
	return explicit
}
