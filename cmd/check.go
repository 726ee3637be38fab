package cmd

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/macsync/internal/brand"
	"grimm.is/macsync/internal/mac"
	"grimm.is/macsync/internal/reconcile"
)

// RunCheck validates the configured allow-list without touching the
// filter set. With -diff it also compares the live membership against
// the computed target and fails on drift.
func RunCheck(args []string) error {
	flags := flag.NewFlagSet("check", flag.ExitOnError)
	configFile := flags.String("config", brand.GetConfigPath(), "Configuration file")
	flags.StringVar(configFile, "c", brand.GetConfigPath(), "Configuration file (short)")

	diff := flags.Bool("diff", false, "Compare live filter set membership against the target")
	flags.BoolVar(diff, "d", false, "Show membership diff (short)")

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

	r := reconcile.New(source, nil, reconcile.WithLogger(logger))

	target, result, err := r.Plan(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Configuration valid: %d entries, %d unique addresses", result.Scanned, result.Applied)
	if result.Duplicates > 0 {
		fmt.Printf(" (%d duplicates collapsed)", result.Duplicates)
	}
	fmt.Println()

	if !*diff {
		return nil
	}

	applier, err := buildApplier(cfg, logger, false)
	if err != nil {
		return err
	}
	current, err := applier.Current()
	if err != nil {
		return fmt.Errorf("failed to read live filter set: %w", err)
	}

	udiff, err := membershipDiff(current, target, applier.Name())
	if err != nil {
		return err
	}
	if udiff == "" {
		fmt.Println("Filter set is in sync.")
		return nil
	}

	fmt.Print(udiff)
	return fmt.Errorf("filter set %s has drifted from the configured allow-list", applier.Name())
}

// membershipDiff renders a unified diff of two sorted membership lists.
func membershipDiff(current, target []mac.Addr, setName string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        sortedLines(current),
		B:        sortedLines(target),
		FromFile: setName + " (live)",
		ToFile:   setName + " (configured)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}

// sortedLines renders membership in a canonical order for diffing.
func sortedLines(addrs []mac.Addr) []string {
	lines := make([]string, 0, len(addrs))
	for _, a := range addrs {
		lines = append(lines, a.String()+"\n")
	}
	sort.Strings(lines)
	return lines
}
