package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"grimm.is/macsync/cmd"
	"grimm.is/macsync/internal/brand"
	"grimm.is/macsync/internal/reconcile"
)

func main() {
	// Bare invocation runs a sync pass, so the tool can drop in where a
	// hotplug or uci-commit hook expects a single trigger command.
	if len(os.Args) < 2 {
		runOrDie(cmd.RunSync(nil))
		return
	}

	switch os.Args[1] {
	case "sync":
		runOrDie(cmd.RunSync(os.Args[2:]))

	case "check":
		runOrDie(cmd.RunCheck(os.Args[2:]))

	case "show":
		runOrDie(cmd.RunShow(os.Args[2:]))

	case "version":
		fmt.Printf("%s version %s\n", brand.Name, brand.Version)
		fmt.Printf("Build: %s\n", brand.BuildTime)

	case "help", "-h", "--help":
		printUsage()

	default:
		// Flag-style first argument means "sync with options".
		if strings.HasPrefix(os.Args[1], "-") {
			runOrDie(cmd.RunSync(os.Args[1:]))
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

// runOrDie prints the error and exits non-zero, so a failed pass is
// visible to whatever scheduled it.
func runOrDie(err error) {
	if err == nil {
		return
	}

	// The aggregate error names only the first malformed entry; list the
	// rest so the operator can fix them in one edit.
	var abort *reconcile.ValidationAbortError
	if errors.As(err, &abort) && len(abort.Invalid) > 1 {
		for _, m := range abort.Invalid {
			fmt.Fprintf(os.Stderr, "%s: %v\n", brand.LowerName, m)
		}
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", brand.LowerName, err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`%s - %s

Usage:
  %s [command] [options]

Commands:
  sync      Synchronize the static MAC allow-list into the filter set (default)
            Options: --config (-c) <file>, --dry-run (-n), --ensure-set
  check     Validate the allow-list without touching the filter set
            Options: --config (-c) <file>, --diff (-d)
  show      List the current members of the filter set
            Options: --config (-c) <file>
  version   Print version information
  help      Show this help

Examples:
  %s                        # One sync pass with the default config
  %s sync --dry-run         # Show what a pass would apply
  %s check --diff           # Report drift between store and filter set
  %s show
`,
		brand.Name, brand.Description,
		brand.BinaryName,
		brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
