package uci

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts command execution so tests can stub the uci binary.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner executes real commands.
type ExecRunner struct{}

// Output runs the command and returns its stdout. Stderr is captured
// into the returned exec.ExitError on failure.
func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// CLISource reads the store through the uci binary, one ordinal lookup
// per entry (uci get dhcp.@host[i].mac). This matches the production
// trigger environment on the router.
type CLISource struct {
	bin    string
	sel    Selector
	runner Runner
}

// NewCLISource creates a CLI-backed source. bin defaults to "uci".
func NewCLISource(bin string, sel Selector, runner Runner) *CLISource {
	if bin == "" {
		bin = "uci"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &CLISource{bin: bin, sel: sel, runner: runner}
}

// Lookup reads one ordinal entry. Only uci's "Entry not found" failure
// is the end-of-sequence signal; any other non-zero exit (parse error,
// unreadable store) and any failure to execute the binary is a store
// error. Conflating the two would make a corrupt store look empty and
// let a pass wipe the filter set.
func (s *CLISource) Lookup(ctx context.Context, index int) (string, bool, error) {
	out, err := s.runner.Output(ctx, s.bin, "get", s.sel.key(index))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if isNotFound(exitErr) {
				return "", false, nil
			}
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				err = fmt.Errorf("%w: %s", err, msg)
			}
		}
		return "", false, &SourceError{Op: s.bin + " get " + s.sel.key(index), Err: err}
	}

	value := strings.TrimSpace(string(out))
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// isNotFound matches uci's "Entry not found" error, the only non-zero
// exit that means absence rather than a broken store.
func isNotFound(err *exec.ExitError) bool {
	return strings.Contains(string(err.Stderr), "Entry not found")
}
