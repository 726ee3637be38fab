package firewall

import (
	"fmt"
	"regexp"
	"strings"

	"grimm.is/macsync/internal/mac"
)

// scriptBatchSize caps elements per "add element" line.
const scriptBatchSize = 500

// ScriptSet replaces set membership through the nft binary instead of
// netlink. The flush and the adds go into one nft -f script, which nft
// submits as a single transaction: the whole script applies or none of
// it does, with no intermediate state visible to readers. Fallback for
// environments where the netlink socket is unavailable.
type ScriptSet struct {
	runner CommandRunner
	family string
	table  string
	set    string
}

// NewScriptSet creates a script-based handle on one set.
func NewScriptSet(runner CommandRunner, family, table, set string) *ScriptSet {
	if runner == nil {
		runner = DefaultCommandRunner
	}
	return &ScriptSet{runner: runner, family: family, table: table, set: set}
}

// Replace atomically replaces the set's membership.
func (s *ScriptSet) Replace(addrs []mac.Addr) error {
	if err := s.runner.RunInput(s.replaceScript(addrs), "nft", "-f", "-"); err != nil {
		return fmt.Errorf("atomic replace of %s %s %s failed: %w", s.family, s.table, s.set, err)
	}
	return nil
}

// DryRun validates the replacement script without applying it.
func (s *ScriptSet) DryRun(addrs []mac.Addr) error {
	if err := s.runner.RunInput(s.replaceScript(addrs), "nft", "-c", "-f", "-"); err != nil {
		return fmt.Errorf("dry run failed: %w", err)
	}
	return nil
}

// replaceScript builds the single-transaction replacement script.
func (s *ScriptSet) replaceScript(addrs []mac.Addr) string {
	var script strings.Builder

	script.WriteString(fmt.Sprintf("flush set %s %s %s\n", s.family, s.table, s.set))

	for i := 0; i < len(addrs); i += scriptBatchSize {
		end := i + scriptBatchSize
		if end > len(addrs) {
			end = len(addrs)
		}
		elems := make([]string, 0, end-i)
		for _, a := range addrs[i:end] {
			elems = append(elems, a.String())
		}
		script.WriteString(fmt.Sprintf("add element %s %s %s { %s }\n",
			s.family, s.table, s.set, strings.Join(elems, ", ")))
	}

	return script.String()
}

var elementTokenRegex = regexp.MustCompile(`\b[0-9a-f]{2}(?::[0-9a-f]{2}){5}\b`)

// Current lists the set's membership by parsing nft list output.
func (s *ScriptSet) Current() ([]mac.Addr, error) {
	out, err := s.runner.Output("nft", "list", "set", s.family, s.table, s.set)
	if err != nil {
		return nil, fmt.Errorf("failed to list set %s %s %s: %w", s.family, s.table, s.set, err)
	}

	var addrs []mac.Addr
	for _, token := range elementTokenRegex.FindAllString(strings.ToLower(string(out)), -1) {
		a, err := mac.Normalize(token)
		if err != nil {
			continue
		}
		addrs = append(addrs, a)
	}
	return addrs, nil
}

// Name returns the set name.
func (s *ScriptSet) Name() string {
	return s.set
}
