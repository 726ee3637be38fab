// Package config loads the tool configuration from HCL. Every field has
// a default chosen so that a bare invocation matches the router's stock
// layout: dhcp.@host[].mac synced into the inet fw4 static_macs set.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Source backends.
const (
	SourceBackendCLI  = "cli"
	SourceBackendFile = "file"
)

// Filter set backends.
const (
	SetBackendNetlink = "netlink"
	SetBackendScript  = "script"
)

// Config is the root configuration.
type Config struct {
	LogLevel  string        `hcl:"log_level,optional"`
	LogJSON   bool          `hcl:"log_json,optional"`
	Source    *SourceConfig `hcl:"source,block"`
	FilterSet *SetConfig    `hcl:"filter_set,block"`
}

// SourceConfig selects where address entries are read from.
type SourceConfig struct {
	Backend    string `hcl:"backend,optional"`     // "cli" or "file"
	UCIBinary  string `hcl:"uci_binary,optional"`  // cli backend
	ConfigFile string `hcl:"config_file,optional"` // file backend
	Package    string `hcl:"package,optional"`
	Section    string `hcl:"section,optional"`
	Option     string `hcl:"option,optional"`
}

// SetConfig names the kernel filter set that is reconciled.
type SetConfig struct {
	Backend string `hcl:"backend,optional"` // "netlink" or "script"
	Family  string `hcl:"family,optional"`
	Table   string `hcl:"table,optional"`
	Set     string `hcl:"set,optional"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Source: &SourceConfig{
			Backend:    SourceBackendCLI,
			UCIBinary:  "uci",
			ConfigFile: "/etc/config/dhcp",
			Package:    "dhcp",
			Section:    "host",
			Option:     "mac",
		},
		FilterSet: &SetConfig{
			Backend: SetBackendNetlink,
			Family:  "inet",
			Table:   "fw4",
			Set:     "static_macs",
		},
	}
}

// Load reads and validates a config file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, path)
}

// LoadOrDefault loads path if it exists and falls back to defaults when
// it does not. Any other failure is still an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL bytes into a validated Config.
func Parse(data []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("HCL parse error: %s", diags.Error())
	}

	cfg := &Config{}
	if diags := gohcl.DecodeBody(file.Body, &hcl.EvalContext{}, cfg); diags.HasErrors() {
		return nil, fmt.Errorf("config decode error: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills unset fields from Default().
func (c *Config) applyDefaults() {
	def := Default()

	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Source == nil {
		c.Source = def.Source
	} else {
		if c.Source.Backend == "" {
			c.Source.Backend = def.Source.Backend
		}
		if c.Source.UCIBinary == "" {
			c.Source.UCIBinary = def.Source.UCIBinary
		}
		if c.Source.ConfigFile == "" {
			c.Source.ConfigFile = def.Source.ConfigFile
		}
		if c.Source.Package == "" {
			c.Source.Package = def.Source.Package
		}
		if c.Source.Section == "" {
			c.Source.Section = def.Source.Section
		}
		if c.Source.Option == "" {
			c.Source.Option = def.Source.Option
		}
	}
	if c.FilterSet == nil {
		c.FilterSet = def.FilterSet
	} else {
		if c.FilterSet.Backend == "" {
			c.FilterSet.Backend = def.FilterSet.Backend
		}
		if c.FilterSet.Family == "" {
			c.FilterSet.Family = def.FilterSet.Family
		}
		if c.FilterSet.Table == "" {
			c.FilterSet.Table = def.FilterSet.Table
		}
		if c.FilterSet.Set == "" {
			c.FilterSet.Set = def.FilterSet.Set
		}
	}
}

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate checks field values. Called by Parse; exported for callers
// that build configs programmatically.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}

	switch c.Source.Backend {
	case SourceBackendCLI, SourceBackendFile:
	default:
		return fmt.Errorf("invalid source backend %q (want %q or %q)",
			c.Source.Backend, SourceBackendCLI, SourceBackendFile)
	}
	if !nameRegex.MatchString(c.Source.Package) || !nameRegex.MatchString(c.Source.Section) || !nameRegex.MatchString(c.Source.Option) {
		return fmt.Errorf("invalid source selector %s.@%s[].%s", c.Source.Package, c.Source.Section, c.Source.Option)
	}

	switch c.FilterSet.Backend {
	case SetBackendNetlink, SetBackendScript:
	default:
		return fmt.Errorf("invalid filter_set backend %q (want %q or %q)",
			c.FilterSet.Backend, SetBackendNetlink, SetBackendScript)
	}
	switch c.FilterSet.Family {
	case "inet", "bridge", "netdev":
	default:
		return fmt.Errorf("invalid filter_set family %q (want inet, bridge, or netdev)", c.FilterSet.Family)
	}
	if !nameRegex.MatchString(c.FilterSet.Table) {
		return fmt.Errorf("invalid filter_set table %q", c.FilterSet.Table)
	}
	if !nameRegex.MatchString(c.FilterSet.Set) {
		return fmt.Errorf("invalid filter_set set %q", c.FilterSet.Set)
	}

	return nil
}
