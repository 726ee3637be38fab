package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, SourceBackendCLI, cfg.Source.Backend)
	assert.Equal(t, "dhcp", cfg.Source.Package)
	assert.Equal(t, "host", cfg.Source.Section)
	assert.Equal(t, "mac", cfg.Source.Option)
	assert.Equal(t, SetBackendNetlink, cfg.FilterSet.Backend)
	assert.Equal(t, "inet", cfg.FilterSet.Family)
	assert.Equal(t, "fw4", cfg.FilterSet.Table)
	assert.Equal(t, "static_macs", cfg.FilterSet.Set)
}

func TestParse_FullConfig(t *testing.T) {
	hcl := `
log_level = "debug"
log_json  = true

source {
  backend     = "file"
  config_file = "/tmp/dhcp"
  package     = "dhcp"
  section     = "host"
  option      = "mac"
}

filter_set {
  backend = "script"
  family  = "bridge"
  table   = "filter"
  set     = "known_devices"
}
`
	cfg, err := Parse([]byte(hcl), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, SourceBackendFile, cfg.Source.Backend)
	assert.Equal(t, "/tmp/dhcp", cfg.Source.ConfigFile)
	assert.Equal(t, SetBackendScript, cfg.FilterSet.Backend)
	assert.Equal(t, "bridge", cfg.FilterSet.Family)
	assert.Equal(t, "known_devices", cfg.FilterSet.Set)
}

func TestParse_PartialConfigFillsDefaults(t *testing.T) {
	hcl := `
filter_set {
  table = "custom"
}
`
	cfg, err := Parse([]byte(hcl), "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.FilterSet.Table)
	assert.Equal(t, "static_macs", cfg.FilterSet.Set)
	assert.Equal(t, "inet", cfg.FilterSet.Family)
	assert.Equal(t, SourceBackendCLI, cfg.Source.Backend)
	assert.Equal(t, "uci", cfg.Source.UCIBinary)
}

func TestParse_EmptyConfigIsAllDefaults(t *testing.T) {
	cfg, err := Parse(nil, "empty.hcl")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := Parse([]byte(`filter_set {`), "bad.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HCL parse error")
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad source backend", func(c *Config) { c.Source.Backend = "http" }},
		{"bad selector", func(c *Config) { c.Source.Section = "host; drop" }},
		{"bad set backend", func(c *Config) { c.FilterSet.Backend = "iptables" }},
		{"bad family", func(c *Config) { c.FilterSet.Family = "ip6" }},
		{"bad table name", func(c *Config) { c.FilterSet.Table = "fw4; flush ruleset" }},
		{"bad set name", func(c *Config) { c.FilterSet.Set = "static macs" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.hcl"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("existing file is loaded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "macsync.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`log_level = "warn"`), 0o644))

		cfg, err := LoadOrDefault(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("invalid file is still an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "macsync.hcl")
		require.NoError(t, os.WriteFile(path, []byte(`log_level = "loud"`), 0o644))

		_, err := LoadOrDefault(path)
		assert.Error(t, err)
	})
}
