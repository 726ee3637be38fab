// Package brand provides centralized branding constants for the tool.
// The identity is loaded from brand.json at compile time via go:embed so
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information.
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	ConfigFileName   string `json:"configFileName"`
	BinaryName       string `json:"binaryName"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	ConfigFileName = b.ConfigFileName
	BinaryName = b.BinaryName
}

// Exported variables for convenience.
var (
	Name             string
	LowerName        string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	ConfigFileName   string
	BinaryName       string

	// Version is set at build time via -ldflags
	Version   = "dev"
	BuildTime = "unknown"
)

// Get returns the full Brand struct.
func Get() Brand {
	return b
}

// GetConfigPath returns the config file path, checking env vars first.
// Priority: MACSYNC_CONFIG > MACSYNC_CONFIG_DIR/macsync.hcl > default.
func GetConfigPath() string {
	if path := os.Getenv(ConfigEnvPrefix + "_CONFIG"); path != "" {
		return path
	}
	if dir := os.Getenv(ConfigEnvPrefix + "_CONFIG_DIR"); dir != "" {
		return filepath.Join(dir, ConfigFileName)
	}
	return filepath.Join(DefaultConfigDir, ConfigFileName)
}
