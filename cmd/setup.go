// Package cmd holds the entry points behind each CLI subcommand.
package cmd

import (
	"fmt"

	"grimm.is/macsync/internal/config"
	"grimm.is/macsync/internal/logging"
	"grimm.is/macsync/internal/uci"
)

// loadConfig loads the tool configuration. An explicitly passed path
// must exist; the default path may be absent.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	if explicit {
		return config.Load(path)
	}
	return config.LoadOrDefault(path)
}

// setupLogging configures the default logger from config.
func setupLogging(cfg *config.Config) *logging.Logger {
	level := logging.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	logger := logging.New(logging.Config{Level: level, JSON: cfg.LogJSON})
	logging.SetDefault(logger)
	return logger
}

// buildSource constructs the configured entry source.
func buildSource(cfg *config.Config) (uci.Source, error) {
	sel := uci.Selector{
		Package: cfg.Source.Package,
		Section: cfg.Source.Section,
		Option:  cfg.Source.Option,
	}

	switch cfg.Source.Backend {
	case config.SourceBackendCLI:
		return uci.NewCLISource(cfg.Source.UCIBinary, sel, nil), nil
	case config.SourceBackendFile:
		return uci.NewFileSource(cfg.Source.ConfigFile, sel), nil
	default:
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}
}
