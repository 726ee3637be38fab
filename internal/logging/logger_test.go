package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.Info("set updated", "elements", 4)

	line := buf.String()
	assert.Contains(t, line, "[info]")
	assert.Contains(t, line, "set updated")
	assert.Contains(t, line, "elements=4")
	assert.Contains(t, line, "macsync[")
}

func TestConsoleHandler_ComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.WithComponent("reconcile").Info("pass complete")

	assert.Contains(t, buf.String(), "reconcile: pass complete")
}

func TestConsoleHandler_QuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf})

	logger.Warn("rejected entry", "raw", "not a mac")

	assert.Contains(t, buf.String(), `raw="not a mac"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")

	logger.SetLevel(LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestConsoleHandler_UnsetLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(&buf, &slog.HandlerOptions{})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelWarn))
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf, JSON: true})

	logger.Info("pass complete", "applied", 2)

	line := buf.String()
	require.True(t, strings.HasPrefix(line, "{"), "expected JSON output, got: %s", line)
	assert.Contains(t, line, `"applied":2`)
}

func TestAudit_AlwaysCarriesActionAndResource(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})

	logger.Audit("replace", "static_macs", map[string]any{"elements": 3})

	out := buf.String()
	assert.Contains(t, out, "AUDIT")
	assert.Contains(t, out, "action=replace")
	assert.Contains(t, out, "resource=static_macs")
	assert.Contains(t, out, "elements=3")
}
