package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNew_WritesToFileAndOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "codi.log")

	l, err := New(Options{Level: "debug", Format: "json", File: path, Output: &buf})
	require.NoError(t, err)
	l.Debug("planned", "component", "planner", "tasks", 4)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.Contains(t, buf.String(), `"component":"planner"`)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"planned"`))
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "warn", Output: &buf})
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
	l := slog.Default()
	assert.Same(t, l, OrNop(l))
	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
