package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 4, cfg.Engine.Concurrency)
	assert.True(t, cfg.Store.Enabled)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shorpost.yaml")
	content := `
engine:
  max_outcomes: 8
  multiple_search: 3
store:
  path: /tmp/history.db
telemetry:
  logging:
    level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Engine.MaxOutcomes)
	assert.Equal(t, 3, cfg.Engine.MultipleSearch)
	assert.Equal(t, 4, cfg.Engine.Concurrency)
	assert.Equal(t, "/tmp/history.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Telemetry.Logging.Level)
	assert.Equal(t, "console", cfg.Telemetry.Logging.Format)

	opts := cfg.Engine.Options()
	assert.Equal(t, 8, opts.MaxOutcomes)
	assert.Equal(t, 3, opts.MultipleSearch)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	// No explicit path and no shorpost.yaml in the working directory.
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Engine, cfg.Engine)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative outcomes", "engine:\n  max_outcomes: -1\n"},
		{"zero concurrency", "engine:\n  concurrency: 0\n"},
		{"store without path", "store:\n  enabled: true\n  path: \"\"\n"},
		{"bad log level", "telemetry:\n  logging:\n    level: chatty\n"},
		{"bad yaml", "engine: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "shorpost.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SHORPOST_LOG_LEVEL", "warn")
	t.Setenv("SHORPOST_DB", "/var/lib/shorpost.db")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Telemetry.Logging.Level)
	assert.Equal(t, "/var/lib/shorpost.db", cfg.Store.Path)
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Engine.MinCount = 12
	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Engine, loaded.Engine)
	assert.Equal(t, cfg.Telemetry.Tracing.ExportTimeout, loaded.Telemetry.Tracing.ExportTimeout)
}
