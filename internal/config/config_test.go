package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismrgb/prismd/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "http:\n  enabled: true\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prismd", cfg.AppName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":8687", cfg.HTTP.Listen)
	assert.Equal(t, 5*time.Second, cfg.Scan.RescanMinInterval)
	assert.Equal(t, path, cfg.Path)
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
app_name: bench-rig
log:
  level: debug
  format: console
http:
  enabled: true
  listen: "127.0.0.1:9000"
scan:
  strict: true
  exclusive_access: true
  locale: de-DE
  rescan_on_config_change: true
  rescan_min_interval: 10s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bench-rig", cfg.AppName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Scan.Strict)
	assert.True(t, cfg.Scan.ExclusiveAccess)
	assert.Equal(t, "de-DE", cfg.Scan.Locale)
	assert.True(t, cfg.Scan.RescanOnConfigChange)
	assert.Equal(t, 10*time.Second, cfg.Scan.RescanMinInterval)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "bad listen address",
			content: "http:\n  enabled: true\n  listen: \"not-an-address\"\n",
		},
		{
			name:    "bad locale",
			content: "scan:\n  locale: \"!!nope\"\n",
		},
		{
			name:    "negative rescan interval",
			content: "scan:\n  rescan_min_interval: -5s\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())
}
