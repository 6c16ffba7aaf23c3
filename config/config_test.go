package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meikuraledutech/pipeline/autowire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, autowire.Layout{OffsetX: 250, StepY: 80, Margin: 20}, cfg.Layout)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
backend_url: http://validator.internal:9000
listen_addr: ":9000"
log_level: debug
submit_timeout: 5s
layout:
  offset_x: 300
  step_y: 100
`)
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvAddr, "127.0.0.1:8080")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://validator.internal:9000", cfg.BackendURL)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, 5*time.Second, cfg.SubmitTimeout)
	// Keys missing from the file keep their defaults.
	assert.Equal(t, autowire.Layout{OffsetX: 300, StepY: 100, Margin: 20}, cfg.Layout)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvBackendURL, "")
	t.Setenv(EnvAddr, "")
	t.Setenv(EnvLogLevel, "")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "log_level: [", "parse"},
		{"bad level", "log_level: verbose", "LogLevel"},
		{"bad url", "backend_url: not a url", "BackendURL"},
		{"negative layout", "layout:\n  margin: -1", "Margin"},
		{"empty addr", `listen_addr: ""`, "ListenAddr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_Level(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		assert.Equal(t, want, Config{LogLevel: level}.Level(), level)
	}
	assert.NotNil(t, Default().Logger())
}
