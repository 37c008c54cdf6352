package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qiniu/x/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BERNOULLI_HOST",
		"BERNOULLI_PORT",
		"BERNOULLI_SOLVE_TIMEOUT",
		"BERNOULLI_ROUND_DIGITS",
		"BERNOULLI_LOG_LEVEL",
	} {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `server:
  host: "127.0.0.1"
  port: 9090
solver:
  timeout: 2s
  round_digits: 4
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, 2*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, 4, cfg.Solver.RoundDigits)
	// Unset keys keep their defaults.
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, log.Ldebug, level)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `server:
  port: 9090
solver:
  round_digits: 4
`)
	os.Setenv("BERNOULLI_PORT", "7070")
	os.Setenv("BERNOULLI_ROUND_DIGITS", "8")
	os.Setenv("BERNOULLI_SOLVE_TIMEOUT", "250ms")
	os.Setenv("BERNOULLI_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Solver.RoundDigits)
	assert.Equal(t, 250*time.Millisecond, cfg.Solver.Timeout)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "server: [unterminated"},
		{name: "port out of range", file: "server:\n  port: 70000\n"},
		{name: "zero digits", file: "solver:\n  round_digits: 0\n"},
		{name: "unknown log level", file: "log:\n  level: loud\n"},
		{name: "bad env port", env: map[string]string{"BERNOULLI_PORT": "eighty"}},
		{name: "bad env timeout", env: map[string]string{"BERNOULLI_SOLVE_TIMEOUT": "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
