package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, ":5001", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 100.0, cfg.RateLimit.RPS)
}

func TestLoadConfigExplicitMissingFileFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9000\"\nlog_level: debug\nnode_name: miner-1\nrate_limit:\n  rps: 10\n  burst: 20\n"), 0o600))

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "miner-1", cfg.NodeName)
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))
	_, err := loadConfig(path, true)
	assert.Error(t, err)
}
