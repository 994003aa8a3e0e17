package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Cache.Capacity)
	assert.Equal(t, "./hooks", cfg.Hooks.Dir)
	assert.Greater(t, cfg.Server.Threads, 0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillet.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
host = "0.0.0.0"
port = 9999
auth_token = "secret"

[cache]
capacity = 50

[hooks]
dir = "/tmp/hooks"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.AuthToken)
	assert.Equal(t, 50, cfg.Cache.Capacity)
	assert.Equal(t, "/tmp/hooks", cfg.Hooks.Dir)
	// Unset keys keep their defaults.
	assert.Equal(t, 5074, cfg.Server.HTTPPort)
}

func TestHooksDirEnvOverride(t *testing.T) {
	t.Setenv(HooksDirEnv, "/env/hooks")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/hooks", cfg.Hooks.Dir)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[server`), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
