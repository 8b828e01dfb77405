package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOMEDASH_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "dashboard.layout", cfg.Storage.Key)
	assert.Equal(t, "gemini-2.5-flash", cfg.Insight.Model)
	assert.Equal(t, 30*time.Second, cfg.Insight.Timeout)
	assert.Equal(t, time.Minute, cfg.Data.CacheTTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, slog.LevelInfo, cfg.Log.SlogLevel())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "homedash.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[storage]
driver = "sqlite"
path = "/tmp/homedash.db"

[insight]
model = "gemini-test"
timeout = "5s"

[user]
name = "Alex Morgan"
preferences = ["typography", "accessibility"]
`), 0o644))
	t.Setenv("HOMEDASH_LOG_LEVEL", "debug")
	t.Setenv("HOMEDASH_USER_ROLE", "Product Designer")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/homedash.db", cfg.Storage.Path)
	assert.Equal(t, "gemini-test", cfg.Insight.Model)
	assert.Equal(t, 5*time.Second, cfg.Insight.Timeout)
	assert.Equal(t, "Alex Morgan", cfg.User.Name)
	assert.Equal(t, "Product Designer", cfg.User.Role)
	assert.Equal(t, []string{"typography", "accessibility"}, cfg.User.Preferences)
	assert.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HOMEDASH_STORAGE_DRIVER", "etcd")
	_, err := Load("")
	assert.ErrorContains(t, err, "unknown storage driver")
}

func TestLoadMissingExplicitFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Driver)
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("HOMEDASH_TEST_KEY", " from-env ")
	assert.Equal(t, "inline", InsightConfig{APIKey: "inline", APIKeyEnv: "HOMEDASH_TEST_KEY"}.ResolveAPIKey())
	assert.Equal(t, "from-env", InsightConfig{APIKeyEnv: "HOMEDASH_TEST_KEY"}.ResolveAPIKey())
	assert.Empty(t, InsightConfig{}.ResolveAPIKey())
}
