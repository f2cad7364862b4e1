package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// point at an absent config file so a developer's real config can't leak in
	t.Setenv("TENDERSTAGE_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 24*time.Hour, cfg.Staging.DefaultTTL)
	require.Equal(t, 48*time.Hour, cfg.Staging.ItemTTL)
	require.False(t, cfg.Staging.KeepStaged)
	require.Equal(t, 30*time.Second, cfg.Scheduler.PollInterval)
	require.Equal(t, 250*time.Millisecond, cfg.Scheduler.Debounce)
	require.NotEmpty(t, cfg.Database.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TENDERSTAGE_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("TENDERSTAGE_STAGING_DEFAULT_TTL", "1h")
	t.Setenv("TENDERSTAGE_STAGING_KEEP_STAGED", "true")
	t.Setenv("TENDERSTAGE_DATABASE_PATH", "/tmp/override.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Hour, cfg.Staging.DefaultTTL)
	require.True(t, cfg.Staging.KeepStaged)
	require.Equal(t, "/tmp/override.db", cfg.Database.Path)
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("TENDERSTAGE_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	t.Setenv("TENDERSTAGE_STAGING_DEFAULT_TTL", "0s")

	_, err := Load()
	require.Error(t, err)
}
