package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreDriverFile, cfg.Store.Driver)
	assert.Equal(t, "./data", cfg.Store.Dir)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Dashboard.CacheEnabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:3000 ,")
	t.Setenv("ENABLE_DASHBOARD_CACHE", "true")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Dashboard.CacheEnabled)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STORE_DRIVER", "postgres")

	_, err := Load()
	require.Error(t, err)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
