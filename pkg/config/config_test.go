package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, DriverMemory, cfg.StoreDriver)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	require.Empty(t, cfg.DigestSchedule)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("DIGEST_SCHEDULE", "0 9 * * *")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, DriverRedis, cfg.StoreDriver)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, 2, cfg.Redis.DB)
	require.Equal(t, "0 9 * * *", cfg.DigestSchedule)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown driver":     {"STORE_DRIVER": "mongo"},
		"bad log level":      {"LOG_LEVEL": "loud"},
		"bad schedule":       {"DIGEST_SCHEDULE": "every day"},
		"token without chat": {"TG_TOKEN": "token"},
		"bad redis db":       {"REDIS_DB": "x"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is ignored", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.env"))
		require.NoError(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.env")
		require.NoError(t, os.WriteFile(path, []byte("BAD-KEY=1\n"), 0o600))
		_, err := Load(path)
		require.ErrorContains(t, err, "err loading env file")
	})
}
