package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("SUPERUSER_EMAIL", "")
	t.Setenv("SUPERUSER_PASSWORD", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "notifications:verification", cfg.Notification.OutboxKey)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window())
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.Timeout())
	assert.False(t, cfg.Superuser.Enabled())
}

func TestRedisTimeout(t *testing.T) {
	assert.Equal(t, 250*time.Millisecond, RedisConfig{TimeoutMillis: 250}.Timeout())
	assert.Equal(t, 500*time.Millisecond, RedisConfig{}.Timeout())
}

func TestLoad_SuperuserPair(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SUPERUSER_EMAIL", "root@example.com")
	t.Setenv("SUPERUSER_PASSWORD", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Superuser.Enabled())
	assert.Equal(t, "root@example.com", cfg.Superuser.Email)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	require.Error(t, err)
}

func TestRequestTimeout_Disabled(t *testing.T) {
	assert.Equal(t, time.Duration(0), AppConfig{RequestTimeoutSeconds: 0}.RequestTimeout())
}
