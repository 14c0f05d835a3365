package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "7")
	t.Setenv("BCRYPT_COST", "4")
}

func TestLoadSQLite(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:dev.db")

	cfg := Load()
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file:dev.db", cfg.DBDSN)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.False(t, cfg.StrictOwnership)
	assert.Equal(t, "@hourly", cfg.TokenCleanupSchedule)
	assert.False(t, cfg.IsProd())
}

func TestLoadMySQL(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "volunteers")
	t.Setenv("STRICT_OWNERSHIP", "true")

	cfg := Load()
	assert.Equal(t, "app", cfg.DBUser)
	assert.Equal(t, "volunteers", cfg.DBName)
	assert.True(t, cfg.StrictOwnership)
	assert.True(t, cfg.IsProd())
}

func TestRateLimitNormalization(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestCacheMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
}

func TestQueueDisabledWithoutURL(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "")
	t.Setenv("QUEUE_CONSUMER_ENABLED", "true")
	cfg := LoadQueueConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.ConsumerEnabled)
	assert.Equal(t, "ledger.events", cfg.Queue)
}
