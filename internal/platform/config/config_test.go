package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"KYC_DSL_ADDR", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "PLAN_CACHE_TTL", "PLAN_CACHE_MAX_ENTRIES", "JWT_SIGNING_KEY"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "kyc-case-audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, 15*time.Minute, cfg.PlanCacheTTL)
	assert.Equal(t, 10_000, cfg.PlanCacheMaxEntries)
	assert.NotEmpty(t, cfg.JWT.SigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("KYC_DSL_ADDR", ":9090")
	t.Setenv("PLAN_CACHE_TTL", "30s")
	t.Setenv("PLAN_CACHE_MAX_ENTRIES", "500")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.PlanCacheTTL)
	assert.Equal(t, 500, cfg.PlanCacheMaxEntries)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "secret", cfg.JWT.SigningKey)
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("PLAN_CACHE_TTL", "soon")
	t.Setenv("AUDIT_BUFFER", "many")

	cfg := FromEnv()
	assert.Equal(t, 15*time.Minute, cfg.PlanCacheTTL)
	assert.Equal(t, 10_000, cfg.PlanCacheMaxEntries)
	assert.Equal(t, 256, cfg.AuditBuffer)
}
