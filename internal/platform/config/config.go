package config

import (
	"os"
	"strconv"
	"time"

	"kycdsl/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr         string
	LogLevel     string
	DatabaseURL  string
	PlanCacheTTL time.Duration
	// PlanCacheMaxEntries bounds the in-process plan cache.
	PlanCacheMaxEntries int
	AuditBuffer         int
	Redis               RedisConfig
	Kafka               KafkaConfig
	JWT                 JWTConfig
}

// RedisConfig configures the plan cache connection. An empty URL disables
// Redis and the service falls back to an in-process cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit event stream. No brokers means audit
// events stay in process.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	signingKey := os.Getenv("JWT_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:                envOr("KYC_DSL_ADDR", ":8080"),
		LogLevel:            envOr("LOG_LEVEL", "info"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		PlanCacheTTL:        envDuration("PLAN_CACHE_TTL", 15*time.Minute),
		PlanCacheMaxEntries: envInt("PLAN_CACHE_MAX_ENTRIES", 10_000),
		AuditBuffer:         envInt("AUDIT_BUFFER", 256),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    strings.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: envOr("AUDIT_TOPIC", "kyc-case-audit"),
		},
		JWT: JWTConfig{
			SigningKey: signingKey,
			Issuer:     envOr("JWT_ISSUER", "kyc-dsl"),
			Audience:   envOr("JWT_AUDIENCE", "kyc-dsl-api"),
			TokenTTL:   envDuration("JWT_TOKEN_TTL", time.Hour),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
