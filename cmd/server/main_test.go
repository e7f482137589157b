package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdsl/internal/audit"
	"kycdsl/internal/cases/cache"
	"kycdsl/internal/cases/store"
	"kycdsl/internal/platform/config"
)

func TestBuildInfraWithoutBackends(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	in, err := buildInfra(context.Background(), config.Server{PlanCacheTTL: time.Minute, PlanCacheMaxEntries: 10}, log)
	require.NoError(t, err)
	t.Cleanup(in.close)

	assert.IsType(t, &store.InMemoryStore{}, in.caseStore)
	assert.IsType(t, &cache.InMemoryPlanCache{}, in.planCache)
	assert.IsType(t, &audit.InMemoryStore{}, in.auditStore)
	assert.Nil(t, in.kafka)
}

func TestBuildInfraSendsAuditOnlyToKafkaWhenConfigured(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	cfg := config.Server{
		PlanCacheTTL: time.Minute,
		Kafka:        config.KafkaConfig{Brokers: []string{"127.0.0.1:1"}, AuditTopic: "kyc-case-audit"},
	}
	in, err := buildInfra(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(in.close)

	require.NotNil(t, in.kafka)
	assert.Same(t, in.kafka, in.auditStore)
}
