package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"kycdsl/internal/audit"
	"kycdsl/internal/cases/cache"
	"kycdsl/internal/cases/handler"
	casesmetrics "kycdsl/internal/cases/metrics"
	"kycdsl/internal/cases/service"
	"kycdsl/internal/cases/store"
	jwttoken "kycdsl/internal/jwt_token"
	"kycdsl/internal/platform/config"
	"kycdsl/internal/platform/httpserver"
	"kycdsl/internal/platform/logger"
	"kycdsl/internal/platform/metrics"
	"kycdsl/internal/platform/middleware"
	"kycdsl/internal/platform/postgres"
	"kycdsl/internal/platform/redis"
	"kycdsl/pkg/platform/circuit"
	"kycdsl/pkg/platform/httputil"
)

const (
	shutdownTimeout   = 10 * time.Second
	topicSetupTimeout = 5 * time.Second
)

// main wires the stores, caches and audit sinks picked by configuration,
// exposes the HTTP router and keeps the server lifecycle small. Business
// logic lives in internal/cases.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.close()

	publisher := audit.NewPublisher(infra.auditStore,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithLogger(log),
	)

	svc := service.New(infra.caseStore,
		service.WithLogger(log),
		service.WithMetrics(casesmetrics.New()),
		service.WithAuditPublisher(publisher),
		service.WithPlanCache(infra.planCache),
	)

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	requireAuth := middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log)

	httpMetrics := metrics.New()
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimw.Recoverer)
	r.Use(httpMetrics.Middleware)

	r.Get("/health", infra.healthHandler)
	r.Handle("/metrics", metrics.Handler())
	handler.New(svc, log, requireAuth).Register(r)

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kyc-dsl server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		publisher.Close()
		return err
	})
	return g.Wait()
}

type infra struct {
	db         *sql.DB
	redis      *redis.Client
	kafka      *audit.KafkaStore
	caseStore  service.CaseStore
	planCache  service.PlanCache
	auditStore audit.Store
}

// buildInfra picks Postgres, Redis and Kafka when configured and falls back
// to in-process implementations otherwise.
func buildInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := postgres.Migrate(ctx, db, store.Schema); err != nil {
			_ = db.Close()
			return nil, err
		}
		in.db = db
		in.caseStore = store.NewPostgres(db)
		log.Info("using postgres case store")
	} else {
		in.caseStore = store.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, cases are kept in memory")
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, err
	}
	if rc != nil {
		in.redis = rc
		in.planCache = cache.NewGuarded(
			cache.NewRedis(rc.Client, cfg.PlanCacheTTL),
			cache.NewInMemory(cfg.PlanCacheTTL, cache.WithMaxEntries(cfg.PlanCacheMaxEntries)),
			circuit.New("plan-cache"),
			log,
		)
		log.Info("using redis plan cache")
	} else {
		in.planCache = cache.NewInMemory(cfg.PlanCacheTTL, cache.WithMaxEntries(cfg.PlanCacheMaxEntries))
	}

	if len(cfg.Kafka.Brokers) == 0 {
		in.auditStore = audit.NewInMemoryStore()
		log.Warn("KAFKA_BROKERS not set, audit events are kept in memory")
		return in, nil
	}
	ks, err := audit.NewKafkaStore(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
	if err != nil {
		in.close()
		return nil, err
	}
	topicCtx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()
	if err := ks.EnsureTopic(topicCtx, 1, 1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
	}
	in.kafka = ks
	in.auditStore = ks
	log.Info("publishing audit events to kafka", "topic", cfg.Kafka.AuditTopic)
	return in, nil
}

func (in *infra) close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (in *infra) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	check := func(name string, err error) {
		if err != nil {
			checks[name] = err.Error()
			healthy = false
			return
		}
		checks[name] = "ok"
	}
	if in.db != nil {
		check("postgres", in.db.PingContext(ctx))
	}
	if in.redis != nil {
		check("redis", in.redis.Health(ctx))
	}
	if in.kafka != nil {
		check("kafka", in.kafka.Ping(ctx))
	}

	if !healthy {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Checks: checks})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Checks: checks})
}
