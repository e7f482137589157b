package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kycdsl/internal/audit"
	"kycdsl/internal/cases/metrics"
	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl/compiler"
	"kycdsl/internal/dsl/executor"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/platform/tracing"
	dErrors "kycdsl/pkg/domain-errors"
	"kycdsl/pkg/requestcontext"
)

type CaseStore interface {
	CreateCase(ctx context.Context, v *models.CaseVersion) error
	Latest(ctx context.Context, caseName string) (*models.CaseVersion, error)
	ListVersions(ctx context.Context, caseName string) ([]*models.CaseVersion, error)
	AppendAmendment(ctx context.Context, v *models.CaseVersion, a *models.Amendment) error
	ListAmendments(ctx context.Context, caseName string) ([]*models.Amendment, error)
	ListCases(ctx context.Context, names []string) ([]*models.CaseVersion, error)
	DeleteCase(ctx context.Context, caseName string) (int, error)
}

// PlanCache memoizes compiled plans. Implementations report a miss with
// found=false and a nil error.
type PlanCache interface {
	Get(ctx context.Context, key string) (plan string, found bool, err error)
	Set(ctx context.Context, key, plan string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the DSL pipeline and versioned case management.
type Service struct {
	store          CaseStore
	cache          PlanCache
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPlanCache(cache PlanCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// New constructs a Service. Without WithPlanCache every compile runs the
// full pipeline.
func New(store CaseStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		tracer: tracing.Tracer("kycdsl/cases"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "cases."+op, trace.WithAttributes(attrs...))
}

// dslError turns a pipeline failure into an unprocessable domain error that
// keeps the original message and stays reachable through errors.As.
func (s *Service) dslError(ctx context.Context, err error) error {
	var (
		syntaxErr  *parser.SyntaxError
		compileErr *compiler.CompileError
		execErr    *executor.ExecutionError
		stage      string
	)
	switch {
	case errors.As(err, &syntaxErr):
		stage = "syntax"
	case errors.As(err, &compileErr):
		stage = "compile"
	case errors.As(err, &execErr):
		stage = "execution"
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "dsl pipeline failed")
	}
	s.metrics.IncrementDSLError(stage)
	s.logger.DebugContext(ctx, "dsl rejected",
		"stage", stage,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(err, dErrors.CodeUnprocessable, err.Error())
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	s.logger.InfoContext(ctx, string(event.Action),
		"case_name", event.CaseName,
		"version", event.Version,
		"request_id", requestcontext.RequestID(ctx),
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish audit event",
			"action", event.Action,
			"case_name", event.CaseName,
			"error", err,
		)
	}
}
