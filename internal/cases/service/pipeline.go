package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"kycdsl/internal/cases/cache"
	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl"
	"kycdsl/internal/dsl/compiler"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/dsl/projector"
	"kycdsl/internal/platform/tracing"
	dErrors "kycdsl/pkg/domain-errors"
	"kycdsl/pkg/requestcontext"
)

// Compile returns the JSON plan for source, serving it from the plan cache
// when possible. Cache failures are logged and never fail the request.
func (s *Service) Compile(ctx context.Context, source string) (result *models.CompileResult, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("compile", start)
	ctx, span := s.startSpan(ctx, "compile")
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(source) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dsl is required")
	}

	key := cache.Key(source)
	if plan, ok := s.cachedPlan(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		instructions, err := compiler.DecodePlan(plan)
		if err == nil {
			return &models.CompileResult{Plan: plan, Instructions: len(instructions), Cached: true}, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cached plan",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	instructions, err := dsl.Compile(source)
	if err != nil {
		return nil, s.dslError(ctx, err)
	}
	plan, err := compiler.EncodePlan(instructions)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode plan")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, plan); err != nil {
			s.logger.WarnContext(ctx, "failed to cache compiled plan",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	return &models.CompileResult{Plan: plan, Instructions: len(instructions)}, nil
}

func (s *Service) cachedPlan(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	plan, found, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "plan cache lookup failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return "", false
	case !found:
		s.metrics.IncrementCacheLookup("miss")
		return "", false
	default:
		s.metrics.IncrementCacheLookup("hit")
		return plan, true
	}
}

// Execute runs a JSON plan and returns its report.
func (s *Service) Execute(ctx context.Context, plan string) (result *models.ExecuteResult, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("execute", start)
	ctx, span := s.startSpan(ctx, "execute")
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(plan) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "plan is required")
	}
	report, err := dsl.ExecutePlan(plan)
	if err != nil {
		return nil, s.dslError(ctx, err)
	}
	return &models.ExecuteResult{Report: report}, nil
}

// Run compiles and executes in one step. DSL failures are reported in the
// result with Success false; only a missing source is an error.
func (s *Service) Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("run", start)

	source := req.DSL
	if strings.TrimSpace(source) == "" {
		if strings.TrimSpace(req.CaseID) == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "dsl or case_id is required")
		}
		source = defaultRunSource(req.CaseID, req.Function)
	}

	result := &models.RunResult{CaseID: req.CaseID, DSL: source}
	compiled, err := s.Compile(ctx, source)
	if err == nil {
		result.Plan = compiled.Plan
		var executed *models.ExecuteResult
		if executed, err = s.Execute(ctx, compiled.Plan); err == nil {
			result.Report = executed.Report
		}
	}
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnprocessable) {
			return nil, err
		}
		result.Message = "Execution failed: " + unwrapMessage(err)
		return result, nil
	}

	result.Success = true
	switch {
	case req.Function != "" && req.CaseID != "":
		result.Message = fmt.Sprintf("Executed function '%s' on case '%s'", req.Function, req.CaseID)
	default:
		result.Message = "Executed successfully"
	}
	return result, nil
}

func defaultRunSource(caseID, function string) string {
	if strings.TrimSpace(function) == "" {
		return fmt.Sprintf("(kyc-case %s)", caseID)
	}
	return fmt.Sprintf("(kyc-case %s (function %s))", caseID, function)
}

func unwrapMessage(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// Validate compiles source and reports problems as issues instead of
// errors. An empty source validates the bare case named caseID.
func (s *Service) Validate(ctx context.Context, source, caseID string) *models.ValidationResult {
	start := time.Now()
	defer s.metrics.ObserveOperation("validate", start)
	ctx, span := s.startSpan(ctx, "validate")
	defer span.End()

	if strings.TrimSpace(source) == "" {
		source = fmt.Sprintf("(kyc-case %s)", caseID)
	}

	result := &models.ValidationResult{Valid: true, Issues: []models.ValidationIssue{}}
	if _, err := dsl.Compile(source); err != nil {
		result.Valid = false
		result.Issues = append(result.Issues, issueFor(err))
		s.logger.DebugContext(ctx, "validation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return result
}

func issueFor(err error) models.ValidationIssue {
	issue := models.ValidationIssue{
		Severity: models.SeverityError,
		Code:     models.IssueCompileError,
		Message:  err.Error(),
	}
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		issue.Code = models.IssueParseError
		issue.Message = syntaxErr.Msg
		issue.Line = syntaxErr.Line
		issue.Column = syntaxErr.Column
	}
	return issue
}

// ParseCase projects source onto the structured case record.
func (s *Service) ParseCase(ctx context.Context, source string) (*projector.ParsedCase, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("parse", start)

	if strings.TrimSpace(source) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dsl is required")
	}
	expr, err := dsl.Parse(source)
	if err != nil {
		return nil, s.dslError(ctx, err)
	}
	pc := dsl.ProjectCase(expr)
	return &pc, nil
}

// SerializeCase renders a structured record back to DSL text.
func (s *Service) SerializeCase(ctx context.Context, pc projector.ParsedCase) (string, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("serialize", start)

	if strings.TrimSpace(pc.Name) == "" {
		return "", dErrors.New(dErrors.CodeValidation, "case name is required")
	}
	return dsl.SerializeCase(pc), nil
}

// ListAmendmentTypes returns the supported amendments in lifecycle order.
func (s *Service) ListAmendmentTypes() []models.AmendmentType {
	out := make([]models.AmendmentType, 0, len(amendmentOrder))
	for _, name := range amendmentOrder {
		info := amendments[name].info
		info.Parameters = slices.Clone(info.Parameters)
		out = append(out, info)
	}
	return out
}

func (s *Service) Grammar() string {
	return dsl.Grammar()
}
