package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"go.opentelemetry.io/otel/attribute"

	"kycdsl/internal/audit"
	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl"
	"kycdsl/internal/dsl/compiler"
	"kycdsl/internal/dsl/projector"
	"kycdsl/internal/platform/tracing"
	dErrors "kycdsl/pkg/domain-errors"
	"kycdsl/pkg/platform/sentinel"
	"kycdsl/pkg/requestcontext"
)

const systemActor = "system"

// CreateCase stores source as version 1 of the case it names.
func (s *Service) CreateCase(ctx context.Context, source string) (version *models.CaseVersion, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("create_case", start)
	ctx, span := s.startSpan(ctx, "create_case")
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(source) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dsl is required")
	}
	expr, err := dsl.Parse(source)
	if err != nil {
		return nil, s.dslError(ctx, err)
	}
	if _, err := compiler.Compile(expr); err != nil {
		return nil, s.dslError(ctx, err)
	}
	pc := dsl.ProjectCase(expr)
	if pc.Name == projector.UnknownCase {
		return nil, dErrors.New(dErrors.CodeValidation, "dsl must be a kyc-case form")
	}
	span.SetAttributes(attribute.String("case.name", pc.Name))

	version = &models.CaseVersion{
		CaseName:  pc.Name,
		Version:   1,
		DSL:       source,
		Hash:      hashDSL(source),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateCase(ctx, version); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, fmt.Sprintf("case %s already exists", pc.Name))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	s.metrics.IncrementCaseCreated()
	s.emitAudit(ctx, audit.Event{
		Action:   string(audit.EventCaseCreated),
		CaseName: version.CaseName,
		Version:  version.Version,
	})
	return version, nil
}

// GetCase returns the latest version of a case with its lifecycle position.
func (s *Service) GetCase(ctx context.Context, name string) (*models.CaseView, error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("get_case", start)

	latest, pc, err := s.loadLatest(ctx, name)
	if err != nil {
		return nil, err
	}
	phase := CurrentPhase(pc)
	return &models.CaseView{
		Latest:     latest,
		Case:       pc,
		Phase:      phase,
		NextPhases: NextPhases(phase),
	}, nil
}

func (s *Service) ListVersions(ctx context.Context, name string) ([]*models.CaseVersion, error) {
	versions, err := s.store.ListVersions(ctx, name)
	if err != nil {
		return nil, s.storeError(err, name, "failed to list versions")
	}
	return versions, nil
}

// ListAmendmentLog returns the amendments applied to a case, oldest first.
func (s *Service) ListAmendmentLog(ctx context.Context, name string) ([]*models.Amendment, error) {
	log, err := s.store.ListAmendments(ctx, name)
	if err != nil {
		return nil, s.storeError(err, name, "failed to list amendments")
	}
	return log, nil
}

// ListCases returns the latest version of every case, or of the named ones.
func (s *Service) ListCases(ctx context.Context, names []string) ([]*models.CaseVersion, error) {
	cases, err := s.store.ListCases(ctx, names)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list cases")
	}
	if cases == nil {
		cases = []*models.CaseVersion{}
	}
	return cases, nil
}

// Amend applies one amendment to the latest version of a case and stores
// the result as the next version. The amendment must be allowed from the
// case's current lifecycle phase.
func (s *Service) Amend(ctx context.Context, name string, req models.AmendRequest) (result *models.AmendResult, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("amend", start)
	ctx, span := s.startSpan(ctx, "amend",
		attribute.String("case.name", name),
		attribute.String("amendment.type", req.Type),
	)
	defer func() { tracing.End(span, err) }()

	def, ok := amendments[req.Type]
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "unknown amendment type: "+req.Type)
	}

	latest, pc, err := s.loadLatest(ctx, name)
	if err != nil {
		return nil, err
	}

	current := CurrentPhase(pc)
	target := def.info.Phase
	if err := ValidateTransition(current, target); err != nil {
		s.metrics.IncrementAmendment(req.Type, "rejected")
		s.emitAudit(ctx, audit.Event{
			Action:    string(audit.EventAmendmentRejected),
			CaseName:  name,
			Version:   latest.Version,
			Amendment: req.Type,
			Reason:    err.Error(),
		})
		return nil, dErrors.Wrap(err, dErrors.CodeUnprocessable, err.Error())
	}

	before := dsl.SerializeCase(pc)
	if err := def.apply(&pc, req); err != nil {
		s.metrics.IncrementAmendment(req.Type, "invalid")
		return nil, err
	}
	after := dsl.SerializeCase(pc)
	if _, err := dsl.Compile(after); err != nil {
		s.metrics.IncrementAmendment(req.Type, "invalid")
		return nil, s.dslError(ctx, err)
	}

	next := latest.Version + 1
	diff, err := unifiedDiff(name, latest.Version, before, after)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to diff amendment")
	}

	now := requestcontext.Now(ctx)
	version := &models.CaseVersion{
		CaseName:  name,
		Version:   next,
		DSL:       after,
		Hash:      hashDSL(after),
		CreatedAt: now,
	}
	actor := actorFrom(ctx)
	record := &models.Amendment{
		ID:         uuid.New(),
		CaseName:   name,
		Version:    next,
		Type:       req.Type,
		Phase:      target,
		ChangeType: changeType(target, pc),
		Diff:       diff,
		Actor:      actor,
		CreatedAt:  now,
	}

	if err := s.store.AppendAmendment(ctx, version, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementAmendment(req.Type, "conflict")
			return nil, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("case %s changed since version %d; reload and retry", name, latest.Version))
		}
		return nil, s.storeError(err, name, "failed to store amendment")
	}

	s.metrics.IncrementAmendment(req.Type, "applied")
	s.emitAudit(ctx, audit.Event{
		Action:    string(audit.EventCaseAmended),
		CaseName:  name,
		Version:   next,
		Amendment: req.Type,
		Actor:     actor,
	})
	return &models.AmendResult{Version: version, Amendment: record, Case: pc}, nil
}

// updateAmendment is the amendment log type recorded for a full replacement.
const updateAmendment = "update"

// UpdateCase replaces a case's DSL with source and stores it as the next
// version. The source must name the same case. The phase recorded on the
// amendment is the one the replacement text implies.
func (s *Service) UpdateCase(ctx context.Context, name, source string) (result *models.AmendResult, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("update_case", start)
	ctx, span := s.startSpan(ctx, "update_case", attribute.String("case.name", name))
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(source) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "dsl is required")
	}
	expr, err := dsl.Parse(source)
	if err != nil {
		return nil, s.dslError(ctx, err)
	}
	if _, err := compiler.Compile(expr); err != nil {
		return nil, s.dslError(ctx, err)
	}
	pc := dsl.ProjectCase(expr)
	if pc.Name != name {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("dsl names case %s, expected %s", pc.Name, name))
	}

	latest, err := s.store.Latest(ctx, name)
	if err != nil {
		return nil, s.storeError(err, name, "failed to load case")
	}
	diff, err := unifiedDiff(name, latest.Version, latest.DSL, source)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to diff update")
	}

	next := latest.Version + 1
	now := requestcontext.Now(ctx)
	actor := actorFrom(ctx)
	phase := CurrentPhase(pc)
	version := &models.CaseVersion{
		CaseName:  name,
		Version:   next,
		DSL:       source,
		Hash:      hashDSL(source),
		CreatedAt: now,
	}
	record := &models.Amendment{
		ID:         uuid.New(),
		CaseName:   name,
		Version:    next,
		Type:       updateAmendment,
		Phase:      phase,
		ChangeType: "replacement",
		Diff:       diff,
		Actor:      actor,
		CreatedAt:  now,
	}
	if err := s.store.AppendAmendment(ctx, version, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementAmendment(updateAmendment, "conflict")
			return nil, dErrors.New(dErrors.CodeConflict,
				fmt.Sprintf("case %s changed since version %d; reload and retry", name, latest.Version))
		}
		return nil, s.storeError(err, name, "failed to store update")
	}

	s.metrics.IncrementAmendment(updateAmendment, "applied")
	s.emitAudit(ctx, audit.Event{
		Action:   string(audit.EventCaseUpdated),
		CaseName: name,
		Version:  next,
		Actor:    actor,
	})
	return &models.AmendResult{Version: version, Amendment: record, Case: pc}, nil
}

// DeleteCase removes every version and the amendment log of a case.
func (s *Service) DeleteCase(ctx context.Context, name string) (result *models.DeleteResult, err error) {
	start := time.Now()
	defer s.metrics.ObserveOperation("delete_case", start)
	ctx, span := s.startSpan(ctx, "delete_case", attribute.String("case.name", name))
	defer func() { tracing.End(span, err) }()

	removed, err := s.store.DeleteCase(ctx, name)
	if err != nil {
		return nil, s.storeError(err, name, "failed to delete case")
	}
	s.emitAudit(ctx, audit.Event{
		Action:   string(audit.EventCaseDeleted),
		CaseName: name,
		Actor:    actorFrom(ctx),
		Reason:   fmt.Sprintf("%d version(s) removed", removed),
	})
	return &models.DeleteResult{
		CaseName: name,
		Versions: removed,
		Message:  fmt.Sprintf("Deleted %d version(s) of case %s", removed, name),
	}, nil
}

func actorFrom(ctx context.Context) string {
	if actor := requestcontext.Actor(ctx); actor != "" {
		return actor
	}
	return systemActor
}

func (s *Service) loadLatest(ctx context.Context, name string) (*models.CaseVersion, projector.ParsedCase, error) {
	latest, err := s.store.Latest(ctx, name)
	if err != nil {
		return nil, projector.ParsedCase{}, s.storeError(err, name, "failed to load case")
	}
	expr, err := dsl.Parse(latest.DSL)
	if err != nil {
		return nil, projector.ParsedCase{}, dErrors.Wrap(err, dErrors.CodeInternal,
			fmt.Sprintf("stored dsl for case %s v%d is unreadable", name, latest.Version))
	}
	return latest, dsl.ProjectCase(expr), nil
}

func (s *Service) storeError(err error, name, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("case %s not found", name))
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func hashDSL(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

func unifiedDiff(name string, from int, before, after string) (string, error) {
	if before == after {
		return "No changes", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: fmt.Sprintf("%s@v%d", name, from),
		ToFile:   fmt.Sprintf("%s@v%d", name, from+1),
		Context:  3,
	})
}
