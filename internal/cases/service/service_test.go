package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycdsl/internal/audit"
	"kycdsl/internal/cases/cache"
	"kycdsl/internal/cases/models"
	"kycdsl/internal/cases/store"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/dsl/projector"
	dErrors "kycdsl/pkg/domain-errors"
	"kycdsl/pkg/platform/sentinel"
	"kycdsl/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	cache   *cache.InMemoryPlanCache
	events  *audit.InMemoryStore
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = store.NewInMemoryStore()
	s.cache = cache.NewInMemory(time.Minute)
	s.events = audit.NewInMemoryStore()
	s.service = New(s.store,
		WithPlanCache(s.cache),
		WithAuditPublisher(audit.NewPublisher(s.events)),
	)
	s.ctx = requestcontext.WithActor(context.Background(), "analyst@example.com")
}

func (s *ServiceSuite) createCase(name string) *models.CaseVersion {
	v, err := s.service.CreateCase(s.ctx, "(kyc-case "+name+` (nature "Corporate"))`)
	s.Require().NoError(err)
	return v
}

func (s *ServiceSuite) amend(name string, req models.AmendRequest) *models.AmendResult {
	res, err := s.service.Amend(s.ctx, name, req)
	s.Require().NoError(err)
	return res
}

func (s *ServiceSuite) TestCompile() {
	s.Run("second compile of the same source is served from cache", func() {
		first, err := s.service.Compile(s.ctx, "(kyc-case CACHED)")
		s.Require().NoError(err)
		s.False(first.Cached)
		s.Equal(2, first.Instructions)

		second, err := s.service.Compile(s.ctx, "(kyc-case CACHED)")
		s.Require().NoError(err)
		s.True(second.Cached)
		s.Equal(first.Plan, second.Plan)
	})

	s.Run("syntax errors are unprocessable and keep their type", func() {
		_, err := s.service.Compile(s.ctx, "not ( balanced")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
		var se *parser.SyntaxError
		s.True(errors.As(err, &se))
	})

	s.Run("compile errors are unprocessable", func() {
		_, err := s.service.Compile(s.ctx, "(kyc-case)")
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	})

	s.Run("empty source is a validation error", func() {
		_, err := s.service.Compile(s.ctx, "  ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("cache failures do not fail the request", func() {
		svc := New(s.store, WithPlanCache(failingCache{}))
		res, err := svc.Compile(s.ctx, "(kyc-case NO-CACHE)")
		s.Require().NoError(err)
		s.False(res.Cached)
	})
}

func (s *ServiceSuite) TestExecute() {
	compiled, err := s.service.Compile(s.ctx, `(kyc-case ACME (policy AMLD5))`)
	s.Require().NoError(err)

	res, err := s.service.Execute(s.ctx, compiled.Plan)
	s.Require().NoError(err)
	s.Contains(res.Report, "✓ Policy: AMLD5")

	_, err = s.service.Execute(s.ctx, "this is not json")
	s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
}

func (s *ServiceSuite) TestRun() {
	s.Run("builds a case from id and function", func() {
		res, err := s.service.Run(s.ctx, models.RunRequest{CaseID: "ACME", Function: "DISCOVER-POLICIES"})
		s.Require().NoError(err)
		s.True(res.Success)
		s.Equal("(kyc-case ACME (function DISCOVER-POLICIES))", res.DSL)
		s.Equal("Executed function 'DISCOVER-POLICIES' on case 'ACME'", res.Message)
		s.Contains(res.Report, "✓ Function: DISCOVER-POLICIES")
	})

	s.Run("explicit dsl wins", func() {
		res, err := s.service.Run(s.ctx, models.RunRequest{CaseID: "IGNORED", DSL: "(kyc-case OTHER)"})
		s.Require().NoError(err)
		s.True(res.Success)
		s.Contains(res.Report, "✓ Case 'OTHER' initialized")
	})

	s.Run("dsl failures are reported, not returned", func() {
		res, err := s.service.Run(s.ctx, models.RunRequest{DSL: "(kyc-case"})
		s.Require().NoError(err)
		s.False(res.Success)
		s.Contains(res.Message, "Execution failed: ")
		s.Empty(res.Report)
	})

	s.Run("nothing to run", func() {
		_, err := s.service.Run(s.ctx, models.RunRequest{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestValidate() {
	s.Run("default source from case id", func() {
		res := s.service.Validate(s.ctx, "", "ACME")
		s.True(res.Valid)
		s.Empty(res.Issues)
	})

	s.Run("parse errors carry position", func() {
		res := s.service.Validate(s.ctx, "(kyc-case ACME\n  (policy", "")
		s.False(res.Valid)
		s.Require().Len(res.Issues, 1)
		s.Equal(models.IssueParseError, res.Issues[0].Code)
		s.Equal(models.SeverityError, res.Issues[0].Severity)
		s.Positive(res.Issues[0].Line)
		s.Positive(res.Issues[0].Column)
	})

	s.Run("compile errors", func() {
		res := s.service.Validate(s.ctx, "(kyc-case)", "")
		s.False(res.Valid)
		s.Require().Len(res.Issues, 1)
		s.Equal(models.IssueCompileError, res.Issues[0].Code)
	})
}

func (s *ServiceSuite) TestParseAndSerialize() {
	pc, err := s.service.ParseCase(s.ctx, `(kyc-case ACME (policy AMLD5) (kyc-token "pending"))`)
	s.Require().NoError(err)
	s.Equal("ACME", pc.Name)
	s.Equal("AMLD5", pc.Policy)
	s.Equal("pending", pc.KYCToken)

	text, err := s.service.SerializeCase(s.ctx, *pc)
	s.Require().NoError(err)
	s.Contains(text, "(policy AMLD5)")

	_, err = s.service.SerializeCase(s.ctx, projector.ParsedCase{})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.ParseCase(s.ctx, "(")
	s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
}

func (s *ServiceSuite) TestCreateCase() {
	s.Run("stores version 1 and audits", func() {
		v := s.createCase("ACME")
		s.Equal(1, v.Version)
		s.Equal("ACME", v.CaseName)
		s.Len(v.Hash, 64)

		events, err := s.events.ListByCase(s.ctx, "ACME")
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventCaseCreated), events[0].Action)
		s.Equal("analyst@example.com", events[0].Actor)
	})

	s.Run("duplicate name conflicts", func() {
		_, err := s.service.CreateCase(s.ctx, "(kyc-case ACME)")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("non-case root is rejected", func() {
		_, err := s.service.CreateCase(s.ctx, "(policy AMLD5)")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestAmendThroughLifecycle() {
	s.createCase("ACME")

	view, err := s.service.GetCase(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal(models.PhaseCreation, view.Phase)
	s.Equal([]models.Phase{models.PhasePolicyDiscovery}, view.NextPhases)

	res := s.amend("ACME", models.AmendRequest{Type: AmendPolicyDiscovery, PolicyCode: "AMLD5"})
	s.Equal(2, res.Version.Version)
	s.Equal("policy-injection", res.Amendment.ChangeType)
	s.Equal("analyst@example.com", res.Amendment.Actor)
	s.Contains(res.Amendment.Diff, "+  (policy AMLD5)")

	s.amend("ACME", models.AmendRequest{Type: AmendDocumentSolicitation, Obligation: "PROOF-OF-ADDRESS"})
	s.amend("ACME", models.AmendRequest{Type: AmendOwnershipDiscovery, Ownership: &projector.Ownership{
		EntityName: "ACME-HOLDINGS",
		Owners:     []projector.Owner{{Name: "ALICE", Percentage: 60}, {Name: "BOB", Percentage: 40}},
		Controllers: []projector.Controller{
			{Name: "CAROL", Role: "Director"},
		},
	}})
	s.amend("ACME", models.AmendRequest{Type: AmendRiskAssessment})
	final := s.amend("ACME", models.AmendRequest{Type: AmendApprove})
	s.Equal(6, final.Version.Version)
	s.Equal("token-update:approved", final.Amendment.ChangeType)
	s.Equal("approved", final.Case.KYCToken)
	s.Require().NotNil(final.Case.Ownership)
	s.Len(final.Case.Ownership.Owners, 2)

	view, err = s.service.GetCase(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal(models.PhaseFinalization, view.Phase)
	s.Empty(view.NextPhases)

	versions, err := s.service.ListVersions(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Len(versions, 6)

	log, err := s.service.ListAmendmentLog(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Len(log, 5)

	s.Run("finalised cases reject further amendments", func() {
		_, err := s.service.Amend(s.ctx, "ACME", models.AmendRequest{Type: AmendDecline})
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))

		events, _ := s.events.ListByCase(s.ctx, "ACME")
		last := events[len(events)-1]
		s.Equal(string(audit.EventAmendmentRejected), last.Action)
		s.Equal(AmendDecline, last.Amendment)
	})
}

func (s *ServiceSuite) TestAmendRejections() {
	s.createCase("ACME")

	s.Run("skipping ahead is unprocessable", func() {
		_, err := s.service.Amend(s.ctx, "ACME", models.AmendRequest{Type: AmendRiskAssessment})
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	})

	s.Run("missing parameter", func() {
		_, err := s.service.Amend(s.ctx, "ACME", models.AmendRequest{Type: AmendPolicyDiscovery})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown type", func() {
		_, err := s.service.Amend(s.ctx, "ACME", models.AmendRequest{Type: "teleport"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown case", func() {
		_, err := s.service.Amend(s.ctx, "NOPE", models.AmendRequest{Type: AmendApprove})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("re-applying the current phase is allowed", func() {
		s.amend("ACME", models.AmendRequest{Type: AmendPolicyDiscovery, PolicyCode: "AMLD5"})
		res := s.amend("ACME", models.AmendRequest{Type: AmendPolicyDiscovery, PolicyCode: "FATF"})
		s.Equal("FATF", res.Case.Policy)
	})

	versions, err := s.service.ListVersions(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Len(versions, 3)
}

func (s *ServiceSuite) TestAmendConcurrentVersionConflict() {
	s.createCase("ACME")
	svc := New(conflictingStore{InMemoryStore: s.store})

	_, err := svc.Amend(s.ctx, "ACME", models.AmendRequest{Type: AmendPolicyDiscovery, PolicyCode: "AMLD5"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestUpdateCase() {
	s.createCase("ACME")

	s.Run("replacement becomes the next version", func() {
		src := `(kyc-case ACME (nature "Corporate") (policy AMLD5))`
		res, err := s.service.UpdateCase(s.ctx, "ACME", src)
		s.Require().NoError(err)
		s.Equal(2, res.Version.Version)
		s.Equal(src, res.Version.DSL)
		s.Equal("update", res.Amendment.Type)
		s.Equal(models.PhasePolicyDiscovery, res.Amendment.Phase)
		s.Equal("analyst@example.com", res.Amendment.Actor)
		s.Contains(res.Amendment.Diff, "+(kyc-case ACME (nature \"Corporate\") (policy AMLD5))")

		log, err := s.service.ListAmendmentLog(s.ctx, "ACME")
		s.Require().NoError(err)
		s.Len(log, 1)

		events, _ := s.events.ListByCase(s.ctx, "ACME")
		s.Equal(string(audit.EventCaseUpdated), events[len(events)-1].Action)
	})

	s.Run("source must name the same case", func() {
		_, err := s.service.UpdateCase(s.ctx, "ACME", "(kyc-case OTHER)")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("invalid source is unprocessable", func() {
		_, err := s.service.UpdateCase(s.ctx, "ACME", "(kyc-case ACME")
		s.True(dErrors.HasCode(err, dErrors.CodeUnprocessable))
	})

	s.Run("unknown case", func() {
		_, err := s.service.UpdateCase(s.ctx, "NOPE", "(kyc-case NOPE)")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty source", func() {
		_, err := s.service.UpdateCase(s.ctx, "ACME", " ")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestDeleteCase() {
	s.createCase("ACME")
	s.amend("ACME", models.AmendRequest{Type: "policy-discovery", PolicyCode: "AMLD5"})

	res, err := s.service.DeleteCase(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal(2, res.Versions)
	s.Equal("Deleted 2 version(s) of case ACME", res.Message)

	_, err = s.service.GetCase(s.ctx, "ACME")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.DeleteCase(s.ctx, "ACME")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	events, _ := s.events.ListByCase(s.ctx, "ACME")
	s.Equal(string(audit.EventCaseDeleted), events[len(events)-1].Action)

	// the name is free again
	s.createCase("ACME")
}

func (s *ServiceSuite) TestNonFiniteOwnershipDoesNotBlockAmendments() {
	_, err := s.service.CreateCase(s.ctx, `(kyc-case ACME
		(policy AMLD5)
		(obligation POA)
		(ownership-structure (owner A Inf) (owner B 60%)))`)
	s.Require().NoError(err)

	view, err := s.service.GetCase(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal([]projector.Owner{{Name: "B", Percentage: 60}}, view.Case.Ownership.Owners)

	res, err := s.service.Amend(s.ctx, "ACME", models.AmendRequest{Type: "risk-assessment"})
	s.Require().NoError(err)
	s.NotContains(res.Version.DSL, "Inf")
}

func (s *ServiceSuite) TestListCases() {
	s.createCase("BETA")
	s.createCase("ALPHA")

	all, err := s.service.ListCases(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("ALPHA", all[0].CaseName)

	none, err := s.service.ListCases(s.ctx, []string{"GAMMA"})
	s.Require().NoError(err)
	s.NotNil(none)
	s.Empty(none)
}

func (s *ServiceSuite) TestListAmendmentTypes() {
	types := s.service.ListAmendmentTypes()
	s.Require().Len(types, 6)
	s.Equal(AmendPolicyDiscovery, types[0].Name)
	s.Equal([]string{"policy_code"}, types[0].Parameters)
	s.Equal(AmendDecline, types[5].Name)

	types[0].Parameters[0] = "mutated"
	s.Equal("policy_code", s.service.ListAmendmentTypes()[0].Parameters[0])
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, string) error {
	return errors.New("cache down")
}

type conflictingStore struct {
	*store.InMemoryStore
}

func (conflictingStore) AppendAmendment(context.Context, *models.CaseVersion, *models.Amendment) error {
	return sentinel.ErrConflict
}
