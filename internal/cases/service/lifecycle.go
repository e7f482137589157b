package service

import (
	"fmt"
	"slices"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl/projector"
)

// Function names written into a case's function form by amendments.
const (
	FnDiscoverPolicies   = "DISCOVER-POLICIES"
	FnSolicitDocuments   = "SOLICIT-DOCUMENTS"
	FnBuildOwnershipTree = "BUILD-OWNERSHIP-TREE"
	FnVerifyOwnership    = "VERIFY-OWNERSHIP"
	FnAssessRisk         = "ASSESS-RISK"
	FnRegulatorNotify    = "REGULATOR-NOTIFY"
)

const pendingToken = "pending"

var nextPhases = map[models.Phase][]models.Phase{
	models.PhaseCreation:         {models.PhasePolicyDiscovery},
	models.PhasePolicyDiscovery:  {models.PhaseDocSolicitation},
	models.PhaseDocSolicitation:  {models.PhaseOwnershipControl},
	models.PhaseOwnershipControl: {models.PhaseRiskReview},
	// Risk review can loop back for more documents.
	models.PhaseRiskReview:   {models.PhaseFinalization, models.PhaseDocSolicitation},
	models.PhaseFinalization: nil,
}

// NextPhases lists the phases reachable from p.
func NextPhases(p models.Phase) []models.Phase {
	return slices.Clone(nextPhases[p])
}

// ValidateTransition allows moving to a listed next phase, or repeating the
// current phase unless the case is finalised.
func ValidateTransition(current, next models.Phase) error {
	allowed, ok := nextPhases[current]
	if !ok {
		return fmt.Errorf("unknown current phase: %s", current)
	}
	if current == next && !current.IsTerminal() {
		return nil
	}
	if slices.Contains(allowed, next) {
		return nil
	}
	return fmt.Errorf("invalid transition from %s to %s", current, next)
}

// CurrentPhase derives the lifecycle phase from a projected case. An issued
// token means finalization. Otherwise the phase is the furthest one implied
// by either the recorded function or the sections present.
func CurrentPhase(pc projector.ParsedCase) models.Phase {
	if pc.KYCToken != "" && pc.KYCToken != pendingToken {
		return models.PhaseFinalization
	}
	fromFunction := functionPhase(pc.Function)
	fromSections := sectionPhase(pc)
	if phaseRank(fromFunction) > phaseRank(fromSections) {
		return fromFunction
	}
	return fromSections
}

func functionPhase(fn string) models.Phase {
	switch fn {
	case FnAssessRisk, FnRegulatorNotify:
		return models.PhaseRiskReview
	case FnBuildOwnershipTree, FnVerifyOwnership:
		return models.PhaseOwnershipControl
	case FnSolicitDocuments:
		return models.PhaseDocSolicitation
	case FnDiscoverPolicies:
		return models.PhasePolicyDiscovery
	default:
		return models.PhaseCreation
	}
}

func sectionPhase(pc projector.ParsedCase) models.Phase {
	switch {
	case pc.Ownership != nil:
		return models.PhaseOwnershipControl
	case pc.Obligation != "":
		return models.PhaseDocSolicitation
	case pc.Policy != "":
		return models.PhasePolicyDiscovery
	default:
		return models.PhaseCreation
	}
}

var phaseOrder = []models.Phase{
	models.PhaseCreation,
	models.PhasePolicyDiscovery,
	models.PhaseDocSolicitation,
	models.PhaseOwnershipControl,
	models.PhaseRiskReview,
	models.PhaseFinalization,
}

func phaseRank(p models.Phase) int {
	return slices.Index(phaseOrder, p)
}

func changeType(phase models.Phase, pc projector.ParsedCase) string {
	switch phase {
	case models.PhaseCreation:
		return "initialization"
	case models.PhasePolicyDiscovery:
		return "policy-injection"
	case models.PhaseDocSolicitation:
		return "obligation-addition"
	case models.PhaseOwnershipControl:
		return "ownership-tree"
	case models.PhaseRiskReview:
		return "risk-assessment"
	case models.PhaseFinalization:
		if pc.KYCToken != "" {
			return "token-update:" + pc.KYCToken
		}
		return "finalization"
	default:
		return "generic-amendment"
	}
}
