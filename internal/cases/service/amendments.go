package service

import (
	"fmt"
	"strings"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl/projector"
	dErrors "kycdsl/pkg/domain-errors"
)

const (
	AmendPolicyDiscovery      = "policy-discovery"
	AmendDocumentSolicitation = "document-solicitation"
	AmendOwnershipDiscovery   = "ownership-discovery"
	AmendRiskAssessment       = "risk-assessment"
	AmendApprove              = "approve"
	AmendDecline              = "decline"
)

type mutation func(pc *projector.ParsedCase, req models.AmendRequest) error

type amendment struct {
	info  models.AmendmentType
	apply mutation
}

var amendmentOrder = []string{
	AmendPolicyDiscovery,
	AmendDocumentSolicitation,
	AmendOwnershipDiscovery,
	AmendRiskAssessment,
	AmendApprove,
	AmendDecline,
}

var amendments = map[string]amendment{
	AmendPolicyDiscovery: {
		info: models.AmendmentType{
			Name:        AmendPolicyDiscovery,
			Description: "Add policy discovery function and policy",
			Phase:       models.PhasePolicyDiscovery,
			Parameters:  []string{"policy_code"},
		},
		apply: func(pc *projector.ParsedCase, req models.AmendRequest) error {
			code := strings.TrimSpace(req.PolicyCode)
			if code == "" {
				return dErrors.New(dErrors.CodeValidation, "policy_code is required")
			}
			pc.Policy = code
			pc.Function = FnDiscoverPolicies
			return nil
		},
	},
	AmendDocumentSolicitation: {
		info: models.AmendmentType{
			Name:        AmendDocumentSolicitation,
			Description: "Add document solicitation function and obligation",
			Phase:       models.PhaseDocSolicitation,
			Parameters:  []string{"obligation"},
		},
		apply: func(pc *projector.ParsedCase, req models.AmendRequest) error {
			obligation := strings.TrimSpace(req.Obligation)
			if obligation == "" {
				return dErrors.New(dErrors.CodeValidation, "obligation is required")
			}
			pc.Obligation = obligation
			pc.Function = FnSolicitDocuments
			return nil
		},
	},
	AmendOwnershipDiscovery: {
		info: models.AmendmentType{
			Name:        AmendOwnershipDiscovery,
			Description: "Add ownership structure and control hierarchy",
			Phase:       models.PhaseOwnershipControl,
			Parameters:  []string{"ownership"},
		},
		apply: func(pc *projector.ParsedCase, req models.AmendRequest) error {
			if err := validateOwnership(req.Ownership); err != nil {
				return err
			}
			own := *req.Ownership
			pc.Ownership = &own
			pc.Function = FnBuildOwnershipTree
			return nil
		},
	},
	AmendRiskAssessment: {
		info: models.AmendmentType{
			Name:        AmendRiskAssessment,
			Description: "Add risk assessment function",
			Phase:       models.PhaseRiskReview,
		},
		apply: func(pc *projector.ParsedCase, _ models.AmendRequest) error {
			pc.Function = FnAssessRisk
			return nil
		},
	},
	AmendApprove: {
		info: models.AmendmentType{
			Name:        AmendApprove,
			Description: "Finalize case as approved",
			Phase:       models.PhaseFinalization,
		},
		apply: func(pc *projector.ParsedCase, _ models.AmendRequest) error {
			pc.KYCToken = "approved"
			return nil
		},
	},
	AmendDecline: {
		info: models.AmendmentType{
			Name:        AmendDecline,
			Description: "Finalize case as declined",
			Phase:       models.PhaseFinalization,
		},
		apply: func(pc *projector.ParsedCase, _ models.AmendRequest) error {
			pc.KYCToken = "declined"
			return nil
		},
	},
}

func validateOwnership(own *projector.Ownership) error {
	if own == nil {
		return dErrors.New(dErrors.CodeValidation, "ownership is required")
	}
	if len(own.Owners) == 0 && len(own.BeneficialOwners) == 0 && len(own.Controllers) == 0 {
		return dErrors.New(dErrors.CodeValidation, "ownership must list at least one owner or controller")
	}

	var total float64
	for _, o := range own.Owners {
		if strings.TrimSpace(o.Name) == "" {
			return dErrors.New(dErrors.CodeValidation, "owner name is required")
		}
		if o.Percentage < 0 || o.Percentage > 100 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("owner %s: percentage must be between 0 and 100", o.Name))
		}
		total += o.Percentage
	}
	if total > 100 {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("owner percentages sum to %g, above 100", total))
	}
	for _, o := range own.BeneficialOwners {
		if strings.TrimSpace(o.Name) == "" {
			return dErrors.New(dErrors.CodeValidation, "beneficial owner name is required")
		}
		if o.Percentage < 0 || o.Percentage > 100 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("beneficial owner %s: percentage must be between 0 and 100", o.Name))
		}
	}
	for _, c := range own.Controllers {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Role) == "" {
			return dErrors.New(dErrors.CodeValidation, "controller name and role are required")
		}
	}
	return nil
}
