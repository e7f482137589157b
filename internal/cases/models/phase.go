package models

// Phase is a stage of the case lifecycle.
type Phase string

const (
	PhaseCreation         Phase = "CASE-CREATION"
	PhasePolicyDiscovery  Phase = "POLICY-DISCOVERY"
	PhaseDocSolicitation  Phase = "DOCUMENT-SOLICITATION"
	PhaseOwnershipControl Phase = "OWNERSHIP-CONTROL"
	PhaseRiskReview       Phase = "RISK-REVIEW"
	PhaseFinalization     Phase = "FINALIZATION"
)

// IsTerminal reports whether no amendment may follow this phase.
func (p Phase) IsTerminal() bool {
	return p == PhaseFinalization
}
