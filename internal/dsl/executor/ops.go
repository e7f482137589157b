package executor

// Op identifies an instruction handler. Names that are not listed resolve
// to OpGeneric so plans written for newer forms still execute.
type Op int

const (
	OpGeneric Op = iota
	OpInitCase
	OpFinalizeCase
	OpNaturePurpose
	OpNature
	OpPurpose
	OpClientBusinessUnit
	OpPolicy
	OpFunction
	OpObligation
	OpOwnershipStructure
	OpOwner
	OpBeneficialOwner
	OpController
	OpDataDictionary
	OpAttribute
	OpDocumentRequirements
	OpKYCToken
)

var opNames = map[string]Op{
	"init-case":             OpInitCase,
	"finalize-case":         OpFinalizeCase,
	"nature-purpose":        OpNaturePurpose,
	"nature":                OpNature,
	"purpose":               OpPurpose,
	"client-business-unit":  OpClientBusinessUnit,
	"policy":                OpPolicy,
	"function":              OpFunction,
	"obligation":            OpObligation,
	"ownership-structure":   OpOwnershipStructure,
	"owner":                 OpOwner,
	"beneficial-owner":      OpBeneficialOwner,
	"controller":            OpController,
	"data-dictionary":       OpDataDictionary,
	"attribute":             OpAttribute,
	"document-requirements": OpDocumentRequirements,
	"kyc-token":             OpKYCToken,
}

// ResolveOp maps an instruction name to its Op.
func ResolveOp(name string) Op {
	if op, ok := opNames[name]; ok {
		return op
	}
	return OpGeneric
}

// Variable keys written by the single-value handlers.
const (
	VarNature     = "nature"
	VarPurpose    = "purpose"
	VarCBU        = "cbu"
	VarPolicy     = "policy"
	VarFunction   = "function"
	VarObligation = "obligation"
	VarKYCToken   = "kyc_token"
)

type handlerFunc func(ctx *Context, name string, args []string) string

type handler struct {
	minArgs int
	// missing is the error message when fewer than minArgs are supplied.
	missing string
	run     handlerFunc
}

func handlerFor(op Op) handler {
	switch op {
	case OpInitCase:
		return handler{1, "init-case requires a case name", initCase}
	case OpFinalizeCase:
		return handler{1, "finalize-case requires a case name", finalizeCase}
	case OpNature:
		return setter(VarNature, "nature requires a value", "Set nature: %s", "✓ Nature: %s")
	case OpPurpose:
		return setter(VarPurpose, "purpose requires a value", "Set purpose: %s", "✓ Purpose: %s")
	case OpClientBusinessUnit:
		return setter(VarCBU, "client-business-unit requires a value", "Set CBU: %s", "✓ Client Business Unit: %s")
	case OpPolicy:
		return setter(VarPolicy, "policy requires a value", "Set policy: %s", "✓ Policy: %s")
	case OpFunction:
		return setter(VarFunction, "function requires a value", "Set function: %s", "✓ Function: %s")
	case OpObligation:
		return setter(VarObligation, "obligation requires a value", "Set obligation: %s", "✓ Obligation: %s")
	case OpKYCToken:
		return setter(VarKYCToken, "kyc-token requires a status", "Set KYC token: %s", "✓ KYC Token: %s")
	case OpOwner:
		return pair("owner requires name and percentage", "Added owner: %s (%s)", "✓ Owner: %s - %s")
	case OpBeneficialOwner:
		return pair("beneficial-owner requires name and percentage", "Added beneficial owner: %s (%s)", "✓ Beneficial Owner: %s - %s")
	case OpController:
		return pair("controller requires name and role", "Added controller: %s (%s)", "✓ Controller: %s - %s")
	case OpAttribute:
		return handler{1, "attribute requires a code", attribute}
	case OpNaturePurpose:
		return section("Processing nature-purpose section", "✓ Nature-purpose defined with %d elements")
	case OpOwnershipStructure:
		return section("Processing ownership structure", "✓ Ownership structure with %d elements")
	case OpDataDictionary:
		return section("Processing data dictionary", "✓ Data dictionary with %d entries")
	case OpDocumentRequirements:
		return section("Processing document requirements", "✓ Document requirements with %d elements")
	case OpGeneric:
		return handler{0, "", generic}
	default:
		return handler{0, "", generic}
	}
}
