// Package projector converts between a kyc-case expression and the
// structured ParsedCase record used by amendment workflows.
package projector

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"kycdsl/internal/dsl/ast"
)

// UnknownCase is the name given to a projection whose root is not a kyc-case form.
const UnknownCase = "UNKNOWN"

// ParsedCase is the structured view of one kyc-case form. Fields absent from
// the source stay empty.
type ParsedCase struct {
	Name               string     `json:"name"`
	Nature             string     `json:"nature,omitempty"`
	Purpose            string     `json:"purpose,omitempty"`
	ClientBusinessUnit string     `json:"client_business_unit,omitempty"`
	Policy             string     `json:"policy,omitempty"`
	Function           string     `json:"function,omitempty"`
	Obligation         string     `json:"obligation,omitempty"`
	KYCToken           string     `json:"kyc_token,omitempty"`
	Ownership          *Ownership `json:"ownership,omitempty"`
}

// Ownership lists the legal owners, beneficial owners and controllers of an entity.
type Ownership struct {
	EntityName       string            `json:"entity_name,omitempty"`
	Owners           []Owner           `json:"owners,omitempty"`
	BeneficialOwners []BeneficialOwner `json:"beneficial_owners,omitempty"`
	Controllers      []Controller      `json:"controllers,omitempty"`
}

type Owner struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type BeneficialOwner struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type Controller struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Project reads a kyc-case expression into a ParsedCase. Forms it does not
// recognise are ignored.
func Project(expr ast.Expr) ParsedCase {
	pc := ParsedCase{Name: UnknownCase}

	root, ok := expr.(ast.Call)
	if !ok || root.Name != "kyc-case" || len(root.Args) == 0 {
		return pc
	}
	if name, ok := ast.AtomValue(root.Args[0]); ok {
		pc.Name = name
	}

	for _, arg := range root.Args[1:] {
		form, ok := arg.(ast.Call)
		if !ok {
			continue
		}
		switch form.Name {
		case "nature-purpose":
			for _, sub := range form.Args {
				if inner, ok := sub.(ast.Call); ok {
					pc.setField(inner)
				}
			}
		case "ownership-structure":
			pc.Ownership = projectOwnership(form)
		default:
			pc.setField(form)
		}
	}
	return pc
}

func (pc *ParsedCase) setField(form ast.Call) {
	val, ok := firstAtom(form)
	if !ok {
		return
	}
	switch form.Name {
	case "nature":
		pc.Nature = val
	case "purpose":
		pc.Purpose = val
	case "client-business-unit":
		pc.ClientBusinessUnit = val
	case "policy":
		pc.Policy = val
	case "function":
		pc.Function = val
	case "obligation":
		pc.Obligation = val
	case "kyc-token":
		pc.KYCToken = val
	}
}

func projectOwnership(form ast.Call) *Ownership {
	own := &Ownership{}
	for _, arg := range form.Args {
		entry, ok := arg.(ast.Call)
		if !ok {
			continue
		}
		switch entry.Name {
		case "entity":
			if name, ok := firstAtom(entry); ok {
				own.EntityName = name
			}
		case "owner":
			if name, pct, ok := namedPercentage(entry); ok {
				own.Owners = append(own.Owners, Owner{Name: name, Percentage: pct})
			}
		case "beneficial-owner":
			if name, pct, ok := namedPercentage(entry); ok {
				own.BeneficialOwners = append(own.BeneficialOwners, BeneficialOwner{Name: name, Percentage: pct})
			}
		case "controller":
			name, nameOK := atomAt(entry, 0)
			role, roleOK := atomAt(entry, 1)
			if nameOK && roleOK {
				own.Controllers = append(own.Controllers, Controller{Name: name, Role: role})
			}
		}
	}
	return own
}

func namedPercentage(entry ast.Call) (string, float64, bool) {
	name, ok := atomAt(entry, 0)
	if !ok {
		return "", 0, false
	}
	raw, ok := atomAt(entry, 1)
	if !ok {
		return "", 0, false
	}
	pct, err := ParsePercentage(raw)
	if err != nil {
		return "", 0, false
	}
	return name, pct, true
}

// ParsePercentage converts "45.5%" or "45.5" into 45.5. Infinities and NaN
// are rejected because they have no atom spelling to serialize back to.
func ParsePercentage(raw string) (float64, error) {
	pct, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(raw), "%"), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(pct, 0) || math.IsNaN(pct) {
		return 0, fmt.Errorf("percentage %q is not a finite number", raw)
	}
	return pct, nil
}

func firstAtom(form ast.Call) (string, bool) {
	return atomAt(form, 0)
}

func atomAt(form ast.Call, i int) (string, bool) {
	if i >= len(form.Args) {
		return "", false
	}
	return ast.AtomValue(form.Args[i])
}
