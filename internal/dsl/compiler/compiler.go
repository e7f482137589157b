// Package compiler lowers a parsed KYC DSL expression into a linear plan of
// instructions.
//
// Only the kyc-case wrapper is compiled recursively. Every other form becomes
// a single instruction whose arguments are the canonical text of its
// sub-expressions, so nested forms inside it are carried as data and never
// executed on their own.
package compiler

import (
	"fmt"

	"kycdsl/internal/dsl/ast"
)

// Instruction names emitted around a case body.
const (
	InstrInitCase     = "init-case"
	InstrFinalizeCase = "finalize-case"
)

// Form classifies a call by its name.
type Form int

const (
	// FormGeneric covers every name not listed below, including unknown ones.
	FormGeneric Form = iota
	FormKYCCase
	FormNaturePurpose
	FormOwnershipStructure
	FormDataDictionary
	FormDocumentRequirements
)

var formNames = map[string]Form{
	"kyc-case":              FormKYCCase,
	"nature-purpose":        FormNaturePurpose,
	"ownership-structure":   FormOwnershipStructure,
	"data-dictionary":       FormDataDictionary,
	"document-requirements": FormDocumentRequirements,
}

// ClassifyForm maps a call name to its Form.
func ClassifyForm(name string) Form {
	if f, ok := formNames[name]; ok {
		return f
	}
	return FormGeneric
}

func (f Form) String() string {
	switch f {
	case FormKYCCase:
		return "kyc-case"
	case FormNaturePurpose:
		return "nature-purpose"
	case FormOwnershipStructure:
		return "ownership-structure"
	case FormDataDictionary:
		return "data-dictionary"
	case FormDocumentRequirements:
		return "document-requirements"
	default:
		return "generic"
	}
}

// CompileError reports an expression that violates a form's structure.
type CompileError struct {
	Form string
	Msg  string
}

func (e *CompileError) Error() string {
	return e.Msg
}

// Compile walks expr depth-first and returns the instruction plan in
// pre-order. A kyc-case produces init-case, its body, then finalize-case.
func Compile(expr ast.Expr) ([]Instruction, error) {
	plan := []Instruction{}
	if err := compileExpr(expr, &plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func compileExpr(expr ast.Expr, plan *[]Instruction) error {
	call, ok := expr.(ast.Call)
	if !ok {
		// atoms are argument data
		return nil
	}

	switch ClassifyForm(call.Name) {
	case FormKYCCase:
		return compileCase(call, plan)
	case FormNaturePurpose, FormOwnershipStructure, FormDataDictionary, FormDocumentRequirements, FormGeneric:
		compileForm(call, plan)
		return nil
	default:
		return &CompileError{Form: call.Name, Msg: fmt.Sprintf("unhandled form %q", call.Name)}
	}
}

func compileCase(call ast.Call, plan *[]Instruction) error {
	if len(call.Args) == 0 {
		return &CompileError{Form: call.Name, Msg: "kyc-case requires at least a name"}
	}
	caseID, ok := ast.AtomValue(call.Args[0])
	if !ok {
		return &CompileError{Form: call.Name, Msg: "kyc-case name must be an atom"}
	}

	*plan = append(*plan, Instruction{Name: InstrInitCase, Args: []string{caseID}})
	for _, sub := range call.Args[1:] {
		if err := compileExpr(sub, plan); err != nil {
			return err
		}
	}
	*plan = append(*plan, Instruction{Name: InstrFinalizeCase, Args: []string{caseID}})
	return nil
}

func compileForm(call ast.Call, plan *[]Instruction) {
	args := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		args = append(args, ast.Render(arg))
	}
	*plan = append(*plan, Instruction{Name: call.Name, Args: args})
}
