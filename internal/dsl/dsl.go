// Package dsl is the entry point to the KYC case DSL: it chains the parser,
// compiler and executor and exposes the case projector.
//
// Every call works on its own data; the package holds no shared state, so
// the functions are safe to call from concurrent requests.
package dsl

import (
	"fmt"

	"kycdsl/internal/dsl/ast"
	"kycdsl/internal/dsl/compiler"
	"kycdsl/internal/dsl/executor"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/dsl/projector"
)

// GrammarVersion identifies the grammar returned by Grammar.
const GrammarVersion = "1.2"

const grammar = `KYC-DSL Grammar (v1.2)

case        = "(kyc-case" IDENT form* ")"
form        = "(nature-purpose" nature purpose ")"
            | "(ownership-structure" entity owner* beneficial-owner* controller* ")"
            | "(data-dictionary" attribute* ")"
            | "(document-requirements" jurisdiction required ")"
            | "(kyc-token" STRING ")"
            | simple-form

simple-form = "(" IDENT value* ")"
value       = STRING | IDENT | PERCENT | form
IDENT       = [A-Za-z0-9_.%-]+
STRING      = '"' [^"]* '"'
PERCENT     = [0-9]+ ("." [0-9]+)? "%"
`

// Parse parses DSL text into an expression.
func Parse(source string) (ast.Expr, error) {
	return parser.Parse(source)
}

// Compile parses and compiles source into an instruction plan.
func Compile(source string) ([]compiler.Instruction, error) {
	expr, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(expr)
}

// CompileDSL parses and compiles source and returns the plan in its JSON
// interchange form.
func CompileDSL(source string) (string, error) {
	plan, err := Compile(source)
	if err != nil {
		return "", err
	}
	out, err := compiler.EncodePlan(plan)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}
	return out, nil
}

// ExecutePlan runs a JSON plan and returns the execution report.
func ExecutePlan(plan string) (string, error) {
	res, err := executor.Execute(plan)
	if err != nil {
		return "", err
	}
	return res.Report(), nil
}

// ProjectCase reads a kyc-case expression into a structured record.
func ProjectCase(expr ast.Expr) projector.ParsedCase {
	return projector.Project(expr)
}

// SerializeCase renders a structured record as DSL text.
func SerializeCase(pc projector.ParsedCase) string {
	return projector.Serialize(pc)
}

// Grammar returns the EBNF description of the DSL.
func Grammar() string {
	return grammar
}
