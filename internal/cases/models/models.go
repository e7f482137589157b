package models

import (
	"time"

	"github.com/google/uuid"

	"kycdsl/internal/dsl/projector"
)

// CaseVersion is one immutable DSL snapshot of a case. Versions start at 1
// and increase by one per amendment.
type CaseVersion struct {
	CaseName  string    `json:"case_name"`
	Version   int       `json:"version"`
	DSL       string    `json:"dsl"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
}

// Amendment records how a version was produced.
type Amendment struct {
	ID         uuid.UUID `json:"id"`
	CaseName   string    `json:"case_name"`
	Version    int       `json:"version"`
	Type       string    `json:"type"`
	Phase      Phase     `json:"phase"`
	ChangeType string    `json:"change_type"`
	Diff       string    `json:"diff"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// AmendmentType describes one supported amendment and the request fields it reads.
type AmendmentType struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Phase       Phase    `json:"phase"`
	Parameters  []string `json:"parameters"`
}

// AmendRequest carries the parameters of one amendment. Only the fields the
// amendment type lists are read.
type AmendRequest struct {
	Type       string
	PolicyCode string
	Obligation string
	Ownership  *projector.Ownership
}

type AmendResult struct {
	Version   *CaseVersion
	Amendment *Amendment
	Case      projector.ParsedCase
}

// DeleteResult reports a removed case.
type DeleteResult struct {
	CaseName string `json:"case_name"`
	Versions int    `json:"deleted_versions"`
	Message  string `json:"message"`
}

// CaseView is the latest version of a case with its projected fields and
// lifecycle position.
type CaseView struct {
	Latest     *CaseVersion
	Case       projector.ParsedCase
	Phase      Phase
	NextPhases []Phase
}

type CompileResult struct {
	Plan         string
	Instructions int
	Cached       bool
}

type ExecuteResult struct {
	Report string
}

// RunRequest names what to compile and execute. DSL wins when set;
// otherwise a case is synthesised from CaseID and Function.
type RunRequest struct {
	CaseID   string
	Function string
	DSL      string
}

// RunResult reports a compile-and-execute request. DSL failures are carried
// in Message with Success false rather than returned as errors.
type RunResult struct {
	Success bool
	Message string
	CaseID  string
	DSL     string
	Plan    string
	Report  string
}

const (
	SeverityError = "error"

	IssueParseError   = "PARSE_ERROR"
	IssueCompileError = "COMPILE_ERROR"
)

type ValidationIssue struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}
