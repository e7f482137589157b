package handler

import (
	"bytes"
	"encoding/json"
	"strings"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl/parser"
	"kycdsl/internal/dsl/projector"
	dErrors "kycdsl/pkg/domain-errors"
)

// SourceRequest is the body of endpoints that take DSL text.
type SourceRequest struct {
	DSL string `json:"dsl"`
}

func (r *SourceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.DSL) == "" {
		return dErrors.New(dErrors.CodeValidation, "dsl is required")
	}
	return nil
}

// ExecuteRequest accepts the plan either as the JSON array returned by
// compile or as that array encoded in a string.
type ExecuteRequest struct {
	Plan json.RawMessage `json:"plan"`

	plan string
}

func (r *ExecuteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	raw := bytes.TrimSpace(r.Plan)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return dErrors.New(dErrors.CodeValidation, "plan is required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return dErrors.New(dErrors.CodeValidation, "plan must be a JSON array or string")
		}
		r.plan = s
	} else {
		r.plan = string(raw)
	}
	if strings.TrimSpace(r.plan) == "" {
		return dErrors.New(dErrors.CodeValidation, "plan is required")
	}
	return nil
}

// ParsedPlan returns the plan text after Validate.
func (r *ExecuteRequest) ParsedPlan() string {
	return r.plan
}

// RunRequest compiles and executes DSL, or a case synthesised from
// case_id and function_name when dsl is empty.
type RunRequest struct {
	CaseID       string `json:"case_id"`
	FunctionName string `json:"function_name"`
	DSL          string `json:"dsl"`
}

func (r *RunRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	r.FunctionName = strings.TrimSpace(r.FunctionName)
	if strings.TrimSpace(r.DSL) != "" {
		return nil
	}
	if r.CaseID == "" {
		return dErrors.New(dErrors.CodeValidation, "dsl or case_id is required")
	}
	if err := requireAtom("case_id", r.CaseID); err != nil {
		return err
	}
	if r.FunctionName != "" {
		return requireAtom("function_name", r.FunctionName)
	}
	return nil
}

func (r *RunRequest) ToModel() models.RunRequest {
	return models.RunRequest{CaseID: r.CaseID, Function: r.FunctionName, DSL: r.DSL}
}

// ValidateRequest checks dsl, or the bare case named case_id when dsl is empty.
type ValidateRequest struct {
	DSL    string `json:"dsl"`
	CaseID string `json:"case_id"`
}

func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CaseID = strings.TrimSpace(r.CaseID)
	if strings.TrimSpace(r.DSL) != "" {
		return nil
	}
	if r.CaseID == "" {
		return dErrors.New(dErrors.CodeValidation, "dsl or case_id is required")
	}
	return requireAtom("case_id", r.CaseID)
}

// SerializeRequest is a projected case, as returned by parse.
type SerializeRequest struct {
	projector.ParsedCase
}

func (r *SerializeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

// AmendRequest is the body of POST /cases/{name}/amendments.
type AmendRequest struct {
	Type       string               `json:"type"`
	PolicyCode string               `json:"policy_code,omitempty"`
	Obligation string               `json:"obligation,omitempty"`
	Ownership  *projector.Ownership `json:"ownership,omitempty"`
}

func (r *AmendRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Type = strings.TrimSpace(r.Type)
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	return nil
}

func (r *AmendRequest) ToModel() models.AmendRequest {
	return models.AmendRequest{
		Type:       r.Type,
		PolicyCode: r.PolicyCode,
		Obligation: r.Obligation,
		Ownership:  r.Ownership,
	}
}

func requireAtom(field, value string) error {
	if !parser.IsBareAtom(value) {
		return dErrors.New(dErrors.CodeValidation, field+" must be a single DSL identifier")
	}
	return nil
}
