package handler

import (
	"encoding/json"
	"time"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl/projector"
)

type CompileResponse struct {
	Plan         json.RawMessage `json:"plan"`
	Instructions int             `json:"instructions"`
	Cached       bool            `json:"cached"`
}

type ExecuteResponse struct {
	Report string `json:"report"`
}

type RunResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	CaseID     string          `json:"case_id,omitempty"`
	UpdatedDSL string          `json:"updated_dsl"`
	Plan       json.RawMessage `json:"plan,omitempty"`
	Report     string          `json:"report,omitempty"`
}

type SerializeResponse struct {
	DSL string `json:"dsl"`
}

type GrammarResponse struct {
	Version string `json:"version"`
	Grammar string `json:"grammar"`
}

type AmendmentTypesResponse struct {
	Amendments []models.AmendmentType `json:"amendments"`
}

// CaseResponse is the latest version of a case with its lifecycle position.
type CaseResponse struct {
	Name       string               `json:"name"`
	Version    int                  `json:"version"`
	DSL        string               `json:"dsl"`
	Hash       string               `json:"hash"`
	CreatedAt  time.Time            `json:"created_at"`
	Phase      models.Phase         `json:"phase"`
	NextPhases []models.Phase       `json:"next_phases"`
	Case       projector.ParsedCase `json:"case"`
}

type CasesResponse struct {
	Cases []*models.CaseVersion `json:"cases"`
}

type VersionsResponse struct {
	Case     string                `json:"case"`
	Versions []*models.CaseVersion `json:"versions"`
}

type AmendmentsResponse struct {
	Case       string              `json:"case"`
	Amendments []*models.Amendment `json:"amendments"`
}

type AmendResponse struct {
	Version   *models.CaseVersion  `json:"version"`
	Amendment *models.Amendment    `json:"amendment"`
	Case      projector.ParsedCase `json:"case"`
}

func FromCompileResult(res *models.CompileResult) *CompileResponse {
	return &CompileResponse{
		Plan:         json.RawMessage(res.Plan),
		Instructions: res.Instructions,
		Cached:       res.Cached,
	}
}

func FromRunResult(res *models.RunResult) *RunResponse {
	resp := &RunResponse{
		Success:    res.Success,
		Message:    res.Message,
		CaseID:     res.CaseID,
		UpdatedDSL: res.DSL,
		Report:     res.Report,
	}
	if res.Plan != "" {
		resp.Plan = json.RawMessage(res.Plan)
	}
	return resp
}

func FromCaseView(view *models.CaseView) *CaseResponse {
	next := view.NextPhases
	if next == nil {
		next = []models.Phase{}
	}
	return &CaseResponse{
		Name:       view.Latest.CaseName,
		Version:    view.Latest.Version,
		DSL:        view.Latest.DSL,
		Hash:       view.Latest.Hash,
		CreatedAt:  view.Latest.CreatedAt,
		Phase:      view.Phase,
		NextPhases: next,
		Case:       view.Case,
	}
}

func FromAmendResult(res *models.AmendResult) *AmendResponse {
	return &AmendResponse{
		Version:   res.Version,
		Amendment: res.Amendment,
		Case:      res.Case,
	}
}
