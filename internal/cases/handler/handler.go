package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycdsl/internal/cases/models"
	"kycdsl/internal/dsl"
	"kycdsl/internal/dsl/projector"
	dErrors "kycdsl/pkg/domain-errors"
	"kycdsl/pkg/platform/httputil"
	"kycdsl/pkg/platform/strings"
	"kycdsl/pkg/requestcontext"
)

// Service defines the case operations the HTTP layer calls.
type Service interface {
	Compile(ctx context.Context, source string) (*models.CompileResult, error)
	Execute(ctx context.Context, plan string) (*models.ExecuteResult, error)
	Run(ctx context.Context, req models.RunRequest) (*models.RunResult, error)
	Validate(ctx context.Context, source, caseID string) *models.ValidationResult
	ParseCase(ctx context.Context, source string) (*projector.ParsedCase, error)
	SerializeCase(ctx context.Context, pc projector.ParsedCase) (string, error)
	CreateCase(ctx context.Context, source string) (*models.CaseVersion, error)
	UpdateCase(ctx context.Context, name, source string) (*models.AmendResult, error)
	DeleteCase(ctx context.Context, name string) (*models.DeleteResult, error)
	GetCase(ctx context.Context, name string) (*models.CaseView, error)
	ListCases(ctx context.Context, names []string) ([]*models.CaseVersion, error)
	ListVersions(ctx context.Context, name string) ([]*models.CaseVersion, error)
	ListAmendmentLog(ctx context.Context, name string) ([]*models.Amendment, error)
	Amend(ctx context.Context, name string, req models.AmendRequest) (*models.AmendResult, error)
	ListAmendmentTypes() []models.AmendmentType
	Grammar() string
}

// Handler wires DSL and case endpoints to the case service.
type Handler struct {
	service     Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New constructs a handler. Case endpoints are wrapped in requireAuth when it
// is non-nil.
func New(service Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:     service,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Register mounts the stateless DSL endpoints and the authenticated case
// endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/dsl", func(r chi.Router) {
		r.Post("/compile", h.HandleCompile)
		r.Post("/execute", h.HandleExecute)
		r.Post("/run", h.HandleRun)
		r.Post("/validate", h.HandleValidate)
		r.Post("/parse", h.HandleParse)
		r.Post("/serialize", h.HandleSerialize)
		r.Get("/grammar", h.HandleGrammar)
		r.Get("/amendments", h.HandleAmendmentTypes)
	})

	r.Group(func(r chi.Router) {
		if h.requireAuth != nil {
			r.Use(h.requireAuth)
		}
		r.Post("/cases", h.HandleCreateCase)
		r.Get("/cases", h.HandleListCases)
		r.Get("/cases/{name}", h.HandleGetCase)
		r.Put("/cases/{name}", h.HandleUpdateCase)
		r.Delete("/cases/{name}", h.HandleDeleteCase)
		r.Get("/cases/{name}/versions", h.HandleListVersions)
		r.Get("/cases/{name}/amendments", h.HandleListAmendments)
		r.Post("/cases/{name}/amendments", h.HandleAmend)
	})
}

// HandleCompile handles POST /dsl/compile.
func (h *Handler) HandleCompile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SourceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Compile(ctx, req.DSL)
	if err != nil {
		h.fail(ctx, w, "compile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCompileResult(res))
}

// HandleExecute handles POST /dsl/execute.
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ExecuteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Execute(ctx, req.ParsedPlan())
	if err != nil {
		h.fail(ctx, w, "execute failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ExecuteResponse{Report: res.Report})
}

// HandleRun handles POST /dsl/run. DSL failures are reported in the body
// with success=false and status 200.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RunRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Run(ctx, req.ToModel())
	if err != nil {
		h.fail(ctx, w, "run failed", err)
		return
	}
	h.logger.InfoContext(ctx, "dsl run",
		"request_id", requestID,
		"case_id", req.CaseID,
		"success", res.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRunResult(res))
}

// HandleValidate handles POST /dsl/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.Validate(ctx, req.DSL, req.CaseID))
}

// HandleParse handles POST /dsl/parse.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SourceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	pc, err := h.service.ParseCase(ctx, req.DSL)
	if err != nil {
		h.fail(ctx, w, "parse failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pc)
}

// HandleSerialize handles POST /dsl/serialize.
func (h *Handler) HandleSerialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SerializeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	text, err := h.service.SerializeCase(ctx, req.ParsedCase)
	if err != nil {
		h.fail(ctx, w, "serialize failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &SerializeResponse{DSL: text})
}

func (h *Handler) HandleGrammar(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &GrammarResponse{
		Version: dsl.GrammarVersion,
		Grammar: h.service.Grammar(),
	})
}

func (h *Handler) HandleAmendmentTypes(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &AmendmentTypesResponse{Amendments: h.service.ListAmendmentTypes()})
}

// HandleCreateCase handles POST /cases.
func (h *Handler) HandleCreateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SourceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	version, err := h.service.CreateCase(ctx, req.DSL)
	if err != nil {
		h.fail(ctx, w, "create case failed", err)
		return
	}
	h.logger.InfoContext(ctx, "case created",
		"request_id", requestID,
		"case_name", version.CaseName,
		"actor", requestcontext.Actor(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, version)
}

// HandleListCases handles GET /cases. Repeated or comma-separated name
// parameters restrict the listing.
func (h *Handler) HandleListCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	names := strings.SplitList(r.URL.Query()["name"]...)
	cases, err := h.service.ListCases(ctx, names)
	if err != nil {
		h.fail(ctx, w, "list cases failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &CasesResponse{Cases: cases})
}

// HandleGetCase handles GET /cases/{name}.
func (h *Handler) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	view, err := h.service.GetCase(ctx, name)
	if err != nil {
		h.fail(ctx, w, "get case failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCaseView(view))
}

// HandleUpdateCase handles PUT /cases/{name}. The body carries the full
// replacement DSL.
func (h *Handler) HandleUpdateCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeAndPrepare[SourceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.UpdateCase(ctx, name, req.DSL)
	if err != nil {
		h.fail(ctx, w, "update case failed", err, "case_name", name)
		return
	}
	h.logger.InfoContext(ctx, "case updated",
		"request_id", requestID,
		"case_name", name,
		"version", res.Version.Version,
		"actor", res.Amendment.Actor,
	)
	httputil.WriteJSON(w, http.StatusOK, FromAmendResult(res))
}

// HandleDeleteCase handles DELETE /cases/{name}.
func (h *Handler) HandleDeleteCase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	res, err := h.service.DeleteCase(ctx, name)
	if err != nil {
		h.fail(ctx, w, "delete case failed", err, "case_name", name)
		return
	}
	h.logger.InfoContext(ctx, "case deleted",
		"request_id", requestcontext.RequestID(ctx),
		"case_name", name,
		"versions", res.Versions,
		"actor", requestcontext.Actor(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}

// HandleListVersions handles GET /cases/{name}/versions.
func (h *Handler) HandleListVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	versions, err := h.service.ListVersions(ctx, name)
	if err != nil {
		h.fail(ctx, w, "list versions failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &VersionsResponse{Case: name, Versions: versions})
}

// HandleListAmendments handles GET /cases/{name}/amendments.
func (h *Handler) HandleListAmendments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	log, err := h.service.ListAmendmentLog(ctx, name)
	if err != nil {
		h.fail(ctx, w, "list amendments failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &AmendmentsResponse{Case: name, Amendments: log})
}

// HandleAmend handles POST /cases/{name}/amendments.
func (h *Handler) HandleAmend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	name := chi.URLParam(r, "name")
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[AmendRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := h.service.Amend(ctx, name, req.ToModel())
	if err != nil {
		h.fail(ctx, w, "amend failed", err,
			"case_name", name,
			"amendment", req.Type,
		)
		return
	}
	h.logger.InfoContext(ctx, "case amended",
		"request_id", requestID,
		"case_name", name,
		"amendment", req.Type,
		"version", res.Version.Version,
		"actor", res.Amendment.Actor,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromAmendResult(res))
}

// fail logs err at a level matching its code and writes the error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
