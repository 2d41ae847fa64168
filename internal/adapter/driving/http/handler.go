package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	session     *application.Session
	analysisSvc *application.AnalysisService
	artifactSvc *application.ArtifactService
	prWorkflow  *application.PRWorkflow
	healthSvc   *application.HealthService
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.Session,
	analysisSvc *application.AnalysisService,
	artifactSvc *application.ArtifactService,
	prWorkflow *application.PRWorkflow,
	healthSvc *application.HealthService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:     session,
		analysisSvc: analysisSvc,
		artifactSvc: artifactSvc,
		prWorkflow:  prWorkflow,
		healthSvc:   healthSvc,
		logger:      logger,
		now:         time.Now,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/session", h.GetSession)
	mux.HandleFunc("POST /api/v1/session", h.Connect)
	mux.HandleFunc("DELETE /api/v1/session", h.Logout)
	mux.HandleFunc("PUT /api/v1/session/view", h.SetView)

	mux.HandleFunc("GET /api/v1/repos", h.ListRepos)
	mux.HandleFunc("POST /api/v1/repos/{owner}/{repo}/analysis", h.Analyze)
	mux.HandleFunc("GET /api/v1/analysis", h.GetAnalysis)
	mux.HandleFunc("GET /api/v1/streaks", h.Streaks)

	mux.HandleFunc("GET /api/v1/templates", h.ListTemplates)
	mux.HandleFunc("POST /api/v1/artifacts", h.GenerateArtifact)
	mux.HandleFunc("POST /api/v1/pr/draft", h.PrepareDraft)
	mux.HandleFunc("POST /api/v1/pr", h.ExecutePR)
}

// Health returns process health. Database failure degrades the status but
// still answers 200 so liveness probes do not restart the container.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.healthSvc.Check(r.Context())
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    report.Status,
		Database:  report.Database,
		Connected: report.Connected,
		Time:      report.CheckedAt.Format(time.RFC3339),
	})
}

// GetSession returns the current session state.
func (h *Handler) GetSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSessionResponse(h.session.Snapshot()))
}

// Connect validates a personal access token and loads the profile and
// repositories for it.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.session.Connect(r.Context(), req.Token); err != nil {
		h.writeAppError(w, "connect", err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionResponse(h.session.Snapshot()))
}

// Logout clears the session and the persisted token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// SetView records the section the user is looking at.
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := model.ParseView(req.View)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.session.SetView(view)
	w.WriteHeader(http.StatusNoContent)
}

// ListRepos returns the dashboard: repositories matching ?filter= with their
// dormancy label, plus totals per bucket.
func (h *Handler) ListRepos(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}

	filter, err := model.ParseRepoFilter(r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dash := application.ComputeDashboard(h.session.Repositories(), filter, h.now())
	writeJSON(w, http.StatusOK, toDashboardResponse(dash))
}

// Analyze runs a fresh analysis for one repository and returns the report.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}

	fullName := r.PathValue("owner") + "/" + r.PathValue("repo")
	report, err := h.analysisSvc.Analyze(r.Context(), fullName)
	if err != nil {
		h.writeAppError(w, "analyze", err)
		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(report))
}

// GetAnalysis returns the most recent analysis report held by the session.
func (h *Handler) GetAnalysis(w http.ResponseWriter, _ *http.Request) {
	report, ok := h.session.Analysis()
	if !ok {
		writeError(w, http.StatusNotFound, "no analysis available")
		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(report))
}

// Streaks returns activity metrics derived from the repository list.
func (h *Handler) Streaks(w http.ResponseWriter, _ *http.Request) {
	if !h.requireSession(w) {
		return
	}

	stats := application.ComputeStreaks(h.session.Repositories(), h.now())
	writeJSON(w, http.StatusOK, toStreakResponse(stats))
}

// ListTemplates returns the artifact templates in display order.
func (h *Handler) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	resp := make([]TemplateResponse, 0, len(model.ArtifactTemplates))
	for _, t := range model.ArtifactTemplates {
		resp = append(resp, TemplateResponse{ID: t.ID, Label: t.Label, Path: t.Path})
	}
	writeJSON(w, http.StatusOK, resp)
}

// GenerateArtifact generates documentation for a repository and template.
func (h *Handler) GenerateArtifact(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}

	var req ArtifactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artifact, err := h.artifactSvc.Generate(r.Context(), application.ArtifactRequest{
		RepoKey:    req.Repository,
		TemplateID: req.TemplateID,
		Mode:       model.GenerationMode(req.Mode),
	})
	if err != nil {
		h.writeAppError(w, "generate artifact", err)
		return
	}

	writeJSON(w, http.StatusOK, ArtifactResponse{
		Repository:   artifact.Repository.FullName,
		TemplateID:   artifact.Template.ID,
		Path:         artifact.Template.Path,
		Mode:         string(artifact.Mode),
		Content:      artifact.Content,
		ManifestFile: artifact.ManifestFile,
	})
}

// PrepareDraft returns PR metadata for review before anything is written.
func (h *Handler) PrepareDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.prWorkflow.PrepareDraft(req.TemplateID, h.now())
	if err != nil {
		h.writeAppError(w, "prepare draft", err)
		return
	}

	writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

// ExecutePR runs the PR authoring workflow for a confirmed draft.
func (h *Handler) ExecutePR(w http.ResponseWriter, r *http.Request) {
	if !h.requireSession(w) {
		return
	}

	var req ExecutePRRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.prWorkflow.Execute(r.Context(), req.Repository, req.Draft.toModel(), req.Content)
	if err != nil {
		h.writeAppError(w, "execute pr", err)
		return
	}

	writeJSON(w, http.StatusCreated, PRResultResponse{
		Branch: result.Branch,
		Number: result.PullRequest.Number,
		Title:  result.PullRequest.Title,
		URL:    result.PullRequest.URL,
		Base:   result.PullRequest.Base,
	})
}

// requireSession writes a 401 and returns false when no account is connected.
func (h *Handler) requireSession(w http.ResponseWriter) bool {
	if h.session.Connected() {
		return true
	}
	writeError(w, http.StatusUnauthorized, "not connected to GitHub")
	return false
}

// writeAppError maps a tagged application error to a status code and writes
// its user-facing message. Untagged errors become an opaque 500.
func (h *Handler) writeAppError(w http.ResponseWriter, action string, err error) {
	var appErr *model.Error
	if !errors.As(err, &appErr) {
		h.logger.Error("request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusForKind(appErr.Kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "action", action, "kind", appErr.Kind, "op", appErr.Op, "error", err)
	} else {
		h.logger.Warn("request rejected", "action", action, "kind", appErr.Kind, "op", appErr.Op, "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error: err.Error(),
		Kind:  string(appErr.Kind),
		Step:  appErr.Op,
	})
}
