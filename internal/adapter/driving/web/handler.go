// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// viewPaths maps each view to the page that shows it.
var viewPaths = map[model.View]string{
	model.ViewDashboard: "/app/dashboard",
	model.ViewAnalysis:  "/app/analysis",
	model.ViewStreak:    "/app/streaks",
	model.ViewGenerator: "/app/generator",
	model.ViewSettings:  "/app/settings",
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	session     *application.Session
	analysisSvc *application.AnalysisService
	artifactSvc *application.ArtifactService
	prWorkflow  *application.PRWorkflow
	persistent  bool // Whether the session token survives a restart.
	logger      *slog.Logger
	now         func() time.Time
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	session *application.Session,
	analysisSvc *application.AnalysisService,
	artifactSvc *application.ArtifactService,
	prWorkflow *application.PRWorkflow,
	persistent bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		session:     session,
		analysisSvc: analysisSvc,
		artifactSvc: artifactSvc,
		prWorkflow:  prWorkflow,
		persistent:  persistent,
		logger:      logger,
		now:         time.Now,
	}
}

// Index shows the connect form, or redirects a connected user to the view
// they last had open.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.Connected {
		path, ok := viewPaths[state.View]
		if !ok {
			path = viewPaths[model.ViewDashboard]
		}
		http.Redirect(w, r, path, http.StatusSeeOther)
		return
	}

	token := csrfToken(w, r)
	h.render(w, r, http.StatusOK, "Connect", "", token,
		templates.Connect(vm.ConnectViewModel{CSRFToken: token}))
}

// Connect validates the submitted token and loads the account.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}

	if err := h.session.Connect(r.Context(), r.FormValue("token")); err != nil {
		token := csrfToken(w, r)
		h.render(w, r, statusForError(err), "Connect", "", token,
			templates.Connect(vm.ConnectViewModel{Error: err.Error(), CSRFToken: token}))
		return
	}

	issueCSRF(w, r)
	h.session.SetView(model.ViewDashboard)
	http.Redirect(w, r, viewPaths[model.ViewDashboard], http.StatusSeeOther)
}

// Logout clears the session and returns to the connect form.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	h.session.Logout(r.Context())
	clearCSRF(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Dashboard renders the repository grid. Unknown filters fall back to all.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewDashboard)

	filter, err := model.ParseRepoFilter(r.URL.Query().Get("filter"))
	if err != nil {
		filter = model.RepoFilterAll
	}

	now := h.now()
	dash := application.ComputeDashboard(h.session.Repositories(), filter, now)
	h.render(w, r, http.StatusOK, "Dashboard", model.ViewDashboard, csrfToken(w, r),
		templates.Dashboard(toDashboardViewModel(dash, now)))
}

// Analysis shows the latest analysis report, if any.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewAnalysis)

	token := csrfToken(w, r)
	report, ok := h.session.Analysis()
	if !ok {
		h.render(w, r, http.StatusOK, "Analysis", model.ViewAnalysis, token, templates.AnalysisEmpty())
		return
	}

	page := toAnalysisViewModel(report.Repository, &report, h.now())
	page.CSRFToken = token
	h.render(w, r, http.StatusOK, report.Repository.FullName, model.ViewAnalysis, token, templates.RepoDetail(page))
}

// RepoDetail shows the analysis for one repository, running it when the
// session holds no report for that repository yet.
func (h *Handler) RepoDetail(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewAnalysis)

	repo, err := h.session.Repository(r.PathValue("owner") + "/" + r.PathValue("repo"))
	if err != nil {
		h.renderRepoError(w, r, model.Repository{}, err)
		return
	}

	if report, ok := h.session.Analysis(); ok && report.Repository.FullName == repo.FullName {
		h.renderReport(w, r, report)
		return
	}

	report, err := h.analysisSvc.Analyze(r.Context(), repo.FullName)
	if err != nil {
		h.renderRepoError(w, r, repo, err)
		return
	}
	h.renderReport(w, r, report)
}

// Reanalyze runs a fresh analysis and redirects back to the detail page.
func (h *Handler) Reanalyze(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) || !h.checkCSRF(w, r) {
		return
	}

	fullName := r.PathValue("owner") + "/" + r.PathValue("repo")
	report, err := h.analysisSvc.Analyze(r.Context(), fullName)
	if err != nil {
		repo, _ := h.session.Repository(fullName)
		h.renderRepoError(w, r, repo, err)
		return
	}
	http.Redirect(w, r, repoPath(report.Repository.FullName), http.StatusSeeOther)
}

func (h *Handler) renderReport(w http.ResponseWriter, r *http.Request, report application.AnalysisReport) {
	token := csrfToken(w, r)
	page := toAnalysisViewModel(report.Repository, &report, h.now())
	page.CSRFToken = token
	h.render(w, r, http.StatusOK, report.Repository.FullName, model.ViewAnalysis, token, templates.RepoDetail(page))
}

func (h *Handler) renderRepoError(w http.ResponseWriter, r *http.Request, repo model.Repository, err error) {
	h.logger.Warn("analysis failed", "repo", repo.FullName, "error", err)
	token := csrfToken(w, r)
	page := toAnalysisViewModel(repo, nil, h.now())
	page.CSRFToken = token
	page.Error = err.Error()
	if repo.FullName == "" {
		page.Repo.FullName = r.PathValue("owner") + "/" + r.PathValue("repo")
		page.Repo.DetailPath = repoPath(page.Repo.FullName)
	}
	h.render(w, r, statusForError(err), page.Repo.FullName, model.ViewAnalysis, token, templates.RepoDetail(page))
}

// Streaks renders activity metrics derived from the repository list.
func (h *Handler) Streaks(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewStreak)

	stats := application.ComputeStreaks(h.session.Repositories(), h.now())
	h.render(w, r, http.StatusOK, "Streaks", model.ViewStreak, csrfToken(w, r),
		templates.Streaks(toStreakViewModel(stats)))
}

// Settings renders the connected account.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewSettings)

	state := h.session.Snapshot()
	token := csrfToken(w, r)
	h.render(w, r, http.StatusOK, "Settings", model.ViewSettings, token, templates.Settings(vm.SettingsViewModel{
		User:               toUserViewModel(state.User),
		RepositoryCount:    len(state.Repositories),
		PersistenceEnabled: h.persistent,
		CSRFToken:          token,
	}))
}

// render wraps body in the layout and writes it with status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, title string, active model.View, token string, body templ.Component) {
	state := h.session.Snapshot()
	layout := templates.Layout(vm.LayoutViewModel{
		Title:     title,
		Active:    string(active),
		Connected: state.Connected,
		User:      toUserViewModel(state.User),
		CSRFToken: token,
	}, body)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := layout.Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", title, "error", err)
	}
}

// requireConnected redirects to the connect form when no account is loaded.
func (h *Handler) requireConnected(w http.ResponseWriter, r *http.Request) bool {
	if h.session.Connected() {
		return true
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return false
}

func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if validateCSRF(r) {
		return true
	}
	h.logger.Warn("csrf validation failed", "path", r.URL.Path)
	http.Error(w, "invalid CSRF token", http.StatusForbidden)
	return false
}

// statusForError maps an application error kind to the status of the page
// that reports it.
func statusForError(err error) int {
	var appErr *model.Error
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuth:
		return http.StatusUnauthorized
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindParse, model.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
