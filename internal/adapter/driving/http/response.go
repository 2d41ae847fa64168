package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body. Kind and Step are set
// for tagged application errors.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Step  string `json:"step,omitempty"`
}

// statusForKind maps an application error kind to an HTTP status.
func statusForKind(kind model.ErrorKind) int {
	switch kind {
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

// --- Request bodies ---

// ConnectRequest is the body of POST /api/v1/session.
type ConnectRequest struct {
	Token string `json:"token"`
}

// ViewRequest is the body of PUT /api/v1/session/view.
type ViewRequest struct {
	View string `json:"view"`
}

// ArtifactRequest is the body of POST /api/v1/artifacts.
type ArtifactRequest struct {
	Repository string `json:"repository"`
	TemplateID string `json:"template_id"`
	Mode       string `json:"mode"`
}

// DraftRequest is the body of POST /api/v1/pr/draft.
type DraftRequest struct {
	TemplateID string `json:"template_id"`
}

// ExecutePRRequest is the body of POST /api/v1/pr. Draft is the (possibly
// edited) draft returned by the draft endpoint.
type ExecutePRRequest struct {
	Repository string        `json:"repository"`
	Draft      DraftResponse `json:"draft"`
	Content    string        `json:"content"`
}

// --- Response bodies ---

// HealthResponse is the JSON representation of a health check.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Connected bool   `json:"connected"`
	Time      string `json:"time"`
}

// UserResponse is the JSON representation of the signed-in account.
type UserResponse struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	ProfileURL  string `json:"profile_url"`
}

// SessionResponse is the JSON representation of the session state.
type SessionResponse struct {
	Connected       bool          `json:"connected"`
	User            *UserResponse `json:"user,omitempty"`
	View            string        `json:"view"`
	SelectedRepo    string        `json:"selected_repo,omitempty"`
	RepositoryCount int           `json:"repository_count"`
	HasAnalysis     bool          `json:"has_analysis"`
}

// RepoResponse is the JSON representation of a repository card.
type RepoResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	Language      string `json:"language"`
	Stars         int    `json:"stars"`
	IsFork        bool   `json:"is_fork"`
	IsPrivate     bool   `json:"is_private"`
	DefaultBranch string `json:"default_branch"`
	UpdatedAt     string `json:"updated_at"`
	PushedAt      string `json:"pushed_at,omitempty"`
	Dormancy      string `json:"dormancy"`
}

// DashboardResponse is the filtered repository list with bucket totals.
type DashboardResponse struct {
	Filter       string         `json:"filter"`
	Total        int            `json:"total"`
	Totals       map[string]int `json:"totals"`
	Repositories []RepoResponse `json:"repositories"`
}

// CompletenessResponse is the JSON representation of documentation coverage.
type CompletenessResponse struct {
	Readme        bool `json:"readme"`
	Contributing  bool `json:"contributing"`
	License       bool `json:"license"`
	Security      bool `json:"security"`
	Changelog     bool `json:"changelog"`
	CodeOfConduct bool `json:"code_of_conduct"`
}

// MetricsResponse is the JSON representation of inferred stack metrics.
type MetricsResponse struct {
	Language       string `json:"language"`
	Framework      string `json:"framework,omitempty"`
	PackageManager string `json:"package_manager,omitempty"`
	HasTests       bool   `json:"has_tests"`
	TodoCount      int    `json:"todo_count"`
}

// SuggestionResponse is the JSON representation of one improvement suggestion.
type SuggestionResponse struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime string `json:"estimated_time"`
}

// AnalysisResponse is the JSON representation of an analysis report.
type AnalysisResponse struct {
	Repository      string               `json:"repository"`
	HealthScore     float64              `json:"health_score"`
	Completeness    CompletenessResponse `json:"completeness"`
	Missing         []string             `json:"missing"`
	Metrics         MetricsResponse      `json:"metrics"`
	Recommendations []string             `json:"recommendations"`
	Suggestions     []SuggestionResponse `json:"suggestions"`
	SuggestionError string               `json:"suggestion_error,omitempty"`
}

// TemplateResponse is the JSON representation of an artifact template.
type TemplateResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path"`
}

// ArtifactResponse is the JSON representation of generated documentation.
type ArtifactResponse struct {
	Repository   string `json:"repository"`
	TemplateID   string `json:"template_id"`
	Path         string `json:"path"`
	Mode         string `json:"mode"`
	Content      string `json:"content"`
	ManifestFile string `json:"manifest_file,omitempty"`
}

// DraftResponse is the JSON representation of a PR draft.
type DraftResponse struct {
	TemplateID    string `json:"template_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Branch        string `json:"branch"`
	FilePath      string `json:"file_path"`
	CommitMessage string `json:"commit_message"`
}

// PRResultResponse is the JSON representation of an opened pull request.
type PRResultResponse struct {
	Branch string `json:"branch"`
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Base   string `json:"base"`
}

// DayActivityResponse is one day of the weekly activity chart.
type DayActivityResponse struct {
	Date    string `json:"date"`
	Weekday string `json:"weekday"`
	Pushes  int    `json:"pushes"`
}

// StreakResponse is the JSON representation of streak metrics.
type StreakResponse struct {
	CurrentStreak int                   `json:"current_streak"`
	BestStreak    int                   `json:"best_streak"`
	ActiveRepos   int                   `json:"active_repos"`
	ActiveDays    int                   `json:"active_days"`
	GoalPercent   int                   `json:"goal_percent"`
	LastWeek      []DayActivityResponse `json:"last_week"`
}

// --- Conversions ---

func toSessionResponse(s application.SessionState) SessionResponse {
	resp := SessionResponse{
		Connected:       s.Connected,
		View:            string(s.View),
		SelectedRepo:    s.SelectedRepo,
		RepositoryCount: len(s.Repositories),
		HasAnalysis:     s.Analysis != nil,
	}
	if s.Connected {
		resp.User = &UserResponse{
			Login:       s.User.Login,
			Name:        s.User.Name,
			DisplayName: s.User.DisplayName(),
			AvatarURL:   s.User.AvatarURL,
			ProfileURL:  s.User.ProfileURL,
		}
	}
	return resp
}

func toRepoResponse(r model.Repository, dormancy model.Dormancy) RepoResponse {
	resp := RepoResponse{
		ID:            r.ID,
		Name:          r.Name,
		FullName:      r.FullName,
		Description:   r.Description,
		URL:           r.URL,
		Language:      r.Language,
		Stars:         r.Stars,
		IsFork:        r.IsFork,
		IsPrivate:     r.IsPrivate,
		DefaultBranch: r.DefaultBranch,
		UpdatedAt:     r.UpdatedAt.UTC().Format(time.RFC3339),
		Dormancy:      string(dormancy),
	}
	if !r.PushedAt.IsZero() {
		resp.PushedAt = r.PushedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toDashboardResponse(d application.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Filter:       string(d.Filter),
		Total:        d.Total,
		Totals:       make(map[string]int, len(d.Totals)),
		Repositories: make([]RepoResponse, 0, len(d.Cards)),
	}
	for k, v := range d.Totals {
		resp.Totals[string(k)] = v
	}
	for _, c := range d.Cards {
		resp.Repositories = append(resp.Repositories, toRepoResponse(c.Repository, c.Dormancy))
	}
	return resp
}

func toAnalysisResponse(r application.AnalysisReport) AnalysisResponse {
	a := r.Analysis
	resp := AnalysisResponse{
		Repository:  r.Repository.FullName,
		HealthScore: a.HealthScore,
		Completeness: CompletenessResponse{
			Readme:        a.Completeness.Readme,
			Contributing:  a.Completeness.Contributing,
			License:       a.Completeness.License,
			Security:      a.Completeness.Security,
			Changelog:     a.Completeness.Changelog,
			CodeOfConduct: a.Completeness.CodeOfConduct,
		},
		Missing: a.Completeness.Missing(),
		Metrics: MetricsResponse{
			Language:       a.Metrics.Language,
			Framework:      a.Metrics.Framework,
			PackageManager: a.Metrics.PackageManager,
			HasTests:       a.Metrics.HasTests,
			TodoCount:      a.Metrics.TodoCount,
		},
		Recommendations: a.Recommendations,
		Suggestions:     make([]SuggestionResponse, 0, len(r.Suggestions)),
		SuggestionError: r.SuggestionError,
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []string{}
	}
	for _, s := range r.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionResponse{
			ID:            s.ID,
			Type:          string(s.Category),
			Title:         s.Title,
			Description:   s.Description,
			Difficulty:    string(s.Difficulty),
			EstimatedTime: s.EstimatedTime,
		})
	}
	return resp
}

func toDraftResponse(d model.PRDraft) DraftResponse {
	return DraftResponse{
		TemplateID:    d.TemplateID,
		Title:         d.Title,
		Description:   d.Description,
		Branch:        d.Branch,
		FilePath:      d.FilePath,
		CommitMessage: d.CommitMessage,
	}
}

func (d DraftResponse) toModel() model.PRDraft {
	return model.PRDraft{
		TemplateID:    d.TemplateID,
		Title:         d.Title,
		Description:   d.Description,
		Branch:        d.Branch,
		FilePath:      d.FilePath,
		CommitMessage: d.CommitMessage,
	}
}

func toStreakResponse(s application.StreakStats) StreakResponse {
	resp := StreakResponse{
		CurrentStreak: s.CurrentStreak,
		BestStreak:    s.BestStreak,
		ActiveRepos:   s.ActiveRepos,
		ActiveDays:    s.ActiveDays,
		GoalPercent:   s.GoalPercent,
		LastWeek:      make([]DayActivityResponse, 0, len(s.LastWeek)),
	}
	for _, d := range s.LastWeek {
		resp.LastWeek = append(resp.LastWeek, DayActivityResponse{
			Date:    d.Date.Format(time.DateOnly),
			Weekday: d.Weekday,
			Pushes:  d.Pushes,
		})
	}
	return resp
}
