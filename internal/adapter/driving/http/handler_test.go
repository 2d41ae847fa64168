package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httphandler "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/http"
	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockHostingClient struct {
	mu      sync.Mutex
	user    model.User
	repos   []model.Repository
	userErr error
	files   map[string]string
	refErr  error
	writes  []driven.FileWrite
	prs     []driven.NewPullRequest
}

func (m *mockHostingClient) GetUser(_ context.Context) (model.User, error) {
	return m.user, m.userErr
}
func (m *mockHostingClient) ListRepositories(_ context.Context) ([]model.Repository, error) {
	return m.repos, nil
}
func (m *mockHostingClient) ListContents(_ context.Context, _, _, _ string) ([]model.ContentEntry, error) {
	entries := make([]model.ContentEntry, 0, len(m.files))
	for name := range m.files {
		entries = append(entries, model.ContentEntry{Name: name, Path: name, Type: "file"})
	}
	return entries, nil
}
func (m *mockHostingClient) GetFileContent(_ context.Context, _, _, path string) (string, error) {
	if text, ok := m.files[path]; ok {
		return text, nil
	}
	return "", &model.Error{Kind: model.KindNotFound, Message: "Not Found"}
}
func (m *mockHostingClient) GetBranch(_ context.Context, _, _, branch string) (model.Branch, error) {
	return model.Branch{Name: branch, HeadSHA: "abc123"}, nil
}
func (m *mockHostingClient) CreateRef(_ context.Context, _, _, _, _ string) error {
	return m.refErr
}
func (m *mockHostingClient) WriteFile(_ context.Context, _, _ string, w driven.FileWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, w)
	return nil
}
func (m *mockHostingClient) CreatePullRequest(_ context.Context, owner, repo string, pr driven.NewPullRequest) (model.PullRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prs = append(m.prs, pr)
	return model.PullRequest{
		Number: 7,
		Title:  pr.Title,
		URL:    "https://github.com/" + owner + "/" + repo + "/pull/7",
		Head:   pr.Head,
		Base:   pr.Base,
	}, nil
}

// mockGenerator answers by the shape of the requested schema.
type mockGenerator struct {
	markdown string
	err      error
}

func (g *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case req.Schema == nil:
		return g.markdown, nil
	case req.Schema.Type == driven.TypeArray:
		return `[{"id":"s1","type":"documentation","title":"Add CONTRIBUTING","description":"Explain the workflow","difficulty":"easy","estimatedTime":"15m"}]`, nil
	default:
		return `{"healthScore":64,"completeness":{"readme":true},"metrics":{"language":"Go","hasTests":true,"todoCount":2},"recommendations":["Add a LICENSE"]}`, nil
	}
}

type passValidator struct{}

func (passValidator) Validate(_ *driven.Schema, _ []byte) error { return nil }

// --- Test helpers ---

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRepos() []model.Repository {
	return []model.Repository{
		{ID: 1, Name: "api", FullName: "octocat/api", DefaultBranch: "main", Language: "Go",
			UpdatedAt: testNow.Add(-2 * 24 * time.Hour), PushedAt: testNow.Add(-2 * 24 * time.Hour)},
		{ID: 2, Name: "fork", FullName: "octocat/fork", DefaultBranch: "main", IsFork: true,
			UpdatedAt: testNow.Add(-60 * 24 * time.Hour)},
	}
}

type testServer struct {
	handler http.Handler
	session *application.Session
	client  *mockHostingClient
}

func setupServer(t *testing.T, client *mockHostingClient, gen *mockGenerator) *testServer {
	t.Helper()
	logger := discardLogger()
	session := application.NewSession(func(string) driven.HostingClient { return client }, nil, logger)
	genSvc := application.NewGenerationService(gen, passValidator{}, application.GenerationConfig{})
	workflow := application.NewPRWorkflow(session, application.PRWorkflowConfig{
		Sleep: func(context.Context, time.Duration) error { return nil },
	}, logger)

	h := httphandler.NewHandler(
		session,
		application.NewAnalysisService(session, genSvc, logger),
		application.NewArtifactService(session, genSvc, logger),
		workflow,
		application.NewHealthService(nil, session),
		logger,
	)
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return &testServer{
		handler: httphandler.ApplyMiddleware(mux, logger),
		session: session,
		client:  client,
	}
}

func connectedServer(t *testing.T, gen *mockGenerator) *testServer {
	t.Helper()
	client := &mockHostingClient{
		user:  model.User{Login: "octocat", Name: "The Octocat"},
		repos: testRepos(),
		files: map[string]string{"README.md": "# api", "go.mod": "module example.com/api"},
	}
	srv := setupServer(t, client, gen)
	require.NoError(t, srv.session.Connect(context.Background(), "ghp_test"))
	return srv
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

// --- Tests ---

func TestHealth(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})

	rec := srv.do(http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	var resp httphandler.HealthResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "disabled", resp.Database)
	assert.False(t, resp.Connected)
}

func TestRequestID_Propagated(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		userErr    error
		wantStatus int
		wantError  string
	}{
		{
			name:       "success",
			body:       `{"token":"ghp_abc"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid body",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "blank token",
			body:       `{"token":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rejected token",
			body:       `{"token":"ghp_bad"}`,
			userErr:    &model.Error{Kind: model.KindAuth, Message: "Bad credentials"},
			wantStatus: http.StatusUnauthorized,
			wantError:  "Bad credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockHostingClient{user: model.User{Login: "octocat"}, repos: testRepos(), userErr: tt.userErr}
			srv := setupServer(t, client, &mockGenerator{})

			rec := srv.do(http.MethodPost, "/api/v1/session", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp httphandler.SessionResponse
				decodeJSON(t, rec, &resp)
				assert.True(t, resp.Connected)
				require.NotNil(t, resp.User)
				assert.Equal(t, "octocat", resp.User.Login)
				assert.Equal(t, "octocat", resp.User.DisplayName)
				assert.Equal(t, 2, resp.RepositoryCount)
				return
			}
			assert.False(t, srv.session.Connected())
			if tt.wantError != "" {
				var resp map[string]string
				decodeJSON(t, rec, &resp)
				assert.Equal(t, tt.wantError, resp["error"])
			}
		})
	}
}

func TestLogout(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})

	rec := srv.do(http.MethodDelete, "/api/v1/session", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(http.MethodGet, "/api/v1/session", "")
	var resp httphandler.SessionResponse
	decodeJSON(t, rec, &resp)
	assert.False(t, resp.Connected)
	assert.Nil(t, resp.User)
}

func TestSetView(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})

	rec := srv.do(http.MethodPut, "/api/v1/session/view", `{"view":"streak"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.ViewStreak, srv.session.Snapshot().View)

	rec = srv.do(http.MethodPut, "/api/v1/session/view", `{"view":"nowhere"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRepos(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantNames  []string
	}{
		{name: "all", query: "", wantStatus: http.StatusOK, wantNames: []string{"octocat/api", "octocat/fork"}},
		{name: "owned", query: "?filter=owned", wantStatus: http.StatusOK, wantNames: []string{"octocat/api"}},
		{name: "fork alias", query: "?filter=fork", wantStatus: http.StatusOK, wantNames: []string{"octocat/fork"}},
		{name: "unknown filter", query: "?filter=starred", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := connectedServer(t, &mockGenerator{})

			rec := srv.do(http.MethodGet, "/api/v1/repos"+tt.query, "")

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp httphandler.DashboardResponse
			decodeJSON(t, rec, &resp)
			names := make([]string, 0, len(resp.Repositories))
			for _, r := range resp.Repositories {
				names = append(names, r.FullName)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, 2, resp.Total)
		})
	}
}

func TestListRepos_RequiresSession(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})

	for _, path := range []string{"/api/v1/repos", "/api/v1/streaks"} {
		rec := srv.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAnalyze(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})

	rec := srv.do(http.MethodGet, "/api/v1/analysis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/repos/octocat/api/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.AnalysisResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "octocat/api", resp.Repository)
	assert.InDelta(t, 64.0, resp.HealthScore, 0.001)
	assert.True(t, resp.Completeness.Readme)
	assert.Contains(t, resp.Missing, "LICENSE")
	assert.Equal(t, "Go", resp.Metrics.Language)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "documentation", resp.Suggestions[0].Type)

	rec = srv.do(http.MethodGet, "/api/v1/analysis", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyze_UnknownRepo(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})

	rec := srv.do(http.MethodPost, "/api/v1/repos/octocat/missing/analysis", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "not_found", resp["kind"])
}

func TestAnalyze_GeneratorFailure(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{err: &model.Error{Kind: model.KindProvider, Message: "quota exceeded"}})

	rec := srv.do(http.MethodPost, "/api/v1/repos/octocat/api/analysis", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListTemplates(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})

	rec := srv.do(http.MethodGet, "/api/v1/templates", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []httphandler.TemplateResponse
	decodeJSON(t, rec, &resp)
	require.Len(t, resp, len(model.ArtifactTemplates))
	assert.Equal(t, "README.md", resp[0].ID)
	assert.Equal(t, ".github/ISSUE_TEMPLATE/bug_report.md", resp[1].Path)
}

func TestGenerateArtifact(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{markdown: "# Contributing\n"})

	rec := srv.do(http.MethodPost, "/api/v1/artifacts",
		`{"repository":"octocat/api","template_id":"CONTRIBUTING.md","mode":"contextual"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.ArtifactResponse
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "# Contributing\n", resp.Content)
	assert.Equal(t, "contextual", resp.Mode)
	assert.Equal(t, "go.mod", resp.ManifestFile)
	assert.Equal(t, "CONTRIBUTING.md", resp.Path)
}

func TestGenerateArtifact_Invalid(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{markdown: "x"})

	rec := srv.do(http.MethodPost, "/api/v1/artifacts",
		`{"repository":"octocat/api","template_id":"NOPE.md"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodPost, "/api/v1/artifacts",
		`{"repository":"octocat/api","template_id":"README.md","mode":"freestyle"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.True(t, strings.HasPrefix(resp["error"], "Generation failed: "))
}

func TestPRDraftAndExecute(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})

	rec := srv.do(http.MethodPost, "/api/v1/pr/draft", `{"template_id":"SECURITY.md"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var draft httphandler.DraftResponse
	decodeJSON(t, rec, &draft)
	assert.Equal(t, "Improvement: Add SECURITY.md", draft.Title)
	assert.True(t, strings.HasPrefix(draft.Branch, application.BranchPrefix+"-"))
	assert.Equal(t, "SECURITY.md", draft.FilePath)

	body, err := json.Marshal(httphandler.ExecutePRRequest{
		Repository: "octocat/api",
		Draft:      draft,
		Content:    "# Security policy\n",
	})
	require.NoError(t, err)

	rec = srv.do(http.MethodPost, "/api/v1/pr", string(body))
	require.Equal(t, http.StatusCreated, rec.Code)
	var result httphandler.PRResultResponse
	decodeJSON(t, rec, &result)
	assert.Equal(t, "https://github.com/octocat/api/pull/7", result.URL)
	assert.Equal(t, draft.Branch, result.Branch)
	assert.Equal(t, "main", result.Base)

	require.Len(t, srv.client.writes, 1)
	assert.Equal(t, "# Security policy\n", srv.client.writes[0].Content)
	assert.Equal(t, "main", srv.client.writes[0].ShaLookupBranch)
}

func TestExecutePR_StepFailure(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})
	srv.client.refErr = &model.Error{Kind: model.KindProvider, Message: "Reference already exists"}

	body := `{"repository":"octocat/api","content":"# x","draft":{"template_id":"README.md","title":"t","branch":"b","file_path":"README.md","commit_message":"m"}}`
	rec := srv.do(http.MethodPost, "/api/v1/pr", body)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Reference already exists", resp["error"])
	assert.Equal(t, application.StepCreateBranch, resp["step"])
	assert.Empty(t, srv.client.writes)
	assert.Empty(t, srv.client.prs)
}

func TestExecutePR_EmptyContent(t *testing.T) {
	srv := connectedServer(t, &mockGenerator{})

	body := `{"repository":"octocat/api","content":"  ","draft":{"title":"t","branch":"b","file_path":"README.md","commit_message":"m"}}`
	rec := srv.do(http.MethodPost, "/api/v1/pr", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutatingAPI_RejectsForgedRequests(t *testing.T) {
	prBody := `{"repository":"octocat/api","content":"pwned","draft":{"template_id":"README.md","title":"t","branch":"b","file_path":".github/workflows/x.yml","commit_message":"m"}}`

	tests := []struct {
		name        string
		contentType string
		headers     map[string]string
		wantStatus  int
	}{
		{"foreign origin", "text/plain", map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"foreign origin with json", "application/json", map[string]string{"Origin": "https://evil.example"}, http.StatusForbidden},
		{"opaque origin", "text/plain", map[string]string{"Origin": "null"}, http.StatusForbidden},
		{"cross-site fetch metadata", "application/json", map[string]string{"Sec-Fetch-Site": "cross-site"}, http.StatusForbidden},
		{"same origin plain text", "text/plain", map[string]string{"Origin": "http://example.com"}, http.StatusUnsupportedMediaType},
		{"form encoded", "application/x-www-form-urlencoded", nil, http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := connectedServer(t, &mockGenerator{})
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pr", strings.NewReader(prBody))
			req.Header.Set("Content-Type", tt.contentType)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()

			srv.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Empty(t, srv.client.writes)
			assert.Empty(t, srv.client.prs)
		})
	}
}

func TestMutatingAPI_AllowsSameOriginJSON(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{user: model.User{Login: "octocat"}, repos: testRepos()}, &mockGenerator{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"token":"ghp_test"}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	rec := httptest.NewRecorder()

	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.session.Connected())
}

func TestReadOnlyAPI_AllowsCrossOriginGet(t *testing.T) {
	srv := setupServer(t, &mockHostingClient{}, &mockGenerator{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPanicRecovery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	})
	handler := httphandler.ApplyMiddleware(mux, discardLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
