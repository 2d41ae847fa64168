package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// --- Mock implementations ---

type createRefCall struct {
	Owner, Repo, Ref, SHA string
}

type writeFileCall struct {
	Owner, Repo string
	Write       driven.FileWrite
}

type createPRCall struct {
	Owner, Repo string
	PR          driven.NewPullRequest
}

// mockHostingClient records every call in order. Unset funcs return zero values.
type mockHostingClient struct {
	mu    sync.Mutex
	calls []string

	getUser   func(ctx context.Context) (model.User, error)
	listRepos func(ctx context.Context) ([]model.Repository, error)
	contents  map[string][]model.ContentEntry // keyed by "owner/repo"
	files     map[string]string               // keyed by "owner/repo/path"
	fileErrs  map[string]error                // keyed by "owner/repo/path"
	branches  map[string]model.Branch         // keyed by branch name
	refErr    error
	writeErr  error
	prErr     error
	pr        model.PullRequest

	refs   []createRefCall
	writes []writeFileCall
	prs    []createPRCall
}

var _ driven.HostingClient = (*mockHostingClient)(nil)

func (m *mockHostingClient) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockHostingClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *mockHostingClient) GetUser(ctx context.Context) (model.User, error) {
	m.record("GetUser")
	if m.getUser == nil {
		return model.User{}, nil
	}
	return m.getUser(ctx)
}

func (m *mockHostingClient) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	m.record("ListRepositories")
	if m.listRepos == nil {
		return nil, nil
	}
	return m.listRepos(ctx)
}

func (m *mockHostingClient) ListContents(_ context.Context, owner, repo, _ string) ([]model.ContentEntry, error) {
	m.record("ListContents")
	return m.contents[owner+"/"+repo], nil
}

func (m *mockHostingClient) GetFileContent(_ context.Context, owner, repo, path string) (string, error) {
	m.record("GetFileContent:" + path)
	key := owner + "/" + repo + "/" + path
	if err, ok := m.fileErrs[key]; ok {
		return "", err
	}
	text, ok := m.files[key]
	if !ok {
		return "", &model.Error{Kind: model.KindNotFound, Op: "get-file", Message: "Not Found"}
	}
	return text, nil
}

func (m *mockHostingClient) GetBranch(_ context.Context, _, _, branch string) (model.Branch, error) {
	m.record("GetBranch")
	b, ok := m.branches[branch]
	if !ok {
		return model.Branch{}, &model.Error{Kind: model.KindNotFound, Op: "get-branch", Message: "Branch not found"}
	}
	return b, nil
}

func (m *mockHostingClient) CreateRef(_ context.Context, owner, repo, ref, sha string) error {
	m.record("CreateRef")
	if m.refErr != nil {
		return m.refErr
	}
	m.refs = append(m.refs, createRefCall{Owner: owner, Repo: repo, Ref: ref, SHA: sha})
	return nil
}

func (m *mockHostingClient) WriteFile(_ context.Context, owner, repo string, w driven.FileWrite) error {
	m.record("WriteFile")
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes = append(m.writes, writeFileCall{Owner: owner, Repo: repo, Write: w})
	return nil
}

func (m *mockHostingClient) CreatePullRequest(_ context.Context, owner, repo string, pr driven.NewPullRequest) (model.PullRequest, error) {
	m.record("CreatePullRequest")
	if m.prErr != nil {
		return model.PullRequest{}, m.prErr
	}
	m.prs = append(m.prs, createPRCall{Owner: owner, Repo: repo, PR: pr})
	out := m.pr
	out.Head, out.Base, out.Title = pr.Head, pr.Base, pr.Title
	return out, nil
}

// mockGenerator answers structured calls from structured and free-form calls
// from text, recording every request.
type mockGenerator struct {
	mu         sync.Mutex
	requests   []driven.GenerateRequest
	structured []string // consumed in order for requests with a schema
	text       string
	err        error
}

func (m *mockGenerator) Generate(_ context.Context, req driven.GenerateRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if req.Schema != nil {
		if len(m.structured) == 0 {
			return "", errors.New("no structured response queued")
		}
		out := m.structured[0]
		m.structured = m.structured[1:]
		return out, nil
	}
	return m.text, nil
}

func (m *mockGenerator) Requests() []driven.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.GenerateRequest(nil), m.requests...)
}

// jsonValidator accepts any syntactically valid JSON unless reject is set.
type jsonValidator struct {
	reject error
}

func (v jsonValidator) Validate(_ *driven.Schema, raw []byte) error {
	if v.reject != nil {
		return v.reject
	}
	if !json.Valid(raw) {
		return errors.New("invalid json")
	}
	return nil
}

// mockCredentialStore keeps credentials in memory.
type mockCredentialStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: make(map[string]string)}
}

func (m *mockCredentialStore) Set(_ context.Context, name, plaintext string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = plaintext
	return nil
}

func (m *mockCredentialStore) Get(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.values[name], nil
}

func (m *mockCredentialStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

// --- helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func demoRepo() model.Repository {
	return model.Repository{
		ID:            1,
		Name:          "demo",
		FullName:      "octocat/demo",
		Description:   "A demo project",
		Language:      "Go",
		DefaultBranch: "main",
		OwnerLogin:    "octocat",
	}
}

// connectedSession returns a session already holding client, with the given
// repositories loaded.
func connectedSession(client *mockHostingClient, repos ...model.Repository) *application.Session {
	s := application.NewSession(func(string) driven.HostingClient { return client }, nil, discardLogger())
	s.SetToken("test-token")
	s.SetProfile(model.User{Login: "octocat"}, repos)
	return s
}
