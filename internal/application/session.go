package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

const connectFailed = "Failed to connect to GitHub"

// AnalysisReport is the most recent repository analysis held by the session.
type AnalysisReport struct {
	Repository  model.Repository
	Analysis    model.Analysis
	Suggestions []model.Suggestion
	// SuggestionError is set when the analysis succeeded but suggestions did not.
	SuggestionError string
}

// SessionState is a point-in-time copy of the session for rendering.
type SessionState struct {
	Connected    bool
	User         model.User
	Repositories []model.Repository
	View         model.View
	SelectedRepo string
	Analysis     *AnalysisReport
}

// Session is the single source of truth for the signed-in user: the token,
// the hosting client built from it, the fetched profile and repositories,
// and UI selections. All state changes go through its transitions. The
// hosting client is hot-swapped under the lock when the token changes.
type Session struct {
	mu        sync.RWMutex
	token     string
	client    driven.HostingClient
	user      *model.User
	repos     []model.Repository
	view      model.View
	selected  string
	analysis  *AnalysisReport
	newClient driven.HostingClientFactory
	creds     driven.CredentialStore // nil disables token persistence.
	logger    *slog.Logger
}

// NewSession creates an empty session. creds may be nil.
func NewSession(newClient driven.HostingClientFactory, creds driven.CredentialStore, logger *slog.Logger) *Session {
	return &Session{
		newClient: newClient,
		creds:     creds,
		view:      model.ViewDashboard,
		logger:    logger,
	}
}

// SetToken installs a token and the hosting client built for it. Any
// profile, repositories and analysis from a previous token are dropped.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.token = token
	if token != "" {
		s.client = s.newClient(token)
	}
}

// SetProfile records the fetched profile and repository list.
func (s *Session) SetProfile(user model.User, repos []model.Repository) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
	s.repos = repos
}

// Clear drops the token and everything derived from it.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.token = ""
	s.client = nil
	s.user = nil
	s.repos = nil
	s.view = model.ViewDashboard
	s.selected = ""
	s.analysis = nil
}

// Connect installs token, then fetches profile and repositories in parallel.
// Both must succeed; otherwise the session is cleared and the persisted
// token removed.
func (s *Session) Connect(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return validationError("connect", "token is required")
	}

	s.SetToken(token)
	client, err := s.Client()
	if err != nil {
		return err
	}

	var (
		user  model.User
		repos []model.Repository
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = client.GetUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = client.ListRepositories(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.Clear()
		s.forgetToken(ctx)

		msg := err.Error()
		if msg == "" {
			msg = connectFailed
		}
		s.logger.Warn("connect failed", "error", err)
		return &model.Error{Kind: model.KindAuth, Op: "connect", Message: msg, Err: err}
	}

	s.SetProfile(user, repos)
	s.rememberToken(ctx, token)

	s.logger.Info("session connected", "login", user.Login, "repositories", len(repos))
	return nil
}

// Restore reconnects with the persisted token, if any. It reports whether a
// token was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.creds == nil {
		return false, nil
	}

	token, err := s.creds.Get(ctx, driven.SessionTokenKey)
	if err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return false, nil
		}
		return false, err
	}
	if token == "" {
		return false, nil
	}

	return true, s.Connect(ctx, token)
}

// Logout clears the session and the persisted token.
func (s *Session) Logout(ctx context.Context) {
	s.Clear()
	s.forgetToken(ctx)
	s.logger.Info("session cleared")
}

func (s *Session) rememberToken(ctx context.Context, token string) {
	if s.creds == nil {
		return
	}
	if err := s.creds.Set(ctx, driven.SessionTokenKey, token); err != nil {
		if !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			s.logger.Error("failed to persist token", "error", err)
		}
	}
}

func (s *Session) forgetToken(ctx context.Context) {
	if s.creds == nil {
		return
	}
	if err := s.creds.Delete(ctx, driven.SessionTokenKey); err != nil {
		s.logger.Error("failed to delete persisted token", "error", err)
	}
}

// Client returns the hosting client for the current token. It fails with an
// auth error when no token is set.
func (s *Session) Client() (driven.HostingClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || s.client == nil {
		return nil, &model.Error{Kind: model.KindAuth, Op: "session", Message: "not connected: a GitHub token is required"}
	}
	return s.client, nil
}

// Connected reports whether a profile has been loaded for a token.
func (s *Session) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Repositories returns a copy of the fetched repository list.
func (s *Session) Repositories() []model.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Repository, len(s.repos))
	copy(out, s.repos)
	return out
}

// Repository looks up a fetched repository by full name or short name.
func (s *Session) Repository(key string) (model.Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if repo, ok := model.FindRepository(s.repos, key); ok {
		return repo, nil
	}
	return model.Repository{}, &model.Error{Kind: model.KindNotFound, Op: "resolve-repository", Message: "Repository not found"}
}

// SetView switches the active dashboard section.
func (s *Session) SetView(v model.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// SelectRepository records the repository the analysis and generator views act on.
func (s *Session) SelectRepository(fullName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = fullName
}

// SetAnalysis replaces the held analysis report.
func (s *Session) SetAnalysis(report AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = &report
}

// Analysis returns the held analysis report, if any.
func (s *Session) Analysis() (AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.analysis == nil {
		return AnalysisReport{}, false
	}
	return *s.analysis, true
}

// Snapshot returns a copy of the session for rendering.
func (s *Session) Snapshot() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := SessionState{
		Connected:    s.token != "" && s.user != nil,
		Repositories: make([]model.Repository, len(s.repos)),
		View:         s.view,
		SelectedRepo: s.selected,
	}
	copy(st.Repositories, s.repos)
	if s.user != nil {
		st.User = *s.user
	}
	if s.analysis != nil {
		report := *s.analysis
		st.Analysis = &report
	}
	return st
}
