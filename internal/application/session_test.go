package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

func newSession(client *mockHostingClient, creds driven.CredentialStore) (*application.Session, *[]string) {
	var tokens []string
	s := application.NewSession(func(token string) driven.HostingClient {
		tokens = append(tokens, token)
		return client
	}, creds, discardLogger())
	return s, &tokens
}

func TestSession_ClientRequiresToken(t *testing.T) {
	s, _ := newSession(&mockHostingClient{}, nil)

	_, err := s.Client()
	require.Error(t, err)
	assert.Equal(t, model.KindAuth, model.KindOf(err))
}

func TestSession_ConnectLoadsProfileAndPersistsToken(t *testing.T) {
	client := &mockHostingClient{
		getUser: func(context.Context) (model.User, error) { return model.User{Login: "octocat"}, nil },
		listRepos: func(context.Context) ([]model.Repository, error) {
			return []model.Repository{demoRepo()}, nil
		},
	}
	creds := newMockCredentialStore()
	s, tokens := newSession(client, creds)

	require.NoError(t, s.Connect(context.Background(), "  ghp_abc  "))

	assert.Equal(t, []string{"ghp_abc"}, *tokens)
	assert.True(t, s.Connected())
	st := s.Snapshot()
	assert.Equal(t, "octocat", st.User.Login)
	require.Len(t, st.Repositories, 1)
	assert.Equal(t, model.ViewDashboard, st.View)
	assert.ElementsMatch(t, []string{"GetUser", "ListRepositories"}, client.Calls())

	stored, err := creds.Get(context.Background(), driven.SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc", stored)
}

func TestSession_ConnectFailureClearsEverything(t *testing.T) {
	client := &mockHostingClient{
		getUser: func(context.Context) (model.User, error) {
			return model.User{}, &model.Error{Kind: model.KindAuth, Message: "Bad credentials"}
		},
		listRepos: func(context.Context) ([]model.Repository, error) { return nil, nil },
	}
	creds := newMockCredentialStore()
	require.NoError(t, creds.Set(context.Background(), driven.SessionTokenKey, "stale"))
	s, _ := newSession(client, creds)

	err := s.Connect(context.Background(), "ghp_bad")
	require.Error(t, err)
	assert.Equal(t, model.KindAuth, model.KindOf(err))
	assert.Equal(t, "Bad credentials", err.Error())

	assert.False(t, s.Connected())
	_, err = s.Client()
	require.Error(t, err)

	stored, _ := creds.Get(context.Background(), driven.SessionTokenKey)
	assert.Empty(t, stored)
}

func TestSession_ConnectRejectsEmptyToken(t *testing.T) {
	client := &mockHostingClient{}
	s, tokens := newSession(client, nil)

	err := s.Connect(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
	assert.Empty(t, *tokens)
	assert.Empty(t, client.Calls())
}

func TestSession_Restore(t *testing.T) {
	client := &mockHostingClient{
		getUser: func(context.Context) (model.User, error) { return model.User{Login: "octocat"}, nil },
	}

	t.Run("no store", func(t *testing.T) {
		s, _ := newSession(client, nil)
		found, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("no token stored", func(t *testing.T) {
		s, _ := newSession(client, newMockCredentialStore())
		found, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("key not configured", func(t *testing.T) {
		creds := newMockCredentialStore()
		creds.getErr = driven.ErrEncryptionKeyNotSet
		s, _ := newSession(client, creds)
		found, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("token stored", func(t *testing.T) {
		creds := newMockCredentialStore()
		require.NoError(t, creds.Set(context.Background(), driven.SessionTokenKey, "ghp_saved"))
		s, tokens := newSession(client, creds)

		found, err := s.Restore(context.Background())
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"ghp_saved"}, *tokens)
		assert.True(t, s.Connected())
	})

	t.Run("store error", func(t *testing.T) {
		creds := newMockCredentialStore()
		creds.getErr = errors.New("disk on fire")
		s, _ := newSession(client, creds)
		_, err := s.Restore(context.Background())
		require.Error(t, err)
	})
}

func TestSession_LogoutClearsStateAndToken(t *testing.T) {
	creds := newMockCredentialStore()
	client := &mockHostingClient{
		getUser: func(context.Context) (model.User, error) { return model.User{Login: "octocat"}, nil },
	}
	s, _ := newSession(client, creds)
	require.NoError(t, s.Connect(context.Background(), "ghp_abc"))
	s.SetView(model.ViewSettings)
	s.SetAnalysis(application.AnalysisReport{Repository: demoRepo()})

	s.Logout(context.Background())

	st := s.Snapshot()
	assert.False(t, st.Connected)
	assert.Equal(t, model.ViewDashboard, st.View)
	assert.Nil(t, st.Analysis)
	stored, _ := creds.Get(context.Background(), driven.SessionTokenKey)
	assert.Empty(t, stored)
}

func TestSession_AnalysisIsReplacedNotAccumulated(t *testing.T) {
	s := connectedSession(&mockHostingClient{}, demoRepo())

	s.SetAnalysis(application.AnalysisReport{Analysis: model.Analysis{RepoName: "first"}})
	s.SetAnalysis(application.AnalysisReport{Analysis: model.Analysis{RepoName: "second"}})

	report, ok := s.Analysis()
	require.True(t, ok)
	assert.Equal(t, "second", report.Analysis.RepoName)
}

func TestSession_Repository(t *testing.T) {
	other := demoRepo()
	other.FullName = "someone/demo2"
	other.Name = "demo2"
	s := connectedSession(&mockHostingClient{}, demoRepo(), other)

	r, err := s.Repository("someone/demo2")
	require.NoError(t, err)
	assert.Equal(t, "demo2", r.Name)

	r, err = s.Repository("demo")
	require.NoError(t, err)
	assert.Equal(t, "octocat/demo", r.FullName)

	_, err = s.Repository("missing")
	require.Error(t, err)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}
