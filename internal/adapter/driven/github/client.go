// Package github implements the HostingClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.HostingClient = (*Client)(nil)

// Options tunes the transport stack built by NewClient.
type Options struct {
	// BaseURL overrides the REST endpoint (GitHub Enterprise). Empty means api.github.com.
	BaseURL string
	// CacheReads enables ETag-based conditional request caching.
	CacheReads bool
	// WaitOnSecondaryLimit sleeps through secondary rate limits instead of failing.
	WaitOnSecondaryLimit bool
	// Timeout bounds each outbound request. Zero means no client-side timeout.
	Timeout time.Duration
}

// Client implements the driven.HostingClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client authenticated with token. The
// transport stack is, from the outside in:
//  1. go-github-ratelimit (only with WaitOnSecondaryLimit)
//  2. httpcache (only with CacheReads)
//  3. http.DefaultTransport
func NewClient(token string, opts Options) (*Client, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.CacheReads {
		cache := httpcache.NewMemoryCacheTransport()
		cache.Transport = transport
		transport = cache
	}

	httpClient := &http.Client{Transport: transport, Timeout: opts.Timeout}
	if opts.WaitOnSecondaryLimit {
		httpClient = github_ratelimit.NewClient(transport)
		httpClient.Timeout = opts.Timeout
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.github.com/"
	}
	return NewClientWithHTTPClient(httpClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	client := gh.NewClient(httpClient).WithAuthToken(token)
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// GetUser returns the profile of the token's owner.
func (c *Client) GetUser(ctx context.Context) (model.User, error) {
	u, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return model.User{}, wrapError("get-user", err)
	}
	logRateLimit(resp, "user", 1)

	return model.User{
		Login:      u.GetLogin(),
		Name:       u.GetName(),
		AvatarURL:  u.GetAvatarURL(),
		ProfileURL: u.GetHTMLURL(),
	}, nil
}

// ListRepositories returns the first page of the user's repositories sorted
// by last update. Only one page is requested.
func (c *Client) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, wrapError("list-repositories", err)
	}
	logRateLimit(resp, "user/repos", len(repos))

	result := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, mapRepository(r))
	}
	return result, nil
}

// mapRepository converts a go-github Repository to a domain model Repository.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) model.Repository {
	return model.Repository{
		ID:             r.GetID(),
		Name:           r.GetName(),
		FullName:       r.GetFullName(),
		Description:    r.GetDescription(),
		URL:            r.GetHTMLURL(),
		UpdatedAt:      r.GetUpdatedAt().Time,
		PushedAt:       r.GetPushedAt().Time,
		Stars:          r.GetStargazersCount(),
		Language:       r.GetLanguage(),
		IsFork:         r.GetFork(),
		IsPrivate:      r.GetPrivate(),
		DefaultBranch:  r.GetDefaultBranch(),
		OwnerLogin:     r.GetOwner().GetLogin(),
		OwnerAvatarURL: r.GetOwner().GetAvatarURL(),
	}
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}
