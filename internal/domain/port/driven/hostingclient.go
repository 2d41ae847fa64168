package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// ErrNoInlineContent is returned when a file read yields metadata but no
// base64 body (for example a directory or an oversized blob).
var ErrNoInlineContent = errors.New("file has no inline content")

// FileWrite describes a create-or-update of one file on a branch.
type FileWrite struct {
	Path    string
	Message string
	Content string // UTF-8 text; the adapter handles transport encoding.
	Branch  string // Branch the commit lands on.
	// ShaLookupBranch is the branch used to find the existing file's blob SHA.
	// Empty means Branch.
	ShaLookupBranch string
}

// NewPullRequest is the payload for opening a pull request.
type NewPullRequest struct {
	Title string
	Head  string
	Base  string
	Body  string
}

// HostingClient defines the driven port for the code-hosting REST API.
// Every call is authenticated with the token the client was built with.
// Errors are *model.Error values whose Message is the provider's own text.
type HostingClient interface {
	GetUser(ctx context.Context) (model.User, error)
	// ListRepositories returns at most one page (100) of the user's
	// repositories, most recently updated first.
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	// ListContents lists a directory. An empty path lists the root.
	ListContents(ctx context.Context, owner, repo, path string) ([]model.ContentEntry, error)
	// GetFileContent returns the decoded UTF-8 text of a file on the default branch.
	GetFileContent(ctx context.Context, owner, repo, path string) (string, error)
	GetBranch(ctx context.Context, owner, repo, branch string) (model.Branch, error)
	// CreateRef creates a ref such as "refs/heads/topic" pointing at sha.
	CreateRef(ctx context.Context, owner, repo, ref, sha string) error
	WriteFile(ctx context.Context, owner, repo string, w FileWrite) error
	CreatePullRequest(ctx context.Context, owner, repo string, pr NewPullRequest) (model.PullRequest, error)
}

// HostingClientFactory builds a HostingClient for a token.
type HostingClientFactory func(token string) HostingClient
