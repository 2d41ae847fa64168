package github

import (
	"context"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// GetBranch returns a branch with its head commit SHA.
func (c *Client) GetBranch(ctx context.Context, owner, repo, branch string) (model.Branch, error) {
	b, resp, err := c.gh.Repositories.GetBranch(ctx, owner, repo, branch, 1)
	if err != nil {
		return model.Branch{}, wrapError("get-branch", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/branches/"+branch, 1)

	return model.Branch{Name: b.GetName(), HeadSHA: b.GetCommit().GetSHA()}, nil
}

// CreateRef creates a fully-qualified ref (refs/heads/...) pointing at sha.
// GitHub rejects the call with 422 when the ref already exists.
func (c *Client) CreateRef(ctx context.Context, owner, repo, ref, sha string) error {
	_, resp, err := c.gh.Git.CreateRef(ctx, owner, repo, gh.CreateRef{Ref: ref, SHA: sha})
	if err != nil {
		return wrapError("create-ref", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/git/refs", 1)
	return nil
}

// CreatePullRequest opens a pull request and returns it with its web URL.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo string, pr driven.NewPullRequest) (model.PullRequest, error) {
	created, resp, err := c.gh.PullRequests.Create(ctx, owner, repo, &gh.NewPullRequest{
		Title: gh.Ptr(pr.Title),
		Head:  gh.Ptr(pr.Head),
		Base:  gh.Ptr(pr.Base),
		Body:  gh.Ptr(pr.Body),
	})
	if err != nil {
		return model.PullRequest{}, wrapError("create-pull-request", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/pulls", 1)

	return model.PullRequest{
		Number: created.GetNumber(),
		Title:  created.GetTitle(),
		URL:    created.GetHTMLURL(),
		Head:   created.GetHead().GetRef(),
		Base:   created.GetBase().GetRef(),
	}, nil
}
