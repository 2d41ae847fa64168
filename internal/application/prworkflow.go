package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// Workflow step names, in execution order. A failed run reports the step in
// the error's Op.
const (
	StepResolveRepository = "resolve-repository"
	StepFetchBase         = "fetch-base"
	StepCreateBranch      = "create-branch"
	StepAwaitReplication  = "await-replication"
	StepWriteFile         = "write-file"
	StepOpenPullRequest   = "open-pull-request"
)

const (
	// BranchPrefix starts every generated head branch name.
	BranchPrefix = "gitmomentum-improve"
	// DefaultReplicationDelay is the pause between creating the branch and
	// writing to it.
	DefaultReplicationDelay = 2 * time.Second

	tokenScopeError = "Resource not accessible by personal access token"
	tokenScopeHint  = "Permission Denied: Ensure your token has 'Contents' and 'Pull Requests' Read/Write access."
)

// lastBranchMillis is the most recent timestamp handed out as a branch
// suffix. Suffixes strictly increase across the process.
var lastBranchMillis atomic.Int64

// nextBranchMillis returns now in Unix milliseconds, bumped past the last
// value issued so two calls never share a suffix.
func nextBranchMillis(now time.Time) int64 {
	want := now.UnixMilli()
	for {
		last := lastBranchMillis.Load()
		next := want
		if next <= last {
			next = last + 1
		}
		if lastBranchMillis.CompareAndSwap(last, next) {
			return next
		}
	}
}

// PRWorkflowConfig tunes the workflow. Zero values use the defaults.
type PRWorkflowConfig struct {
	Delay time.Duration
	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// PRWorkflow creates a branch, commits one file to it and opens a pull
// request, in that order. It is at-most-once: nothing is retried and a
// branch left behind by a later failure is not deleted.
type PRWorkflow struct {
	session *Session
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	logger  *slog.Logger
}

// NewPRWorkflow creates a PRWorkflow.
func NewPRWorkflow(session *Session, cfg PRWorkflowConfig, logger *slog.Logger) *PRWorkflow {
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultReplicationDelay
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	return &PRWorkflow{session: session, delay: cfg.Delay, sleep: cfg.Sleep, logger: logger}
}

// PrepareDraft builds the reviewable pull request metadata for a template.
func (w *PRWorkflow) PrepareDraft(templateID string, now time.Time) (model.PRDraft, error) {
	tmpl, err := model.LookupTemplate(templateID)
	if err != nil {
		return model.PRDraft{}, validationError("prepare-draft", "%s", err.Error())
	}

	return model.PRDraft{
		TemplateID: tmpl.ID,
		Title:      "Improvement: Add " + tmpl.Label,
		Description: fmt.Sprintf(`This PR adds a contextual %s generated by AI after analyzing the codebase manifests and structure.

Goal: Enhance repository documentation and maintain project hygiene.

Generated by **GitMomentum**.`, tmpl.Label),
		Branch:        fmt.Sprintf("%s-%d", BranchPrefix, nextBranchMillis(now)),
		FilePath:      tmpl.Path,
		CommitMessage: fmt.Sprintf("docs: add %s via GitMomentum", tmpl.ID),
	}, nil
}

// Execute runs the workflow for the repository identified by repoKey and
// aborts on the first failing step.
func (w *PRWorkflow) Execute(ctx context.Context, repoKey string, draft model.PRDraft, content string) (model.PRResult, error) {
	if err := validateDraft(draft, content); err != nil {
		return model.PRResult{}, err
	}

	client, err := w.session.Client()
	if err != nil {
		return model.PRResult{}, err
	}

	// resolve-repository
	repo, err := w.session.Repository(repoKey)
	if err != nil {
		return model.PRResult{}, stepError(StepResolveRepository, err)
	}
	owner, name, err := repoCoordinates(repo)
	if err != nil {
		return model.PRResult{}, stepError(StepResolveRepository, err)
	}
	base := repo.DefaultBranch
	if base == "" {
		return model.PRResult{}, stepError(StepResolveRepository,
			validationError(StepResolveRepository, "repository %s has no default branch", repo.FullName))
	}
	log := w.logger.With("repo", repo.FullName, "branch", draft.Branch, "base", base)

	// fetch-base
	branch, err := client.GetBranch(ctx, owner, name, base)
	if err != nil {
		return model.PRResult{}, stepError(StepFetchBase, err)
	}
	log.Info("pr workflow: base fetched", "sha", branch.HeadSHA)

	// create-branch
	if err := client.CreateRef(ctx, owner, name, "refs/heads/"+draft.Branch, branch.HeadSHA); err != nil {
		return model.PRResult{}, stepError(StepCreateBranch, err)
	}
	log.Info("pr workflow: branch created")

	// await-replication
	if err := w.sleep(ctx, w.delay); err != nil {
		return model.PRResult{}, stepError(StepAwaitReplication, err)
	}

	// write-file
	err = client.WriteFile(ctx, owner, name, driven.FileWrite{
		Path:            draft.FilePath,
		Message:         draft.CommitMessage,
		Content:         content,
		Branch:          draft.Branch,
		ShaLookupBranch: base,
	})
	if err != nil {
		return model.PRResult{}, stepError(StepWriteFile, err)
	}
	log.Info("pr workflow: file written", "path", draft.FilePath)

	// open-pull-request
	pr, err := client.CreatePullRequest(ctx, owner, name, driven.NewPullRequest{
		Title: draft.Title,
		Head:  draft.Branch,
		Base:  base,
		Body:  draft.Description,
	})
	if err != nil {
		return model.PRResult{}, stepError(StepOpenPullRequest, err)
	}
	log.Info("pr workflow: pull request opened", "number", pr.Number, "url", pr.URL)

	return model.PRResult{Branch: draft.Branch, PullRequest: pr}, nil
}

func validateDraft(draft model.PRDraft, content string) error {
	switch {
	case strings.TrimSpace(content) == "":
		return validationError("execute-pr", "no generated content to commit")
	case draft.Branch == "":
		return validationError("execute-pr", "draft has no branch name")
	case draft.FilePath == "":
		return validationError("execute-pr", "draft has no file path")
	case strings.TrimSpace(draft.Title) == "":
		return validationError("execute-pr", "draft has no title")
	case draft.CommitMessage == "":
		return validationError("execute-pr", "draft has no commit message")
	}
	return nil
}

// stepError tags err with the failing step and rewrites the token-scope
// message into an actionable hint.
func stepError(step string, err error) error {
	kind := model.KindOf(err)
	if kind == "" {
		kind = model.KindProvider
	}
	msg := err.Error()
	if strings.Contains(msg, tokenScopeError) {
		msg = tokenScopeHint
	}
	return &model.Error{Kind: kind, Op: step, Message: msg, Err: err}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
