package model

// PRDraft is the user-reviewable metadata for a pull request that has not
// been opened yet. It is consumed once by the workflow.
type PRDraft struct {
	TemplateID    string
	Title         string
	Description   string
	Branch        string // New head branch, without the refs/heads/ prefix.
	FilePath      string
	CommitMessage string
}

// PRResult is the outcome of a successful workflow run.
type PRResult struct {
	Branch      string
	PullRequest PullRequest
}
