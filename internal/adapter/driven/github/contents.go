package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// ListContents lists the entries of a directory. An empty path lists the
// repository root on the default branch.
func (c *Client) ListContents(ctx context.Context, owner, repo, path string) ([]model.ContentEntry, error) {
	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return nil, wrapError("list-contents", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/contents", len(dir))

	// A file path yields a single entry rather than a listing.
	if file != nil {
		return []model.ContentEntry{mapContent(file)}, nil
	}

	entries := make([]model.ContentEntry, 0, len(dir))
	for _, e := range dir {
		entries = append(entries, mapContent(e))
	}
	return entries, nil
}

// GetFileContent reads a file on the default branch and decodes it to text.
func (c *Client) GetFileContent(ctx context.Context, owner, repo, path string) (string, error) {
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, nil)
	if err != nil {
		return "", wrapError("get-file", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/contents/"+path, 1)

	if file == nil {
		return "", &model.Error{
			Kind:    model.KindParse,
			Op:      "get-file",
			Message: fmt.Sprintf("%s is not a file", path),
			Err:     driven.ErrNoInlineContent,
		}
	}

	var raw string
	if file.Content != nil {
		raw = *file.Content
	}
	text, err := DecodeContent(file.GetEncoding(), raw)
	if err != nil {
		return "", &model.Error{Kind: model.KindParse, Op: "get-file", Message: err.Error(), Err: err}
	}
	return text, nil
}

// DecodeContent turns a contents-API payload into UTF-8 text. The API wraps
// base64 at 60 columns, so embedded newlines are ignored.
func DecodeContent(encoding, content string) (string, error) {
	if content == "" {
		return "", driven.ErrNoInlineContent
	}

	switch encoding {
	case "base64":
		cleaned := strings.NewReplacer("\n", "", "\r", "").Replace(content)
		raw, err := base64.StdEncoding.DecodeString(cleaned)
		if err != nil {
			return "", fmt.Errorf("decoding base64 content: %w", err)
		}
		return string(raw), nil
	case "":
		return content, nil
	default:
		return "", fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// WriteFile creates or updates one file on w.Branch. The existing blob SHA
// is looked up on w.ShaLookupBranch (or w.Branch); a failed lookup means the
// file is created.
func (c *Client) WriteFile(ctx context.Context, owner, repo string, w driven.FileWrite) error {
	lookup := w.ShaLookupBranch
	if lookup == "" {
		lookup = w.Branch
	}

	var sha string
	existing, _, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, w.Path,
		&gh.RepositoryContentGetOptions{Ref: lookup})
	if err == nil && existing != nil {
		sha = existing.GetSHA()
	}

	// go-github base64-encodes Content itself, so raw UTF-8 bytes go in.
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(w.Message),
		Content: []byte(w.Content),
		Branch:  gh.Ptr(w.Branch),
	}

	var resp *gh.Response
	if sha != "" {
		opts.SHA = gh.Ptr(sha)
		_, resp, err = c.gh.Repositories.UpdateFile(ctx, owner, repo, w.Path, opts)
	} else {
		_, resp, err = c.gh.Repositories.CreateFile(ctx, owner, repo, w.Path, opts)
	}
	if err != nil {
		return wrapError("write-file", err)
	}
	logRateLimit(resp, owner+"/"+repo+"/contents/"+w.Path, 1)

	return nil
}

func mapContent(rc *gh.RepositoryContent) model.ContentEntry {
	return model.ContentEntry{
		Name: rc.GetName(),
		Path: rc.GetPath(),
		Type: rc.GetType(),
		Size: rc.GetSize(),
		SHA:  rc.GetSHA(),
	}
}
