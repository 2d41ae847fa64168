package model

// ContentEntry is one item of a repository directory listing.
type ContentEntry struct {
	Name string
	Path string
	Type string // "file", "dir", "symlink" or "submodule".
	Size int
	SHA  string
}

// Branch is a branch reference with its latest commit.
type Branch struct {
	Name    string
	HeadSHA string
}

// PullRequest is a pull request created by the authoring workflow.
type PullRequest struct {
	Number int
	Title  string
	URL    string // Web (html) URL.
	Head   string
	Base   string
}

// EntryNames returns the Name of every entry, in listing order.
func EntryNames(entries []ContentEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}
