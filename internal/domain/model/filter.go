package model

import "fmt"

// RepoFilter selects a subset of the repository list by ownership.
type RepoFilter string

const (
	RepoFilterAll   RepoFilter = "all"
	RepoFilterOwned RepoFilter = "owned"
	RepoFilterForks RepoFilter = "forks"
)

// ParseRepoFilter accepts the canonical filter names plus the short aliases
// "owner" and "fork". An empty string means all.
func ParseRepoFilter(s string) (RepoFilter, error) {
	switch s {
	case "", "all":
		return RepoFilterAll, nil
	case "owned", "owner":
		return RepoFilterOwned, nil
	case "forks", "fork":
		return RepoFilterForks, nil
	default:
		return "", fmt.Errorf("unknown repository filter %q", s)
	}
}

// FilterRepositories returns the repositories matching f, preserving order.
// Owned means not a fork; forks means fork-flag set.
func FilterRepositories(repos []Repository, f RepoFilter) []Repository {
	out := make([]Repository, 0, len(repos))
	for _, r := range repos {
		switch f {
		case RepoFilterOwned:
			if r.IsFork {
				continue
			}
		case RepoFilterForks:
			if !r.IsFork {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}
