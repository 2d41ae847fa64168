package model

import (
	"fmt"
	"strings"
	"time"
)

// Repository is a snapshot of a GitHub repository as returned by the
// repository listing. It is never re-synced; a reconnect replaces it.
type Repository struct {
	ID             int64
	Name           string
	FullName       string // "owner/name"
	Description    string
	URL            string
	UpdatedAt      time.Time
	PushedAt       time.Time
	Stars          int
	Language       string
	IsFork         bool
	IsPrivate      bool
	DefaultBranch  string
	OwnerLogin     string
	OwnerAvatarURL string
}

// OwnerAndName splits FullName into its owner and name components.
func (r Repository) OwnerAndName() (string, string, error) {
	return SplitFullName(r.FullName)
}

// Dormancy classifies the repository by the time elapsed since UpdatedAt.
func (r Repository) Dormancy(now time.Time) Dormancy {
	return ClassifyDormancy(r.UpdatedAt, now)
}

// SplitFullName splits an "owner/name" string into exactly two non-empty parts.
func SplitFullName(fullName string) (string, string, error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// FindRepository returns the repository whose FullName or Name equals key.
// FullName matches take precedence over bare-name matches.
func FindRepository(repos []Repository, key string) (Repository, bool) {
	for _, r := range repos {
		if r.FullName == key {
			return r, true
		}
	}
	for _, r := range repos {
		if r.Name == key {
			return r, true
		}
	}
	return Repository{}, false
}
