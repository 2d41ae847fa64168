package application

import (
	"time"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// RepoCard is one repository in the dashboard grid.
type RepoCard struct {
	Repository model.Repository
	Dormancy   model.Dormancy
}

// Dashboard is the filtered repository grid with per-bucket totals.
type Dashboard struct {
	Filter model.RepoFilter
	Cards  []RepoCard
	// Totals counts every repository (not just the filtered ones) per bucket.
	Totals map[model.Dormancy]int
	Total  int
}

// ComputeDashboard filters repos, preserving order, and labels each with its
// dormancy bucket relative to now.
func ComputeDashboard(repos []model.Repository, filter model.RepoFilter, now time.Time) Dashboard {
	d := Dashboard{
		Filter: filter,
		Totals: map[model.Dormancy]int{
			model.DormancyActive:         0,
			model.DormancyNeedsAttention: 0,
			model.DormancyDormant:        0,
		},
		Total: len(repos),
	}

	for _, r := range repos {
		d.Totals[r.Dormancy(now)]++
	}

	filtered := model.FilterRepositories(repos, filter)
	d.Cards = make([]RepoCard, 0, len(filtered))
	for _, r := range filtered {
		d.Cards = append(d.Cards, RepoCard{Repository: r, Dormancy: r.Dormancy(now)})
	}
	return d
}
