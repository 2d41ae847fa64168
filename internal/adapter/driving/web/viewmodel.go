package web

import (
	"fmt"
	"math"
	"net/url"
	"time"

	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

func toUserViewModel(u model.User) vm.UserViewModel {
	return vm.UserViewModel{
		Login:       u.Login,
		DisplayName: u.DisplayName(),
		AvatarURL:   u.AvatarURL,
		ProfileURL:  u.ProfileURL,
	}
}

// toRepoCardViewModel converts a repository and its dormancy bucket for display.
func toRepoCardViewModel(r model.Repository, d model.Dormancy, now time.Time) vm.RepoCardViewModel {
	return vm.RepoCardViewModel{
		FullName:      r.FullName,
		Name:          r.Name,
		Description:   r.Description,
		Language:      r.Language,
		Stars:         r.Stars,
		IsFork:        r.IsFork,
		IsPrivate:     r.IsPrivate,
		UpdatedAgo:    humanizeAgo(r.UpdatedAt, now),
		Dormancy:      string(d),
		DormancyClass: d.CSSClass(),
		URL:           r.URL,
		DetailPath:    repoPath(r.FullName),
	}
}

// toDashboardViewModel converts the computed dashboard, building one tab per filter.
func toDashboardViewModel(d application.Dashboard, now time.Time) vm.DashboardViewModel {
	out := vm.DashboardViewModel{
		Cards:          make([]vm.RepoCardViewModel, 0, len(d.Cards)),
		Total:          d.Total,
		Active:         d.Totals[model.DormancyActive],
		NeedsAttention: d.Totals[model.DormancyNeedsAttention],
		Dormant:        d.Totals[model.DormancyDormant],
	}

	tabs := []struct {
		filter model.RepoFilter
		label  string
	}{
		{model.RepoFilterAll, "All"},
		{model.RepoFilterOwned, "Owned"},
		{model.RepoFilterForks, "Forks"},
	}
	for _, t := range tabs {
		out.Tabs = append(out.Tabs, vm.FilterTabViewModel{
			Label:  t.label,
			Href:   "/app/dashboard?filter=" + string(t.filter),
			Active: d.Filter == t.filter,
		})
	}

	for _, c := range d.Cards {
		out.Cards = append(out.Cards, toRepoCardViewModel(c.Repository, c.Dormancy, now))
	}
	return out
}

// toAnalysisViewModel converts an analysis report. The card is always set;
// report fields only when report is non-nil.
func toAnalysisViewModel(repo model.Repository, report *application.AnalysisReport, now time.Time) vm.AnalysisViewModel {
	out := vm.AnalysisViewModel{
		Repo: toRepoCardViewModel(repo, repo.Dormancy(now), now),
	}
	if report == nil {
		return out
	}

	a := report.Analysis
	score := int(math.Round(a.HealthScore))
	out.HasReport = true
	out.HealthScore = score
	out.ScoreClass = scoreClass(score)
	out.Language = a.Metrics.Language
	out.Framework = a.Metrics.Framework
	out.PackageManager = a.Metrics.PackageManager
	out.HasTests = a.Metrics.HasTests
	out.TodoCount = a.Metrics.TodoCount
	out.Recommendations = a.Recommendations
	out.SuggestionError = report.SuggestionError

	for _, item := range a.Completeness.Items() {
		out.Completeness = append(out.Completeness, vm.CompletenessItemViewModel{Label: item.Label, Present: item.Present})
	}
	for _, s := range report.Suggestions {
		out.Suggestions = append(out.Suggestions, vm.SuggestionViewModel{
			Title:           s.Title,
			Description:     s.Description,
			Category:        string(s.Category),
			Difficulty:      string(s.Difficulty),
			DifficultyClass: "difficulty-" + string(s.Difficulty),
			EstimatedTime:   s.EstimatedTime,
		})
	}
	return out
}

// toStreakViewModel scales the weekly bars against the busiest day.
func toStreakViewModel(s application.StreakStats) vm.StreakViewModel {
	out := vm.StreakViewModel{
		CurrentStreak: s.CurrentStreak,
		BestStreak:    s.BestStreak,
		ActiveRepos:   s.ActiveRepos,
		ActiveDays:    s.ActiveDays,
		GoalPercent:   s.GoalPercent,
	}

	peak := 0
	for _, d := range s.LastWeek {
		peak = max(peak, d.Pushes)
	}
	for _, d := range s.LastWeek {
		height := 0
		if peak > 0 {
			height = d.Pushes * 100 / peak
		}
		out.Days = append(out.Days, vm.DayViewModel{Weekday: d.Weekday, Pushes: d.Pushes, HeightPercent: height})
	}
	return out
}

// generatorOptions builds the repository and template selects.
func generatorOptions(repos []model.Repository, selectedRepo, selectedTemplate string) ([]vm.OptionViewModel, []vm.OptionViewModel) {
	repoOpts := make([]vm.OptionViewModel, 0, len(repos))
	for _, r := range repos {
		repoOpts = append(repoOpts, vm.OptionViewModel{Value: r.FullName, Label: r.FullName, Selected: r.FullName == selectedRepo})
	}

	tmplOpts := make([]vm.OptionViewModel, 0, len(model.ArtifactTemplates))
	for _, t := range model.ArtifactTemplates {
		tmplOpts = append(tmplOpts, vm.OptionViewModel{Value: t.ID, Label: t.Label, Selected: t.ID == selectedTemplate})
	}
	return repoOpts, tmplOpts
}

func toDraftViewModel(d model.PRDraft) *vm.DraftViewModel {
	return &vm.DraftViewModel{
		TemplateID:    d.TemplateID,
		Title:         d.Title,
		Description:   d.Description,
		Branch:        d.Branch,
		FilePath:      d.FilePath,
		CommitMessage: d.CommitMessage,
	}
}

func repoPath(fullName string) string {
	owner, name, err := model.SplitFullName(fullName)
	if err != nil {
		return "/app/dashboard"
	}
	return "/app/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name)
}

func scoreClass(score int) string {
	switch {
	case score >= 80:
		return "score-good"
	case score >= 50:
		return "score-fair"
	default:
		return "score-poor"
	}
}

// humanizeAgo renders elapsed time at day granularity.
func humanizeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	days := int(now.Sub(t).Hours() / 24)
	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 30:
		return fmt.Sprintf("%d days ago", days)
	case days < 60:
		return "1 month ago"
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	case days < 730:
		return "1 year ago"
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}
