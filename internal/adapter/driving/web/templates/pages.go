package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
)

// Connect renders the personal access token form.
func Connect(page vm.ConnectViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="connect card"><h1>Connect to GitHub</h1>`)
		h.raw(`<p>Paste a personal access token with <code>repo</code> scope to load your repositories.</p>`)
		errorBanner(h, page.Error)
		h.raw(`<form method="post" action="/connect">`)
		h.csrfField(page.CSRFToken)
		h.raw(`<label for="token">Personal access token</label>`)
		h.raw(`<input id="token" name="token" type="password" autocomplete="off" required>`)
		h.raw(`<button type="submit">Connect</button></form></section>`)
	})
}

// Dashboard renders the repository grid with the ownership filter.
func Dashboard(page vm.DashboardViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="dashboard"><header><h1>Repositories</h1><div class="totals">`)
		total(h, "Total", "", page.Total)
		total(h, "Active", "status-active", page.Active)
		total(h, "Needs attention", "status-attention", page.NeedsAttention)
		total(h, "Dormant", "status-dormant", page.Dormant)
		h.raw(`</div></header><nav class="tabs">`)
		for _, tab := range page.Tabs {
			h.raw(`<a`)
			h.attr("href", tab.Href)
			if tab.Active {
				h.raw(` class="active"`)
			}
			h.raw(`>`)
			h.text(tab.Label)
			h.raw(`</a>`)
		}
		h.raw(`</nav>`)

		if len(page.Cards) == 0 {
			h.raw(`<p class="empty">No repositories match this filter.</p>`)
		}
		h.raw(`<div class="grid">`)
		for _, c := range page.Cards {
			repoCard(h, c)
		}
		h.raw(`</div></section>`)
	})
}

func total(h *htmlWriter, label, class string, n int) {
	h.raw(`<div class="total`)
	if class != "" {
		h.raw(" ", class)
	}
	h.raw(`"><strong>`)
	h.num(n)
	h.raw(`</strong><span>`)
	h.text(label)
	h.raw(`</span></div>`)
}

func repoCard(h *htmlWriter, c vm.RepoCardViewModel) {
	h.raw(`<article class="card repo"><header><a`)
	h.attr("href", c.DetailPath)
	h.raw(`>`)
	h.text(c.Name)
	h.raw(`</a><span`)
	h.attr("class", "pill "+c.DormancyClass)
	h.raw(`>`)
	h.text(c.Dormancy)
	h.raw(`</span></header>`)
	if c.Description != "" {
		h.raw(`<p>`)
		h.text(c.Description)
		h.raw(`</p>`)
	}
	h.raw(`<footer>`)
	if c.Language != "" {
		h.raw(`<span class="lang">`)
		h.text(c.Language)
		h.raw(`</span>`)
	}
	h.raw(`<span class="stars">&#9733; `)
	h.num(c.Stars)
	h.raw(`</span>`)
	if c.IsFork {
		h.raw(`<span class="tag">fork</span>`)
	}
	if c.IsPrivate {
		h.raw(`<span class="tag">private</span>`)
	}
	h.raw(`<span class="updated">Updated `)
	h.text(c.UpdatedAgo)
	h.raw(`</span></footer></article>`)
}

// AnalysisEmpty is shown on the analysis tab before any repository was analyzed.
func AnalysisEmpty() templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card"><h1>Analysis</h1>`)
		h.raw(`<p>Pick a repository on the <a href="/app/dashboard">dashboard</a> to analyze it.</p></section>`)
	})
}

// RepoDetail renders the analysis report for one repository.
func RepoDetail(page vm.AnalysisViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="detail"><header><h1>`)
		h.text(page.Repo.FullName)
		h.raw(`</h1><span`)
		h.attr("class", "pill "+page.Repo.DormancyClass)
		h.raw(`>`)
		h.text(page.Repo.Dormancy)
		h.raw(`</span><form method="post"`)
		h.attr("action", page.Repo.DetailPath+"/analyze")
		h.raw(`>`)
		h.csrfField(page.CSRFToken)
		h.raw(`<button type="submit">Re-analyze</button></form></header>`)
		errorBanner(h, page.Error)

		if !page.HasReport {
			h.raw(`</section>`)
			return
		}

		h.raw(`<div class="grid"><article class="card score"><h2>Health score</h2><div`)
		h.attr("class", "score-value "+page.ScoreClass)
		h.raw(`>`)
		h.num(page.HealthScore)
		h.raw(`</div></article>`)

		h.raw(`<article class="card"><h2>Documentation</h2><ul class="checklist">`)
		for _, item := range page.Completeness {
			if item.Present {
				h.raw(`<li class="present">&#10003; `)
			} else {
				h.raw(`<li class="missing">&#10007; `)
			}
			h.text(item.Label)
			h.raw(`</li>`)
		}
		h.raw(`</ul></article>`)

		h.raw(`<article class="card"><h2>Stack</h2><dl>`)
		definition(h, "Language", page.Language)
		definition(h, "Framework", page.Framework)
		definition(h, "Package manager", page.PackageManager)
		if page.HasTests {
			definition(h, "Tests", "yes")
		} else {
			definition(h, "Tests", "none found")
		}
		h.raw(`<dt>TODOs</dt><dd>`)
		h.num(page.TodoCount)
		h.raw(`</dd></dl></article></div>`)

		if len(page.Recommendations) > 0 {
			h.raw(`<article class="card"><h2>Recommendations</h2><ul>`)
			for _, r := range page.Recommendations {
				h.raw(`<li>`)
				h.text(r)
				h.raw(`</li>`)
			}
			h.raw(`</ul></article>`)
		}

		h.raw(`<article class="card"><h2>Suggested improvements</h2>`)
		errorBanner(h, page.SuggestionError)
		for _, s := range page.Suggestions {
			h.raw(`<div class="suggestion"><h3>`)
			h.text(s.Title)
			h.raw(`</h3><p>`)
			h.text(s.Description)
			h.raw(`</p><span class="tag">`)
			h.text(s.Category)
			h.raw(`</span><span`)
			h.attr("class", "tag "+s.DifficultyClass)
			h.raw(`>`)
			h.text(s.Difficulty)
			h.raw(`</span>`)
			if s.EstimatedTime != "" {
				h.raw(`<span class="tag">`)
				h.text(s.EstimatedTime)
				h.raw(`</span>`)
			}
			h.raw(`</div>`)
		}
		h.raw(`</article></section>`)
	})
}

func definition(h *htmlWriter, term, value string) {
	if value == "" {
		value = "unknown"
	}
	h.raw(`<dt>`)
	h.text(term)
	h.raw(`</dt><dd>`)
	h.text(value)
	h.raw(`</dd>`)
}

// Streaks renders the activity metrics and the weekly chart.
func Streaks(page vm.StreakViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="streaks"><h1>Momentum</h1><div class="grid">`)
		stat(h, "Current streak", page.CurrentStreak, "days")
		stat(h, "Best streak", page.BestStreak, "days")
		stat(h, "Active repositories", page.ActiveRepos, "this week")
		stat(h, "Weekly goal", page.GoalPercent, "% of 5 days")
		h.raw(`</div><article class="card"><h2>Last 7 days</h2><div class="chart">`)
		for _, d := range page.Days {
			h.raw(`<div class="bar"><div class="fill"`)
			h.attr("style", "height: "+itoa(d.HeightPercent)+"%")
			h.attr("title", itoa(d.Pushes)+" pushes")
			h.raw(`></div><span>`)
			h.text(d.Weekday)
			h.raw(`</span></div>`)
		}
		h.raw(`</div></article></section>`)
	})
}

func stat(h *htmlWriter, label string, value int, unit string) {
	h.raw(`<article class="card stat"><h2>`)
	h.text(label)
	h.raw(`</h2><strong>`)
	h.num(value)
	h.raw(`</strong><span>`)
	h.text(unit)
	h.raw(`</span></article>`)
}

// Settings renders the connected account and the logout action.
func Settings(page vm.SettingsViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="card settings"><h1>Settings</h1><dl>`)
		definition(h, "Account", page.User.Login)
		definition(h, "Name", page.User.DisplayName)
		h.raw(`<dt>Repositories</dt><dd>`)
		h.num(page.RepositoryCount)
		h.raw(`</dd>`)
		if page.PersistenceEnabled {
			definition(h, "Token storage", "encrypted on this server")
		} else {
			definition(h, "Token storage", "memory only (set GITMOMENTUM_SECRET_KEY to persist)")
		}
		h.raw(`</dl>`)
		if page.User.ProfileURL != "" {
			h.raw(`<p><a target="_blank" rel="noopener"`)
			h.urlAttr("href", page.User.ProfileURL)
			h.raw(`>View GitHub profile</a></p>`)
		}
		h.raw(`<form method="post" action="/logout">`)
		h.csrfField(page.CSRFToken)
		h.raw(`<button type="submit" class="danger">Log out</button></form></section>`)
	})
}
