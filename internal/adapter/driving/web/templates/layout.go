package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
)

type navItem struct {
	view  string
	label string
	href  string
}

var navItems = []navItem{
	{"dashboard", "Dashboard", "/app/dashboard"},
	{"analysis", "Analysis", "/app/analysis"},
	{"streak", "Streaks", "/app/streaks"},
	{"generator", "Templates", "/app/generator"},
	{"settings", "Settings", "/app/settings"},
}

// Layout wraps body in the full HTML document. The sidebar is shown only
// for a connected session.
func Layout(page vm.LayoutViewModel, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(page.Title)
		h.raw(` | GitMomentum</title><link rel="stylesheet" href="/static/app.css"></head><body>`)

		if page.Connected {
			sidebar(h, page)
		}

		h.raw(`<main class="content">`)
		h.child(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

func sidebar(h *htmlWriter, page vm.LayoutViewModel) {
	h.raw(`<nav class="sidebar"><div class="brand">GitMomentum</div><ul>`)
	for _, item := range navItems {
		h.raw(`<li><a`)
		h.attr("href", item.href)
		if item.view == page.Active {
			h.raw(` class="active" aria-current="page"`)
		}
		h.raw(`>`)
		h.text(item.label)
		h.raw(`</a></li>`)
	}
	h.raw(`</ul><div class="account">`)
	if page.User.AvatarURL != "" {
		h.raw(`<img class="avatar" alt=""`)
		h.urlAttr("src", page.User.AvatarURL)
		h.raw(`>`)
	}
	h.raw(`<span>`)
	h.text(page.User.DisplayName)
	h.raw(`</span><form method="post" action="/logout">`)
	h.csrfField(page.CSRFToken)
	h.raw(`<button type="submit" class="link">Log out</button></form></div></nav>`)
}

// errorBanner renders msg in an alert box; empty msg renders nothing.
func errorBanner(h *htmlWriter, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<div class="alert alert-error" role="alert">`)
	h.text(msg)
	h.raw(`</div>`)
}
