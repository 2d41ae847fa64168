package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
)

// Generator renders the documentation generator: the selection form, the
// preview of generated markdown, the PR draft for confirmation, and the
// workflow result.
func Generator(page vm.GeneratorViewModel) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<section class="generator"><h1>Templates</h1>`)
		errorBanner(h, page.Error)

		if page.Result != nil {
			h.raw(`<div class="alert alert-success" role="status">Pull request #`)
			h.num(page.Result.Number)
			h.raw(` opened from <code>`)
			h.text(page.Result.Branch)
			h.raw(`</code>. <a target="_blank" rel="noopener"`)
			h.urlAttr("href", page.Result.URL)
			h.raw(`>View on GitHub</a></div>`)
		}

		h.raw(`<form class="card" method="post" action="/app/generator/generate">`)
		h.csrfField(page.CSRFToken)
		h.raw(`<fieldset class="modes"><legend>Mode</legend>`)
		modeRadio(h, "template", "Template", page.Mode)
		modeRadio(h, "contextual", "Contextual (reads manifests)", page.Mode)
		h.raw(`</fieldset><label for="repo">Repository</label><select id="repo" name="repo" required>`)
		options(h, page.Repos)
		h.raw(`</select><label for="template">Template</label><select id="template" name="template" required>`)
		options(h, page.Templates)
		h.raw(`</select><button type="submit">Generate</button></form>`)

		if page.Content == "" {
			h.raw(`</section>`)
			return
		}

		h.raw(`<article class="card preview"><header><h2>Preview</h2>`)
		if page.ManifestFile != "" {
			h.raw(`<span class="tag">from `)
			h.text(page.ManifestFile)
			h.raw(`</span>`)
		}
		h.raw(`</header><div class="markdown">`)
		h.raw(page.PreviewHTML) // Sanitized by bluemonday before it reaches the view model.
		h.raw(`</div>`)

		if page.Draft == nil {
			h.raw(`<form method="post" action="/app/generator/draft">`)
			h.csrfField(page.CSRFToken)
			selectionFields(h, page)
			h.raw(`<button type="submit">Prepare pull request</button></form></article></section>`)
			return
		}
		h.raw(`</article>`)

		d := page.Draft
		h.raw(`<dialog open class="card draft"><h2>Confirm pull request</h2>`)
		h.raw(`<form method="post" action="/app/generator/pr">`)
		h.csrfField(page.CSRFToken)
		selectionFields(h, page)
		hidden(h, "branch", d.Branch)
		hidden(h, "file_path", d.FilePath)
		hidden(h, "commit_message", d.CommitMessage)
		h.raw(`<label for="title">Title</label><input id="title" name="title" required`)
		h.attr("value", d.Title)
		h.raw(`><label for="description">Description</label><textarea id="description" name="description" rows="6">`+"\n")
		h.text(d.Description)
		h.raw(`</textarea><dl>`)
		definition(h, "Branch", d.Branch)
		definition(h, "File", d.FilePath)
		definition(h, "Commit", d.CommitMessage)
		h.raw(`</dl><div class="actions"><a class="button secondary" href="/app/generator">Cancel</a>`)
		h.raw(`<button type="submit">Create pull request</button></div></form></dialog></section>`)
	})
}

// selectionFields carries the current selection and generated content
// through the draft and confirm steps.
func selectionFields(h *htmlWriter, page vm.GeneratorViewModel) {
	hidden(h, "repo", page.SelectedRepo)
	hidden(h, "template", page.SelectedTemplate)
	hidden(h, "mode", page.Mode)
	hidden(h, "manifest", page.ManifestFile)
	// HTML parsing drops the first newline after <textarea>; emitting one
	// keeps a leading newline in the value.
	h.raw("<textarea name=\"content\" hidden>\n")
	h.text(page.Content)
	h.raw(`</textarea>`)
}

func hidden(h *htmlWriter, name, value string) {
	h.raw(`<input type="hidden"`)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(`>`)
}

func modeRadio(h *htmlWriter, value, label, current string) {
	h.raw(`<label class="radio"><input type="radio" name="mode"`)
	h.attr("value", value)
	if value == current {
		h.raw(` checked`)
	}
	h.raw(`> `)
	h.text(label)
	h.raw(`</label>`)
}

func options(h *htmlWriter, opts []vm.OptionViewModel) {
	for _, o := range opts {
		h.raw(`<option`)
		h.attr("value", o.Value)
		if o.Selected {
			h.raw(` selected`)
		}
		h.raw(`>`)
		h.text(o.Label)
		h.raw(`</option>`)
	}
}
