package web

import (
	"net/http"
	"strings"

	"github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

// generatorForm is the state the generator forms carry between steps.
type generatorForm struct {
	repo     string
	template string
	mode     string
	content  string
	manifest string
}

func readGeneratorForm(r *http.Request) generatorForm {
	return generatorForm{
		repo:     r.FormValue("repo"),
		template: r.FormValue("template"),
		mode:     r.FormValue("mode"),
		content:  formText(r, "content"),
		manifest: r.FormValue("manifest"),
	}
}

// formText reads a textarea value. Browsers submit textarea line breaks as
// CRLF; generated documents use LF.
func formText(r *http.Request, key string) string {
	return strings.ReplaceAll(r.FormValue(key), "\r\n", "\n")
}

// Generator renders the empty generator form. The repository preselects
// the one last viewed.
func (h *Handler) Generator(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) {
		return
	}
	h.session.SetView(model.ViewGenerator)

	form := generatorForm{
		repo:     h.session.Snapshot().SelectedRepo,
		template: model.ArtifactTemplates[0].ID,
		mode:     string(model.ModeTemplate),
	}
	if t := r.URL.Query().Get("template"); t != "" {
		form.template = t
	}
	h.renderGenerator(w, r, http.StatusOK, form, nil)
}

// GeneratorGenerate produces documentation and shows its preview.
func (h *Handler) GeneratorGenerate(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) || !h.checkCSRF(w, r) {
		return
	}

	form := readGeneratorForm(r)
	form.content, form.manifest = "", ""

	artifact, err := h.artifactSvc.Generate(r.Context(), application.ArtifactRequest{
		RepoKey:    form.repo,
		TemplateID: form.template,
		Mode:       model.GenerationMode(form.mode),
	})
	if err != nil {
		h.logger.Warn("generation failed", "repo", form.repo, "template", form.template, "error", err)
		h.renderGenerator(w, r, statusForError(err), form, func(p *vm.GeneratorViewModel) {
			p.Error = err.Error()
		})
		return
	}

	form.repo = artifact.Repository.FullName
	form.mode = string(artifact.Mode)
	form.content = artifact.Content
	form.manifest = artifact.ManifestFile
	h.renderGenerator(w, r, http.StatusOK, form, nil)
}

// GeneratorDraft shows the pull request that would be opened for the
// generated content.
func (h *Handler) GeneratorDraft(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) || !h.checkCSRF(w, r) {
		return
	}

	form := readGeneratorForm(r)
	draft, err := h.prWorkflow.PrepareDraft(form.template, h.now())
	if err != nil {
		h.renderGenerator(w, r, statusForError(err), form, func(p *vm.GeneratorViewModel) {
			p.Error = err.Error()
		})
		return
	}

	h.renderGenerator(w, r, http.StatusOK, form, func(p *vm.GeneratorViewModel) {
		p.Draft = toDraftViewModel(draft)
	})
}

// GeneratorPR runs the PR workflow for the confirmed draft. On failure the
// content is kept so the user can prepare a fresh draft.
func (h *Handler) GeneratorPR(w http.ResponseWriter, r *http.Request) {
	if !h.requireConnected(w, r) || !h.checkCSRF(w, r) {
		return
	}

	form := readGeneratorForm(r)
	draft := model.PRDraft{
		TemplateID:    form.template,
		Title:         r.FormValue("title"),
		Description:   formText(r, "description"),
		Branch:        r.FormValue("branch"),
		FilePath:      r.FormValue("file_path"),
		CommitMessage: r.FormValue("commit_message"),
	}

	result, err := h.prWorkflow.Execute(r.Context(), form.repo, draft, form.content)
	if err != nil {
		h.logger.Warn("pull request workflow failed",
			"repo", form.repo,
			"step", model.OpOf(err),
			"error", err,
		)
		h.renderGenerator(w, r, statusForError(err), form, func(p *vm.GeneratorViewModel) {
			p.Error = err.Error()
		})
		return
	}

	form.content, form.manifest = "", ""
	h.renderGenerator(w, r, http.StatusOK, form, func(p *vm.GeneratorViewModel) {
		p.Result = &vm.PRResultViewModel{
			Number: result.PullRequest.Number,
			URL:    result.PullRequest.URL,
			Branch: result.Branch,
		}
	})
}

func (h *Handler) renderGenerator(w http.ResponseWriter, r *http.Request, status int, form generatorForm, edit func(*vm.GeneratorViewModel)) {
	h.session.SetView(model.ViewGenerator)
	token := csrfToken(w, r)

	mode := form.mode
	if mode == "" {
		mode = string(model.ModeTemplate)
	}
	repos, tmpls := generatorOptions(h.session.Repositories(), form.repo, form.template)
	page := vm.GeneratorViewModel{
		CSRFToken:        token,
		Repos:            repos,
		Templates:        tmpls,
		Mode:             mode,
		SelectedRepo:     form.repo,
		SelectedTemplate: form.template,
		ManifestFile:     form.manifest,
		Content:          form.content,
		PreviewHTML:      RenderMarkdown(form.content),
	}
	if edit != nil {
		edit(&page)
	}

	h.render(w, r, status, "Templates", model.ViewGenerator, token, templates.Generator(page))
}
