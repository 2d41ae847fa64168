package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

const (
	manifestPreviewRunes = 3000
	noManifest           = "No manifest found."
)

// manifestPriority is the order dependency manifests are tried in; the first
// readable one wins.
var manifestPriority = []string{"package.json", "go.mod", "requirements.txt", "Cargo.toml", "pom.xml"}

// ArtifactRequest selects what to generate and for which repository.
type ArtifactRequest struct {
	RepoKey    string
	TemplateID string
	Mode       model.GenerationMode
}

// Artifact is generated documentation ready for preview.
type Artifact struct {
	Repository model.Repository
	Template   model.ArtifactTemplate
	Mode       model.GenerationMode
	Content    string
	// ManifestFile is the manifest used in contextual mode, empty if none.
	ManifestFile string
}

// ArtifactService drives the documentation generator in template or
// contextual mode.
type ArtifactService struct {
	session *Session
	gen     *GenerationService
	logger  *slog.Logger
}

// NewArtifactService creates an ArtifactService.
func NewArtifactService(session *Session, gen *GenerationService, logger *slog.Logger) *ArtifactService {
	return &ArtifactService{session: session, gen: gen, logger: logger}
}

// Generate produces the requested artifact. Every failure is reported as
// "Generation failed: <message>" with the underlying kind preserved.
func (s *ArtifactService) Generate(ctx context.Context, req ArtifactRequest) (Artifact, error) {
	artifact, err := s.generate(ctx, req)
	if err != nil {
		kind := model.KindOf(err)
		if kind == "" {
			kind = model.KindProvider
		}
		return Artifact{}, &model.Error{
			Kind:    kind,
			Op:      "generate-artifact",
			Message: "Generation failed: " + err.Error(),
			Err:     err,
		}
	}
	return artifact, nil
}

func (s *ArtifactService) generate(ctx context.Context, req ArtifactRequest) (Artifact, error) {
	tmpl, err := model.LookupTemplate(req.TemplateID)
	if err != nil {
		return Artifact{}, validationError("generate-artifact", "%s", err.Error())
	}
	mode, err := model.ParseGenerationMode(string(req.Mode))
	if err != nil {
		return Artifact{}, validationError("generate-artifact", "%s", err.Error())
	}

	client, err := s.session.Client()
	if err != nil {
		return Artifact{}, err
	}
	repo, err := s.session.Repository(req.RepoKey)
	if err != nil {
		return Artifact{}, err
	}
	s.session.SelectRepository(repo.FullName)

	out := Artifact{Repository: repo, Template: tmpl, Mode: mode}

	if mode == model.ModeTemplate {
		out.Content, err = s.gen.GenerateMarkdown(ctx, tmpl.Label, TemplateSummary(repo), templateStyle(tmpl))
		if err != nil {
			return Artifact{}, err
		}
		s.logger.Info("artifact generated", "repo", repo.FullName, "template", tmpl.ID, "mode", mode)
		return out, nil
	}

	owner, name, err := repoCoordinates(repo)
	if err != nil {
		return Artifact{}, err
	}

	contents, err := client.ListContents(ctx, owner, name, "")
	if err != nil {
		return Artifact{}, err
	}
	fileNames := model.EntryNames(contents)

	summary := noManifest
	for _, candidate := range manifestPriority {
		actual, ok := findEntryFold(fileNames, candidate)
		if !ok {
			continue
		}
		text, err := client.GetFileContent(ctx, owner, name, actual)
		if err != nil {
			s.logger.Warn("could not read manifest", "repo", repo.FullName, "file", actual, "error", err)
			continue
		}
		summary = ManifestSummary(actual, text)
		out.ManifestFile = actual
		break
	}

	out.Content, err = s.gen.GenerateContextualMarkdown(ctx, tmpl.Label, name, fileNames, summary)
	if err != nil {
		return Artifact{}, err
	}
	s.logger.Info("artifact generated",
		"repo", repo.FullName,
		"template", tmpl.ID,
		"mode", mode,
		"manifest", out.ManifestFile,
	)
	return out, nil
}

// TemplateSummary is the one-line repository context used in template mode.
func TemplateSummary(repo model.Repository) string {
	return fmt.Sprintf("Repo Name: %s, Language: %s, Desc: %s", repo.Name, repo.Language, repo.Description)
}

// ManifestSummary formats a manifest for the contextual prompt, keeping the
// first 3000 characters.
func ManifestSummary(fileName, content string) string {
	return fmt.Sprintf("File: %s\nContent:\n%s", fileName, truncateRunes(content, manifestPreviewRunes))
}

func templateStyle(t model.ArtifactTemplate) string {
	return fmt.Sprintf("Professional GitHub standard %s. Use clean formatting and clear placeholders.", t.Label)
}

// findEntryFold returns the listed name matching want case-insensitively.
func findEntryFold(names []string, want string) (string, bool) {
	for _, n := range names {
		if strings.EqualFold(n, want) {
			return n, true
		}
	}
	return "", false
}
