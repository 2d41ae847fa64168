package model

import "fmt"

// ArtifactTemplate describes a documentation file the generator can produce.
type ArtifactTemplate struct {
	ID    string
	Label string
	Path  string // Destination path inside the repository.
}

// ArtifactTemplates is the fixed catalog offered by the generator, in display order.
var ArtifactTemplates = []ArtifactTemplate{
	{ID: "README.md", Label: "README.md", Path: "README.md"},
	{ID: "bug_report.md", Label: "Bug Report Template", Path: ".github/ISSUE_TEMPLATE/bug_report.md"},
	{ID: "feature_request.md", Label: "Feature Request Template", Path: ".github/ISSUE_TEMPLATE/feature_request.md"},
	{ID: "CONTRIBUTING.md", Label: "CONTRIBUTING.md", Path: "CONTRIBUTING.md"},
	{ID: "LICENSE", Label: "LICENSE", Path: "LICENSE"},
	{ID: "SECURITY.md", Label: "SECURITY.md", Path: "SECURITY.md"},
	{ID: "CHANGELOG.md", Label: "CHANGELOG.md", Path: "CHANGELOG.md"},
	{ID: "ARCHITECTURE.md", Label: "ARCHITECTURE.md", Path: "ARCHITECTURE.md"},
}

// LookupTemplate returns the catalog entry with the given ID.
func LookupTemplate(id string) (ArtifactTemplate, error) {
	for _, t := range ArtifactTemplates {
		if t.ID == id {
			return t, nil
		}
	}
	return ArtifactTemplate{}, fmt.Errorf("unknown artifact template %q", id)
}

// GenerationMode selects how much repository context feeds the generator.
type GenerationMode string

const (
	// ModeTemplate uses only a one-line repository summary.
	ModeTemplate GenerationMode = "template"
	// ModeContextual crawls the root listing and a dependency manifest.
	ModeContextual GenerationMode = "contextual"
)

// ParseGenerationMode validates a mode string. Empty means template.
func ParseGenerationMode(s string) (GenerationMode, error) {
	switch GenerationMode(s) {
	case "", ModeTemplate:
		return ModeTemplate, nil
	case ModeContextual:
		return ModeContextual, nil
	default:
		return "", fmt.Errorf("unknown generation mode %q", s)
	}
}
