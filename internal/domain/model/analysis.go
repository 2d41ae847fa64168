package model

// Completeness records which community-health files a repository has.
type Completeness struct {
	Readme        bool
	Contributing  bool
	License       bool
	Security      bool
	Changelog     bool
	CodeOfConduct bool
}

// Missing returns the labels of the files reported absent, in a fixed order.
func (c Completeness) Missing() []string {
	var missing []string
	for _, item := range c.Items() {
		if !item.Present {
			missing = append(missing, item.Label)
		}
	}
	return missing
}

// CompletenessItem is one labelled completeness flag.
type CompletenessItem struct {
	Label   string
	Present bool
}

// Items lists the completeness flags with display labels.
func (c Completeness) Items() []CompletenessItem {
	return []CompletenessItem{
		{Label: "README", Present: c.Readme},
		{Label: "CONTRIBUTING", Present: c.Contributing},
		{Label: "LICENSE", Present: c.License},
		{Label: "SECURITY", Present: c.Security},
		{Label: "CHANGELOG", Present: c.Changelog},
		{Label: "CODE_OF_CONDUCT", Present: c.CodeOfConduct},
	}
}

// Metrics holds the stack facts the generation service infers.
type Metrics struct {
	Language       string
	Framework      string // Optional.
	PackageManager string // Optional.
	HasTests       bool
	TodoCount      int
}

// Analysis is the health report for one repository. It is transient: a new
// analysis replaces the previous one wholesale.
type Analysis struct {
	RepoName        string
	HealthScore     float64 // 0-100.
	Completeness    Completeness
	Metrics         Metrics
	Recommendations []string
}

// SuggestionCategory groups improvement suggestions.
type SuggestionCategory string

const (
	CategoryDocumentation SuggestionCategory = "documentation"
	CategoryStructure     SuggestionCategory = "structure"
	CategoryHygiene       SuggestionCategory = "hygiene"
)

// Difficulty is the estimated effort of a suggestion.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MaxSuggestions caps how many suggestions are kept per analysis.
const MaxSuggestions = 3

// Suggestion is a short actionable task derived from an Analysis.
type Suggestion struct {
	ID            string
	Category      SuggestionCategory
	Title         string
	Description   string
	Difficulty    Difficulty
	EstimatedTime string
}
