// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// UserViewModel holds the signed-in account shown in the sidebar.
type UserViewModel struct {
	Login       string
	DisplayName string
	AvatarURL   string
	ProfileURL  string
}

// LayoutViewModel holds the page chrome: title, navigation and account.
type LayoutViewModel struct {
	Title     string
	Active    string // View name of the highlighted nav item.
	Connected bool
	User      UserViewModel
	CSRFToken string
}

// ConnectViewModel holds the token form shown when no session exists.
type ConnectViewModel struct {
	Error     string
	CSRFToken string
}

// FilterTabViewModel is one tab of the dashboard ownership filter.
type FilterTabViewModel struct {
	Label  string
	Href   string
	Active bool
}

// RepoCardViewModel holds presentation-ready data for one repository card.
type RepoCardViewModel struct {
	FullName      string
	Name          string
	Description   string
	Language      string
	Stars         int
	IsFork        bool
	IsPrivate     bool
	UpdatedAgo    string
	Dormancy      string
	DormancyClass string
	URL           string
	DetailPath    string
}

// DashboardViewModel holds the filtered repository grid.
type DashboardViewModel struct {
	Tabs           []FilterTabViewModel
	Cards          []RepoCardViewModel
	Total          int
	Active         int
	NeedsAttention int
	Dormant        int
}

// CompletenessItemViewModel is one row of the documentation checklist.
type CompletenessItemViewModel struct {
	Label   string
	Present bool
}

// SuggestionViewModel holds one improvement suggestion.
type SuggestionViewModel struct {
	Title           string
	Description     string
	Category        string
	Difficulty      string
	DifficultyClass string
	EstimatedTime   string
}

// AnalysisViewModel holds the repository detail page.
type AnalysisViewModel struct {
	Repo      RepoCardViewModel
	CSRFToken string
	Error     string

	HasReport       bool
	HealthScore     int
	ScoreClass      string
	Completeness    []CompletenessItemViewModel
	Language        string
	Framework       string
	PackageManager  string
	HasTests        bool
	TodoCount       int
	Recommendations []string
	Suggestions     []SuggestionViewModel
	SuggestionError string
}

// DayViewModel is one bar of the weekly activity chart.
type DayViewModel struct {
	Weekday       string
	Pushes        int
	HeightPercent int
}

// StreakViewModel holds the streak page metrics.
type StreakViewModel struct {
	CurrentStreak int
	BestStreak    int
	ActiveRepos   int
	ActiveDays    int
	GoalPercent   int
	Days          []DayViewModel
}

// OptionViewModel is one <option> of a select.
type OptionViewModel struct {
	Value    string
	Label    string
	Selected bool
}

// DraftViewModel holds the PR preview shown before confirmation.
type DraftViewModel struct {
	TemplateID    string
	Title         string
	Description   string
	Branch        string
	FilePath      string
	CommitMessage string
}

// PRResultViewModel holds the outcome of a confirmed PR.
type PRResultViewModel struct {
	Number int
	URL    string
	Branch string
}

// GeneratorViewModel holds the documentation generator page.
type GeneratorViewModel struct {
	CSRFToken string
	Repos     []OptionViewModel
	Templates []OptionViewModel
	Mode      string

	SelectedRepo     string
	SelectedTemplate string
	ManifestFile     string
	Content          string
	PreviewHTML      string
	Error            string

	Draft  *DraftViewModel
	Result *PRResultViewModel
}

// SettingsViewModel holds the account settings page.
type SettingsViewModel struct {
	User               UserViewModel
	RepositoryCount    int
	PersistenceEnabled bool
	CSRFToken          string
}
