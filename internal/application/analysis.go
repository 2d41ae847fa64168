package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
)

const readmePath = "README.md"

// AnalysisService runs the repository detail flow: crawl the root, read the
// README, ask for a health report and follow-up suggestions.
type AnalysisService struct {
	session *Session
	gen     *GenerationService
	logger  *slog.Logger
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(session *Session, gen *GenerationService, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{session: session, gen: gen, logger: logger}
}

// Analyze analyses the repository identified by repoKey (full or short name)
// and stores the report in the session, replacing any previous one. A missing
// README is not an error. A suggestions failure keeps the analysis and is
// reported on the result.
func (s *AnalysisService) Analyze(ctx context.Context, repoKey string) (AnalysisReport, error) {
	client, err := s.session.Client()
	if err != nil {
		return AnalysisReport{}, err
	}
	repo, err := s.session.Repository(repoKey)
	if err != nil {
		return AnalysisReport{}, err
	}
	owner, name, err := repoCoordinates(repo)
	if err != nil {
		return AnalysisReport{}, err
	}

	s.session.SelectRepository(repo.FullName)

	contents, err := client.ListContents(ctx, owner, name, "")
	if err != nil {
		return AnalysisReport{}, withOp("list-contents", err)
	}
	fileNames := model.EntryNames(contents)

	readme, err := client.GetFileContent(ctx, owner, name, readmePath)
	if err != nil {
		s.logger.Debug("readme unavailable, analysing without it", "repo", repo.FullName, "error", err)
		readme = ""
	}

	analysis, err := s.gen.AnalyzeRepo(ctx, repo.Name, fileNames, readme)
	if err != nil {
		return AnalysisReport{}, err
	}

	report := AnalysisReport{Repository: repo, Analysis: analysis}

	suggestions, err := s.gen.GenerateSuggestions(ctx, analysis)
	if err != nil {
		s.logger.Warn("suggestions failed", "repo", repo.FullName, "error", err)
		report.SuggestionError = err.Error()
	} else {
		report.Suggestions = suggestions
	}

	s.session.SetAnalysis(report)
	s.logger.Info("repository analysed",
		"repo", repo.FullName,
		"health_score", analysis.HealthScore,
		"suggestions", len(report.Suggestions),
	)
	return report, nil
}

// repoCoordinates splits the repository's full name into owner and name.
func repoCoordinates(repo model.Repository) (string, string, error) {
	owner, name, err := repo.OwnerAndName()
	if err != nil {
		return "", "", &model.Error{Kind: model.KindValidation, Op: "resolve-repository", Message: err.Error(), Err: err}
	}
	return owner, name, nil
}
