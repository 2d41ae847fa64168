package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

const (
	DefaultAnalysisModel = "gemini-3-flash-preview"
	DefaultWritingModel  = "gemini-3-pro-preview"

	readmePreviewRunes = 1000
	malformedResponse  = "malformed upstream response"
)

// GenerationConfig names the models used for each kind of call.
type GenerationConfig struct {
	AnalysisModel string
	WritingModel  string
}

// GenerationService owns the prompts sent to the text generator and the
// decoding of its structured answers.
type GenerationService struct {
	gen           driven.TextGenerator
	validator     driven.SchemaValidator
	analysisModel string
	writingModel  string
	newID         func() string
}

// NewGenerationService creates a GenerationService. Empty model names fall
// back to the defaults.
func NewGenerationService(gen driven.TextGenerator, validator driven.SchemaValidator, cfg GenerationConfig) *GenerationService {
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = DefaultAnalysisModel
	}
	if cfg.WritingModel == "" {
		cfg.WritingModel = DefaultWritingModel
	}
	return &GenerationService{
		gen:           gen,
		validator:     validator,
		analysisModel: cfg.AnalysisModel,
		writingModel:  cfg.WritingModel,
		newID:         uuid.NewString,
	}
}

var (
	scoreMin = 0.0
	scoreMax = 100.0

	analysisSchema = &driven.Schema{
		Type: driven.TypeObject,
		Properties: map[string]*driven.Schema{
			"healthScore": {Type: driven.TypeNumber, Description: "Score from 0 to 100", Minimum: &scoreMin, Maximum: &scoreMax},
			"completeness": {
				Type: driven.TypeObject,
				Properties: map[string]*driven.Schema{
					"readme":        {Type: driven.TypeBoolean},
					"contributing":  {Type: driven.TypeBoolean},
					"license":       {Type: driven.TypeBoolean},
					"security":      {Type: driven.TypeBoolean},
					"changelog":     {Type: driven.TypeBoolean},
					"codeOfConduct": {Type: driven.TypeBoolean},
				},
			},
			"metrics": {
				Type: driven.TypeObject,
				Properties: map[string]*driven.Schema{
					"language":       {Type: driven.TypeString},
					"framework":      {Type: driven.TypeString},
					"packageManager": {Type: driven.TypeString},
					"hasTests":       {Type: driven.TypeBoolean},
					"todoCount":      {Type: driven.TypeNumber},
				},
			},
			"recommendations": {Type: driven.TypeArray, Items: &driven.Schema{Type: driven.TypeString}},
		},
		Required: []string{"healthScore", "completeness", "metrics", "recommendations"},
	}

	suggestionsSchema = &driven.Schema{
		Type: driven.TypeArray,
		Items: &driven.Schema{
			Type: driven.TypeObject,
			Properties: map[string]*driven.Schema{
				"id": {Type: driven.TypeString},
				"type": {Type: driven.TypeString, Enum: []string{
					string(model.CategoryDocumentation), string(model.CategoryStructure), string(model.CategoryHygiene),
				}},
				"title":       {Type: driven.TypeString},
				"description": {Type: driven.TypeString},
				"difficulty": {Type: driven.TypeString, Enum: []string{
					string(model.DifficultyEasy), string(model.DifficultyMedium), string(model.DifficultyHard),
				}},
				"estimatedTime": {Type: driven.TypeString},
			},
			Required: []string{"title", "description"},
		},
	}
)

// -- wire shapes of the structured answers --

type completenessJSON struct {
	Readme        bool `json:"readme"`
	Contributing  bool `json:"contributing"`
	License       bool `json:"license"`
	Security      bool `json:"security"`
	Changelog     bool `json:"changelog"`
	CodeOfConduct bool `json:"codeOfConduct"`
}

type metricsJSON struct {
	Language       string  `json:"language"`
	Framework      string  `json:"framework,omitempty"`
	PackageManager string  `json:"packageManager,omitempty"`
	HasTests       bool    `json:"hasTests"`
	TodoCount      float64 `json:"todoCount"`
}

type analysisJSON struct {
	HealthScore     float64          `json:"healthScore"`
	Completeness    completenessJSON `json:"completeness"`
	Metrics         metricsJSON      `json:"metrics"`
	Recommendations []string         `json:"recommendations"`
}

type suggestionJSON struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	EstimatedTime string `json:"estimatedTime"`
}

// AnalyzeRepo asks for a health report of a repository from its root file
// names and README text (empty when absent).
func (s *GenerationService) AnalyzeRepo(ctx context.Context, repoName string, fileNames []string, readme string) (model.Analysis, error) {
	preview := truncateRunes(readme, readmePreviewRunes)
	if preview == "" {
		preview = "None found"
	}

	prompt := fmt.Sprintf(`Analyze the following repository structure and provide a health report.
Repository: %s
Files: %s
README content preview: %s

Return a JSON object representing the repo health.`, repoName, strings.Join(fileNames, ", "), preview)

	var out analysisJSON
	if err := s.structured(ctx, "analyze-repo", prompt, analysisSchema, &out); err != nil {
		return model.Analysis{}, err
	}

	return model.Analysis{
		RepoName:    repoName,
		HealthScore: out.HealthScore,
		Completeness: model.Completeness{
			Readme:        out.Completeness.Readme,
			Contributing:  out.Completeness.Contributing,
			License:       out.Completeness.License,
			Security:      out.Completeness.Security,
			Changelog:     out.Completeness.Changelog,
			CodeOfConduct: out.Completeness.CodeOfConduct,
		},
		Metrics: model.Metrics{
			Language:       out.Metrics.Language,
			Framework:      out.Metrics.Framework,
			PackageManager: out.Metrics.PackageManager,
			HasTests:       out.Metrics.HasTests,
			TodoCount:      int(out.Metrics.TodoCount),
		},
		Recommendations: out.Recommendations,
	}, nil
}

// GenerateSuggestions asks for up to three short tasks that would raise the
// analysed repository's health. Extra suggestions are dropped.
func (s *GenerationService) GenerateSuggestions(ctx context.Context, analysis model.Analysis) ([]model.Suggestion, error) {
	encoded, err := json.Marshal(toAnalysisJSON(analysis))
	if err != nil {
		return nil, fmt.Errorf("encoding analysis: %w", err)
	}

	prompt := fmt.Sprintf(`Based on this repository analysis: %s,
suggest 3 micro-improvements that a developer can do in under 20 minutes to improve the repo health.
These must be real, actionable tasks like adding a specific section to a README or creating a missing template.`, encoded)

	var out []suggestionJSON
	if err := s.structured(ctx, "generate-suggestions", prompt, suggestionsSchema, &out); err != nil {
		return nil, err
	}

	if len(out) > model.MaxSuggestions {
		out = out[:model.MaxSuggestions]
	}

	suggestions := make([]model.Suggestion, 0, len(out))
	for _, sj := range out {
		id := sj.ID
		if id == "" {
			id = s.newID()
		}
		suggestions = append(suggestions, model.Suggestion{
			ID:            id,
			Category:      model.SuggestionCategory(sj.Type),
			Title:         sj.Title,
			Description:   sj.Description,
			Difficulty:    model.Difficulty(sj.Difficulty),
			EstimatedTime: sj.EstimatedTime,
		})
	}
	return suggestions, nil
}

// GenerateMarkdown writes a documentation artifact from a one-line
// repository summary and a style instruction.
func (s *GenerationService) GenerateMarkdown(ctx context.Context, label, repoInfo, style string) (string, error) {
	prompt := fmt.Sprintf(`Generate a professional %s for a GitHub repository.
Repository context: %s
Additional details: %s
Ensure it follows best practices and is highly detailed.
Output ONLY the markdown content.`, label, repoInfo, style)

	return s.freeform(ctx, "generate-markdown", prompt)
}

// GenerateContextualMarkdown writes a documentation artifact informed by the
// repository's root listing and a dependency manifest summary.
func (s *GenerationService) GenerateContextualMarkdown(ctx context.Context, label, repoName string, fileNames []string, manifestSummary string) (string, error) {
	prompt := fmt.Sprintf(`Generate a professional %s for the GitHub repository %s.
Base it on the actual project: do not invent features, commands or dependencies that the files below do not support.
Root files: %s
Dependency manifest:
%s
Ensure it follows best practices and is highly detailed.
Output ONLY the markdown content.`, label, repoName, strings.Join(fileNames, ", "), manifestSummary)

	return s.freeform(ctx, "generate-contextual-markdown", prompt)
}

func (s *GenerationService) freeform(ctx context.Context, op, prompt string) (string, error) {
	text, err := s.gen.Generate(ctx, driven.GenerateRequest{Model: s.writingModel, Prompt: prompt})
	if err != nil {
		return "", providerError(op, err)
	}
	return text, nil
}

// structured runs a schema-constrained call and decodes the validated JSON
// into out. Any decoding or shape failure is a parse error; no partial
// result is returned.
func (s *GenerationService) structured(ctx context.Context, op, prompt string, schema *driven.Schema, out any) error {
	text, err := s.gen.Generate(ctx, driven.GenerateRequest{Model: s.analysisModel, Prompt: prompt, Schema: schema})
	if err != nil {
		return providerError(op, err)
	}

	raw := []byte(stripCodeFence(text))
	if err := s.validator.Validate(schema, raw); err != nil {
		return &model.Error{Kind: model.KindParse, Op: op, Message: malformedResponse, Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &model.Error{Kind: model.KindParse, Op: op, Message: malformedResponse, Err: err}
	}
	return nil
}

func toAnalysisJSON(a model.Analysis) analysisJSON {
	recs := a.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return analysisJSON{
		HealthScore: a.HealthScore,
		Completeness: completenessJSON{
			Readme:        a.Completeness.Readme,
			Contributing:  a.Completeness.Contributing,
			License:       a.Completeness.License,
			Security:      a.Completeness.Security,
			Changelog:     a.Completeness.Changelog,
			CodeOfConduct: a.Completeness.CodeOfConduct,
		},
		Metrics: metricsJSON{
			Language:       a.Metrics.Language,
			Framework:      a.Metrics.Framework,
			PackageManager: a.Metrics.PackageManager,
			HasTests:       a.Metrics.HasTests,
			TodoCount:      float64(a.Metrics.TodoCount),
		},
		Recommendations: recs,
	}
}

// stripCodeFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}

// truncateRunes cuts s to at most n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
