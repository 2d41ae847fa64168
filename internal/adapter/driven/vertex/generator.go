// Package vertex implements the TextGenerator port using Gemini models on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TextGenerator = (*Generator)(nil)

// Config selects the Google Cloud project and region.
type Config struct {
	Project         string
	Location        string // Defaults to us-central1.
	CredentialsFile string // Optional service-account key; ADC otherwise.
}

// Generator implements driven.TextGenerator with the Vertex AI genai client.
type Generator struct {
	client *genai.Client
}

// NewGenerator creates a Vertex AI client for the configured project.
func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.Project == "" {
		return nil, errors.New("vertex project not set: set GITMOMENTUM_VERTEX_PROJECT")
	}
	location := cfg.Location
	if location == "" {
		location = "us-central1"
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := genai.NewClient(ctx, cfg.Project, location, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}
	return &Generator{client: client}, nil
}

// Generate runs a single-turn request and returns the first candidate's text.
func (g *Generator) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	m := g.client.GenerativeModel(req.Model)
	if req.Schema != nil {
		m.ResponseMIMEType = "application/json"
		m.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", &model.Error{Kind: model.KindProvider, Op: "generate", Message: err.Error(), Err: err}
	}

	return candidateText(resp)
}

// Close releases the underlying gRPC connection.
func (g *Generator) Close() error {
	return g.client.Close()
}

func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &model.Error{Kind: model.KindProvider, Op: "generate", Message: "no candidates returned"}
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

var schemaTypes = map[string]genai.Type{
	driven.TypeObject:  genai.TypeObject,
	driven.TypeArray:   genai.TypeArray,
	driven.TypeString:  genai.TypeString,
	driven.TypeNumber:  genai.TypeNumber,
	driven.TypeInteger: genai.TypeInteger,
	driven.TypeBoolean: genai.TypeBoolean,
}

func toGenaiSchema(s *driven.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        schemaTypes[s.Type],
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
		Enum:        s.Enum,
	}
	if len(s.Enum) > 0 {
		out.Format = "enum"
	}
	if s.Minimum != nil {
		out.Minimum = *s.Minimum
	}
	if s.Maximum != nil {
		out.Maximum = *s.Maximum
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}
