// Package gemini implements the TextGenerator port against the Gemini API
// with the google.golang.org/genai SDK and an API key.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

const defaultTimeout = 2 * time.Minute

// Compile-time interface satisfaction check.
var _ driven.TextGenerator = (*Client)(nil)

// ErrAPIKeyNotSet is returned by NewClient when no API key is configured.
var ErrAPIKeyNotSet = errors.New("gemini API key not set: set GITMOMENTUM_GEMINI_API_KEY")

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	APIKey  string
	BaseURL string // Defaults to the SDK's generativelanguage endpoint.
	// HTTPClient overrides the default client (tests inject httptest clients).
	HTTPClient *http.Client
}

// Client implements driven.TextGenerator over models.generateContent.
type Client struct {
	models *genai.Models
}

// NewClient creates a Gemini API client. No request is made until Generate.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// Generate sends one user turn and returns the first candidate's text.
// A schema switches the response to JSON constrained by it.
func (c *Client) Generate(ctx context.Context, req driven.GenerateRequest) (string, error) {
	var config *genai.GenerateContentConfig
	if req.Schema != nil {
		config = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   toGenaiSchema(req.Schema),
		}
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), config)
	slog.Debug("gemini api call",
		"model", req.Model,
		"structured", req.Schema != nil,
		"ok", err == nil,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if err != nil {
		return "", generateError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &model.Error{Kind: model.KindProvider, Op: "generate", Message: "no candidates returned"}
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

// generateError classifies SDK failures. API errors carry the service's own
// message; transport failures are provider errors; anything else means the
// response body could not be decoded.
func generateError(err error) error {
	if apiErr, ok := asAPIError(err); ok {
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("generation request failed with status %d", apiErr.Code)
		}
		kind := model.KindProvider
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			kind = model.KindAuth
		}
		return &model.Error{Kind: kind, Op: "generate", Message: msg, Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return &model.Error{Kind: model.KindProvider, Op: "generate", Message: err.Error(), Err: err}
	}

	return &model.Error{
		Kind:    model.KindParse,
		Op:      "generate",
		Message: "malformed upstream response",
		Err:     fmt.Errorf("parsing generate response: %w", err),
	}
}

// asAPIError finds a genai.APIError whether the SDK returned it by value or
// by pointer.
func asAPIError(err error) (genai.APIError, bool) {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue, true
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return *byPointer, true
	}
	return genai.APIError{}, false
}
