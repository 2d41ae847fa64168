package gemini_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitmomentum/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/gitmomentum/internal/domain/model"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *gemini.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := gemini.NewClient(context.Background(), gemini.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := gemini.NewClient(context.Background(), gemini.ClientConfig{})
	require.ErrorIs(t, err, gemini.ErrAPIKeyNotSet)
}

func TestGenerate_PlainText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-3-pro-preview:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasConfig := body["generationConfig"]
		assert.False(t, hasConfig)

		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"# Hello"},{"text":" world"}]}}]}`)
	})

	got, err := client.Generate(context.Background(), driven.GenerateRequest{
		Model:  "gemini-3-pro-preview",
		Prompt: "write a README",
	})
	require.NoError(t, err)
	assert.Equal(t, "# Hello world", got)
}

func TestGenerate_StructuredSendsSchema(t *testing.T) {
	var body struct {
		GenerationConfig struct {
			ResponseMIMEType string         `json:"responseMimeType"`
			ResponseSchema   map[string]any `json:"responseSchema"`
		} `json:"generationConfig"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"{\"ok\":true}"}]}}]}`)
	})

	schema := &driven.Schema{
		Type: driven.TypeObject,
		Properties: map[string]*driven.Schema{
			"ok":   {Type: driven.TypeBoolean},
			"kind": {Type: driven.TypeString, Enum: []string{"a", "b"}},
		},
		Required: []string{"ok"},
	}
	got, err := client.Generate(context.Background(), driven.GenerateRequest{Model: "m", Prompt: "p", Schema: schema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, got)

	assert.Equal(t, "application/json", body.GenerationConfig.ResponseMIMEType)
	assert.Equal(t, "OBJECT", body.GenerationConfig.ResponseSchema["type"])
	props := body.GenerationConfig.ResponseSchema["properties"].(map[string]any)
	kind := props["kind"].(map[string]any)
	assert.Equal(t, "STRING", kind["type"])
	assert.Equal(t, "enum", kind["format"])
}

func TestGenerate_ProviderErrorMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	})

	_, err := client.Generate(context.Background(), driven.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, "API key not valid", err.Error())
	assert.Equal(t, model.KindProvider, model.KindOf(err))
}

func TestGenerate_PermissionDeniedIsAuthKind(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"Permission denied","status":"PERMISSION_DENIED"}}`)
	})

	_, err := client.Generate(context.Background(), driven.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, model.KindAuth, model.KindOf(err))
}

func TestGenerate_NoCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := client.Generate(context.Background(), driven.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, model.KindProvider, model.KindOf(err))
}

func TestGenerate_MalformedBodyIsParseError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `not json`)
	})

	_, err := client.Generate(context.Background(), driven.GenerateRequest{Model: "m", Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, model.KindParse, model.KindOf(err))
}
