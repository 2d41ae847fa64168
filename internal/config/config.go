// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Generator backends selectable through GITMOMENTUM_GENERATOR.
const (
	GeneratorGemini = "gemini"
	GeneratorVertex = "vertex"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string

	// SecretKey is the 32-byte AES key for the credential store. Nil disables
	// token persistence.
	SecretKey []byte

	GitHubToken         string
	GitHubBaseURL       string
	GitHubCache         bool
	GitHubRateLimitWait bool

	Generator      string
	GeminiAPIKey   string
	GeminiBaseURL  string
	VertexProject  string
	VertexLocation string

	// VertexCredentialsFile is an optional service-account key; application
	// default credentials are used when empty.
	VertexCredentialsFile string

	// Empty model names fall back to the generation service defaults.
	AnalysisModel string
	WritingModel  string

	PRDelay time.Duration
}

// HasBootstrapToken reports whether a GitHub token was supplied through the
// environment.
func (c *Config) HasBootstrapToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// A .env file in the working directory is loaded first when present; variables
// already set in the process environment win.
// Defaults: GITMOMENTUM_LISTEN_ADDR (127.0.0.1:8080), GITMOMENTUM_DB_PATH
// (gitmomentum.db), GITMOMENTUM_GENERATOR (gemini), GITMOMENTUM_VERTEX_LOCATION
// (us-central1), GITMOMENTUM_PR_DELAY (2s).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     "127.0.0.1:8080",
		DBPath:         "gitmomentum.db",
		Generator:      GeneratorGemini,
		VertexLocation: "us-central1",
		PRDelay:        2 * time.Second,
	}

	if v, ok := os.LookupEnv("GITMOMENTUM_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("GITMOMENTUM_DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v, ok := os.LookupEnv("GITMOMENTUM_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("GITMOMENTUM_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("GITMOMENTUM_SECRET_KEY must be 64 hex characters (32 bytes), got %d bytes", len(key))
		}
		cfg.SecretKey = key
	}

	cfg.GitHubToken = strings.TrimSpace(os.Getenv("GITMOMENTUM_GITHUB_TOKEN"))
	cfg.GitHubBaseURL = os.Getenv("GITMOMENTUM_GITHUB_BASE_URL")

	var err error
	if cfg.GitHubCache, err = boolEnv("GITMOMENTUM_GITHUB_CACHE"); err != nil {
		return nil, err
	}
	if cfg.GitHubRateLimitWait, err = boolEnv("GITMOMENTUM_GITHUB_RATELIMIT_WAIT"); err != nil {
		return nil, err
	}

	if v, ok := os.LookupEnv("GITMOMENTUM_GENERATOR"); ok && v != "" {
		switch g := strings.ToLower(v); g {
		case GeneratorGemini, GeneratorVertex:
			cfg.Generator = g
		default:
			return nil, fmt.Errorf("GITMOMENTUM_GENERATOR has invalid value %q: want gemini or vertex", v)
		}
	}
	cfg.GeminiAPIKey = os.Getenv("GITMOMENTUM_GEMINI_API_KEY")
	cfg.GeminiBaseURL = os.Getenv("GITMOMENTUM_GEMINI_BASE_URL")
	cfg.VertexProject = os.Getenv("GITMOMENTUM_VERTEX_PROJECT")
	if v, ok := os.LookupEnv("GITMOMENTUM_VERTEX_LOCATION"); ok && v != "" {
		cfg.VertexLocation = v
	}
	cfg.VertexCredentialsFile = os.Getenv("GITMOMENTUM_VERTEX_CREDENTIALS_FILE")
	if cfg.Generator == GeneratorVertex && cfg.VertexProject == "" {
		return nil, fmt.Errorf("GITMOMENTUM_VERTEX_PROJECT is required when GITMOMENTUM_GENERATOR=vertex")
	}

	cfg.AnalysisModel = os.Getenv("GITMOMENTUM_ANALYSIS_MODEL")
	cfg.WritingModel = os.Getenv("GITMOMENTUM_WRITING_MODEL")

	if v, ok := os.LookupEnv("GITMOMENTUM_PR_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GITMOMENTUM_PR_DELAY has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GITMOMENTUM_PR_DELAY must be positive, got %s", parsed)
		}
		cfg.PRDelay = parsed
	}

	return cfg, nil
}

func boolEnv(key string) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s has invalid boolean %q: %w", key, v, err)
	}
	return b, nil
}
