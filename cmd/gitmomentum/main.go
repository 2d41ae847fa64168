package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	geminiadapter "github.com/ericfisherdev/gitmomentum/internal/adapter/driven/gemini"
	githubadapter "github.com/ericfisherdev/gitmomentum/internal/adapter/driven/github"
	"github.com/ericfisherdev/gitmomentum/internal/adapter/driven/schemacheck"
	sqliteadapter "github.com/ericfisherdev/gitmomentum/internal/adapter/driven/sqlite"
	vertexadapter "github.com/ericfisherdev/gitmomentum/internal/adapter/driven/vertex"
	httphandler "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/gitmomentum/internal/adapter/driving/web"
	"github.com/ericfisherdev/gitmomentum/internal/application"
	"github.com/ericfisherdev/gitmomentum/internal/config"
	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"generator", cfg.Generator,
		"token_persistence", cfg.SecretKey != nil,
		"pr_delay", cfg.PRDelay,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire the credential store. Without a secret key tokens live only in memory.
	creds, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	if err != nil {
		return err
	}

	// 6. Build the GitHub client factory. Options are checked once up front so
	// a bad base URL fails at startup rather than on connect.
	ghOpts := githubadapter.Options{
		BaseURL:              cfg.GitHubBaseURL,
		CacheReads:           cfg.GitHubCache,
		WaitOnSecondaryLimit: cfg.GitHubRateLimitWait,
		Timeout:              30 * time.Second,
	}
	if _, err := githubadapter.NewClient("", ghOpts); err != nil {
		return fmt.Errorf("GITMOMENTUM_GITHUB_BASE_URL: %w", err)
	}
	factory := func(token string) driven.HostingClient {
		client, err := githubadapter.NewClient(token, ghOpts)
		if err != nil {
			slog.Error("creating github client", "error", err)
			return nil
		}
		return client
	}

	// 7. Create the text generator for the configured backend.
	var generator driven.TextGenerator
	switch cfg.Generator {
	case config.GeneratorVertex:
		vg, err := vertexadapter.NewGenerator(ctx, vertexadapter.Config{
			Project:         cfg.VertexProject,
			Location:        cfg.VertexLocation,
			CredentialsFile: cfg.VertexCredentialsFile,
		})
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := vg.Close(); closeErr != nil {
				slog.Error("error closing vertex client", "error", closeErr)
			}
		}()
		generator = vg
	default:
		gc, err := geminiadapter.NewClient(ctx, geminiadapter.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			return err
		}
		generator = gc
	}
	slog.Info("generator ready", "backend", cfg.Generator)

	genSvc := application.NewGenerationService(generator, schemacheck.NewValidator(), application.GenerationConfig{
		AnalysisModel: cfg.AnalysisModel,
		WritingModel:  cfg.WritingModel,
	})

	// 8. Create the session and restore a persisted token, falling back to
	// the bootstrap token from the environment.
	session := application.NewSession(factory, creds, slog.Default())
	restored, err := session.Restore(ctx)
	if err != nil {
		slog.Warn("stored token rejected, sign in again", "error", err)
	}
	if !restored && cfg.HasBootstrapToken() {
		if err := session.Connect(ctx, cfg.GitHubToken); err != nil {
			slog.Warn("bootstrap token rejected", "error", err)
		}
	}

	// 9. Create application services.
	analysisSvc := application.NewAnalysisService(session, genSvc, slog.Default())
	artifactSvc := application.NewArtifactService(session, genSvc, slog.Default())
	prWorkflow := application.NewPRWorkflow(session, application.PRWorkflowConfig{Delay: cfg.PRDelay}, slog.Default())
	healthSvc := application.NewHealthService(db, session)

	// 10. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(session, analysisSvc, artifactSvc, prWorkflow, healthSvc, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 11. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(session, analysisSvc, artifactSvc, prWorkflow, creds.Enabled(), slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Generation and the PR workflow are slow; keep responses open for them.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	// 12. Log startup complete.
	slog.Info("gitmomentum started",
		"listen_addr", cfg.ListenAddr,
		"connected", session.Connected(),
	)

	// 13. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 14. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
