package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/llm/gemini"
	"resume-matcher/internal/llm/openai"
	"resume-matcher/internal/services/health"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/server"
	"resume-matcher/internal/shared/storage/cache"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Cache           cache.Store
	LLM             llm.Client
	Analyzer        *analyzer.Analyzer
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	Health          *health.Service

	closers []func() error
}

// Build wires the provider, cache backend, service and router for cfg.
// Background work started here stops when ctx is canceled.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	telemetry.SetLevel(cfg.LogLevel)

	app := &App{Config: cfg}

	client, err := BuildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.LLM = client

	if err := app.buildCache(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Analyzer = analyzer.New(app.LLM, cfg.AnalyzerOptions())
	app.AnalysesService = &analyses.Service{
		Analyzer:      app.Analyzer,
		Store:         app.Cache,
		TTL:           cfg.ResultTTL,
		MinTextLength: cfg.MinTextLength,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.MaxUploadBytes)
	app.Health = health.NewService(app.Cache, cfg.CacheBackend, cfg.LLMProvider, cfg.LLMModel)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":      cfg.Env,
		"provider": cfg.LLMProvider,
		"model":    cfg.LLMModel,
		"cache":    cfg.CacheBackend,
	})
	return app, nil
}

// BuildLLMClient returns the configured provider. Missing credentials fall
// back to llm.PlaceholderClient so analyses degrade to provider_failure.
func BuildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return placeholder(cfg, "OPENAI_API_KEY"), nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, openai.Options{
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
	case config.ProviderGemini:
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return placeholder(cfg, "GEMINI_API_KEY"), nil
		}
		return gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.GeminiAPIKey,
			Timeout: cfg.LLMTimeout,
		})
	case config.ProviderVertex:
		if strings.TrimSpace(cfg.GoogleProject) == "" {
			return placeholder(cfg, "GOOGLE_CLOUD_PROJECT"), nil
		}
		return gemini.NewClient(ctx, gemini.Config{
			Vertex:   true,
			Project:  cfg.GoogleProject,
			Location: cfg.GoogleLocation,
			Timeout:  cfg.LLMTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}

func placeholder(cfg config.Config, missing string) llm.Client {
	telemetry.Warn("bootstrap.llm_not_configured", map[string]any{
		"provider": cfg.LLMProvider,
		"missing":  missing,
	})
	return llm.PlaceholderClient{}
}

func (a *App) buildCache(ctx context.Context) error {
	cfg := a.Config
	switch cfg.CacheBackend {
	case config.CacheMemory:
		a.Cache = cache.NewMemory(cfg.CacheMemoryCapacity)
	case config.CacheRedis:
		r := cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, r.Close)
		if err := r.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		a.Cache = r
	case config.CachePostgres:
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DBOptions(db.DefaultServerOptions()))
		if err != nil {
			return err
		}
		a.DB = sqlDB
		a.closers = append(a.closers, sqlDB.Close)
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		pg := &cache.Postgres{DB: sqlDB}
		go pg.RunSweeper(ctx, cfg.CacheSweepInterval)
		a.Cache = pg
	default:
		return fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
	}
	return nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
