package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/llm/gemini"
	"resume-matcher/internal/llm/openai"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/cache"
)

func baseConfig() config.Config {
	return config.Config{
		Port:                "8080",
		Env:                 "dev",
		LogLevel:            "error",
		LLMProvider:         config.ProviderOpenAI,
		LLMModel:            "gpt-4o",
		LLMTemperature:      0.5,
		LLMMaxTokens:        2000,
		LLMTimeout:          time.Minute,
		MaxInputChars:       4000,
		TruncationMarker:    "...",
		MinTextLength:       50,
		ResultTTL:           time.Hour,
		CacheBackend:        config.CacheMemory,
		CacheMemoryCapacity: 10,
		MaxUploadBytes:      1 << 20,
		AnalyzeRatePerSec:   1,
		AnalyzeRateBurst:    1,
	}
}

func TestBuildMemoryBackendWithoutKeyUsesPlaceholder(t *testing.T) {
	app, err := Build(context.Background(), baseConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	require.IsType(t, llm.PlaceholderClient{}, app.LLM)
	require.IsType(t, &cache.Memory{}, app.Cache)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.CacheBackend = config.CacheRedis
	cfg.RedisAddr = mr.Addr()

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	require.IsType(t, &cache.Redis{}, app.Cache)
}

func TestBuildRedisUnreachableFails(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := baseConfig()
	cfg.CacheBackend = config.CacheRedis
	cfg.RedisAddr = addr

	_, err = Build(context.Background(), cfg)
	require.Error(t, err)
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.CacheBackend = ""
	_, err := Build(context.Background(), cfg)
	require.ErrorContains(t, err, "CACHE_BACKEND")
}

func TestBuildLLMClientByProvider(t *testing.T) {
	ctx := context.Background()

	cfg := baseConfig()
	cfg.OpenAIAPIKey = "sk-test"
	client, err := BuildLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &openai.Client{}, client)

	cfg = baseConfig()
	cfg.LLMProvider = config.ProviderGemini
	cfg.GeminiAPIKey = "test-key"
	client, err = BuildLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &gemini.Client{}, client)

	cfg = baseConfig()
	cfg.LLMProvider = config.ProviderVertex
	client, err = BuildLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, llm.PlaceholderClient{}, client)

	cfg.LLMProvider = "unknown"
	_, err = BuildLLMClient(ctx, cfg)
	require.Error(t, err)
}
