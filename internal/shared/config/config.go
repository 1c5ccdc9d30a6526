package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/shared/storage/db"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"

	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	LLMProvider    string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	LLMTimeout     time.Duration

	MaxInputChars    int
	TruncationMarker string
	MinTextLength    int
	ResultTTL        time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string

	GeminiAPIKey   string
	GoogleProject  string
	GoogleLocation string

	CacheBackend        string
	CacheMemoryCapacity int
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	DatabaseURL         string
	CacheSweepInterval  time.Duration

	// DB pool overrides. Zero keeps the db package default.
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBPingTimeout     time.Duration

	MaxUploadBytes    int64
	AnalyzeRatePerSec float64
	AnalyzeRateBurst  int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		LLMProvider:    NormalizeProvider(getEnv("LLM_PROVIDER", ProviderOpenAI)),
		LLMModel:       getEnv("LLM_MODEL", analyzer.DefaultModel),
		LLMTemperature: getFloat("LLM_TEMPERATURE", analyzer.DefaultTemperature),
		LLMMaxTokens:   getInt("LLM_MAX_TOKENS", analyzer.DefaultMaxTokens),
		LLMTimeout:     time.Duration(getInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,

		MaxInputChars:    getInt("ANALYSIS_MAX_INPUT_CHARS", analyzer.DefaultMaxInputChars),
		TruncationMarker: getEnv("ANALYSIS_TRUNCATION_MARKER", analyzer.DefaultTruncationMarker),
		MinTextLength:    getInt("ANALYSIS_MIN_TEXT_LENGTH", 50),
		ResultTTL:        getDuration("ANALYSIS_RESULT_TTL", time.Hour),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GoogleProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),

		CacheBackend:        normalizeCacheBackend(getEnv("CACHE_BACKEND", CacheMemory)),
		CacheMemoryCapacity: getInt("CACHE_MEMORY_CAPACITY", 10000),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getInt("REDIS_DB", 0),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		CacheSweepInterval:  getDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),

		DBMaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 0),
		DBMaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 0),
		DBConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 0),
		DBConnMaxIdleTime: getDuration("DB_CONN_MAX_IDLE_TIME", 0),
		DBPingTimeout:     getDuration("DB_PING_TIMEOUT", 0),

		MaxUploadBytes:    int64(getInt("MAX_UPLOAD_BYTES", 5<<20)),
		AnalyzeRatePerSec: getFloat("ANALYZE_RATE_PER_SEC", 0.2),
		AnalyzeRateBurst:  getInt("ANALYZE_RATE_BURST", 5),
	}
}

// Validate reports configuration that cannot produce a working service.
func (c Config) Validate() error {
	var errs []error
	if c.LLMProvider == "" {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of openai, gemini, vertex"))
	}
	if c.CacheBackend == "" {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be one of memory, redis, postgres"))
	}
	if c.CacheBackend == CachePostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL is required for CACHE_BACKEND=postgres"))
	}
	if c.LLMMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive"))
	}
	if c.MaxInputChars <= 0 {
		errs = append(errs, fmt.Errorf("ANALYSIS_MAX_INPUT_CHARS must be positive"))
	}
	if c.MinTextLength <= 0 {
		errs = append(errs, fmt.Errorf("ANALYSIS_MIN_TEXT_LENGTH must be positive"))
	}
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive"))
	}
	if c.ResultTTL <= 0 {
		errs = append(errs, fmt.Errorf("ANALYSIS_RESULT_TTL must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// AnalyzerOptions projects the LLM and truncation settings onto analyzer options.
func (c Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		Model:            c.LLMModel,
		Temperature:      float32(c.LLMTemperature),
		MaxTokens:        c.LLMMaxTokens,
		MaxInputChars:    c.MaxInputChars,
		TruncationMarker: c.TruncationMarker,
	}
}

// DBOptions applies the DB_* overrides on top of defaults.
func (c Config) DBOptions(defaults db.Options) db.Options {
	opts := defaults
	if c.DBMaxOpenConns > 0 {
		opts.MaxOpenConns = c.DBMaxOpenConns
	}
	if c.DBMaxIdleConns > 0 {
		opts.MaxIdleConns = c.DBMaxIdleConns
	}
	if c.DBConnMaxLifetime > 0 {
		opts.ConnMaxLifetime = c.DBConnMaxLifetime
	}
	if c.DBConnMaxIdleTime > 0 {
		opts.ConnMaxIdleTime = c.DBConnMaxIdleTime
	}
	if c.DBPingTimeout > 0 {
		opts.PingTimeout = c.DBPingTimeout
	}
	return opts
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// NormalizeProvider maps provider aliases to the Provider* constants, or "" when unknown.
func NormalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGemini, "google":
		return ProviderGemini
	case ProviderVertex, "vertexai":
		return ProviderVertex
	default:
		return ""
	}
}

func normalizeCacheBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case CacheMemory:
		return CacheMemory
	case CacheRedis:
		return CacheRedis
	case CachePostgres, "postgresql", "pg":
		return CachePostgres
	default:
		return ""
	}
}
