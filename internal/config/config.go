package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// LLM provider
	LLMProvider           string
	OpenRouterAPIKey      string
	OpenRouterBaseURL     string
	GeminiAPIKey          string
	LLMTimeout            time.Duration
	LLMConcurrentRequests int

	// Rate limiting
	ChatRequestsPerMin int

	// History
	HistoryBackend string
	RedisURL       string
	DatabaseURL    string
	MigrationsDir  string

	// JWT
	JWTSecret string
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Load reads .env (when present) and the process environment. Provider
// credentials are optional here; they are checked when the model is first
// called.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                  getEnvOrDefault("PORT", "8000"),
		Env:                   getEnvOrDefault("ENV", "development"),
		LLMProvider:           getEnvOrDefault("LLM_PROVIDER", ProviderOpenRouter),
		OpenRouterAPIKey:      os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL:     getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		LLMTimeout:            time.Duration(getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		LLMConcurrentRequests: getEnvAsIntOrDefault("LLM_CONCURRENT_REQUESTS", 5),
		ChatRequestsPerMin:    getEnvAsIntOrDefault("CHAT_REQUESTS_PER_MINUTE", 30),
		HistoryBackend:        getEnvOrDefault("HISTORY_BACKEND", BackendMemory),
		MigrationsDir:         getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
	}

	switch cfg.LLMProvider {
	case ProviderOpenRouter, ProviderGemini:
	default:
		panic(fmt.Sprintf("unsupported LLM_PROVIDER %q", cfg.LLMProvider))
	}

	switch cfg.HistoryBackend {
	case BackendMemory:
	case BackendRedis:
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	case BackendPostgres:
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	default:
		panic(fmt.Sprintf("unsupported HISTORY_BACKEND %q", cfg.HistoryBackend))
	}

	if cfg.LLMTimeout <= 0 {
		panic(fmt.Sprintf("LLM_TIMEOUT_SECONDS must be positive, got %s", os.Getenv("LLM_TIMEOUT_SECONDS")))
	}

	if cfg.LLMConcurrentRequests < 1 {
		cfg.LLMConcurrentRequests = 1
	}

	return cfg
}

// ProviderAPIKey returns the credential of the selected provider.
func (c *Config) ProviderAPIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.OpenRouterAPIKey
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
