package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upstream providers the relay can forward to.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port          string
	AllowedOrigin string
	// Upstream
	Provider        string
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	UpstreamTimeout time.Duration
	// Logging
	LogLevel string
	LogJSON  bool
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:            getEnvDefault("PORT", "8080"),
		AllowedOrigin:   getEnvDefault("ALLOWED_ORIGIN", "*"),
		Provider:        strings.ToLower(getEnvDefault("UPSTREAM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnvDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL:   getEnvDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		UpstreamTimeout: time.Duration(getEnvIntDefault("UPSTREAM_TIMEOUT", 60)) * time.Second,
		LogLevel:        getEnvDefault("LOG_LEVEL", "info"),
		LogJSON:         getEnvBoolDefault("LOG_JSON", false),
	}
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			log.Println("warning: GEMINI_API_KEY is not set; upstream calls will fail authentication")
		}
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			log.Println("warning: OPENAI_API_KEY is not set; upstream calls will fail authentication")
		}
	default:
		log.Printf("warning: unknown UPSTREAM_PROVIDER %q, falling back to %s", cfg.Provider, ProviderGemini)
		cfg.Provider = ProviderGemini
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
