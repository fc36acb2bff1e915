package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AIProviderOpenAI = "openai"
	AIProviderMock   = "mock"
)

type Config struct {
	AppEnv           string
	AppName          string
	APIPrefix        string
	AppPort          string
	CORSAllowOrigins []string

	DatabaseURL     string
	AutoApplySchema bool
	RedisURL        string

	ServiceRoleKey string
	JWTSecret      string
	JWTAudience    string

	AIProvider        string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	AITemperature     float64
	AIMaxOutputTokens int
	AITimeoutSeconds  int

	MeaningModel         string
	MeaningBaseURL       string
	MeaningAPIKey        string
	MeaningCacheTTLHours int

	ClerkWebhookSecret     string
	ChatRateLimitPerMinute int
}

func Load() Config {
	_ = godotenv.Load(".env")

	openAIKey := getEnv("OPENAI_API_KEY", "")
	openAIBaseURL := getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")

	return Config{
		AppEnv:    getEnv("APP_ENV", "local"),
		AppName:   getEnv("APP_NAME", "Bloomery API"),
		APIPrefix: getEnv("API_PREFIX", "/api/v1"),
		AppPort:   getEnv("APP_PORT", "8000"),
		CORSAllowOrigins: getEnvCSV(
			"CORS_ALLOW_ORIGINS",
			[]string{"http://localhost:3000", "http://127.0.0.1:3000"},
		),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		AutoApplySchema:        getEnvBool("AUTO_APPLY_SCHEMA", false),
		RedisURL:               getEnv("REDIS_URL", ""),
		ServiceRoleKey:         getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		JWTSecret:              getEnv("SUPABASE_JWT_SECRET", ""),
		JWTAudience:            getEnv("JWT_AUDIENCE", "authenticated"),
		AIProvider:             strings.ToLower(getEnv("AI_PROVIDER", AIProviderOpenAI)),
		OpenAIAPIKey:           openAIKey,
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:          openAIBaseURL,
		AITemperature:          getEnvFloat("AI_TEMPERATURE", 0.7),
		AIMaxOutputTokens:      getEnvInt("AI_MAX_OUTPUT_TOKENS", 500),
		AITimeoutSeconds:       getEnvInt("AI_TIMEOUT_SECONDS", 60),
		MeaningModel:           getEnv("MEANING_MODEL", "deepseek/deepseek-chat-v3-0324:free"),
		MeaningBaseURL:         getEnv("MEANING_BASE_URL", "https://openrouter.ai/api/v1"),
		MeaningAPIKey:          getEnv("MEANING_API_KEY", openAIKey),
		MeaningCacheTTLHours:   getEnvInt("MEANING_CACHE_TTL_HOURS", 168),
		ClerkWebhookSecret:     getEnv("CLERK_WEBHOOK_SECRET", ""),
		ChatRateLimitPerMinute: getEnvInt("CHAT_RATE_LIMIT_PER_MINUTE", 20),
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.ServiceRoleKey) == "" {
		return errors.New("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return errors.New("SUPABASE_JWT_SECRET is required")
	}
	if len(secret) < 16 {
		return errors.New("SUPABASE_JWT_SECRET is too short; use at least 16 characters")
	}
	if strings.TrimSpace(c.ClerkWebhookSecret) == "" {
		return errors.New("CLERK_WEBHOOK_SECRET is required")
	}
	switch c.AIProvider {
	case AIProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("OPENAI_API_KEY is required when AI_PROVIDER=openai")
		}
		if strings.TrimSpace(c.OpenAIModel) == "" {
			return errors.New("OPENAI_MODEL is required")
		}
	case AIProviderMock:
		if c.IsProduction() {
			return errors.New("AI_PROVIDER=mock is not allowed in production")
		}
	default:
		return errors.New("AI_PROVIDER must be one of: openai, mock")
	}
	if c.AIMaxOutputTokens <= 0 {
		return errors.New("AI_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.AITemperature < 0 || c.AITemperature > 2 {
		return errors.New("AI_TEMPERATURE must be between 0 and 2")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvCSV(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}
