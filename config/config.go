package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// API Configuration
	APIPort        string
	APIHost        string
	APIEnvironment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT & Security
	JWTSecret          string
	JWTExpirationHours int

	// Webhook signature verification
	TikTokWebhookSecret string
	GoogleWebhookKey    string

	// CORS
	CORSAllowedOrigins []string

	// Rate Limiting
	RateLimitRequestsPerMinute int
	RateLimitBurst             int
	WebhookRateLimitPerMinute  int

	// Sentry
	SentryDSN         string
	SentryEnvironment string

	// Email
	EmailFrom        string
	EmailFromName    string
	SendGridAPIKey   string
	LeadAlertAddress string

	// AI
	OpenAIAPIKey string
	OpenAIModel  string

	// Frontend
	FrontendURL string

	// Bootstrap
	AdminEmail    string
	AdminPassword string
	SeedDemoData  bool

	// Retention
	IntegrationLogRetentionDays int

	// Logging
	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// API
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "0.0.0.0"),
		APIEnvironment: getEnv("API_ENVIRONMENT", "development"),

		// Database (empty URL falls back to the in-memory store)
		DatabaseURL: getEnv("DATABASE_URL", ""),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		// JWT
		JWTSecret:          getEnv("JWT_SECRET", "change-this-in-production"),
		JWTExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),

		// Webhook signature verification (empty disables the check)
		TikTokWebhookSecret: getEnv("TIKTOK_WEBHOOK_SECRET", ""),
		GoogleWebhookKey:    getEnv("GOOGLE_WEBHOOK_KEY", ""),

		// CORS
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3001"}),

		// Rate Limiting
		RateLimitRequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
		RateLimitBurst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		WebhookRateLimitPerMinute:  getEnvAsInt("WEBHOOK_RATE_LIMIT_PER_MINUTE", 100),

		// Sentry
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "development"),

		// Email
		EmailFrom:        getEnv("EMAIL_FROM", "noreply@nhfg.io"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "NHFG CRM"),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		LeadAlertAddress: getEnv("LEAD_ALERT_ADDRESS", ""),

		// AI
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		// Frontend
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3001"),

		// Bootstrap
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SeedDemoData:  getEnvAsBool("SEED_DEMO_DATA", false),

		// Retention
		IntegrationLogRetentionDays: getEnvAsInt("INTEGRATION_LOG_RETENTION_DAYS", 90),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
