package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	// LLM provider: "bedrock" or "gemini"
	LLMProvider       string
	BedrockModelID    string
	GeminiAPIKey      string
	GeminiModelID     string
	LLMTimeout        time.Duration
	ConfidenceDefault float64

	// Turn dispatch
	UseMemoryQueue bool
	WorkerCount    int
	TurnQueueURL   string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Notification channels
	SendGridAPIKey      string
	SendGridFromEmail   string
	SendGridFromName    string
	SESFromEmail        string
	SMSProviderEndpoint string
	SMSProviderAPIKey   string
	SMSFromNumber       string
	NotificationsTable  string

	// Transcript archive
	ArchiveBucket string

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// Per-IP limit on the public voice endpoint; zero disables it.
	TurnRateLimit float64
	TurnRateBurst int
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		LLMProvider:       getEnv("LLM_PROVIDER", "bedrock"),
		BedrockModelID:    getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-5-haiku-20241022-v1:0"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:     getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 12*time.Second),
		ConfidenceDefault: getEnvAsFloat("CONFIDENCE_THRESHOLD_DEFAULT", 0.8),

		UseMemoryQueue: getEnvAsBool("USE_MEMORY_QUEUE", true),
		WorkerCount:    getEnvAsInt("WORKER_COUNT", 2),
		TurnQueueURL:   getEnv("TURN_QUEUE_URL", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		SendGridAPIKey:      getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:   getEnv("SENDGRID_FROM_EMAIL", "no-reply@frontdesk.ai"),
		SendGridFromName:    getEnv("SENDGRID_FROM_NAME", "FrontDesk AI"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		SMSProviderEndpoint: getEnv("SMS_PROVIDER_ENDPOINT", ""),
		SMSProviderAPIKey:   getEnv("SMS_PROVIDER_API_KEY", ""),
		SMSFromNumber:       getEnv("SMS_FROM_NUMBER", ""),
		NotificationsTable:  getEnv("NOTIFICATIONS_TABLE", "frontdesk-notifications"),

		ArchiveBucket: getEnv("ARCHIVE_BUCKET", ""),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		TurnRateLimit: getEnvAsFloat("TURN_RATE_LIMIT", 0),
		TurnRateBurst: getEnvAsInt("TURN_RATE_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
