// Package config centralises configuration parsing for the GreenPoints services.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config captures runtime configuration values.
type Config struct {
	HTTPAddress        string
	DatabaseURL        string // Postgres DSN; empty selects the in-memory store.
	DatabaseName       string // Reported by /test only.
	RedisURL           string // Empty disables caching and rate limiting.
	CacheTTL           time.Duration
	RateLimitPerMinute int
	TrustProxyHeaders  bool     // Key rate limits on X-Forwarded-For; enable only behind a proxy that sets it.
	KafkaBrokers       []string // Empty disables event publishing.
	KafkaTopic         string
	ConsumerGroupID    string
	MetricsAddress     string
	CORSAllowedOrigins []string
	LogLevel           logrus.Level
}

// Load reads an optional .env file and then the environment.
func Load() Config {
	//nolint:errcheck
	godotenv.Load()

	return Config{
		HTTPAddress:        getEnv("HTTP_ADDRESS", ":8000"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseName:       getEnv("DATABASE_NAME", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		CacheTTL:           getDurationEnv("CACHE_TTL", 30*time.Second),
		RateLimitPerMinute: getIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		TrustProxyHeaders:  getBoolEnv("TRUST_PROXY_HEADERS", false),
		KafkaBrokers:       splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:         getEnv("KAFKA_TOPIC", "greenpoints.activity_events"),
		ConsumerGroupID:    getEnv("CONSUMER_GROUP_ID", "greenpoints-event-log"),
		MetricsAddress:     getEnv("METRICS_ADDRESS", ":9100"),
		CORSAllowedOrigins: splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           getLevelEnv("LOG_LEVEL", logrus.InfoLevel),
	}
}

// Logger builds the JSON logger shared by a binary.
func (c Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(c.LogLevel)
	return logger
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getLevelEnv(key string, fallback logrus.Level) logrus.Level {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := logrus.ParseLevel(value); err == nil {
			return parsed
		}
	}
	return fallback
}
