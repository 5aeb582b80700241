package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL time.Duration
	Issuer         string
}

type SessionConfig struct {
	Name   string
	Secret string
	MaxAge int
}

type ObservabilityConfig struct {
	ServiceName  string
	MetricsAddr  string
	PprofAddr    string
	OTLPEndpoint string
}

type RelayConfig struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxMessages    int
	MessagesWindow time.Duration
}

type Config struct {
	ServerPort        string
	LogLevel          string
	AllowedOrigins    []string
	JWT               JWTConfig
	Session           SessionConfig
	Observability     ObservabilityConfig
	Relay             RelayConfig
	DestinationsTTL   time.Duration
	VoteWatchInterval time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:     getEnvOrDefault("SERVER_PORT", "8091"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins: getListOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		JWT: JWTConfig{
			SecretKey: getEnvOrDefault("JWT_SECRET_KEY", ""),
			Issuer:    getEnvOrDefault("JWT_ISSUER", "swipetrip"),
		},
		Session: SessionConfig{
			Name:   getEnvOrDefault("SESSION_NAME", "swipetrip_session"),
			Secret: getEnvOrDefault("SESSION_SECRET", ""),
		},
		Observability: ObservabilityConfig{
			ServiceName:  getEnvOrDefault("OTEL_SERVICE_NAME", "swipetrip"),
			MetricsAddr:  getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:    getEnvOrDefault("PPROF_ADDR", ":6060"),
			OTLPEndpoint: getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4318"),
		},
	}

	var err error
	if cfg.JWT.AccessTokenTTL, err = getDurationOrDefault("JWT_ACCESS_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Session.MaxAge, err = getIntOrDefault("SESSION_MAX_AGE", 86400); err != nil {
		return nil, err
	}
	if cfg.Relay.SendBuffer, err = getIntOrDefault("RELAY_SEND_BUFFER", 32); err != nil {
		return nil, err
	}
	if cfg.Relay.WriteTimeout, err = getDurationOrDefault("RELAY_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Relay.MaxMessages, err = getIntOrDefault("RELAY_MAX_MESSAGES", 30); err != nil {
		return nil, err
	}
	if cfg.Relay.MessagesWindow, err = getDurationOrDefault("RELAY_MESSAGES_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if cfg.DestinationsTTL, err = getDurationOrDefault("DESTINATIONS_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.VoteWatchInterval, err = getDurationOrDefault("VOTE_WATCH_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDurationOrDefault("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}
	if len(cfg.JWT.SecretKey) < 32 {
		return nil, fmt.Errorf("JWT_SECRET_KEY must be at least 32 characters")
	}
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = cfg.JWT.SecretKey
	}
	if cfg.Relay.SendBuffer <= 0 {
		return nil, fmt.Errorf("RELAY_SEND_BUFFER must be positive, got %d", cfg.Relay.SendBuffer)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getListOrDefault splits a comma separated value, dropping empty entries.
func getListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
