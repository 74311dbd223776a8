package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
	RefreshTTL      time.Duration
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	AppName string
	SiteURL string
	Timeout time.Duration
}

type ResendConfig struct {
	APIKey    string
	FromEmail string
}

type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

type Config struct {
	Repositories    RepositoriesConfig
	Auth            AuthConfig
	OpenRouter      OpenRouterConfig
	Resend          ResendConfig
	Nominatim       NominatimConfig
	ServerPort      string
	PprofPort       string
	FrontendURL     string
	ShutdownTimeout time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "globetrotters"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: int32(getEnvIntOrDefault("POSTGRES_MAX_CONNS", 30)),
				MinConns: int32(getEnvIntOrDefault("POSTGRES_MIN_CONNS", 5)),
			},
		},
		Auth: AuthConfig{
			JWTSecret:       getEnvOrDefault("JWT_SECRET_KEY", ""),
			TokenExpiration: 24 * time.Hour,
			RefreshTTL:      30 * 24 * time.Hour,
		},
		OpenRouter: OpenRouterConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:   getEnvOrDefault("OPENROUTER_MODEL", "deepseek/deepseek-r1-0528:free"),
			AppName: getEnvOrDefault("OPENROUTER_APP_NAME", "GlobalTrotters"),
			SiteURL: getEnvOrDefault("OPENROUTER_SITE_URL", "http://localhost:3000"),
			Timeout: 30 * time.Second,
		},
		Resend: ResendConfig{
			APIKey:    os.Getenv("RESEND_API_KEY"),
			FromEmail: getEnvOrDefault("RESEND_FROM_EMAIL", "onboarding@resend.dev"),
		},
		Nominatim: NominatimConfig{
			BaseURL:   getEnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnvOrDefault("NOMINATIM_USER_AGENT", "GlobalTrotters/1.0"),
			Timeout:   8 * time.Second,
		},
		ServerPort:      getEnvOrDefault("SERVER_PORT", "8091"),
		PprofPort:       getEnvOrDefault("PPROF_PORT", "6060"),
		FrontendURL:     getEnvOrDefault("FRONTEND_URL", "http://localhost:3000"),
		ShutdownTimeout: time.Duration(getEnvIntOrDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if cfg.Repositories.Postgres.Password == "" {
		return nil, fmt.Errorf("POSTGRES_PASSWORD environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
