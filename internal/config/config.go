package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Env            string
	DatabaseDSN    string
	JWTSecret      string
	JWTExpiry      time.Duration
	AllowedOrigins []string
}

func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("ENV", "development"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/taskflow?parseTime=true"),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTExpiry:      getDuration("JWT_EXPIRY", 7*24*time.Hour),
		AllowedOrigins: getList("ALLOWED_ORIGINS", []string{"*"}),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret-change-in-production" {
		slog.Error("JWT_SECRET must be set in production environment")
		os.Exit(1)
	}

	return cfg
}

// IsDevelopment reports whether the server runs in development mode.
// Development error responses may include internal details.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v)
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
