package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/subosito/gotenv"
)

func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment")
	}
}

// GetString returns the env value for key, or fallback when unset.
func GetString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("[Config] Invalid integer value, using fallback",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return n
}

func GetBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("[Config] Invalid boolean value, using fallback",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return b
}

func GetDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("[Config] Invalid duration value, using fallback",
			slog.String("key", key),
			slog.String("value", v))
		return fallback
	}
	return d
}
