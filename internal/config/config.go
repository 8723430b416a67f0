package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	AppPort   string
	Version   string
	LogLevel  string
	LogFormat string

	// Storage
	KVDriver      string
	TasksKey      string
	SQLitePath    string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Auth
	AuthEnabled bool
	JWTSecret   string
	TokenTTL    time.Duration

	// Limits
	APIRateLimit         int
	APIRateWindowSeconds int
	WriteRateLimit       int

	AllowedOrigin string
}

// Load reads the configuration from the environment, after loading .env if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Invalid numbers fall back to their
// defaults; missing required values are an error.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppPort:              stringOr(getenv("APP_PORT"), "8080"),
		Version:              stringOr(getenv("APP_VERSION"), "dev"),
		LogLevel:             stringOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:            stringOr(getenv("LOG_FORMAT"), "text"),
		KVDriver:             strings.ToLower(stringOr(getenv("KV_DRIVER"), DriverSQLite)),
		TasksKey:             stringOr(getenv("TASKS_KEY"), "tasks"),
		SQLitePath:           stringOr(getenv("SQLITE_PATH"), "./taskboard.db"),
		DatabaseURL:          getenv("DATABASE_URL"),
		RedisAddr:            getenv("REDIS_ADDR"),
		RedisPassword:        getenv("REDIS_PASSWORD"),
		RedisDB:              intOr(getenv("REDIS_DB"), 0, true),
		RedisPrefix:          stringOr(getenv("REDIS_PREFIX"), "taskboard:"),
		AuthEnabled:          getenv("AUTH_ENABLED") == "true",
		JWTSecret:            getenv("JWT_SECRET"),
		TokenTTL:             time.Duration(intOr(getenv("TOKEN_TTL_HOURS"), 24, false)) * time.Hour,
		APIRateLimit:         intOr(getenv("API_RATE_LIMIT"), 60, false),
		APIRateWindowSeconds: intOr(getenv("API_RATE_WINDOW_SECONDS"), 60, false),
		WriteRateLimit:       intOr(getenv("WRITE_RATE_LIMIT"), 30, false),
		AllowedOrigin:        getenv("ALLOWED_ORIGIN"),
	}

	switch cfg.KVDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for KV_DRIVER=%s", cfg.KVDriver)
		}
	case DriverRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for KV_DRIVER=%s", cfg.KVDriver)
		}
	default:
		return nil, fmt.Errorf("unknown KV_DRIVER %q", cfg.KVDriver)
	}

	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required when AUTH_ENABLED=true")
	}

	return cfg, nil
}

func stringOr(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// intOr parses v, keeping def for empty, invalid or non-positive values
// (zero is accepted when allowZero is set).
func intOr(v string, def int, allowZero bool) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 || (n == 0 && !allowZero) {
		return def
	}
	return n
}
