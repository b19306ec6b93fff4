package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	StoreBackend string
	DatabaseURL  string
	SQLitePath   string
	DBMaxRetries int
	DBRetryDelay time.Duration

	JWTSecret        string
	JWTRefreshSecret string
	JWTExpiry        time.Duration
	JWTRefreshExpiry time.Duration

	RedisURL          string
	AssistantCacheTTL time.Duration
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	AssistantTimeout  time.Duration

	HorizonURL  string
	CORSOrigins []string
}

func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("APP_ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		StoreBackend: getEnvOrDefault("STORE_BACKEND", BackendMemory),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SQLitePath:   getEnvOrDefault("SQLITE_PATH", "freelancedesk.db"),
		DBMaxRetries: getEnvInt("DB_MAX_RETRIES", 30),
		DBRetryDelay: getEnvDuration("DB_RETRY_DELAY", 2*time.Second),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		JWTExpiry:        getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		JWTRefreshExpiry: getEnvDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),

		RedisURL:          os.Getenv("REDIS_URL"),
		AssistantCacheTTL: getEnvDuration("ASSISTANT_CACHE_TTL", 10*time.Minute),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		AssistantTimeout:  getEnvDuration("ASSISTANT_TIMEOUT", 15*time.Second),

		HorizonURL:  os.Getenv("HORIZON_URL"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			problems = append(problems, "DATABASE_URL is required when using the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty when using the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store backend '%s': must be one of memory, postgres, sqlite", c.StoreBackend))
	}
	if c.DBMaxRetries < 1 {
		problems = append(problems, fmt.Sprintf("invalid DB_MAX_RETRIES %d: must be at least 1", c.DBMaxRetries))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	} else if len(c.JWTSecret) < 16 && c.Env == "production" {
		problems = append(problems, "JWT_SECRET must be at least 16 characters in production")
	}
	if c.JWTExpiry <= 0 {
		problems = append(problems, fmt.Sprintf("invalid JWT_EXPIRY %v: must be positive", c.JWTExpiry))
	}

	if c.RedisURL != "" {
		if _, err := url.Parse(c.RedisURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid REDIS_URL '%s': %v", c.RedisURL, err))
		}
	}
	if c.OpenAIBaseURL != "" {
		if u, err := url.Parse(c.OpenAIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, fmt.Sprintf("invalid OPENAI_BASE_URL '%s': must be an absolute URL", c.OpenAIBaseURL))
		}
	}
	if c.AssistantTimeout < 100*time.Millisecond {
		problems = append(problems, fmt.Sprintf("invalid ASSISTANT_TIMEOUT %v: must be at least 100ms", c.AssistantTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// AIEnabled reports whether the assistant can reach an upstream model.
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
