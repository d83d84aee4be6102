package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	App      AppConfig
	API      APIConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// APIConfig points the console at the retail backend.
type APIConfig struct {
	BaseURL string
}

// SessionConfig controls the admin session cookie and its backing store.
type SessionConfig struct {
	Store        string
	Secret       string
	CookieName   string
	CookieSecure bool
	TTLMinutes   int
}

// PostgresConfig holds DB connection values for the audit trail.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr                  string
	Password              string
	DB                    int
	ConnectTimeoutSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"

	defaultAPIBaseURL    = "https://vinbackend-iqsw.onrender.com"
	defaultSessionSecret = "dev-session-secret"
	envDevelopment       = "development"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "admin-console"),
			Env:                   getEnv("APP_ENV", envDevelopment),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		API: APIConfig{
			BaseURL: strings.TrimSuffix(getEnv("API_BASE_URL", defaultAPIBaseURL), "/"),
		},
		Session: SessionConfig{
			Store:        strings.ToLower(getEnv("SESSION_STORE", SessionStoreRedis)),
			Secret:       getEnv("SESSION_SECRET", defaultSessionSecret),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "admin_session"),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
			TTLMinutes:   getEnvAsInt("SESSION_TTL_MINUTES", 720),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:                  getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:              os.Getenv("REDIS_PASSWORD"),
			DB:                    redisDB,
			ConnectTimeoutSeconds: getEnvAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", 5),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q", c.Session.Store)
	}
	if c.App.Env != envDevelopment && c.Session.Secret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set when APP_ENV is %q", c.App.Env)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ConnectTimeout bounds dialing and the startup ping.
func (r RedisConfig) ConnectTimeout() time.Duration {
	if r.ConnectTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.ConnectTimeoutSeconds) * time.Second
}

// TTL returns how long an admin session lives after sign-in. Expiry is
// absolute; activity does not extend it.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
