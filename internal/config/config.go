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

// Storage drivers
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

type Config struct {
	Server        ServerConfig
	Backend       BackendConfig
	Storage       StorageConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Throttle      ThrottleConfig
	Notifications NotificationConfig
	Uploads       UploadConfig
}

type ServerConfig struct {
	Port                   string
	Env                    string
	LogLevel               string
	AllowedOrigins         []string
	TrustedProxies         []string
	ReadTimeout            time.Duration
	WriteTimeout           time.Duration
	IdleTimeout            time.Duration
	LoginRequestsPerMinute int
}

type BackendConfig struct {
	BaseURL string
	Timeout time.Duration // 0 keeps the transport default
}

type StorageConfig struct {
	Driver          string
	RedisURL        string
	RedisPrefix     string
	CleanupInterval time.Duration
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type SessionConfig struct {
	CookieNames    []string
	CookieTTL      time.Duration
	GuardInterval  time.Duration
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite string
	CSRFTokenTTL   time.Duration
}

type ThrottleConfig struct {
	MaxAttempts      int
	LockDuration     time.Duration
	AttemptRetention time.Duration
}

type NotificationConfig struct {
	PollInterval time.Duration
}

type UploadConfig struct {
	MaxBytes     int64
	MaxDimension int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:                   getEnv("PORT", "8080"),
			Env:                    env,
			LogLevel:               getEnv("LOG_LEVEL", "info"),
			AllowedOrigins:         parseAllowedOrigins(env),
			TrustedProxies:         getEnvAsList("TRUSTED_PROXIES", nil),
			ReadTimeout:            getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:           getEnvAsDuration("SERVER_WRITE_TIMEOUT", 0),
			IdleTimeout:            getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			LoginRequestsPerMinute: getEnvAsInt("LOGIN_REQUESTS_PER_MINUTE", 10),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", ""), "/"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 0),
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory)),
			RedisURL:        getEnv("REDIS_URL", ""),
			RedisPrefix:     getEnv("REDIS_PREFIX", "console:"),
			CleanupInterval: getEnvAsDuration("STORAGE_CLEANUP_INTERVAL", 10*time.Minute),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "console"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Session: SessionConfig{
			CookieNames:    getEnvAsList("SESSION_COOKIE_NAMES", []string{"superAdminToken"}),
			CookieTTL:      getEnvAsDuration("SESSION_COOKIE_TTL", 7*24*time.Hour),
			GuardInterval:  getEnvAsDuration("SESSION_GUARD_INTERVAL", 60*time.Second),
			CookieDomain:   getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite: getEnv("COOKIE_SAMESITE", "lax"),
			CSRFTokenTTL:   getEnvAsDuration("CSRF_TOKEN_TTL", 12*time.Hour),
		},
		Throttle: ThrottleConfig{
			MaxAttempts:      getEnvAsInt("LOGIN_MAX_ATTEMPTS", 3),
			LockDuration:     getEnvAsDuration("LOGIN_LOCK_DURATION", 10*time.Minute),
			AttemptRetention: getEnvAsDuration("LOGIN_ATTEMPT_RETENTION", 30*24*time.Hour),
		},
		Notifications: NotificationConfig{
			PollInterval: getEnvAsDuration("NOTIFICATION_POLL_INTERVAL", 30*time.Second),
		},
		Uploads: UploadConfig{
			MaxBytes:     int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5<<20)),
			MaxDimension: getEnvAsInt("UPLOAD_MAX_DIMENSION", 512),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if u, err := url.Parse(c.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("BACKEND_BASE_URL must be an absolute URL (got %q)", c.Backend.BaseURL)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres storage driver")
		}
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis storage driver")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of memory, postgres, redis (got %q)", c.Storage.Driver)
	}

	if len(c.Session.CookieNames) == 0 {
		return fmt.Errorf("SESSION_COOKIE_NAMES must name at least one cookie")
	}
	if c.Throttle.MaxAttempts < 1 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1")
	}

	return nil
}

// TokenCookie is the cookie that carries the backend token
func (c *SessionConfig) TokenCookie() string {
	return c.CookieNames[0]
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string, defaultVal []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return getEnvAsList("ALLOWED_ORIGINS", []string{})
	}

	// Development: the dashboard dev servers
	return getEnvAsList("ALLOWED_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:3001",
	})
}
