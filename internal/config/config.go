package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Auth    AuthConfig
	Storage StorageConfig
	Redis   RedisConfig
	Logger  LoggerConfig
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

// BackendConfig points at the remote SmartCashbook REST API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// AuthConfig defines session lifecycle parameters.
type AuthConfig struct {
	WarningWindowMinutes int
	WatchdogIntervalSec  int
	CountdownIntervalSec int
}

// StorageConfig selects and tunes the durable token store.
type StorageConfig struct {
	Backend  string // "file" or "redis"
	FilePath string
	SealKey  string // hex-encoded 32-byte key; empty disables sealing
	RedisKey string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "smartcashbook-client"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Backend: BackendConfig{
			BaseURL:        getEnv("BACKEND_BASE_URL", "http://127.0.0.1:8080"),
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
		},
		Auth: AuthConfig{
			WarningWindowMinutes: getEnvAsInt("AUTH_WARNING_WINDOW_MINUTES", 5),
			WatchdogIntervalSec:  getEnvAsInt("AUTH_WATCHDOG_INTERVAL_SECONDS", 60),
			CountdownIntervalSec: getEnvAsInt("AUTH_COUNTDOWN_INTERVAL_SECONDS", 1),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "file"),
			FilePath: getEnv("STORAGE_FILE_PATH", defaultTokenPath()),
			SealKey:  os.Getenv("STORAGE_SEAL_KEY"),
			RedisKey: getEnv("STORAGE_REDIS_KEY", "smartcashbook:session:token"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
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

// Timeout returns the backend call timeout duration.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// WarningWindow returns the expiring-soon threshold.
func (a AuthConfig) WarningWindow() time.Duration {
	if a.WarningWindowMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.WarningWindowMinutes) * time.Minute
}

// WatchdogInterval returns the normal re-check cadence.
func (a AuthConfig) WatchdogInterval() time.Duration {
	if a.WatchdogIntervalSec <= 0 {
		return time.Minute
	}
	return time.Duration(a.WatchdogIntervalSec) * time.Second
}

// CountdownInterval returns the cadence used while the session is expiring soon.
func (a AuthConfig) CountdownInterval() time.Duration {
	if a.CountdownIntervalSec <= 0 {
		return time.Second
	}
	return time.Duration(a.CountdownIntervalSec) * time.Second
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "smartcashbook_token"
	}
	return filepath.Join(dir, "smartcashbook", "token")
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
