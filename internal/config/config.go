package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Sync      SyncConfig
	Warehouse WarehouseConfig
	Storage   StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// SyncConfig controls the fetch/upsert engine.
type SyncConfig struct {
	FetchTimeout     time.Duration
	FetchRPS         float64
	RetryAttempts    int
	RetryBackoff     time.Duration
	LogRetentionDays int
	SourceSecretKey  string
}

// WarehouseConfig describes the remote attendance warehouse used as reconciliation fallback.
type WarehouseConfig struct {
	Enabled bool
	BaseURL string
	Token   string
	Timeout time.Duration
}

type StorageConfig struct {
	BasePath string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.ParseInt(getEnv("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.ParseInt(getEnv("DB_MIN_CONNS", "2"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	connectTimeout, err := time.ParseDuration(getEnv("DB_CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_TIMEOUT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           dbPort,
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", ""),
		Name:           getEnv("DB_NAME", "workforce-sync"),
		SSLMode:        getEnv("DB_SSL_MODE", "disable"),
		MaxConns:       int32(maxConns),
		MinConns:       int32(minConns),
		ConnectTimeout: connectTimeout,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Timezone: getEnv("APP_TIMEZONE", "Asia/Kolkata"),
	}
	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.App.AllowedOrigins = append(config.App.AllowedOrigins, origin)
		}
	}

	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Sync engine configuration
	fetchTimeout, err := time.ParseDuration(getEnv("SYNC_FETCH_TIMEOUT", "180s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_FETCH_TIMEOUT: %w", err)
	}
	fetchRPS, err := strconv.ParseFloat(getEnv("SYNC_FETCH_RPS", "5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_FETCH_RPS: %w", err)
	}
	retryAttempts, err := strconv.Atoi(getEnv("SYNC_RETRY_ATTEMPTS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_RETRY_ATTEMPTS: %w", err)
	}
	retryBackoff, err := time.ParseDuration(getEnv("SYNC_RETRY_BACKOFF", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_RETRY_BACKOFF: %w", err)
	}
	retentionDays, err := strconv.Atoi(getEnv("SYNC_LOG_RETENTION_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_LOG_RETENTION_DAYS: %w", err)
	}

	config.Sync = SyncConfig{
		FetchTimeout:     fetchTimeout,
		FetchRPS:         fetchRPS,
		RetryAttempts:    retryAttempts,
		RetryBackoff:     retryBackoff,
		LogRetentionDays: retentionDays,
		SourceSecretKey:  getEnv("SOURCE_SECRET_KEY", ""),
	}

	// Warehouse configuration
	warehouseTimeout, err := time.ParseDuration(getEnv("WAREHOUSE_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid WAREHOUSE_TIMEOUT: %w", err)
	}

	config.Warehouse = WarehouseConfig{
		Enabled: getEnvBool("WAREHOUSE_ENABLED", false),
		BaseURL: strings.TrimRight(getEnv("WAREHOUSE_BASE_URL", ""), "/"),
		Token:   getEnv("WAREHOUSE_TOKEN", ""),
		Timeout: warehouseTimeout,
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("SYNC_FETCH_TIMEOUT must be positive")
	}
	if c.Sync.RetryAttempts < 1 {
		return fmt.Errorf("SYNC_RETRY_ATTEMPTS must be at least 1")
	}
	if c.Warehouse.Enabled && c.Warehouse.BaseURL == "" {
		return fmt.Errorf("WAREHOUSE_BASE_URL is required when WAREHOUSE_ENABLED is set")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location resolves the configured calendar timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		slog.Warn("Unknown APP_TIMEZONE, falling back to UTC", "timezone", c.App.Timezone, "error", err)
		return time.UTC
	}
	return loc
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
