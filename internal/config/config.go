package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for our application
type Config struct {
	Port          string
	Origin        string
	Environment   string
	LogLevel      string
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	Database      DatabaseConfig
	Redis         RedisConfig
	RateLimit     RateLimitConfig

	// ReleaseSlotOnCancel reopens a consumed slot when its appointment is
	// rejected or canceled. Off by default.
	ReleaseSlotOnCancel bool
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	SSLMode  string
	DSN      string
}

// RedisConfig selects Redis as the session backend when Addr is set.
// Everything else stays in the SQL database.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Enabled reports whether sessions live in Redis.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// RateLimitConfig holds the per-IP limits applied to the credential endpoints.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))

	// Load database configuration
	dbConfig := DatabaseConfig{
		Driver:   driver,
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", defaultPort(driver)),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinic"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	dbConfig.DSN = getEnv("DB_DSN", dbConfig.BuildDSN())

	ttlHours, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}

	burst, err := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	release, err := strconv.ParseBool(getEnv("RELEASE_SLOT_ON_CANCEL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RELEASE_SLOT_ON_CANCEL: %w", err)
	}

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		Origin:              getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		SessionTTL:          time.Duration(ttlHours) * time.Hour,
		CookieName:          getEnv("SESSION_COOKIE_NAME", "session_token"),
		Database:            dbConfig,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Prefix:   getEnv("REDIS_SESSION_PREFIX", "clinic:session"),
		},
		RateLimit:           RateLimitConfig{RPS: rps, Burst: burst},
		ReleaseSlotOnCancel: release,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Development convenience; production refuses to start without a secret.
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = "dev_session_secret"
	}

	return cfg, nil
}

// Validate checks the loaded values for combinations the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.IsProduction() && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("rate limit values must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// BuildDSN renders the connection string for the configured driver.
func (d DatabaseConfig) BuildDSN() string {
	switch d.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Username, d.Password, d.Name, d.Port, d.SSLMode)
	case DriverMySQL:
		// Build DSN (Data Source Name) for MySQL connection
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Name)
	}
	return ""
}

func defaultPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
