package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Queue     QueueConfig     `yaml:"queue"`
	Log       LogConfig       `yaml:"log"`
	Booking   BookingConfig   `yaml:"booking"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RedisConfig contains the optional Redis backend for the selection store.
// Leave Addr empty to use the in-memory store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig contains the optional RabbitMQ broker for domain events.
// Leave URL empty to disable publishing.
type QueueConfig struct {
	URL string `yaml:"url"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BookingConfig contains booking and settlement policy knobs.
type BookingConfig struct {
	MinimumDepositCents    int64 `yaml:"minimum_deposit_cents"`
	ItemDepositPercent     int   `yaml:"item_deposit_percent"` // of replacement cost
	MaxRentalDays          int   `yaml:"max_rental_days"`
	FinalizeTimeoutSeconds int   `yaml:"finalize_timeout_seconds"`
	SelectionTTLMinutes    int   `yaml:"selection_ttl_minutes"`
}

// FinalizeTimeout is the unit-of-work deadline for finalize/settle calls.
func (b BookingConfig) FinalizeTimeout() time.Duration {
	return time.Duration(b.FinalizeTimeoutSeconds) * time.Second
}

// SelectionTTL is how long an untouched session selection survives.
func (b BookingConfig) SelectionTTL() time.Duration {
	return time.Duration(b.SelectionTTLMinutes) * time.Minute
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	CancelStalePendingBookings string `yaml:"cancel_stale_pending_bookings"`
	FlagOverdueReturns         string `yaml:"flag_overdue_returns"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is applied to the environment first, then environment variables
// override the file values.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Redis
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.Redis.Addr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.Redis.Password = val
	}

	// Queue
	if val := os.Getenv("RABBITMQ_URL"); val != "" {
		c.Queue.URL = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	// Booking defaults
	if c.Booking.MinimumDepositCents == 0 {
		c.Booking.MinimumDepositCents = 2000 // 20.00
	}
	if c.Booking.ItemDepositPercent == 0 {
		c.Booking.ItemDepositPercent = 10
	}
	if c.Booking.ItemDepositPercent < 0 || c.Booking.ItemDepositPercent > 100 {
		return fmt.Errorf("invalid item deposit percent: %d", c.Booking.ItemDepositPercent)
	}
	if c.Booking.MaxRentalDays == 0 {
		c.Booking.MaxRentalDays = 30
	}
	if c.Booking.FinalizeTimeoutSeconds == 0 {
		c.Booking.FinalizeTimeoutSeconds = 5
	}
	if c.Booking.SelectionTTLMinutes == 0 {
		c.Booking.SelectionTTLMinutes = 120
	}

	// Scheduler defaults
	if c.Scheduler.CancelStalePendingBookings == "" {
		c.Scheduler.CancelStalePendingBookings = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.FlagOverdueReturns == "" {
		c.Scheduler.FlagOverdueReturns = "0 30 2 * * *" // 2:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
