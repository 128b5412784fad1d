package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration, read from the environment
// (after .env has been loaded by main).
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RabbitMQ  RabbitMQConfig
	Sentry    SentryConfig
	Scheduler SchedulerConfig
	Lifecycle LifecycleConfig
	Admin     AdminConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port               string   `env:"PORT" envDefault:"8080"`
	BasePath           string   `env:"BASE_PATH" envDefault:"/api/v1"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST,required,notEmpty"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER,required,notEmpty"`
	Password string `env:"DB_PASSWORD,required,notEmpty"`
	Name     string `env:"DB_NAME,required,notEmpty"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// AuthConfig holds JWT settings
type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,required,notEmpty"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
}

// RabbitMQConfig holds broker settings. An empty Host disables event publishing.
type RabbitMQConfig struct {
	Host  string `env:"RABBITMQ_HOST"`
	Port  string `env:"RABBITMQ_PORT" envDefault:"5672"`
	User  string `env:"RABBITMQ_USER" envDefault:"guest"`
	Pass  string `env:"RABBITMQ_PASS" envDefault:"guest"`
	Queue string `env:"LIFECYCLE_EVENTS_QUEUE" envDefault:"campaign_lifecycle_events"`
}

// URL returns the AMQP connection URL
func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Pass, c.Host, c.Port)
}

// SentryConfig holds error reporting settings. An empty DSN disables Sentry.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
}

// SchedulerConfig holds background job intervals
type SchedulerConfig struct {
	CampaignSweepInterval time.Duration `env:"CAMPAIGN_SWEEP_INTERVAL" envDefault:"5m"`
	TokenCleanupInterval  time.Duration `env:"TOKEN_CLEANUP_INTERVAL" envDefault:"1h"`
}

// LifecycleConfig holds campaign rule toggles
type LifecycleConfig struct {
	// StrictWindowOrdering rejects campaigns whose submission window opens
	// before registration closes instead of only warning.
	StrictWindowOrdering bool `env:"STRICT_WINDOW_ORDERING" envDefault:"false"`
}

// AdminConfig seeds the first admin account on startup when both are set
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load parses the configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Scheduler.CampaignSweepInterval <= 0 {
		return nil, fmt.Errorf("CAMPAIGN_SWEEP_INTERVAL must be positive")
	}
	if cfg.Scheduler.TokenCleanupInterval <= 0 {
		return nil, fmt.Errorf("TOKEN_CLEANUP_INTERVAL must be positive")
	}
	return &cfg, nil
}
