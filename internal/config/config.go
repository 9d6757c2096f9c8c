package config

import (
	"fmt"

	pkgconfig "github.com/mwarzecha/authgate/pkg/config"
)

// Config holds all configuration for the authgate service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"AUTHGATE_HTTP_PORT" envDefault:"8010"`

	// Identity provider
	ProviderBaseURL   string `env:"IDENTITY_PROVIDER_URL" envDefault:"http://localhost:9099"`
	ProviderAPIKey    string `env:"IDENTITY_PROVIDER_API_KEY" envDefault:"dev-api-key"`
	SessionSigningKey string `env:"SESSION_SIGNING_KEY" envDefault:"change-this-to-a-secure-secret"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"authgate"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"authgate_secret"`
	PostgresDB   string `env:"AUTHGATE_DB_NAME" envDefault:"authgate_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// User cache TTL in seconds. Zero disables the cache layer.
	UserCacheTTLSecs int `env:"USER_CACHE_TTL_SECONDS" envDefault:"300"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load authgate config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	// Outside development, require an explicitly set, strong signing key.
	if cfg.Environment != "development" {
		if cfg.SessionSigningKey == "change-this-to-a-secure-secret" {
			return nil, fmt.Errorf("SESSION_SIGNING_KEY must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.SessionSigningKey) < 32 {
			return nil, fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 characters long, got %d", len(cfg.SessionSigningKey))
		}
	}

	return cfg, nil
}
