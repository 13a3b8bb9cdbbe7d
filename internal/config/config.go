// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Authorization modes for mutating endpoints.
const (
	AuthModeHeader       = "header"
	AuthModeSharedSecret = "shared_secret"
)

// Credential storage schemes.
const (
	CredentialSchemeArgon2    = "argon2"
	CredentialSchemePlaintext = "plaintext"
)

// AI providers.
const (
	AIProviderWorkersAI = "workersai"
	AIProviderDisabled  = "disabled"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL      string `env:"DATABASE_URL,required"`
	DatabaseMaxConns int32  `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	MigrateOnStart   bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	// Preference store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"60s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Authorization
	AuthMode         string `env:"AUTH_MODE" envDefault:"header"`
	AuthSharedSecret string `env:"AUTH_SHARED_SECRET" envDefault:""`
	CredentialScheme string `env:"CREDENTIAL_SCHEME" envDefault:"argon2"`
	// Pads each authorization attempt to at least this long. Zero disables it.
	AuthMinDuration time.Duration `env:"AUTH_MIN_DURATION" envDefault:"0s"`

	// When true, list/update/delete are restricted to the caller's own tasks.
	TaskOwnershipEnforced bool `env:"TASK_OWNERSHIP_ENFORCED" envDefault:"false"`

	// Generative AI backend
	AIProvider  string `env:"AI_PROVIDER" envDefault:"workersai"`
	AIBaseURL   string `env:"AI_BASE_URL" envDefault:"https://api.cloudflare.com/client/v4"`
	AIAccountID string `env:"AI_ACCOUNT_ID" envDefault:""`
	AIAPIToken  string `env:"AI_API_TOKEN" envDefault:""`
	AIModel     string `env:"AI_MODEL" envDefault:"@cf/meta/llama-3-8b-instruct"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks enumerated settings and cross-field requirements.
func (c *Config) Validate() error {
	var errs []error

	switch c.AuthMode {
	case AuthModeHeader:
	case AuthModeSharedSecret:
		if c.AuthSharedSecret == "" {
			errs = append(errs, errors.New("AUTH_SHARED_SECRET is required when AUTH_MODE=shared_secret"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode))
	}

	switch c.CredentialScheme {
	case CredentialSchemeArgon2, CredentialSchemePlaintext:
	default:
		errs = append(errs, fmt.Errorf("unknown CREDENTIAL_SCHEME %q", c.CredentialScheme))
	}

	switch c.AIProvider {
	case AIProviderDisabled:
	case AIProviderWorkersAI:
		if c.AIAccountID == "" || c.AIAPIToken == "" {
			errs = append(errs, errors.New("AI_ACCOUNT_ID and AI_API_TOKEN are required when AI_PROVIDER=workersai"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AI_PROVIDER %q", c.AIProvider))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
