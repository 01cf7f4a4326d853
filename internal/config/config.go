package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// devFallbackSecret is substituted for the attendance HMAC secret in
// development when no usable secret is configured. Production refuses
// to start without a real secret.
const devFallbackSecret = "dev_demo_secret_change_me"

// minSecretLen is the minimum byte length for signing secrets.
const minSecretLen = 16

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Attendance AttendanceConfig
	Session    SessionConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string        `env:"SERVER_PORT" envDefault:"8080"`
	Env            string        `env:"SERVER_ENV" envDefault:"development"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}

// DatabaseConfig holds SurrealDB connection settings
type DatabaseConfig struct {
	Host      string `env:"DB_HOST" envDefault:"localhost"`
	Port      string `env:"DB_PORT" envDefault:"8000"`
	Namespace string `env:"DB_NAMESPACE" envDefault:"rehearsal"`
	Database  string `env:"DB_DATABASE" envDefault:"main"`
	User      string `env:"DB_USER" envDefault:"root"`
	Password  string `env:"DB_PASSWORD" envDefault:"root"`
}

// AttendanceConfig holds ticket signing and check-in settings
type AttendanceConfig struct {
	HMACSecret string        `env:"ATTENDANCE_HMAC_SECRET"`
	TicketTTL  time.Duration `env:"ATTENDANCE_TICKET_TTL" envDefault:"10m"`
	StationTTL time.Duration `env:"ATTENDANCE_STATION_TTL" envDefault:"5m"`
	ClockGrace time.Duration `env:"ATTENDANCE_CLOCK_GRACE" envDefault:"2m"`
}

// SessionConfig holds session token verification settings
type SessionConfig struct {
	JWTSecret      string `env:"SESSION_JWT_SECRET"`
	ExpirationMins int    `env:"SESSION_EXPIRATION_MINS" envDefault:"60"`
	Issuer         string `env:"SESSION_ISSUER" envDefault:"rehearsal"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// SigningSecret returns the attendance HMAC secret. Outside production a
// well-known fallback is substituted when the configured value is absent
// or shorter than the minimum; the second return reports whether the
// fallback was used so the caller can log a warning.
func (c *Config) SigningSecret() ([]byte, bool) {
	if len(c.Attendance.HMACSecret) >= minSecretLen {
		return []byte(c.Attendance.HMACSecret), false
	}
	return []byte(devFallbackSecret), true
}

// SessionSecret returns the session token secret with the same
// development fallback behavior as SigningSecret.
func (c *Config) SessionSecret() ([]byte, bool) {
	if len(c.Session.JWTSecret) >= minSecretLen {
		return []byte(c.Session.JWTSecret), false
	}
	return []byte(devFallbackSecret), true
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.Port == "" {
		errs = append(errs, errors.New("DB_PORT is required"))
	}
	if c.Database.Namespace == "" {
		errs = append(errs, errors.New("DB_NAMESPACE is required"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("DB_DATABASE is required"))
	}

	// Secret validation - production never runs on fallback secrets
	if c.IsProduction() {
		if len(c.Attendance.HMACSecret) < minSecretLen {
			errs = append(errs, fmt.Errorf("ATTENDANCE_HMAC_SECRET must be at least %d bytes in production", minSecretLen))
		}
		if len(c.Session.JWTSecret) < minSecretLen {
			errs = append(errs, fmt.Errorf("SESSION_JWT_SECRET must be at least %d bytes in production", minSecretLen))
		}
	}

	// Attendance validation
	if c.Attendance.TicketTTL <= 0 {
		errs = append(errs, errors.New("ATTENDANCE_TICKET_TTL must be positive"))
	}
	if c.Attendance.StationTTL <= 0 {
		errs = append(errs, errors.New("ATTENDANCE_STATION_TTL must be positive"))
	}
	if c.Attendance.ClockGrace < 0 {
		errs = append(errs, errors.New("ATTENDANCE_CLOCK_GRACE must not be negative"))
	}

	// Session validation
	if c.Session.ExpirationMins <= 0 {
		errs = append(errs, errors.New("SESSION_EXPIRATION_MINS must be positive"))
	}
	if c.Session.Issuer == "" {
		errs = append(errs, errors.New("SESSION_ISSUER is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
