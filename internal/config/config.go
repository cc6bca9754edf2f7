// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `envconfig:"PORT" default:"8080"`

	// LogLevel controls the minimum log level. Valid values: debug, info, warn, error.
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins,
	// comma-separated in CORS_ORIGINS.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`

	// StorageDriver selects the persistence backend: postgres or bolt.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// BoltPath is the database file used by the bolt driver.
	BoltPath string `envconfig:"BOLT_PATH" default:"rentaway.db"`

	// SMTP settings for booking emails. When SMTPHost is empty, emails are
	// logged instead of sent.
	SMTPHost     string        `envconfig:"SMTP_HOST"`
	SMTPPort     int           `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword string        `envconfig:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `envconfig:"SMTP_TIMEOUT" default:"10s"`
	MailFrom     string        `envconfig:"MAIL_FROM"`
	MailFromName string        `envconfig:"MAIL_FROM_NAME" default:"RentAway"`

	// OTLPEndpoint is the OTLP/HTTP collector URL. Tracing is off when empty.
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`

	// Booking write rate limit per caller (user ID, else client IP).
	BookingRatePerMinute int `envconfig:"BOOKING_RATE_PER_MINUTE" default:"30"`
	BookingRateBurst     int `envconfig:"BOOKING_RATE_BURST" default:"5"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	var missing []string
	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case DriverBolt:
		if cfg.BoltPath == "" {
			missing = append(missing, "BOLT_PATH")
		}
	default:
		return Config{}, fmt.Errorf("config.Load: STORAGE_DRIVER must be %q or %q, got %q",
			DriverPostgres, DriverBolt, cfg.StorageDriver)
	}
	if cfg.SMTPHost != "" && cfg.MailFrom == "" {
		missing = append(missing, "MAIL_FROM")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// SMTPEnabled reports whether booking emails go out over SMTP.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}

// trimAll trims each entry, dropping empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, part := range in {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
