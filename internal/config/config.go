// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the root configuration threaded into every constructor at
// startup. Handlers never read the environment directly.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Geocode  GeocodeConfig
	Payments PaymentsConfig
	Email    EmailConfig
	Admin    AdminConfig
	CORS     CORSConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host string
	Port int
}

// LoggingConfig mirrors pkg/logger.LoggingConfig.
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// DatabaseConfig describes the optional Postgres connection. When DSN is
// empty the service runs against the embedded seed dataset and all write
// endpoints report "not configured".
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
}

// Configured reports whether a real datastore connection is set up.
func (c DatabaseConfig) Configured() bool {
	return c.Driver != "" && c.DSN != ""
}

// GeocodeConfig describes the external geocoding collaborator.
type GeocodeConfig struct {
	AccessToken string
	Endpoint    string
	RedisAddr   string // optional result cache
}

// PaymentsConfig describes the payment processor.
type PaymentsConfig struct {
	SecretKey     string
	WebhookSecret string
	Endpoint      string
}

// Configured reports whether checkout can be performed.
func (c PaymentsConfig) Configured() bool {
	return c.SecretKey != ""
}

// EmailConfig describes the transactional email collaborator.
type EmailConfig struct {
	APIKey     string
	Endpoint   string
	From       string
	ReferralTo string
}

// AdminConfig holds the shared admin credential. PasswordHash, when set,
// takes precedence over the plaintext Password.
type AdminConfig struct {
	Password     string
	PasswordHash string
	JWTSecret    string
}

// CORSConfig lists allowed origins; "*" allows all.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intEnv("DATABASE_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdle, err := intEnv("DATABASE_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	maxLifetime, err := intEnv("DATABASE_CONN_MAX_LIFETIME", 300)
	if err != nil {
		return nil, err
	}

	driver := strings.TrimSpace(os.Getenv("DATABASE_DRIVER"))
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if driver == "" && dsn != "" {
		driver = "postgres"
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "text"),
			Output: envOr("LOG_OUTPUT", "stdout"),
		},
		Database: DatabaseConfig{
			Driver:          driver,
			DSN:             dsn,
			MaxOpenConns:    maxOpen,
			MaxIdleConns:    maxIdle,
			ConnMaxLifetime: maxLifetime,
		},
		Geocode: GeocodeConfig{
			AccessToken: os.Getenv("GEOCODING_ACCESS_TOKEN"),
			Endpoint:    envOr("GEOCODING_ENDPOINT", "https://api.mapbox.com/geocoding/v5/mapbox.places"),
			RedisAddr:   os.Getenv("GEOCODE_CACHE_REDIS_ADDR"),
		},
		Payments: PaymentsConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Endpoint:      envOr("STRIPE_API_ENDPOINT", "https://api.stripe.com"),
		},
		Email: EmailConfig{
			APIKey:     os.Getenv("EMAIL_API_KEY"),
			Endpoint:   envOr("EMAIL_API_ENDPOINT", "https://api.sendgrid.com/v3/mail/send"),
			From:       envOr("EMAIL_FROM", "noreply@hydrovacfinder.com"),
			ReferralTo: envOr("REFERRAL_EMAIL_TO", "ap@hydrovacfinder.com"),
		},
		Admin: AdminConfig{
			Password:     os.Getenv("ADMIN_PASSWORD"),
			PasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:    os.Getenv("ADMIN_JWT_SECRET"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func splitEnv(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
