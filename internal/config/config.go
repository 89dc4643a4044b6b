package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port                 string `envconfig:"PORT" default:"8080"`
	DatabaseURL          string `envconfig:"DATABASE_URL"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
	JWTSecret            string `envconfig:"JWT_SECRET"`
	JWTIssuer            string `envconfig:"JWT_ISSUER" default:"member-ledger"`
	JWTTTLMinutes        int    `envconfig:"JWT_TTL_MINUTES" default:"60"`
	OperatorUsername     string `envconfig:"OPERATOR_USERNAME" default:"admin"`
	OperatorPasswordHash string `envconfig:"OPERATOR_PASSWORD_HASH"`
	AllowedOrigins       string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	ImportMaxBytes       int64  `envconfig:"IMPORT_MAX_BYTES" default:"10485760"`

	JWTTTL      time.Duration `ignored:"true"`
	CORSOrigins []string      `ignored:"true"`
}

// Load reads configuration from the environment and requires a database.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	cfg.Port = fallback(cfg.Port, "8080")
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.OperatorUsername = fallback(cfg.OperatorUsername, "admin")
	cfg.OperatorPasswordHash = strings.TrimSpace(cfg.OperatorPasswordHash)
	cfg.CORSOrigins = parseCSV(fallback(cfg.AllowedOrigins, "*"))

	if cfg.JWTTTLMinutes > 0 {
		cfg.JWTTTL = time.Duration(cfg.JWTTTLMinutes) * time.Minute
	} else {
		cfg.JWTTTL = 60 * time.Minute
	}
	if cfg.ImportMaxBytes <= 0 {
		cfg.ImportMaxBytes = 10 << 20
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.OperatorPasswordHash == "" {
		return errors.New("OPERATOR_PASSWORD_HASH is required; generate one with the hash-password command")
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
