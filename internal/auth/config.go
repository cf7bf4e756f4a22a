// Package auth provides password credentials, signed bearer tokens, and the
// middleware that resolves a request's caller identity.
package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// devSecret signs tokens in dev mode when no secret is configured.
const devSecret = "homebid-dev-secret"

// Config holds server and authentication configuration.
type Config struct {
	JWTSecret   string        `envconfig:"JWT_SECRET"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	HashCost    int           `envconfig:"HASH_COST" default:"10"`
	DevMode     bool          `envconfig:"DEV_MODE"`
	Seed        bool          `envconfig:"SEED" default:"true"`
	DBPath      string        `envconfig:"DB_PATH"`
	Port        int           `envconfig:"PORT" default:"8080"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

// ConfigFromEnv loads a Config from HB_* environment variables.
// A .env file in the working directory is loaded first when present.
func ConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("HB", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config and fills in dev-mode defaults.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if !c.DevMode {
			return fmt.Errorf("HB_JWT_SECRET is required (or set HB_DEV_MODE=true)")
		}
		c.JWTSecret = devSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("HB_TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	if c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost {
		return fmt.Errorf("HB_HASH_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.HashCost)
	}
	return nil
}
