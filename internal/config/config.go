// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings. Every field maps to a BODEGA_*
// environment variable.
type Config struct {
	Addr         string        `envconfig:"ADDR" default:":8080"`
	DBPath       string        `envconfig:"DB_PATH" default:"bodega.db"`
	JWTSecret    string        `envconfig:"JWT_SECRET"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"LOG_FORMAT" default:"json"`
	OverdueAfter time.Duration `envconfig:"OVERDUE_AFTER" default:"8h"`
	OverdueSweep time.Duration `envconfig:"OVERDUE_SWEEP" default:"1h"`
	AdminUser    string        `envconfig:"ADMIN_USER" default:"admin"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("bodega", &cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}
