package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/geoguess.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// CatalogFile seeds an empty database. The embedded catalog is used
	// when it is blank.
	CatalogFile string `env:"CATALOG_FILE"`

	MaxRounds     int           `env:"MAX_ROUNDS" envDefault:"5"`
	RoundDuration time.Duration `env:"ROUND_DURATION" envDefault:"2m"`
	// IdleTTL discards games untouched for this long. Zero disables it.
	IdleTTL time.Duration `env:"IDLE_TTL" envDefault:"1h"`

	// Admin endpoints are disabled unless both are set.
	AdminUser         string `env:"ADMIN_USER"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxRounds < 1 {
		return nil, fmt.Errorf("MAX_ROUNDS must be positive, got %d", cfg.MaxRounds)
	}
	if cfg.RoundDuration < 0 {
		return nil, fmt.Errorf("ROUND_DURATION must not be negative, got %s", cfg.RoundDuration)
	}
	if cfg.IdleTTL < 0 {
		return nil, fmt.Errorf("IDLE_TTL must not be negative, got %s", cfg.IdleTTL)
	}
	return &cfg, nil
}

func (c *Config) AdminEnabled() bool {
	return c.AdminUser != "" && c.AdminPasswordHash != ""
}
