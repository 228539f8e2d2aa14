package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Discord Bot
	DiscordToken string `env:"DISCORD_TOKEN"`

	// Settlement archive; empty disables it
	DatabaseURL string `env:"DATABASE_URL"`

	// Status API
	APIEnabled bool   `env:"API_ENABLED" envDefault:"true"`
	WebBind    string `env:"WEB_BIND" envDefault:"0.0.0.0:3000"`

	// Pending prompts older than PendingTTL are dropped
	PendingTTL           time.Duration `env:"PENDING_TTL" envDefault:"10m"`
	PendingSweepInterval time.Duration `env:"PENDING_SWEEP_INTERVAL" envDefault:"1m"`

	HistoryLimit int  `env:"HISTORY_LIMIT" envDefault:"20"`
	Debug        bool `env:"DEBUG" envDefault:"false"`
}

func Load() (*Config, error) {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	return cfg, nil
}

// Parse reads the environment without loading .env or checking required keys.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.PendingTTL < 0 {
		return nil, fmt.Errorf("PENDING_TTL must not be negative")
	}
	if cfg.PendingSweepInterval <= 0 {
		return nil, fmt.Errorf("PENDING_SWEEP_INTERVAL must be positive")
	}
	return cfg, nil
}
