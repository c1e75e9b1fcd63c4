package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	// DataFile is the JSON document backing the record store.
	DataFile string `env:"DATA_FILE" envDefault:"data/giveaways.json"`

	// DisplayTimezone is the zone owners type giveaway times in; storage is
	// always UTC.
	DisplayTimezone string `env:"DISPLAY_TIMEZONE" envDefault:"Asia/Kolkata"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"*"`
	}

	Telegram struct {
		BotToken         string   `env:"BOT_TOKEN,required"`
		OwnerID          int64    `env:"OWNER_ID,required"`
		RequiredChannels []string `env:"REQUIRED_CHANNELS" envSeparator:","`
	}

	Giveaway struct {
		MaxWinners          int           `env:"MAX_WINNERS" envDefault:"50"`
		ParticipateCooldown time.Duration `env:"COOLDOWN_PARTICIPATE" envDefault:"60s"`
		CheckCooldown       time.Duration `env:"COOLDOWN_CHECK" envDefault:"30s"`
	}

	Scheduler struct {
		SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
		CleanupInterval  time.Duration `env:"CLEANUP_INTERVAL" envDefault:"30m"`
		LogRetentionDays int           `env:"LOG_RETENTION_DAYS" envDefault:"30"`
	}
}

// Load reads .env (if present) and the process environment into Config.
func Load() (*Config, error) {
	// Missing .env is fine; production sets variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load for main functions that cannot start without config.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
