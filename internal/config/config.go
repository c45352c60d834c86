// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. The retention window, refresh
// gate and home-page cap are compile-time constants in their owning packages,
// not configuration.
type Config struct {
	Listen       string
	DatabasePath string
	PageURL      string
	FetchTimeout time.Duration
	RefreshCron  string
	Log          LogConfig
}

// LogConfig selects logger verbosity and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("LISTEN", ":8080")
	v.SetDefault("DATABASE_PATH", "events.db")
	v.SetDefault("PAGE_URL", "https://www.facebook.com/bearduk/events")
	v.SetDefault("FETCH_TIMEOUT", "60s")
	// Hourly tick; the store's staleness gate keeps actual fetches to one
	// per six hours.
	v.SetDefault("REFRESH_CRON", "0 * * * *")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString("FETCH_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing FETCH_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Listen:       v.GetString("LISTEN"),
		DatabasePath: v.GetString("DATABASE_PATH"),
		PageURL:      v.GetString("PAGE_URL"),
		FetchTimeout: timeout,
		RefreshCron:  v.GetString("REFRESH_CRON"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if cfg.PageURL == "" {
		return nil, fmt.Errorf("PAGE_URL must not be empty")
	}
	return cfg, nil
}
