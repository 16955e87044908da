package config

import (
	"deck-crawler/pkg/models"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
	"os"
	"time"
)

type Config struct {
	// ListingURL maps to LISTING_URL. The --url flag overrides it.
	ListingURL string `envconfig:"LISTING_URL" default:"https://tappedout.net/mtg-decks/pauper-edh-deck-compendium/"`

	// OutputPath maps to OUTPUT_PATH. The --output flag overrides it.
	OutputPath string `envconfig:"OUTPUT_PATH" default:"commanders_and_decks.csv"`

	// SiteOrigin is prepended to relative deck hrefs.
	SiteOrigin string `envconfig:"SITE_ORIGIN" default:"https://tappedout.net"`

	UserAgent string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0 Safari/537.36"`

	// Retry budget and linear backoff base (waits are Backoff * attempt).
	Retries      int           `envconfig:"FETCH_RETRIES" default:"3"`
	Backoff      time.Duration `envconfig:"FETCH_BACKOFF" default:"10s"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`

	// Random pause between deck fetches, drawn uniformly from [DeckDelayMin, DeckDelayMax].
	DeckDelayMin time.Duration `envconfig:"DECK_DELAY_MIN" default:"1s"`
	DeckDelayMax time.Duration `envconfig:"DECK_DELAY_MAX" default:"3s"`

	// RateLimit maps to RATE_LIMIT. Zero disables the per-host limiter.
	RateLimit time.Duration `envconfig:"RATE_LIMIT" default:"0s"`

	FetchMode        models.FetchMode `envconfig:"FETCH_MODE" default:"http"`
	CloudflareBypass bool             `envconfig:"CLOUDFLARE_BYPASS" default:"false"`

	BatchSize int `envconfig:"BATCH_SIZE" default:"100"`

	// MetricsAddr maps to METRICS_ADDR. Empty means no /metrics listener.
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"true"`
}

// Load processes environment variables and populates the Config struct.
func Load() (*Config, error) {
	// 1. Try to load .env file (if it exists)
	if err := godotenv.Load(); err != nil {
		// Only warn if the file exists but failed to load.
		if _, statErr := os.Stat(".env"); statErr == nil {
			log.Warn().Err(err).Msg(".env file found but could not be loaded")
		}
	}

	// 2. Process Environment Variables (System + Loaded from .env)
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the crawler cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.ListingURL == "":
		return fmt.Errorf("listing URL is required")
	case c.OutputPath == "":
		return fmt.Errorf("output path is required")
	case c.Retries < 1:
		return fmt.Errorf("FETCH_RETRIES must be at least 1, got %d", c.Retries)
	case c.Backoff < 0:
		return fmt.Errorf("FETCH_BACKOFF must not be negative")
	case c.DeckDelayMin < 0 || c.DeckDelayMax < c.DeckDelayMin:
		return fmt.Errorf("invalid deck delay interval [%s, %s]", c.DeckDelayMin, c.DeckDelayMax)
	case c.BatchSize < 1:
		return fmt.Errorf("BATCH_SIZE must be at least 1, got %d", c.BatchSize)
	}
	return nil
}
