package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/job-tracker/internal/extract"
)

// ScrapeConfig bounds browser-driven scrapes.
type ScrapeConfig struct {
	PageTimeout   time.Duration // navigation plus extraction for one page
	ModalTimeout  time.Duration
	PollInterval  time.Duration
	ScrollDelay   time.Duration
	MaxScrolls    int
	ScrollTimeout time.Duration
	Concurrency   int // pages fetched in parallel by batch scrapes
}

// NewScrapeConfig reads SCRAPE_PAGE_TIMEOUT (default 60s),
// SCRAPE_MODAL_TIMEOUT (5s), SCRAPE_POLL_INTERVAL (200ms),
// SCRAPE_SCROLL_DELAY (300ms), SCRAPE_MAX_SCROLLS (20),
// SCRAPE_SCROLL_TIMEOUT (15s) and SCRAPE_CONCURRENCY (4).
func NewScrapeConfig() (*ScrapeConfig, error) {
	defaults := extract.DefaultScrapeOptions()
	config := &ScrapeConfig{}

	var err error
	if config.PageTimeout, err = durationEnv("SCRAPE_PAGE_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if config.ModalTimeout, err = durationEnv("SCRAPE_MODAL_TIMEOUT", defaults.ModalTimeout); err != nil {
		return nil, err
	}
	if config.PollInterval, err = durationEnv("SCRAPE_POLL_INTERVAL", defaults.PollInterval); err != nil {
		return nil, err
	}
	if config.ScrollDelay, err = durationEnv("SCRAPE_SCROLL_DELAY", defaults.ScrollDelay); err != nil {
		return nil, err
	}
	if config.MaxScrolls, err = intEnv("SCRAPE_MAX_SCROLLS", defaults.MaxScrolls); err != nil {
		return nil, err
	}
	if config.ScrollTimeout, err = durationEnv("SCRAPE_SCROLL_TIMEOUT", defaults.ScrollTimeout); err != nil {
		return nil, err
	}
	if config.Concurrency, err = intEnv("SCRAPE_CONCURRENCY", 4); err != nil {
		return nil, err
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *ScrapeConfig) normalize() error {
	if c.PageTimeout <= 0 {
		return fmt.Errorf("SCRAPE_PAGE_TIMEOUT must be positive, got: %s", c.PageTimeout)
	}
	if c.ModalTimeout <= 0 || c.ScrollTimeout <= 0 {
		return fmt.Errorf("scrape timeouts must be positive")
	}
	if c.PollInterval <= 0 || c.PollInterval > c.ModalTimeout {
		return fmt.Errorf("SCRAPE_POLL_INTERVAL must be positive and at most SCRAPE_MODAL_TIMEOUT, got: %s", c.PollInterval)
	}
	if c.ScrollDelay < 0 {
		return fmt.Errorf("SCRAPE_SCROLL_DELAY cannot be negative, got: %s", c.ScrollDelay)
	}
	if c.MaxScrolls < 1 {
		return fmt.Errorf("SCRAPE_MAX_SCROLLS must be at least 1, got: %d", c.MaxScrolls)
	}
	if c.Concurrency < 1 || c.Concurrency > 16 {
		return fmt.Errorf("SCRAPE_CONCURRENCY out of range: %d (must be 1-16)", c.Concurrency)
	}
	return nil
}

// Options converts the configuration to scraper options.
func (c *ScrapeConfig) Options(verbose bool) extract.ScrapeOptions {
	opts := extract.DefaultScrapeOptions()
	opts.ModalTimeout = c.ModalTimeout
	opts.PollInterval = c.PollInterval
	opts.ScrollDelay = c.ScrollDelay
	opts.MaxScrolls = c.MaxScrolls
	opts.ScrollTimeout = c.ScrollTimeout
	opts.Verbose = verbose
	return opts
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return d, nil
}
