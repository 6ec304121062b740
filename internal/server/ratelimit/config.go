package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one route.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends in "/"
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // bucket capacity; defaults to Limit
}

// LoadConfig reads RATE_LIMIT_* variables. Malformed values fall back to
// the defaults.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, parsePositiveDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, parsePositiveDuration),
		IdleTTL:         envOr("RATE_LIMIT_IDLE_TTL", time.Hour, parsePositiveDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the per-route tiers. Server-side
// extraction parses whole pages and is the strictest; lookups are cheap
// reads issued on every profile view.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/extension/extract", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/api/extension/sync-connections", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/extension/jobs", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/contacts", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/api/extension/lookup-contact", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/api/", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// envOr parses the variable key, falling back to def when it is unset or
// malformed.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parsePositiveDuration parses a duration that must be greater than zero.
func parsePositiveDuration(raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got: %s", d)
	}
	return d, nil
}

// parseIPList parses a comma-separated list of client addresses.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
