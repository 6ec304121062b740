package ratelimit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func newManualClock() *manualClock {
	return &manualClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestTokenBucket_BurstAndRefill(t *testing.T) {
	start := time.Now()
	bucket := newTokenBucket(3, 1, start)

	for i := range 3 {
		allowed, remaining, _ := bucket.take(start)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}
	allowed, _, full := bucket.take(start)
	assert.False(t, allowed)
	assert.Equal(t, start.Add(3*time.Second), full)
	assert.Equal(t, time.Second, bucket.nextToken())

	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.True(t, allowed, "one token refilled")
	allowed, _, _ = bucket.take(start.Add(1100 * time.Millisecond))
	assert.False(t, allowed)
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	start := time.Now()
	bucket := newTokenBucket(2, 10, start)

	_, remaining, full := bucket.take(start.Add(time.Hour))
	assert.Equal(t, 1, remaining)
	assert.True(t, full.After(start.Add(time.Hour)))
}

func TestLimiter_DefaultLimit(t *testing.T) {
	clock := newManualClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute}, clock.now)
	defer limiter.Stop()

	for i := range 5 {
		allowed, info := limiter.Allow("10.0.0.1", "/unknown", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}

	allowed, info := limiter.Allow("10.0.0.1", "/unknown", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 12*time.Second, info.RetryAfter)

	allowed, _ = limiter.Allow("10.0.0.2", "/unknown", "GET")
	assert.True(t, allowed, "clients are limited independently")

	clock.advance(13 * time.Second)
	allowed, _ = limiter.Allow("10.0.0.1", "/unknown", "GET")
	assert.True(t, allowed)
}

func TestLimiter_ExtensionTiers(t *testing.T) {
	clock := newManualClock()
	limiter := newLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, clock.now)
	defer limiter.Stop()

	for range 5 {
		allowed, _ := limiter.Allow("1.1.1.1", "/api/extension/extract", "POST")
		require.True(t, allowed)
	}
	allowed, info := limiter.Allow("1.1.1.1", "/api/extension/extract", "POST")
	assert.False(t, allowed, "extract burst is 5")
	assert.Equal(t, 30, info.Limit)

	allowed, info = limiter.Allow("1.1.1.1", "/api/extension/lookup-contact", "POST")
	assert.True(t, allowed, "routes have separate buckets")
	assert.Equal(t, 300, info.Limit)

	for range 10 {
		limiter.Allow("1.1.1.1", "/api/other", "POST")
	}
	allowed, _ = limiter.Allow("1.1.1.1", "/api/another", "POST")
	assert.False(t, allowed, "paths under a prefix share its bucket")

	allowed, info = limiter.Allow("1.1.1.1", "/health", "GET")
	assert.True(t, allowed)
	assert.Zero(t, info.Limit)
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer limiter.Stop()

	for range 3 {
		allowed, _ := limiter.Allow("10.0.0.1", "/x", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.2", "/x", "GET")
	assert.False(t, allowed)

	disabled := NewLimiter(&Config{Enabled: false})
	defer disabled.Stop()
	for range 3 {
		allowed, _ := disabled.Allow("10.0.0.3", "/x", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 50, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if ok, _ := limiter.Allow("10.0.0.1", "/x", "GET"); ok {
				allowed.Add(1)
			}
			limiter.Allow(fmt.Sprintf("10.0.1.%d", i), "/x", "GET")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowed.Load())
}

func TestLimiter_RemoveIdle(t *testing.T) {
	clock := newManualClock()
	limiter := newLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour}, clock.now)
	defer limiter.Stop()

	limiter.Allow("10.0.0.1", "/x", "GET")
	clock.advance(30 * time.Minute)
	limiter.Allow("10.0.0.2", "/x", "GET")
	clock.advance(45 * time.Minute)

	assert.Equal(t, 1, limiter.removeIdle())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	limiter.Stop()

	allowed, info := limiter.Allow("10.0.0.1", "/x", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/", Method: "POST", Limit: 1},
		{Path: "/api/extension/", Method: "POST", Limit: 2},
		{Path: "/api/extension/extract", Method: "POST", Limit: 3},
	}

	tests := []struct {
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{"/api/extension/extract", "POST", 3, false},
		{"/api/extension/jobs", "POST", 2, false},
		{"/api/contacts", "POST", 1, false},
		{"/api/contacts", "GET", 0, true},
		{"/health", "GET", 0, false},
		{"/api/extension/extract", "OPTIONS", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2,")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "lots")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "2m")
	cfg = LoadConfig()
	assert.Equal(t, 1000, cfg.DefaultLimit)
	assert.Equal(t, 2*time.Minute, cfg.DefaultWindow)

	for _, window := range []string{"0s", "-1m"} {
		t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", window)
		t.Setenv("RATE_LIMIT_IDLE_TTL", window)
		cfg = LoadConfig()
		assert.Equal(t, time.Minute, cfg.DefaultWindow, "window %s", window)
		assert.Equal(t, time.Hour, cfg.IdleTTL, "idle ttl %s", window)
	}

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
