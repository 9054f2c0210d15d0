package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/ai/auto-fill", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
		},
	})

	for i := 0; i < 2; i++ {
		allowed, info := l.Allow("1.2.3.4", "/ai/auto-fill", "POST")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}

	allowed, info := l.Allow("1.2.3.4", "/ai/auto-fill", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
	assert.Less(t, info.RetryAfter, 7*time.Minute)
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/profile", Method: "PUT", Limit: 60, Window: time.Minute, Burst: 1},
		},
	})

	allowed, _ := l.Allow("c", "/profile", "PUT")
	require.True(t, allowed)
	allowed, _ = l.Allow("c", "/profile", "PUT")
	require.False(t, allowed)

	clock.Advance(time.Second)
	allowed, _ = l.Allow("c", "/profile", "PUT")
	assert.True(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/auth/login", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	})

	allowed, _ := l.Allow("a", "/auth/login", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("b", "/auth/login", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/auth/login", "POST")
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})

	for i := 0; i < 50; i++ {
		allowed, _ := l.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Hour})

	allowed, _ := l.Allow("c", "/profile", "GET")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/profile", "GET")
	assert.True(t, allowed)
	allowed, info := l.Allow("c", "/profile", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 2, info.Limit)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/fields/", Method: "POST", Limit: 1, Window: time.Hour, Burst: 1},
		},
	})

	allowed, _ := l.Allow("c", "/fields/extract", "POST")
	assert.True(t, allowed)
	allowed, _ = l.Allow("c", "/fields/fill", "POST")
	assert.False(t, allowed)
}

func TestLimiter_Lists(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:      true,
		DefaultLimit: 1, DefaultWindow: time.Hour,
		Whitelist: map[string]bool{"10.0.0.1": true},
		Blacklist: map[string]bool{"10.0.0.2": true},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/profile", "GET")
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("10.0.0.2", "/profile", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false})
	allowed, info := l.Allow("c", "/ai/auto-fill", "POST")
	assert.True(t, allowed)
	assert.True(t, info.Allowed)
}

func TestLimiter_EvictIdle(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute, IdleTTL: time.Hour})

	l.Allow("old", "/profile", "GET")
	clock.Advance(2 * time.Hour)
	l.Allow("new", "/profile", "GET")
	require.Equal(t, 2, l.Size())

	l.evictIdle()
	assert.Equal(t, 1, l.Size())
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/profile", "GET"); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, allowedCount)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{"/ai/auto-fill", "POST", "/ai/auto-fill", false},
		{"/fields/fill", "POST", "/fields/", false},
		{"/profile", "PATCH", "/profile", false},
		{"/profile", "GET", "", true},
		{"/health", "GET", "/health", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestDefaultEndpointConfigs_AIStrictest(t *testing.T) {
	var aiMax, writeMin float64 = 0, 1e9
	for _, c := range DefaultEndpointConfigs() {
		perHour := float64(c.Limit) * float64(time.Hour) / float64(c.Window)
		switch c.Path {
		case "/ai/auto-fill", "/ai/extract-resume":
			aiMax = max(aiMax, perHour)
		case "/profile", "/fields/":
			writeMin = min(writeMin, perHour)
		}
	}
	assert.Less(t, aiMax, writeMin)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "1.1.1.1, 2.2.2.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["2.2.2.2"])

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
