package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(config *Config) (*Limiter, *manualClock) {
	clock := &manualClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(config)
	l.now = clock.Now
	return l, clock
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
		if !allowed {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
		if info.Limit != 10 {
			t.Errorf("Expected limit 10, got %d", info.Limit)
		}
		if info.Remaining != 9-i {
			t.Errorf("Expected remaining %d, got %d", 9-i, info.Remaining)
		}
	}

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	if allowed {
		t.Error("Expected 11th request to be denied")
	}
	if info.Remaining != 0 {
		t.Errorf("Expected remaining 0, got %d", info.Remaining)
	}
	if info.RetryAfter <= 0 {
		t.Error("Expected retry after to be positive")
	}
	if !info.ResetTime.After(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Error("Reset time should be in the future")
	}
}

func TestLimiter_Refill(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  60,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/slow", Method: "GET", Limit: 60, Window: time.Minute, Burst: 1},
		},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("c", "/slow", "GET"); !allowed {
		t.Fatal("Expected first request to be allowed")
	}
	allowed, info := limiter.Allow("c", "/slow", "GET")
	if allowed {
		t.Fatal("Expected second request to be denied")
	}
	if info.RetryAfter > time.Second || info.RetryAfter <= 0 {
		t.Errorf("Expected retry after within one second, got %v", info.RetryAfter)
	}

	clock.Advance(time.Second)
	if allowed, _ := limiter.Allow("c", "/slow", "GET"); !allowed {
		t.Error("Expected request to be allowed after refill")
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); !allowed {
			t.Fatalf("Expected whitelisted request %d to be allowed", i+1)
		}
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	if allowed, _ := limiter.Allow("10.0.0.1", "/test", "GET"); allowed {
		t.Error("Expected blacklisted client to be denied")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 5000; i++ {
		if allowed, _ := limiter.Allow("127.0.0.1", "/api/candidate", "POST"); !allowed {
			t.Fatal("Expected all requests to be allowed when disabled")
		}
	}
}

func TestLimiter_CandidateEndpoint(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/candidate", "POST")
		if !allowed {
			t.Errorf("Expected burst request %d to be allowed", i+1)
		}
		if info.Limit != 100 {
			t.Errorf("Expected limit 100, got %d", info.Limit)
		}
	}
	if allowed, _ := limiter.Allow("127.0.0.1", "/api/candidate", "POST"); allowed {
		t.Error("Expected request after burst to be denied")
	}

	// Other clients and endpoints have their own buckets.
	if allowed, _ := limiter.Allow("127.0.0.2", "/api/candidate", "POST"); !allowed {
		t.Error("Expected a different client to be allowed")
	}
	if allowed, info := limiter.Allow("127.0.0.1", "/swagger/index.html", "GET"); !allowed || info.Limit != 1000 {
		t.Errorf("Expected default limit for other endpoints, got allowed=%v limit=%d", allowed, info.Limit)
	}
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/health", "GET")
		if !allowed || info.Limit != 0 {
			t.Fatalf("Expected /health to be unlimited, got allowed=%v limit=%d", allowed, info.Limit)
		}
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Hour,
	})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/test", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected 100 allowed requests, got %d", allowedCount)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	limiter, clock := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
	})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}
	clock.Advance(30 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/test", "GET")
	}

	removed := limiter.evictIdle(clock.Now().Add(-10 * time.Minute))
	if removed != 5 {
		t.Errorf("Expected 5 idle buckets removed, got %d", removed)
	}
	if limiter.size() != 5 {
		t.Errorf("Expected 5 buckets left, got %d", limiter.size())
	}
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Second, CleanupInterval: time.Millisecond})
	limiter.Stop()
	limiter.Stop()
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/test", "GET")
	if !allowed {
		t.Error("Expected request to be allowed with default config")
	}
	if info.Limit != 1000 {
		t.Errorf("Expected default limit 1000, got %d", info.Limit)
	}
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/candidate", Method: "POST", Limit: 100},
		{Path: "/api/", Method: "POST", Limit: 5},
	}

	tests := []struct {
		path, method string
		wantLimit    int
		wantNil      bool
	}{
		{"/api/candidate", "POST", 100, false},
		{"/api/other", "POST", 5, false},
		{"/api/candidate", "GET", 0, true},
		{"/health", "GET", 0, false},
		{"/elsewhere", "POST", 0, true},
	}
	for _, tt := range tests {
		got := MatchEndpoint(tt.path, tt.method, configs)
		if tt.wantNil {
			if got != nil {
				t.Errorf("%s %s: expected no match, got %+v", tt.method, tt.path, got)
			}
			continue
		}
		if got == nil || got.Limit != tt.wantLimit {
			t.Errorf("%s %s: expected limit %d, got %+v", tt.method, tt.path, tt.wantLimit, got)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "250")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	if !cfg.Enabled {
		t.Fatal("Expected rate limiting enabled by default")
	}
	if cfg.DefaultLimit != 250 {
		t.Errorf("Expected default limit 250, got %d", cfg.DefaultLimit)
	}
	if cfg.DefaultWindow != 30*time.Second {
		t.Errorf("Expected window 30s, got %v", cfg.DefaultWindow)
	}
	if !cfg.Whitelist["10.0.0.1"] || !cfg.Whitelist["10.0.0.2"] {
		t.Errorf("Expected whitelist entries, got %v", cfg.Whitelist)
	}
	if len(cfg.EndpointConfigs) == 0 {
		t.Error("Expected endpoint configs")
	}
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	if cfg := LoadConfig(); cfg.Enabled {
		t.Error("Expected rate limiting disabled")
	}
}
