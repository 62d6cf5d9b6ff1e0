package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
		EndpointConfigs: []EndpointConfig{
			{Path: "/health", Method: "GET", Limit: 0},
			{Path: "/validate", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
			{Path: "/validation/", Method: "GET", Limit: 300, Window: time.Hour, Burst: 50},
		},
	}
}

func TestLimiterBurstExhaustion(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/validate", "POST")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("10.0.0.1", "/validate", "POST")
	assert.True(t, allowed)

	allowed, info := limiter.Allow("10.0.0.1", "/validate", "POST")
	assert.False(t, allowed, "third call should exceed burst of 2")
	assert.Equal(t, 10, info.Limit)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiterClientsAreIndependent(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 2; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/validate", "POST")
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("10.0.0.1", "/validate", "POST")
	assert.False(t, allowed)

	allowed, _ = limiter.Allow("10.0.0.2", "/validate", "POST")
	assert.True(t, allowed, "a fresh client gets its own bucket")
}

func TestLimiterUnlimitedEndpoint(t *testing.T) {
	limiter := NewLimiter(testConfig())
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiterWhitelistAndBlacklist(t *testing.T) {
	cfg := testConfig()
	cfg.Whitelist["10.9.9.9"] = true
	cfg.Blacklist["10.6.6.6"] = true
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("10.9.9.9", "/validate", "POST")
		require.True(t, allowed)
	}

	allowed, info := limiter.Allow("10.6.6.6", "/health", "GET")
	assert.False(t, allowed)
	assert.Greater(t, info.RetryAfter, time.Duration(0))
}

func TestLimiterDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	limiter := NewLimiter(cfg)
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("10.0.0.1", "/validate", "POST")
		require.True(t, allowed)
	}
}

func TestMatchEndpointPrefersExactMatch(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/validation/", Method: "GET", Limit: 300, Window: time.Hour},
		{Path: "/validate", Method: "POST", Limit: 10, Window: time.Hour},
	}

	cfg := MatchEndpoint("/validate", "POST", configs)
	require.NotNil(t, cfg)
	assert.Equal(t, 10, cfg.Limit)

	cfg = MatchEndpoint("/validation/abc123/report", "GET", configs)
	require.NotNil(t, cfg)
	assert.Equal(t, 300, cfg.Limit)

	assert.Nil(t, MatchEndpoint("/unknown", "DELETE", configs))
}

func TestDefaultEndpointConfigsCoverValidate(t *testing.T) {
	configs := DefaultEndpointConfigs()

	cfg := MatchEndpoint("/validate", "POST", configs)
	require.NotNil(t, cfg)
	assert.Equal(t, 10, cfg.Limit)
	assert.Equal(t, 2, cfg.Burst)

	cfg = MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.Limit)
}

func TestBucketRefill(t *testing.T) {
	b := newBucket(2, 100) // fast refill for the test
	assert.True(t, b.take())
	assert.True(t, b.take())
	assert.False(t, b.take())

	time.Sleep(25 * time.Millisecond)
	assert.True(t, b.take(), "tokens should refill over time")
}
