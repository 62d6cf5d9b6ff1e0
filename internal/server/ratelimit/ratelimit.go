// Package ratelimit provides token bucket rate limiting for the
// validation API. Validation runs fan out into many LLM calls, so the
// expensive endpoints get much tighter budgets than reads.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. Tokens refill continuously at refillRate
// per second up to capacity.
type bucket struct {
	capacity   int
	refillRate float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(capacity int, refillRate float64) *bucket {
	return &bucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

func (b *bucket) refillLocked(now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	b.tokens = min(float64(b.capacity), b.tokens+elapsed.Seconds()*b.refillRate)
	b.lastRefill = now
}

func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refillLocked(time.Now())
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true
	}
	return false
}

func (b *bucket) status() (remaining int, resetTime time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.refillLocked(now)

	remaining = int(b.tokens)
	if b.tokens < float64(b.capacity) {
		needed := float64(b.capacity) - b.tokens
		resetTime = now.Add(time.Duration(needed / b.refillRate * float64(time.Second)))
	} else {
		resetTime = now
	}
	return remaining, resetTime
}

// Info describes the limit state returned with every decision.
type Info struct {
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter applies per-client, per-endpoint token buckets.
type Limiter struct {
	config  *Config
	buckets map[string]*bucket
	mu      sync.Mutex
	done    chan struct{}
}

// NewLimiter creates a limiter and starts its idle-bucket cleanup.
func NewLimiter(config *Config) *Limiter {
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow decides whether clientID may call method path now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{RetryAfter: time.Hour}
	}
	if l.config.Whitelist[clientID] {
		return true, Info{}
	}

	limit, window, burst := l.limitFor(path, method)
	if limit <= 0 {
		// unlimited endpoint
		return true, Info{}
	}

	key := clientID + "|" + method + "|" + path
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(burst, float64(limit)/window.Seconds())
		l.buckets[key] = b
	}
	l.mu.Unlock()

	allowed := b.take()
	remaining, resetTime := b.status()
	info := Info{Limit: limit, Remaining: remaining, ResetTime: resetTime}
	if !allowed {
		info.RetryAfter = time.Until(resetTime)
		if info.RetryAfter < 0 {
			info.RetryAfter = 0
		}
	}
	return allowed, info
}

func (l *Limiter) limitFor(path, method string) (limit int, window time.Duration, burst int) {
	if cfg := MatchEndpoint(path, method, l.config.EndpointConfigs); cfg != nil {
		burst = cfg.Burst
		if burst == 0 {
			burst = cfg.Limit
		}
		return cfg.Limit, cfg.Window, burst
	}
	return l.config.DefaultLimit, l.config.DefaultWindow, l.config.DefaultLimit
}

// Stop terminates the cleanup goroutine.
func (l *Limiter) Stop() {
	close(l.done)
}

// cleanupLoop drops buckets that have refilled completely, bounding
// memory for one-off clients.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.mu.Lock()
			for key, b := range l.buckets {
				remaining, _ := b.status()
				if remaining >= b.capacity {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
