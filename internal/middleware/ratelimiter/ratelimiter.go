package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a token bucket for a single identity (an IP or a wallet address).
type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *IdentityRateLimiter
}

// IdentityRateLimiter keeps one token bucket per identity. Idle buckets are
// dropped after expirationTime so the map does not grow with every address
// that ever hit the API.
type IdentityRateLimiter struct {
	limiters       map[string]*bucket
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

func New(rate float64, capacity float64, expirationTime time.Duration) *IdentityRateLimiter {
	return &IdentityRateLimiter{
		limiters:       make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

// PerWindow builds a limiter allowing `requests` per `window`, with burst
// capacity equal to the full allowance.
func PerWindow(requests int, window time.Duration) *IdentityRateLimiter {
	rate := float64(requests) / window.Seconds()
	return New(rate, float64(requests), 2*window)
}

func (irl *IdentityRateLimiter) cleanup(identity string) {
	irl.mu.Lock()
	delete(irl.limiters, identity)
	irl.mu.Unlock()
}

func (b *bucket) resetTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.expirationTime, func() {
		b.parent.cleanup(b.identity)
	})
}

func (irl *IdentityRateLimiter) getLimiter(identity string) *bucket {
	// First try read-only lookup
	irl.mu.RLock()
	limiter, exists := irl.limiters[identity]
	irl.mu.RUnlock()

	if exists {
		limiter.resetTimer()
		return limiter
	}

	irl.mu.Lock()
	defer irl.mu.Unlock()

	// Double-check after acquiring write lock
	limiter, exists = irl.limiters[identity]
	if exists {
		limiter.resetTimer()
		return limiter
	}

	limiter = &bucket{
		tokens:     irl.capacity,
		capacity:   irl.capacity,
		rate:       irl.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     irl,
	}
	irl.limiters[identity] = limiter
	limiter.resetTimer()

	return limiter
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	// Refill tokens based on elapsed time
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow checks if a request should be allowed for a given identity.
func (irl *IdentityRateLimiter) Allow(identity string) bool {
	return irl.getLimiter(identity).allow()
}

// Stop cleans up all expiration timers.
func (irl *IdentityRateLimiter) Stop() {
	irl.mu.Lock()
	defer irl.mu.Unlock()

	for _, limiter := range irl.limiters {
		if limiter.timer != nil {
			limiter.timer.Stop()
		}
	}
}
