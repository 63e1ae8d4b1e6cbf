// Package ratelimiter bounds the rate of expensive operations. The upload
// and summarization endpoints fan out to paid model APIs, so they are capped
// per process rather than per client.
package ratelimiter

import (
	"sync"
	"time"
)

// Limiter reports whether one more operation is allowed right now.
type Limiter interface {
	Allow() bool
}

// TokenBucket allows short bursts up to capacity while sustaining a steady
// refill rate.
type TokenBucket struct {
	rate       float64 // tokens added per second
	capacity   float64
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a TokenBucket sustaining rate operations per second
// with bursts up to capacity. The bucket starts full.
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return &TokenBucket{
		rate:       rate,
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now

	if tb.tokens < 1 {
		return false
	}
	tb.tokens--
	return true
}

var _ Limiter = (*TokenBucket)(nil)
