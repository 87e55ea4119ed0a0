package ratelimit

import (
	"math/rand"
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Wait blocks until another request is allowed
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// RandomDelay blocks for a random duration drawn uniformly from
// [MinDelay, MaxDelay] on every Wait. This is the polite pause between
// requests against a third-party site.
type RandomDelay struct {
	minDelay time.Duration
	maxDelay time.Duration
	rng      *rand.Rand
	sleep    func(time.Duration)
	mu       sync.Mutex
}

// NewRandomDelay creates a delay limiter for the given range. A max below
// min is treated as equal to min.
func NewRandomDelay(minDelay, maxDelay time.Duration) *RandomDelay {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RandomDelay{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    time.Sleep,
	}
}

// Wait blocks the caller for the drawn delay
func (d *RandomDelay) Wait() {
	d.sleep(d.nextDelay())
}

// Reset is a no-op; the delay carries no state between waits
func (d *RandomDelay) Reset() {}

// nextDelay draws a uniform duration from the configured range
func (d *RandomDelay) nextDelay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	spread := d.maxDelay - d.minDelay
	if spread <= 0 {
		return d.minDelay
	}
	return d.minDelay + time.Duration(d.rng.Int63n(int64(spread)+1))
}

// TokenBucket implements a token bucket rate limiter capping the number
// of requests per refill period
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// allow checks if a request can proceed, consuming a token if so
func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			// Small sleep to prevent busy waiting
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
