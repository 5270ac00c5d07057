package http

import (
	"sync"
	"time"
)

type tokenBucket struct {
	remaining  float64
	refilledAt time.Time
	seenAt     time.Time
}

// RateLimiter caps the request rate per client with one token bucket per
// client key (the caller's IP). Buckets refill continuously and idle clients
// are pruned after the configured TTL.
type RateLimiter struct {
	mu           sync.Mutex
	buckets      map[string]*tokenBucket
	capacity     float64
	refillPerSec float64
	ttl          time.Duration
	now          func() time.Time
}

// NewRateLimiter constructs a limiter allowing bursts up to capacity and a
// sustained rate of refillPerSecond requests.
func NewRateLimiter(capacity int, refillPerSecond float64, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:      make(map[string]*tokenBucket),
		capacity:     float64(capacity),
		refillPerSec: refillPerSecond,
		ttl:          ttl,
		now:          time.Now,
	}

	if ttl > 0 {
		ticker := time.NewTicker(ttl)
		go func() {
			for range ticker.C {
				rl.prune()
			}
		}()
	}

	return rl
}

// Allow reports whether the client identified by key may proceed, consuming
// one token when it may. An empty key shares the fallback bucket.
func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		key = "unknown"
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{remaining: rl.capacity, refilledAt: now}
		rl.buckets[key] = bucket
	}
	bucket.seenAt = now

	if elapsed := now.Sub(bucket.refilledAt).Seconds(); elapsed > 0 {
		bucket.remaining += elapsed * rl.refillPerSec
		if bucket.remaining > rl.capacity {
			bucket.remaining = rl.capacity
		}
		bucket.refilledAt = now
	}

	if bucket.remaining < 1 {
		return false
	}

	bucket.remaining--
	return true
}

func (rl *RateLimiter) prune() {
	if rl.ttl <= 0 {
		return
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, bucket := range rl.buckets {
		if now.Sub(bucket.seenAt) > rl.ttl {
			delete(rl.buckets, key)
		}
	}
}
