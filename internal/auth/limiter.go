package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// attemptLimiter tracks failed unlock attempts per account. A token bucket
// smooths bursts of retries; a hard counter trips the forced lock once the
// threshold is crossed.
type attemptLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	threshold int
	entries   map[string]*attemptBucket
}

type attemptBucket struct {
	lim      *rate.Limiter
	failures int
	lastSeen time.Time
}

func newAttemptLimiter(limit rate.Limit, burst, threshold int, ttl time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:     limit,
		burst:     burst,
		ttl:       ttl,
		threshold: threshold,
		entries:   make(map[string]*attemptBucket),
	}
}

// allow reports whether another attempt may proceed for this account.
func (a *attemptLimiter) allow(key string) bool {
	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bucket(key, now)
	if b.failures >= a.threshold {
		return false
	}
	return b.lim.Allow()
}

// fail records a failed attempt and reports whether the hard-lock threshold
// has now been reached.
func (a *attemptLimiter) fail(key string) bool {
	now := time.Now()
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bucket(key, now)
	b.failures++
	return b.failures >= a.threshold
}

func (a *attemptLimiter) reset(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, key)
}

func (a *attemptLimiter) bucket(key string, now time.Time) *attemptBucket {
	b := a.entries[key]
	if b == nil {
		b = &attemptBucket{lim: rate.NewLimiter(a.limit, a.burst), lastSeen: now}
		a.entries[key] = b
	}
	b.lastSeen = now

	for k, v := range a.entries {
		if now.Sub(v.lastSeen) > a.ttl {
			delete(a.entries, k)
		}
	}
	return b
}
