// Package ratelimit implements a per-identity token bucket. Tokens
// accumulate continuously up to a cap and are spent one per request;
// refill is computed lazily from elapsed time at check time, so there
// is no background task and an idle identity costs nothing.
package ratelimit

import (
	"sync"
	"time"

	"github.com/lls2023049/campus-events/internal/clock"
)

const (
	defaultCapacity     = 10
	defaultRefillPerSec = 2
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// Limiter gates requests per identity. Capacity and refill rate are
// shared across identities. Bucket state never expires; identity
// cardinality is bounded (user IDs), so the map stays small.
type Limiter struct {
	mu           sync.Mutex
	clock        clock.Clock
	capacity     float64
	refillPerSec float64
	buckets      map[string]*bucket
}

func New(clk clock.Clock, capacity int, refillPerSec float64) *Limiter {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if refillPerSec <= 0 {
		refillPerSec = defaultRefillPerSec
	}
	return &Limiter{
		clock:        clk,
		capacity:     float64(capacity),
		refillPerSec: refillPerSec,
		buckets:      make(map[string]*bucket),
	}
}

// Allow reports whether identity may proceed, spending one token if so.
// Denial is a rate signal, not an error; callers surface it as a
// retry-later response.
func (l *Limiter) Allow(identity string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	b, ok := l.buckets[identity]
	if !ok {
		// First use starts with a full bucket: the burst allowance is
		// available up front.
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[identity] = b
	} else {
		elapsed := now.Sub(b.lastRefill).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		b.tokens += elapsed * l.refillPerSec
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.lastRefill = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
