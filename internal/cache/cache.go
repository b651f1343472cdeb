// Package cache provides the ephemeral key/value store backing quota
// counters, session records, and cached read projections.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache key formats live in one place so they do not drift across
// packages (quota counters, sessions, and event read projections all
// share one store).
const EventListKey = "event:list"

func QuotaKey(eventID string) string { return "quota:" + eventID }

func EventKey(eventID string) string { return "event:" + eventID }

func SessionKey(sessionID string) string { return "session:" + sessionID }

// ErrNotInteger is returned by IncrBy when the stored value cannot be
// interpreted as an integer counter.
var ErrNotInteger = errors.New("cache: value is not an integer")

// Store is a k/v store with per-entry TTL and an atomic counter
// primitive. Values are opaque bytes; structured values are marshaled
// by the caller so a Redis backend is a drop-in replacement for the
// in-memory one.
//
// Callers must never read-modify-write a counter through Get/Set;
// IncrBy is the only race-free way to mutate one.
type Store interface {
	// Get returns the value for key, reporting false when the key is
	// absent or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A ttl <= 0 means the entry never
	// expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// IncrBy atomically adds delta (which may be negative) to the
	// integer counter at key, treating an absent key as 0, and returns
	// the new value. The entry's TTL, if any, is left untouched.
	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
}
