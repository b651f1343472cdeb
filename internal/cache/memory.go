package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lls2023049/campus-events/internal/clock"
)

type entry struct {
	value []byte
	// expiresAt zero means the entry never expires (counters created
	// by IncrBy before any Set).
	expiresAt time.Time
}

// Memory is the in-process Store. One mutex serializes the whole map;
// the hot path is microseconds of work, so coarse locking is fine.
// Expired entries are evicted lazily on read, never by a background
// sweep, which bounds memory only as far as keys keep being read.
type Memory struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]entry
}

func NewMemory(clk clock.Clock) *Memory {
	return &Memory{
		clock:   clk,
		entries: make(map[string]entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.liveEntry(key)
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = m.clock.Now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

func (m *Memory) IncrBy(_ context.Context, key string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	e, ok := m.liveEntry(key)
	if ok {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, ErrNotInteger
		}
		current = parsed
	}

	next := current + delta
	m.entries[key] = entry{
		value:     strconv.AppendInt(nil, next, 10),
		expiresAt: e.expiresAt,
	}
	return next, nil
}

// liveEntry returns the entry for key, evicting it first if its TTL has
// elapsed. Callers must hold m.mu.
func (m *Memory) liveEntry(key string) (entry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.clock.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		return entry{}, false
	}
	return e, true
}
