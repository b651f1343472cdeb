// Package challenge issues short-lived, single-use proof-of-human
// codes keyed by session.
package challenge

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/lls2023049/campus-events/internal/clock"
)

const (
	codeLength = 4
	// Ambiguous glyphs (0/O, 1/I) are excluded; codes are typed back by
	// people.
	alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	defaultTTL = 5 * time.Minute
)

type record struct {
	code     string
	issuedAt time.Time
}

// Service stores one outstanding challenge per session. A challenge is
// deleted on the first verification attempt, matched or not, so a
// single issued code can never be retried or replayed.
type Service struct {
	mu    sync.Mutex
	clock clock.Clock
	ttl   time.Duration
	codes map[string]record
}

func NewService(clk clock.Clock, opts ...Option) *Service {
	s := &Service{
		clock: clk,
		ttl:   defaultTTL,
		codes: make(map[string]record),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*Service)

// WithTTL overrides the default challenge expiry window.
func WithTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// Issue generates a fresh code for sessionID, replacing any prior
// challenge for that session.
func (s *Service) Issue(sessionID string) string {
	code := newCode()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[sessionID] = record{code: code, issuedAt: s.clock.Now()}
	return code
}

// Verify consumes the challenge for sessionID and reports whether
// candidate matches, case-insensitively. A stale challenge is deleted
// and rejected. Whatever the comparison outcome, a found challenge is
// gone afterwards.
func (s *Service) Verify(sessionID, candidate string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[sessionID]
	if !ok {
		return false
	}
	delete(s.codes, sessionID)

	if s.clock.Now().Sub(rec.issuedAt) > s.ttl {
		return false
	}
	return strings.EqualFold(rec.code, candidate)
}

func newCode() string {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in a bad state;
		// storing a degraded code would weaken every verification.
		panic("challenge: " + err.Error())
	}
	for i := range b {
		// len(alphabet) is 32, which divides 256: no modulo bias.
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
