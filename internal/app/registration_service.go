package app

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/domain"
	"github.com/lls2023049/campus-events/internal/obs"
)

type RegistrationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	CreateRegistration(ctx context.Context, reg domain.Registration) error
	AdjustOccupancy(ctx context.Context, eventID string, delta int) error
	DeleteRegistration(ctx context.Context, eventID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.UserRegistration, error)
}

type RateLimiter interface {
	Allow(identity string) bool
}

type ChallengeVerifier interface {
	Verify(sessionID, candidate string) bool
}

const (
	defaultQuotaTTL = time.Hour
	rateKeyPrefix   = "reg:"
)

// RegistrationService arbitrates seat reservations for capacity-limited
// events. The cached quota counter absorbs the optimistic admission
// check; only admissions that pass it touch durable storage, and every
// durable failure after the pre-deduction compensates the counter back
// up so no seat is lost.
type RegistrationService struct {
	repo       RegistrationRepository
	cache      cache.Store
	limiter    RateLimiter
	challenges ChallengeVerifier
	clock      clock.Clock
	metrics    *obs.Metrics
	quotaTTL   time.Duration
}

func NewRegistrationService(
	repo RegistrationRepository,
	store cache.Store,
	limiter RateLimiter,
	challenges ChallengeVerifier,
	clk clock.Clock,
	opts ...RegistrationServiceOption,
) *RegistrationService {
	svc := &RegistrationService{
		repo:       repo,
		cache:      store,
		limiter:    limiter,
		challenges: challenges,
		clock:      clk,
		quotaTTL:   defaultQuotaTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RegistrationServiceOption func(*RegistrationService)

// WithQuotaTTL overrides how long a materialized quota counter lives.
func WithQuotaTTL(d time.Duration) RegistrationServiceOption {
	return func(s *RegistrationService) {
		if d > 0 {
			s.quotaTTL = d
		}
	}
}

// WithMetrics records admission decisions on the given collector.
func WithMetrics(m *obs.Metrics) RegistrationServiceOption {
	return func(s *RegistrationService) {
		s.metrics = m
	}
}

type SubmitRegistrationInput struct {
	UserID    string
	EventID   string
	SessionID string
	Challenge string
}

// SubmitRegistration runs the admission pipeline: rate limit, challenge,
// cached quota pre-deduction, durable commit. The returned error is
// operational detail (for logging) and is non-nil only alongside
// OutcomeStoreUnavailable; every other outcome is normal control flow.
func (s *RegistrationService) SubmitRegistration(ctx context.Context, in SubmitRegistrationInput) (domain.Outcome, error) {
	outcome, err := s.submit(ctx, in)
	s.metrics.RecordDecision(string(outcome))
	return outcome, err
}

func (s *RegistrationService) submit(ctx context.Context, in SubmitRegistrationInput) (domain.Outcome, error) {
	if !s.limiter.Allow(rateKeyPrefix + in.UserID) {
		return domain.OutcomeRateLimited, nil
	}

	if !s.challenges.Verify(in.SessionID, in.Challenge) {
		return domain.OutcomeInvalidChallenge, nil
	}

	quotaKey := cache.QuotaKey(in.EventID)
	outcome, err := s.materializeQuota(ctx, quotaKey, in.EventID)
	if outcome != "" || err != nil {
		return outcome, err
	}

	// Decrement first, inspect the result. Two racing callers cannot
	// both observe the counter stepping below zero for the same seat,
	// because IncrBy is exclusive per key; checking before decrementing
	// would reopen that window.
	remaining, err := s.cache.IncrBy(ctx, quotaKey, -1)
	if err != nil {
		return domain.OutcomeStoreUnavailable, err
	}
	if remaining < 0 {
		s.compensate(ctx, quotaKey)
		return domain.OutcomeCapacityExhausted, nil
	}

	now := s.clock.Now()
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		reg := domain.Registration{
			ID:           newUUID(),
			EventID:      in.EventID,
			UserID:       in.UserID,
			Status:       domain.RegistrationStatusConfirmed,
			RegisteredAt: now,
		}
		if err := s.repo.CreateRegistration(txCtx, reg); err != nil {
			return err
		}
		return s.repo.AdjustOccupancy(txCtx, in.EventID, 1)
	})
	if err != nil {
		// The seat was pre-deducted; give it back before reporting.
		s.compensate(ctx, quotaKey)
		switch {
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return domain.OutcomeAlreadyRegistered, nil
		case errors.Is(err, domain.ErrCapacityBounds):
			// The durable record is stricter than a drifted counter.
			return domain.OutcomeCapacityExhausted, nil
		default:
			return domain.OutcomeStoreUnavailable, err
		}
	}

	s.invalidateProjections(ctx, in.EventID)
	return domain.OutcomeGranted, nil
}

// materializeQuota ensures the cached counter for eventID exists,
// seeding it from the durable record on a miss. It returns a non-empty
// outcome when the pipeline should stop here.
func (s *RegistrationService) materializeQuota(ctx context.Context, quotaKey, eventID string) (domain.Outcome, error) {
	val, ok, err := s.cache.Get(ctx, quotaKey)
	if err != nil {
		return domain.OutcomeStoreUnavailable, err
	}

	var remaining int
	if ok {
		parsed, err := strconv.Atoi(string(val))
		if err != nil {
			return domain.OutcomeStoreUnavailable, cache.ErrNotInteger
		}
		remaining = parsed
	} else {
		event, err := s.repo.GetEvent(ctx, eventID)
		switch {
		case errors.Is(err, domain.ErrEventNotFound), errors.Is(err, domain.ErrInvalidID):
			return domain.OutcomeEventNotFound, nil
		case err != nil:
			return domain.OutcomeStoreUnavailable, err
		}
		remaining = event.Remaining()
		if err := s.cache.Set(ctx, quotaKey, []byte(strconv.Itoa(remaining)), s.quotaTTL); err != nil {
			return domain.OutcomeStoreUnavailable, err
		}
		if s.metrics != nil {
			s.metrics.CacheSeeds.Inc()
		}
	}

	// Fast path: a counter already at or below zero cannot admit
	// anyone; skip the decrement/compensate round trip.
	if remaining <= 0 {
		return domain.OutcomeCapacityExhausted, nil
	}
	return "", nil
}

// compensate undoes a quota pre-deduction. Best effort: if the cache is
// down the counter re-derives from durable truth when its TTL lapses.
func (s *RegistrationService) compensate(ctx context.Context, quotaKey string) {
	_, _ = s.cache.IncrBy(ctx, quotaKey, 1)
}

func (s *RegistrationService) invalidateProjections(ctx context.Context, eventID string) {
	_ = s.cache.Delete(ctx, cache.EventKey(eventID))
	_ = s.cache.Delete(ctx, cache.EventListKey)
}

// CancelRegistration removes the user's reservation and returns the
// seat to both the durable record and the cached quota. Cancelling a
// registration that does not exist is a no-op.
func (s *RegistrationService) CancelRegistration(ctx context.Context, userID, eventID string) error {
	var deleted bool
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ok, err := s.repo.DeleteRegistration(txCtx, eventID, userID)
		if err != nil {
			return err
		}
		deleted = ok
		if !ok {
			return nil
		}
		return s.repo.AdjustOccupancy(txCtx, eventID, -1)
	})
	if err != nil {
		return err
	}
	if deleted {
		s.compensate(ctx, cache.QuotaKey(eventID))
		s.invalidateProjections(ctx, eventID)
	}
	return nil
}

// ListRegistrations returns the user's registrations, newest first.
func (s *RegistrationService) ListRegistrations(ctx context.Context, userID string) ([]domain.UserRegistration, error) {
	return s.repo.ListByUser(ctx, userID)
}
