package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/domain"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListPublished(ctx context.Context) ([]domain.Event, error)
}

const (
	defaultListTTL   = time.Minute
	defaultDetailTTL = 5 * time.Minute
)

// EventService serves event reads through cached projections and
// invalidates them on writes. Occupancy in a cached projection can lag
// durable truth by at most the projection TTL; registration decisions
// never read these projections.
type EventService struct {
	repo      EventRepository
	cache     cache.Store
	clock     clock.Clock
	listTTL   time.Duration
	detailTTL time.Duration
}

func NewEventService(repo EventRepository, store cache.Store, clk clock.Clock) *EventService {
	return &EventService{
		repo:      repo,
		cache:     store,
		clock:     clk,
		listTTL:   defaultListTTL,
		detailTTL: defaultDetailTTL,
	}
}

type CreateEventInput struct {
	Title             string
	Description       string
	OrganizerID       string
	Location          string
	StartsAt          time.Time
	EndsAt            time.Time
	RegistrationOpens time.Time
	RegistrationEnds  time.Time
	Capacity          int
}

func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Title == "" {
		return domain.Event{}, domain.ErrTitleRequired
	}
	if in.Capacity <= 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if in.EndsAt.Before(in.StartsAt) || in.RegistrationEnds.Before(in.RegistrationOpens) {
		return domain.Event{}, domain.ErrInvalidSchedule
	}

	event := domain.Event{
		ID:                newUUID(),
		Title:             in.Title,
		Description:       in.Description,
		OrganizerID:       in.OrganizerID,
		Location:          in.Location,
		StartsAt:          in.StartsAt,
		EndsAt:            in.EndsAt,
		RegistrationOpens: in.RegistrationOpens,
		RegistrationEnds:  in.RegistrationEnds,
		Capacity:          in.Capacity,
		Status:            domain.EventStatusPublished,
		CreatedAt:         s.clock.Now(),
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}

	// New events must show up on the next list read.
	_ = s.cache.Delete(ctx, cache.EventListKey)
	return event, nil
}

// ListEvents returns published events, preferring the cached
// projection. The second return reports whether the cache served it.
func (s *EventService) ListEvents(ctx context.Context) ([]domain.Event, bool, error) {
	if raw, ok, err := s.cache.Get(ctx, cache.EventListKey); err == nil && ok {
		var events []domain.Event
		if json.Unmarshal(raw, &events) == nil {
			return events, true, nil
		}
	}

	events, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, false, err
	}
	if raw, err := json.Marshal(events); err == nil {
		_ = s.cache.Set(ctx, cache.EventListKey, raw, s.listTTL)
	}
	return events, false, nil
}

// GetEvent returns one event, preferring the cached projection.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (domain.Event, bool, error) {
	key := cache.EventKey(eventID)
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var event domain.Event
		if json.Unmarshal(raw, &event) == nil {
			return event, true, nil
		}
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, false, err
	}
	if raw, err := json.Marshal(event); err == nil {
		_ = s.cache.Set(ctx, key, raw, s.detailTTL)
	}
	return event, false, nil
}
