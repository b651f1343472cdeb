package app

import (
	"context"
	"testing"
	"time"

	"github.com/lls2023049/campus-events/internal/cache"
	"github.com/lls2023049/campus-events/internal/clock"
	"github.com/lls2023049/campus-events/internal/domain"
)

func TestEventService_CreateEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("creates and invalidates the list projection", func(t *testing.T) {
		t.Parallel()
		repo := newFakeEventRepo()
		store := cache.NewMemory(clock.NewFixed(now))
		svc := NewEventService(repo, store, clock.NewFixed(now))

		_ = store.Set(ctx, cache.EventListKey, []byte(`[]`), time.Minute)

		event, err := svc.CreateEvent(ctx, CreateEventInput{
			Title:             "Autumn Campus 5K",
			Location:          "Main Track",
			StartsAt:          now.Add(72 * time.Hour),
			EndsAt:            now.Add(75 * time.Hour),
			RegistrationOpens: now,
			RegistrationEnds:  now.Add(48 * time.Hour),
			Capacity:          200,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if event.ID == "" {
			t.Fatalf("expected event ID to be set")
		}
		if event.Status != domain.EventStatusPublished {
			t.Fatalf("expected published status, got %s", event.Status)
		}
		if _, ok := repo.events[event.ID]; !ok {
			t.Fatalf("expected event persisted")
		}
		if _, ok, _ := store.Get(ctx, cache.EventListKey); ok {
			t.Fatalf("expected list projection invalidated")
		}
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		repo := newFakeEventRepo()
		store := cache.NewMemory(clock.NewFixed(now))
		svc := NewEventService(repo, store, clock.NewFixed(now))

		cases := []struct {
			name string
			in   CreateEventInput
			want error
		}{
			{"missing title", CreateEventInput{Capacity: 10, EndsAt: now.Add(time.Hour)}, domain.ErrTitleRequired},
			{"zero capacity", CreateEventInput{Title: "x", EndsAt: now.Add(time.Hour)}, domain.ErrInvalidCapacity},
			{"ends before starts", CreateEventInput{Title: "x", Capacity: 10, StartsAt: now, EndsAt: now.Add(-time.Hour)}, domain.ErrInvalidSchedule},
		}
		for _, tc := range cases {
			if _, err := svc.CreateEvent(ctx, tc.in); err != tc.want {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}
	})
}

func TestEventService_ListEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	repo := newFakeEventRepo()
	repo.published = []domain.Event{{ID: "ev-1", Title: "Go Workshop", Capacity: 50}}
	store := cache.NewMemory(clock.NewFixed(now))
	svc := NewEventService(repo, store, clock.NewFixed(now))

	events, fromCache, err := svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if fromCache {
		t.Fatalf("first read should miss the cache")
	}
	if len(events) != 1 || events[0].ID != "ev-1" {
		t.Fatalf("unexpected events %v", events)
	}

	// Second read is served from the projection even if the repo
	// changes underneath.
	repo.published = nil
	events, fromCache, err = svc.ListEvents(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !fromCache {
		t.Fatalf("second read should hit the cache")
	}
	if len(events) != 1 {
		t.Fatalf("expected cached snapshot, got %v", events)
	}
}

func TestEventService_GetEvent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	repo := newFakeEventRepo()
	repo.events["ev-1"] = domain.Event{ID: "ev-1", Title: "Career Talk", Capacity: 120, Occupancy: 12}
	store := cache.NewMemory(clock.NewFixed(now))
	svc := NewEventService(repo, store, clock.NewFixed(now))

	event, fromCache, err := svc.GetEvent(ctx, "ev-1")
	if err != nil || fromCache {
		t.Fatalf("first read should come from the repo, fromCache=%v err=%v", fromCache, err)
	}
	if event.Occupancy != 12 {
		t.Fatalf("expected occupancy 12, got %d", event.Occupancy)
	}

	if _, fromCache, _ = svc.GetEvent(ctx, "ev-1"); !fromCache {
		t.Fatalf("second read should hit the cache")
	}

	if _, _, err := svc.GetEvent(ctx, "missing"); err != domain.ErrEventNotFound {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

type fakeEventRepo struct {
	events    map[string]domain.Event
	published []domain.Event
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]domain.Event)}
}

func (f *fakeEventRepo) CreateEvent(_ context.Context, event domain.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventRepo) GetEvent(_ context.Context, eventID string) (domain.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return event, nil
}

func (f *fakeEventRepo) ListPublished(_ context.Context) ([]domain.Event, error) {
	return f.published, nil
}
