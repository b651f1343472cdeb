package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/lls2023049/campus-events/internal/app"
	"github.com/lls2023049/campus-events/internal/domain"
)

type EventLister interface {
	ListEvents(ctx context.Context) ([]domain.Event, bool, error)
}

type EventGetter interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, bool, error)
}

type EventCreator interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
}

// HandleListEvents returns the handler for the published-events listing.
// The response carries a from_cache flag so callers can tell a cached
// projection from a fresh read.
func HandleListEvents(svc EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		events, fromCache, err := svc.ListEvents(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		views := make([]eventView, 0, len(events))
		for _, event := range events {
			views = append(views, newEventView(event))
		}
		writeJSON(w, http.StatusOK, listEventsResponse{Events: views, FromCache: fromCache})
	}
}

// HandleGetEvent returns the handler for a single event detail. The
// event id is the trailing path segment.
func HandleGetEvent(svc EventGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		eventID := strings.TrimPrefix(r.URL.Path, "/api/event/")
		if eventID == "" || strings.Contains(eventID, "/") {
			writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
			return
		}

		event, fromCache, err := svc.GetEvent(r.Context(), eventID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEventNotFound):
				writeError(w, http.StatusNotFound, codeEventNotFound, "event not found")
			case errors.Is(err, domain.ErrInvalidID):
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, getEventResponse{Event: newEventView(event), FromCache: fromCache})
	}
}

// HandleCreateEvent returns the handler for publishing a new event.
func HandleCreateEvent(svc EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Title:             req.Title,
			Description:       req.Description,
			OrganizerID:       req.OrganizerID,
			Location:          req.Location,
			StartsAt:          req.StartsAt,
			EndsAt:            req.EndsAt,
			RegistrationOpens: req.RegistrationOpens,
			RegistrationEnds:  req.RegistrationEnds,
			Capacity:          req.Capacity,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrTitleRequired):
				writeError(w, http.StatusBadRequest, codeTitleRequired, "title is required")
			case errors.Is(err, domain.ErrInvalidCapacity):
				writeError(w, http.StatusBadRequest, codeInvalidCapacity, "capacity must be positive")
			case errors.Is(err, domain.ErrInvalidSchedule):
				writeError(w, http.StatusBadRequest, codeInvalidSchedule, "schedule is inconsistent")
			default:
				writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			}
			return
		}
		writeJSON(w, http.StatusCreated, getEventResponse{Event: newEventView(event)})
	}
}

type createEventRequest struct {
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	OrganizerID       string    `json:"organizer_id"`
	Location          string    `json:"location"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	RegistrationOpens time.Time `json:"registration_opens"`
	RegistrationEnds  time.Time `json:"registration_ends"`
	Capacity          int       `json:"capacity"`
}

type eventView struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	StartsAt          time.Time `json:"starts_at"`
	EndsAt            time.Time `json:"ends_at"`
	RegistrationOpens time.Time `json:"registration_opens"`
	RegistrationEnds  time.Time `json:"registration_ends"`
	Capacity          int       `json:"capacity"`
	Occupancy         int       `json:"occupancy"`
	Remaining         int       `json:"remaining"`
	Status            string    `json:"status"`
}

func newEventView(event domain.Event) eventView {
	return eventView{
		ID:                event.ID,
		Title:             event.Title,
		Description:       event.Description,
		Location:          event.Location,
		StartsAt:          event.StartsAt,
		EndsAt:            event.EndsAt,
		RegistrationOpens: event.RegistrationOpens,
		RegistrationEnds:  event.RegistrationEnds,
		Capacity:          event.Capacity,
		Occupancy:         event.Occupancy,
		Remaining:         event.Remaining(),
		Status:            string(event.Status),
	}
}

type listEventsResponse struct {
	Events    []eventView `json:"events"`
	FromCache bool        `json:"from_cache"`
}

type getEventResponse struct {
	Event     eventView `json:"event"`
	FromCache bool      `json:"from_cache,omitempty"`
}
