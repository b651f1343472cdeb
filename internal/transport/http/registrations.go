package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lls2023049/campus-events/internal/app"
	"github.com/lls2023049/campus-events/internal/domain"
)

// RegistrationSubmitter is the minimal interface needed to submit a
// registration.
type RegistrationSubmitter interface {
	SubmitRegistration(ctx context.Context, in app.SubmitRegistrationInput) (domain.Outcome, error)
}

type RegistrationCanceler interface {
	CancelRegistration(ctx context.Context, userID, eventID string) error
}

type RegistrationLister interface {
	ListRegistrations(ctx context.Context, userID string) ([]domain.UserRegistration, error)
}

// outcomeStatus maps each denial reason to its HTTP status. The reason
// code on the wire is the outcome's string form.
var outcomeStatus = map[domain.Outcome]int{
	domain.OutcomeRateLimited:       http.StatusTooManyRequests,
	domain.OutcomeInvalidChallenge:  http.StatusBadRequest,
	domain.OutcomeEventNotFound:     http.StatusNotFound,
	domain.OutcomeCapacityExhausted: http.StatusConflict,
	domain.OutcomeAlreadyRegistered: http.StatusConflict,
	domain.OutcomeStoreUnavailable:  http.StatusServiceUnavailable,
}

var outcomeMessage = map[domain.Outcome]string{
	domain.OutcomeRateLimited:       "too many requests, retry later",
	domain.OutcomeInvalidChallenge:  "captcha is wrong or expired",
	domain.OutcomeEventNotFound:     "event not found",
	domain.OutcomeCapacityExhausted: "no seats left",
	domain.OutcomeAlreadyRegistered: "you are already registered for this event",
	domain.OutcomeStoreUnavailable:  "storage unavailable, retry later",
}

// HandleSubmitRegistration returns the handler for the admission path.
func HandleSubmitRegistration(svc RegistrationSubmitter, logger Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req submitRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, err.Error())
			return
		}

		outcome, err := svc.SubmitRegistration(r.Context(), app.SubmitRegistrationInput{
			UserID:    req.UserID,
			EventID:   req.EventID,
			SessionID: req.CaptchaSession,
			Challenge: req.Captcha,
		})
		if err != nil && logger != nil {
			logger.Printf("submit registration user=%s event=%s: %v", req.UserID, req.EventID, err)
		}
		if !outcome.Granted() {
			writeError(w, outcomeStatus[outcome], string(outcome), outcomeMessage[outcome])
			return
		}

		writeJSON(w, http.StatusCreated, submitRegistrationResponse{
			Outcome: string(outcome),
			EventID: req.EventID,
		})
	}
}

// HandleCancelRegistration returns the handler for the cancel path.
// Cancelling an absent registration succeeds (idempotent).
func HandleCancelRegistration(svc RegistrationCanceler, logger Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req cancelRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.UserID == "" || req.EventID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "user_id and event_id are required")
			return
		}

		if err := svc.CancelRegistration(r.Context(), req.UserID, req.EventID); err != nil {
			if errors.Is(err, domain.ErrInvalidID) {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
				return
			}
			if logger != nil {
				logger.Printf("cancel registration user=%s event=%s: %v", req.UserID, req.EventID, err)
			}
			writeError(w, http.StatusServiceUnavailable, string(domain.OutcomeStoreUnavailable), "storage unavailable, retry later")
			return
		}
		writeJSON(w, http.StatusOK, cancelRegistrationResponse{Cancelled: true})
	}
}

// HandleListRegistrations returns the handler for a user's
// registration history.
func HandleListRegistrations(svc RegistrationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "user_id is required")
			return
		}

		regs, err := svc.ListRegistrations(r.Context(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidID) {
				writeError(w, http.StatusBadRequest, codeInvalidID, "invalid id")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}

		out := make([]registrationView, 0, len(regs))
		for _, reg := range regs {
			out = append(out, registrationView{
				ID:            reg.ID,
				EventID:       reg.EventID,
				Status:        string(reg.Status),
				RegisteredAt:  reg.RegisteredAt,
				EventTitle:    reg.EventTitle,
				EventStartsAt: reg.EventStartsAt,
				EventLocation: reg.EventLocation,
			})
		}
		writeJSON(w, http.StatusOK, listRegistrationsResponse{Registrations: out})
	}
}

type submitRegistrationRequest struct {
	UserID         string `json:"user_id"`
	EventID        string `json:"event_id"`
	Captcha        string `json:"captcha"`
	CaptchaSession string `json:"captcha_session"`
}

func (r submitRegistrationRequest) validate() error {
	if r.UserID == "" || r.EventID == "" {
		return errors.New("user_id and event_id are required")
	}
	if r.Captcha == "" || r.CaptchaSession == "" {
		return errors.New("captcha and captcha_session are required")
	}
	return nil
}

type submitRegistrationResponse struct {
	Outcome string `json:"outcome"`
	EventID string `json:"event_id"`
}

type cancelRegistrationRequest struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

type cancelRegistrationResponse struct {
	Cancelled bool `json:"cancelled"`
}

type registrationView struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	Status        string    `json:"status"`
	RegisteredAt  time.Time `json:"registered_at"`
	EventTitle    string    `json:"event_title"`
	EventStartsAt time.Time `json:"event_starts_at"`
	EventLocation string    `json:"event_location"`
}

type listRegistrationsResponse struct {
	Registrations []registrationView `json:"registrations"`
}
