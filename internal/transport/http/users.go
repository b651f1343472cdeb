package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lls2023049/campus-events/internal/app"
	"github.com/lls2023049/campus-events/internal/domain"
)

type UserRegistrar interface {
	Register(ctx context.Context, in app.RegisterUserInput) (domain.User, error)
}

type UserAuthenticator interface {
	Login(ctx context.Context, studentID, password string) (string, domain.Session, error)
}

type SessionResolver interface {
	CurrentUser(ctx context.Context, sessionID string) (domain.Session, bool, error)
}

// HandleRegisterUser returns the handler for account creation.
func HandleRegisterUser(svc UserRegistrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req registerUserRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		user, err := svc.Register(r.Context(), app.RegisterUserInput{
			StudentID: req.StudentID,
			Username:  req.Username,
			Password:  req.Password,
			CollegeID: req.CollegeID,
			Email:     req.Email,
			Phone:     req.Phone,
		})
		if err != nil {
			if errors.Is(err, domain.ErrStudentIDTaken) {
				writeError(w, http.StatusConflict, codeStudentIDTaken, "student id already registered")
				return
			}
			if app.IsUserValidationError(err) {
				writeError(w, http.StatusBadRequest, codeMissingRequiredField, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, userView{
			ID:        user.ID,
			StudentID: user.StudentID,
			Username:  user.Username,
			CollegeID: user.CollegeID,
		})
	}
}

// HandleLogin returns the handler that exchanges credentials for a
// session id.
func HandleLogin(svc UserAuthenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.StudentID == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "student_id and password are required")
			return
		}

		sessionID, session, err := svc.Login(r.Context(), req.StudentID, req.Password)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "wrong student id or password")
				return
			}
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{SessionID: sessionID, Session: session})
	}
}

// HandleCurrentUser returns the handler that resolves the bearer
// session from the Authorization header.
func HandleCurrentUser(svc SessionResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		sessionID := bearerToken(r)
		if sessionID == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing session")
			return
		}

		session, ok, err := svc.CurrentUser(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "session expired")
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return strings.TrimSpace(auth)
}

type registerUserRequest struct {
	StudentID string `json:"student_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	CollegeID int    `json:"college_id"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type userView struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Username  string `json:"username"`
	CollegeID int    `json:"college_id"`
}

type loginRequest struct {
	StudentID string `json:"student_id"`
	Password  string `json:"password"`
}

type loginResponse struct {
	SessionID string         `json:"session_id"`
	Session   domain.Session `json:"session"`
}
