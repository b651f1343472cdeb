package http

import (
	"net/http"

	"github.com/lls2023049/campus-events/internal/obs"
)

type ChallengeIssuer interface {
	Issue(sessionID string) string
}

// SessionIDFunc mints a fresh captcha session id when the caller does
// not supply one.
type SessionIDFunc func() string

// HandleIssueCaptcha returns the handler that issues a challenge code
// bound to a captcha session. Passing an existing session_id replaces
// any outstanding code for that session.
func HandleIssueCaptcha(svc ChallengeIssuer, newSessionID SessionIDFunc, metrics *obs.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			sessionID = newSessionID()
		}

		code := svc.Issue(sessionID)
		if metrics != nil {
			metrics.CaptchasIssued.Inc()
		}
		writeJSON(w, http.StatusOK, captchaResponse{SessionID: sessionID, Code: code})
	}
}

type captchaResponse struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}
