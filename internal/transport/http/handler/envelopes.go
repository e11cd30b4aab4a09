package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/suqapp/backend/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// UserEnvelope wraps responses that carry a user summary.
type UserEnvelope struct {
	User *domain.User `json:"user"`
}

// AuthEnvelope wraps login and refresh responses.
type AuthEnvelope struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinels to HTTP statuses and machine-readable codes.
// Anything unmapped is an infrastructure failure and surfaces as a generic 500.
func httpError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			writeJSON(w, m.status, MessageEnvelope{Error: m.message, Code: m.code})
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}

var errorMappings = []struct {
	sentinel error
	status   int
	code     string
	message  string
}{
	{domain.ErrInvalidOTP, http.StatusBadRequest, "InvalidOrExpiredOtp", "invalid or expired OTP"},
	{domain.ErrRequiresVerification, http.StatusForbidden, "RequiresVerification", "account requires verification; a new OTP has been sent"},
	{domain.ErrDeactivated, http.StatusForbidden, "AccountDeactivated", "account deactivated"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials", "invalid credentials"},
	{domain.ErrInvalidRefreshToken, http.StatusUnauthorized, "InvalidRefreshToken", "invalid or expired refresh token"},
	{domain.ErrTooManyRequests, http.StatusTooManyRequests, "TooManyRequests", "too many requests"},
	{domain.ErrConflict, http.StatusConflict, "Conflict", "mobile already registered"},
	{domain.ErrNotFound, http.StatusNotFound, "NotFound", "not found"},
	{domain.ErrBadRequest, http.StatusBadRequest, "ValidationError", "invalid request"},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden", "forbidden"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized", "unauthorized"},
}
