package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Auth lifecycle sentinels. Kept separate from the generic ones above so
	// handlers can attach machine-readable codes and the client SDK can tell
	// an expired access token apart from a malformed one.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrInvalidOTP           = errors.New("invalid or expired otp")
	ErrRequiresVerification = errors.New("account requires verification")
	ErrDeactivated          = errors.New("account deactivated")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrTokenExpired         = errors.New("token expired")
	ErrTooManyRequests      = errors.New("too many requests")
)
