package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/suqapp/backend/internal/domain"
	jwtinfra "github.com/suqapp/backend/internal/infrastructure/jwt"
)

type contextKey string

const principalKey contextKey = "principal"

// Machine-readable guard failure codes. The client SDK attempts a token
// refresh only on CodeTokenExpired; every other code is terminal for the
// request.
const (
	CodeMissingToken       = "MissingToken"
	CodeInvalidToken       = "InvalidToken"
	CodeTokenExpired       = "TokenExpired"
	CodeUserNotFound       = "UserNotFound"
	CodeAccountDeactivated = "AccountDeactivated"
)

// Principal is the minimal identity attached to the request context for
// downstream handlers.
type Principal struct {
	UserID    string
	Mobile    string
	FirstName string
	LastName  string
}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (*jwtinfra.Claims, error)
}

// UserLoader resolves the user referenced by token claims.
type UserLoader interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// Auth returns middleware that validates the Bearer access token, re-checks
// the user against the store and injects a Principal into the context.
// Deactivation is the only token revocation mechanism, so the store check is
// not optional.
func Auth(verifier TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, CodeMissingToken, "missing or malformed authorization header")
				return
			}
			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					writeJSONError(w, http.StatusUnauthorized, CodeTokenExpired, "access token expired")
					return
				}
				writeJSONError(w, http.StatusUnauthorized, CodeInvalidToken, "invalid access token")
				return
			}
			u, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeJSONError(w, http.StatusUnauthorized, CodeUserNotFound, "user no longer exists")
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "", "internal server error")
				return
			}
			if !u.Enable {
				writeJSONError(w, http.StatusUnauthorized, CodeAccountDeactivated, "account deactivated")
				return
			}
			p := &Principal{
				UserID:    u.UserID,
				Mobile:    u.Mobile,
				FirstName: u.FirstName,
				LastName:  u.LastName,
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}

// ContextWithPrincipal returns a context carrying the given principal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the authenticated principal from the request context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Anything that is not exactly that shape is rejected.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.ContainsRune(token, ' ') {
		return "", false
	}
	return token, true
}
