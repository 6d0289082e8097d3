package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/diligence/internal/api"
)

type contextKey string

// AuthValidator decides whether a bearer token may use the API
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) error
}

// APIKeyAuth requires "Authorization: Bearer <token>" accepted by validator.
// The scheme is matched case-insensitively.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, msg := bearerToken(r.Header.Get("Authorization"))
			if msg == "" {
				if err := validator.ValidateAPIKey(r.Context(), token); err != nil {
					msg = "invalid api key"
				}
			}
			if msg != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="diligence"`)
				api.Error(w, http.StatusUnauthorized, msg)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token, or returns the reason it could not
func bearerToken(header string) (token, problem string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "missing bearer token"
	}
	return token, ""
}
