package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/property-listing-api/shared/auth"
)

type contextKey struct{}

var userClaimsKey = contextKey{}

// TokenParser validates an access token.
type TokenParser interface {
	ParseAccessToken(token string) (*auth.Claims, error)
}

// OptionalJWT attaches the claims of a valid bearer token to the request context.
// Requests without an Authorization header pass through untouched; a malformed or
// invalid token is rejected with 401.
func OptionalJWT(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := extractAndValidateJWT(header, parser)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// ClaimsFromContext returns the claims attached by OptionalJWT, if any.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

func extractAndValidateJWT(header string, parser TokenParser) (*auth.Claims, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	claims, err := parser.ParseAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, errors.New("invalid or expired access token")
	}

	return claims, nil
}
