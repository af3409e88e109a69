package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vasapolrittideah/property-listing-api/shared/auth"
)

type parserFunc func(string) (*auth.Claims, error)

func (f parserFunc) ParseAccessToken(token string) (*auth.Claims, error) { return f(token) }

func TestOptionalJWT(t *testing.T) {
	parser := parserFunc(func(token string) (*auth.Claims, error) {
		if token == "good" {
			return &auth.Claims{UserID: "u1"}, nil
		}
		return nil, errors.New("bad token")
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"no header", "", http.StatusOK, ""},
		{"valid bearer", "Bearer good", http.StatusOK, "u1"},
		{"invalid token", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		var gotUser string
		h := OptionalJWT(parser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if claims, ok := ClaimsFromContext(r.Context()); ok {
				gotUser = claims.UserID
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("[%s] expected status %d, got %d; body: %s", tt.name, tt.wantStatus, rec.Code, rec.Body.String())
		}
		if gotUser != tt.wantUser {
			t.Errorf("[%s] expected user %q, got %q", tt.name, tt.wantUser, gotUser)
		}
	}
}
