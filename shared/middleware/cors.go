package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin requests from any origin. Preflight requests are answered
// with 204 and never reach the next handler.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         600,
	})
}
